package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"gestmed/pkg/ttlcache"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL    = "http://localhost:3000"
	DefaultTimeout    = 15 * time.Second
	DefaultCacheTTL   = 5 * time.Minute
	DefaultRetryDelay = time.Second
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the GestMed HTTP API. GET responses are cached by path and query.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	cache          *ttlcache.Cache[string, []byte]
	retryDelay     time.Duration
	token          string
	onUnauthorized func()
	log            *logrus.Logger
	writes         atomic.Uint64
}

type Option func(*config)

type config struct {
	httpClient     *http.Client
	cacheTTL       time.Duration
	retryDelay     time.Duration
	token          string
	onUnauthorized func()
	log            *logrus.Logger
	now            func() time.Time
}

func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) { cfg.httpClient = c }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(cfg *config) { cfg.cacheTTL = ttl }
}

func WithRetryDelay(d time.Duration) Option {
	return func(cfg *config) { cfg.retryDelay = d }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(cfg *config) { cfg.token = token }
}

// WithUnauthorizedHandler runs fn after a 401, once the cache has been cleared.
func WithUnauthorizedHandler(fn func()) Option {
	return func(cfg *config) { cfg.onUnauthorized = fn }
}

func WithLogger(log *logrus.Logger) Option {
	return func(cfg *config) { cfg.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(cfg *config) { cfg.now = now }
}

func New(baseURL string, opts ...Option) *Client {
	cfg := config{
		cacheTTL:   DefaultCacheTTL,
		retryDelay: DefaultRetryDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.log == nil {
		cfg.log = logrus.StandardLogger()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     cfg.httpClient,
		cache:          ttlcache.New[string, []byte](cfg.cacheTTL, ttlcache.WithClock(cfg.now)),
		retryDelay:     cfg.retryDelay,
		token:          cfg.token,
		onUnauthorized: cfg.onUnauthorized,
		log:            cfg.log,
	}
}

// ClearCache drops every cached GET response.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// Invalidate drops cached responses whose key contains any of patterns.
func (c *Client) Invalidate(patterns ...string) {
	c.cache.DeleteFunc(func(key string) bool {
		for _, p := range patterns {
			if strings.Contains(key, p) {
				return true
			}
		}
		return false
	})
}

func cacheKey(path string, query url.Values) string {
	return path + "?" + query.Encode()
}

type noCacheKey struct{}

// WithoutCache makes GET calls made with ctx skip the response cache. The fresh
// response still replaces the cached one.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	bypass, _ := ctx.Value(noCacheKey{}).(bool)
	return bypass
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	key := cacheKey(path, query)
	if !cacheBypassed(ctx) {
		if body, ok := c.cache.Get(key); ok {
			return decode(body, out)
		}
	}

	generation := c.writes.Load()
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	// a write finished while this read was in flight, the body may predate it
	if c.writes.Load() == generation {
		c.cache.Set(key, body)
	}
	c.cache.Purge()
	return decode(body, out)
}

// write sends a mutating request. Cached keys matching patterns are dropped before
// the request and again once it succeeded.
func (c *Client) write(ctx context.Context, method, path string, in, out interface{}, patterns ...string) error {
	c.Invalidate(patterns...)

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}

	body, err := c.do(ctx, method, path, nil, payload)
	if err != nil {
		return err
	}

	c.writes.Add(1)
	c.Invalidate(patterns...)
	return decode(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	resp, err := c.send(ctx, method, target, payload)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.WithError(err).Warnf("API %s %s failed, retrying in %s", method, path, c.retryDelay)

		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if resp, err = c.send(ctx, method, target, payload); err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("API %s %s: %dms", method, path, time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized {
		c.cache.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp, body)}
	}

	return body, nil
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(resp.StatusCode)
}

func decode(body []byte, out interface{}) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
