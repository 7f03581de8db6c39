package preload

import (
	"context"
	"errors"
	"sync"
	"time"

	"gestmed/internal/client/store"
	"gestmed/internal/delivery/dto"
	"gestmed/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 5 * time.Minute
)

var ErrPreloadTimeout = errors.New("preload timeout")

// DashboardSource serves the server-side dashboard.
type DashboardSource interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

// Preloader keeps the client stores warm.
type Preloader struct {
	stores    *store.Stores
	dashboard DashboardSource
	log       *logrus.Logger
	timeout   time.Duration
	interval  time.Duration
	trigger   chan struct{}

	mu   sync.RWMutex
	last *dto.DashboardResponse
}

type Option func(*Preloader)

func WithTimeout(d time.Duration) Option {
	return func(p *Preloader) { p.timeout = d }
}

func WithInterval(d time.Duration) Option {
	return func(p *Preloader) { p.interval = d }
}

func New(stores *store.Stores, dashboard DashboardSource, log *logrus.Logger, opts ...Option) *Preloader {
	p := &Preloader{
		stores:    stores,
		dashboard: dashboard,
		log:       log,
		timeout:   DefaultTimeout,
		interval:  DefaultInterval,
		trigger:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preload loads the dashboard, doctors, patients and appointments concurrently.
// A failing load does not stop the others; the first failure is returned.
func (p *Preloader) Preload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		d, err := p.dashboard.Dashboard(apiclient.WithoutCache(ctx))
		if err != nil {
			p.log.Warnf("Failed to preload dashboard: %+v", err)
			return err
		}
		p.mu.Lock()
		p.last = d
		p.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		if _, err := p.stores.Doctors.Fetch(ctx, false); err != nil {
			p.log.Warnf("Failed to preload doctors: %+v", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		if _, err := p.stores.Patients.Fetch(ctx, false); err != nil {
			p.log.Warnf("Failed to preload patients: %+v", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		if _, err := p.stores.Appointments.Fetch(ctx, false); err != nil {
			p.log.Warnf("Failed to preload appointments: %+v", err)
			return err
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrPreloadTimeout
	}
	if err != nil {
		return err
	}

	p.log.Debug("Application data preloaded")
	return nil
}

// Dashboard returns the last preloaded server dashboard, or nil.
func (p *Preloader) Dashboard() *dto.DashboardResponse {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Trigger asks a running Warm loop to preload now. Repeated triggers collapse into one.
func (p *Preloader) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Warm preloads on every interval tick and on Trigger until ctx is cancelled.
func (p *Preloader) Warm(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-p.trigger:
		}

		if err := p.Preload(ctx); err != nil && ctx.Err() == nil {
			p.log.Warnf("Some preload operations failed: %+v", err)
		}
	}
}
