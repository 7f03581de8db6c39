package middleware

import (
	"context"
	"net/http"
	"strings"

	"gestmed/pkg/jwt"
	"gestmed/pkg/response"

	"github.com/sirupsen/logrus"
)

// IdentityMiddleware reads the token the OAuth2 proxy forwards after it has
// authenticated the user. Requests without a token pass through anonymous.
// A token that fails signature verification is rejected.
type IdentityMiddleware struct {
	parser *jwt.IdentityParser
	header string
	log    *logrus.Logger
}

func NewIdentityMiddleware(parser *jwt.IdentityParser, header string, log *logrus.Logger) *IdentityMiddleware {
	if header == "" {
		header = "X-Forwarded-Access-Token"
	}
	return &IdentityMiddleware{
		parser: parser,
		header: header,
		log:    log,
	}
}

func (m *IdentityMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(m.header)
		if token == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parser.Parse(token)
		if err != nil && m.parser.Verifies() {
			response.Unauthorized(w, "Invalid identity token")
			return
		}
		if err != nil {
			m.log.WithField("request_id", GetRequestIDFromContext(r.Context())).Warn("Ignoring unreadable identity token")
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentityFromContext returns the proxy identity, if any.
func GetIdentityFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(IdentityKey).(*jwt.Claims)
	return claims, ok
}
