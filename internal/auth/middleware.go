package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cognicore/autotag/internal/logging"
)

// HeaderName is the request header carrying the raw token
const HeaderName = "token"

// FailuresTotal counts rejected requests by reason
var FailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "autotag_auth_failures_total",
		Help: "Total number of requests rejected by token validation",
	},
	[]string{"reason"},
)

type ctxKey struct{}

// WithUserID returns a context carrying userID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated user set by Require
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// tokenFrom reads the token header, falling back to a bearer Authorization
// header
func tokenFrom(r *http.Request) string {
	if t := r.Header.Get(HeaderName); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Require rejects requests without a valid token. Missing and expired tokens
// get 401, anything else invalid gets 403.
func (m *Manager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Validate(tokenFrom(r))
		if err != nil {
			status, reason := http.StatusForbidden, "invalid"
			switch {
			case errors.Is(err, ErrMissingToken):
				status, reason = http.StatusUnauthorized, "missing"
			case errors.Is(err, ErrExpiredToken):
				status, reason = http.StatusUnauthorized, "expired"
			}
			FailuresTotal.WithLabelValues(reason).Inc()
			logging.Debug().Err(err).Str("path", r.URL.Path).Msg("token rejected")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": publicMessage(err)})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
	})
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return ErrMissingToken.Error()
	case errors.Is(err, ErrExpiredToken):
		return ErrExpiredToken.Error()
	default:
		return ErrInvalidToken.Error()
	}
}
