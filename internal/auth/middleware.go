package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/forecourt-hq/forecourt/internal/platform/httpx"
	"github.com/forecourt-hq/forecourt/internal/shared"
)

// Middleware gates routes on the fixed role tiers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireUser ensures a logged-in session is present.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := m.currentUser(r); !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the session role meets the minimum tier.
func (m Middleware) RequireRole(minimum Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, role, ok := m.currentUser(r)
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !role.Valid() || !role.Allows(minimum) {
				if m.Logger != nil {
					m.Logger.Warn("role denied", slog.String("role", string(role)), slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentUser(r *http.Request) (int64, Role, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", sess.User()))
		}
		return 0, "", false
	}
	return id, Role(sess.Role()), true
}

// CurrentUserID extracts the logged-in user ID from the request session.
func CurrentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
