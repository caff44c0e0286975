package http

import (
	"log/slog"
	"net/http"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
)

// SessionMiddleware attaches the caller's session to the request context,
// creating one and setting the cookie when the request carries none or an
// expired one.
func SessionMiddleware(store *session.Store, cfg config.SessionConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = "dashboard_session"
	}
	logger = infrastructure.WithComponent(logger, "session_middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(name); err == nil {
				id = c.Value
			}

			sess, created := store.GetOrCreate(id)
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   r.TLS != nil,
				})
				logger.DebugContext(r.Context(), "New session issued",
					slog.String("session_id", sess.ID),
					slog.Bool("had_cookie", id != ""))
			}

			ctx := session.WithContext(r.Context(), sess)
			ctx = infrastructure.WithSessionID(ctx, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromRequest returns the session attached by SessionMiddleware
func SessionFromRequest(r *http.Request) (*session.Session, bool) {
	return session.FromContext(r.Context())
}

// MustSession returns the request session and panics when the route was
// mounted without SessionMiddleware.
func MustSession(r *http.Request) *session.Session {
	sess, ok := SessionFromRequest(r)
	if !ok {
		panic("http: route requires SessionMiddleware")
	}
	return sess
}
