// Package middleware contains the HTTP middleware for the application.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"
)

// sessionContextKey is where the resolved session ID lives on the request
// context.
const sessionContextKey = "sessionID"

// SessionID returns the session ID resolved by the session middleware, or
// an empty string for anonymous requests.
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionContextKey).(string)

	return id
}

// SessionMiddleware resolves the session cookie and guards routes that
// need a signed-in user.
type SessionMiddleware struct {
	store service.SessionStore
	cfg   *config.Config
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(store service.SessionStore, cfg *config.Config) *SessionMiddleware {
	return &SessionMiddleware{store: store, cfg: cfg}
}

// Resolve reads the session cookie, when present, and exposes the signed
// session ID to downstream handlers. Cookies that fail signature
// verification are treated as absent; the request itself is never rejected.
func (m *SessionMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cookie, err := c.Cookie(m.cfg.Session.CookieName); err == nil && cookie.Value != "" {
			if id, ok := parseSessionCookie(m.cfg.Session.SecretKey, cookie.Value); ok {
				c.Set(sessionContextKey, id)
			}
		}

		return next(c)
	}
}

// RequireSession redirects to the login flow when the request carries no
// usable token set. Under application credentials there is no user
// session, so every request passes.
func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.cfg.Entra.AuthMode == config.AuthModeApplication {
			return next(c)
		}

		sessionID := SessionID(c)
		if sessionID == "" {
			return redirectToLogin(c)
		}

		tokens, ok := m.store.Get(sessionID)
		if !ok || !tokens.Complete() {
			return redirectToLogin(c)
		}

		return next(c)
	}
}

func redirectToLogin(c echo.Context) error {
	// htmx ignores 3xx on partial swaps; it follows HX-Redirect instead.
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Redirect", "/auth/login")

		return c.NoContent(http.StatusUnauthorized)
	}

	return c.Redirect(http.StatusFound, "/auth/login")
}
