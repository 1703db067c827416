// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TimLeitch/ms-contact-sync/config"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/middleware"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"
)

// AuthHandler drives the sign-in and sign-out endpoints of the delegated
// flow.
type AuthHandler struct {
	flow   service.AuthorizationFlow
	store  service.SessionStore
	cfg    *config.Config
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(flow service.AuthorizationFlow, store service.SessionStore, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		flow:   flow,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Login redirects the browser to the identity provider's authorization
// endpoint.
func (h *AuthHandler) Login(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.flow.AuthCodeURL())
}

// Callback completes the authorization-code flow. Provider-reported errors
// are mapped to distinct dashboard notices; a code is exchanged for tokens
// which are stored server-side with only the session ID going to the
// browser.
func (h *AuthHandler) Callback(c echo.Context) error {
	if providerError := c.QueryParam("error"); providerError != "" {
		h.logger.Warn("authorization rejected",
			slog.String("error", providerError),
			slog.String("description", c.QueryParam("error_description")),
		)

		switch providerError {
		case "access_denied":
			return c.Redirect(http.StatusFound, "/?notice=login_cancelled")
		case "admin_consent_required":
			return c.Redirect(http.StatusFound, "/?notice=consent_required")
		default:
			return c.Redirect(http.StatusFound, "/?notice=login_failed")
		}
	}

	code := c.QueryParam("code")
	if code == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("no authorization code received")
	}

	tokens, err := h.flow.Exchange(c.Request().Context(), code)
	if err != nil {
		return errors.WithStack(err)
	}

	sessionID := h.store.Put(middleware.SessionID(c), tokens)
	h.setSessionCookie(c, sessionID)

	return c.Redirect(http.StatusFound, "/")
}

// Logout drops the server-side session and sends the browser to the
// identity provider's logout endpoint.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sessionID := middleware.SessionID(c); sessionID != "" {
		h.store.Delete(sessionID)
	}
	h.clearSessionCookie(c)

	return c.Redirect(http.StatusFound, h.flow.LogoutURL())
}

func (h *AuthHandler) setSessionCookie(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.Session.CookieName,
		Value:    middleware.SignSessionID(h.cfg.Session.SecretKey, sessionID),
		Path:     "/",
		MaxAge:   int(h.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
