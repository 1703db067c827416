package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/render"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
)

// ErrorMiddleware renders application errors as HTML. Full navigations get
// an error page; htmx swaps get a fragment sized for an inline target.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Missing or expired sign-in restarts the login flow instead of
	// showing an error page.
	if errors.Is(err, domainerrors.ErrNotAuthenticated) {
		if redirectErr := redirectToLogin(c); redirectErr != nil {
			m.logger.Error("Failed to redirect to login", slog.Any("error", redirectErr))
		}

		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr domainerrors.AppError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.HTTPCode()
		message = appErr.Message()
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if text, ok := httpErr.Message.(string); ok {
			message = text
		} else {
			message = http.StatusText(httpErr.Code)
		}
	default:
		m.logger.Error("Unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
			slog.String("method", c.Request().Method),
		)
	}

	template := "error.html"
	if render.IsFragment(c) {
		template = "error_fragment.html"
	}

	renderErr := c.Render(status, template, map[string]any{
		"Title":   "Error",
		"Message": message,
	})
	if renderErr != nil {
		m.logger.Error("Failed to render error page", slog.Any("error", renderErr))
	}
}
