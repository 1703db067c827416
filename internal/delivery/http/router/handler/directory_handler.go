package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/middleware"
	"github.com/TimLeitch/ms-contact-sync/internal/usecase"
)

// DirectoryHandler renders the directory browsing pages.
type DirectoryHandler struct {
	uc     usecase.DirectoryUsecase
	logger *slog.Logger
}

// NewDirectoryHandler is the constructor for DirectoryHandler, injected by Fx.
func NewDirectoryHandler(uc usecase.DirectoryUsecase, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		uc:     uc,
		logger: logger,
	}
}

// Index renders the dashboard. Provider notices arriving via the callback
// redirect are translated into a banner.
func (h *DirectoryHandler) Index(c echo.Context) error {
	var notice string
	switch c.QueryParam("notice") {
	case "login_cancelled":
		notice = "Sign-in was cancelled."
	case "consent_required":
		notice = "An administrator must grant consent before this application can read the directory."
	case "login_failed":
		notice = "Sign-in failed. Please try again."
	}

	return c.Render(http.StatusOK, "index.html", map[string]any{
		"Title":  "Dashboard",
		"Notice": notice,
	})
}

// ListUsers renders the directory user listing.
func (h *DirectoryHandler) ListUsers(c echo.Context) error {
	users, err := h.uc.ListUsers(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "users.html", map[string]any{
		"Title": "Users",
		"Users": users,
	})
}

// ListGroups renders the group listing with member counts.
func (h *DirectoryHandler) ListGroups(c echo.Context) error {
	groups, err := h.uc.ListGroups(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "groups.html", map[string]any{
		"Title":  "Groups",
		"Groups": groups,
	})
}

// GroupMembers renders the member listing of one group.
func (h *DirectoryHandler) GroupMembers(c echo.Context) error {
	output, err := h.uc.GroupMembers(c.Request().Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "group_members.html", map[string]any{
		"Title":   output.Group.DisplayName,
		"Group":   output.Group,
		"Members": output.Members,
	})
}

// UserContacts renders a user's contact folders and recent contacts.
func (h *DirectoryHandler) UserContacts(c echo.Context) error {
	output, err := h.uc.UserContacts(c.Request().Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "user_details.html", map[string]any{
		"Title":             output.User.DisplayName,
		"User":              output.User,
		"Folders":           output.Folders,
		"Contacts":          output.Contacts,
		"WorkContactsCount": output.WorkContactsCount,
	})
}
