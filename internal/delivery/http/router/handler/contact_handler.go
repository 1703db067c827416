package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/middleware"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/render"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/usecase"
)

// ContactHandler manages the local contact list pages and fragments.
type ContactHandler struct {
	uc     usecase.ContactUsecase
	logger *slog.Logger
}

// NewContactHandler is the constructor for ContactHandler, injected by Fx.
func NewContactHandler(uc usecase.ContactUsecase, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		uc:     uc,
		logger: logger,
	}
}

// List renders the contact listing. htmx refreshes receive only the table
// rows.
func (h *ContactHandler) List(c echo.Context) error {
	contacts, err := h.uc.List(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	template := "contacts.html"
	if render.IsFragment(c) {
		template = "contact_rows.html"
	}

	return c.Render(http.StatusOK, template, map[string]any{
		"Title":    "Contacts",
		"Contacts": contacts,
	})
}

// ShowAddForm renders the add-contact form fragment.
func (h *ContactHandler) ShowAddForm(c echo.Context) error {
	return c.Render(http.StatusOK, "contact_form.html", nil)
}

// CloseModal clears the modal target.
func (h *ContactHandler) CloseModal(c echo.Context) error {
	return c.HTML(http.StatusOK, "")
}

// Create persists a contact from the add form and returns its table row.
func (h *ContactHandler) Create(c echo.Context) error {
	var input usecase.CreateContactInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid contact input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	contact, err := h.uc.Create(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "contact_row.html", contact)
}

// ImportCSV bulk-imports contacts from an uploaded CSV file and returns
// the new table rows.
func (h *ContactHandler) ImportCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("missing CSV file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open uploaded file")
	}
	defer file.Close()

	contacts, err := h.uc.ImportCSV(c.Request().Context(), file)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "contact_rows.html", map[string]any{
		"Contacts": contacts,
	})
}

// ImportGAL copies one directory user into the local contact list.
func (h *ContactHandler) ImportGAL(c echo.Context) error {
	userID := c.FormValue("user_id")
	if userID == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("missing user_id")
	}

	contact, err := h.uc.ImportGAL(c.Request().Context(), middleware.SessionID(c), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "contact_row.html", contact)
}

// ShowEditForm renders the edit form fragment for one contact.
func (h *ContactHandler) ShowEditForm(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}

	contact, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "contact_edit.html", contact)
}

// Update applies the edit form and returns the refreshed table row.
func (h *ContactHandler) Update(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}

	var input usecase.UpdateContactInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid contact input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	contact, err := h.uc.Update(c.Request().Context(), id, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(http.StatusOK, "contact_row.html", contact)
}

// Delete removes a contact. The empty body lets htmx drop the row.
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return c.HTML(http.StatusOK, "")
}

func contactID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, domainerrors.ErrValidationFailed.WrapMessage("invalid contact id")
	}

	return uint(id), nil
}
