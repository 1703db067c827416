package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/middleware"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/render"
	"github.com/TimLeitch/ms-contact-sync/internal/delivery/http/validator"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/usecase"
)

// fakeContactUsecase backs the handler tests with an in-memory contact
// list.
type fakeContactUsecase struct {
	contacts map[uint]*entity.Contact
	nextID   uint
}

func newFakeContactUsecase() *fakeContactUsecase {
	return &fakeContactUsecase{contacts: make(map[uint]*entity.Contact), nextID: 1}
}

func (f *fakeContactUsecase) List(_ context.Context) ([]*entity.Contact, error) {
	contacts := make([]*entity.Contact, 0, len(f.contacts))
	for _, c := range f.contacts {
		contacts = append(contacts, c)
	}

	return contacts, nil
}

func (f *fakeContactUsecase) Get(_ context.Context, id uint) (*entity.Contact, error) {
	contact, ok := f.contacts[id]
	if !ok {
		return nil, domainerrors.ErrContactNotFound
	}

	return contact, nil
}

func (f *fakeContactUsecase) Create(_ context.Context, input *usecase.CreateContactInput) (*entity.Contact, error) {
	contact := &entity.Contact{
		ID:          f.nextID,
		DisplayName: input.DisplayName,
		Email:       input.Email,
	}
	f.contacts[contact.ID] = contact
	f.nextID++

	return contact, nil
}

func (f *fakeContactUsecase) Update(_ context.Context, id uint, input *usecase.UpdateContactInput) (*entity.Contact, error) {
	contact, ok := f.contacts[id]
	if !ok {
		return nil, domainerrors.ErrContactNotFound
	}
	if input.DisplayName != nil {
		contact.DisplayName = *input.DisplayName
	}
	if input.Email != nil {
		contact.Email = *input.Email
	}

	return contact, nil
}

func (f *fakeContactUsecase) Delete(_ context.Context, id uint) error {
	if _, ok := f.contacts[id]; !ok {
		return domainerrors.ErrContactNotFound
	}
	delete(f.contacts, id)

	return nil
}

func (f *fakeContactUsecase) ImportCSV(_ context.Context, _ io.Reader) ([]*entity.Contact, error) {
	return nil, nil
}

func (f *fakeContactUsecase) ImportGAL(_ context.Context, _ string, _ string) (*entity.Contact, error) {
	return nil, domainerrors.ErrNotAuthenticated
}

func newTestEcho(t *testing.T, uc usecase.ContactUsecase) *echo.Echo {
	t.Helper()

	renderer, err := render.New()
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	e := echo.New()
	e.Renderer = renderer
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	h := NewContactHandler(uc, logger)
	e.GET("/contacts", h.List)
	e.GET("/contacts/add/local", h.ShowAddForm)
	e.POST("/contacts/add/local", h.Create)
	e.GET("/contacts/:id/edit", h.ShowEditForm)
	e.PUT("/contacts/:id", h.Update)
	e.DELETE("/contacts/:id", h.Delete)

	return e
}

func TestContactHandler_Create_ReturnsRowFragment(t *testing.T) {
	e := newTestEcho(t, newFakeContactUsecase())

	form := url.Values{}
	form.Set("display_name", "Jane Doe")
	form.Set("email", "jane@example.com")

	req := httptest.NewRequest(http.MethodPost, "/contacts/add/local", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "jane@example.com")
	// A fragment, not a page.
	assert.NotContains(t, body, "<html")
}

func TestContactHandler_List_FullPageByDefault(t *testing.T) {
	uc := newFakeContactUsecase()
	_, err := uc.Create(context.Background(), &usecase.CreateContactInput{DisplayName: "Jane Doe"})
	require.NoError(t, err)

	e := newTestEcho(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestContactHandler_List_FragmentForHTMX(t *testing.T) {
	uc := newFakeContactUsecase()
	_, err := uc.Create(context.Background(), &usecase.CreateContactInput{DisplayName: "Jane Doe"})
	require.NoError(t, err)

	e := newTestEcho(t, uc)

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestContactHandler_Delete_MissingContactIs404(t *testing.T) {
	e := newTestEcho(t, newFakeContactUsecase())

	req := httptest.NewRequest(http.MethodDelete, "/contacts/999", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactHandler_Delete_RemovesRow(t *testing.T) {
	uc := newFakeContactUsecase()
	created, err := uc.Create(context.Background(), &usecase.CreateContactInput{DisplayName: "Temp"})
	require.NoError(t, err)

	e := newTestEcho(t, uc)

	req := httptest.NewRequest(http.MethodDelete, "/contacts/1", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, err = uc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, domainerrors.ErrContactNotFound)
}

func TestContactHandler_Create_InvalidEmailRejected(t *testing.T) {
	e := newTestEcho(t, newFakeContactUsecase())

	form := url.Values{}
	form.Set("display_name", "Jane Doe")
	form.Set("email", "not-an-email")

	req := httptest.NewRequest(http.MethodPost, "/contacts/add/local", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactHandler_Update_InvalidEmailRejected(t *testing.T) {
	uc := newFakeContactUsecase()
	_, err := uc.Create(context.Background(), &usecase.CreateContactInput{DisplayName: "Jane Doe"})
	require.NoError(t, err)

	e := newTestEcho(t, uc)

	form := url.Values{}
	form.Set("email", "not-an-email")

	req := httptest.NewRequest(http.MethodPut, "/contacts/1", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactHandler_InvalidIDIs400(t *testing.T) {
	e := newTestEcho(t, newFakeContactUsecase())

	req := httptest.NewRequest(http.MethodDelete, "/contacts/not-a-number", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
