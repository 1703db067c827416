package impl

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/repository"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"
	"github.com/TimLeitch/ms-contact-sync/internal/usecase"
)

// contactService implements the ContactUsecase interface.
type contactService struct {
	repo   repository.ContactRepository
	tokens service.TokenSource
	graph  service.GraphGateway
	logger *slog.Logger
}

// NewContactService is the constructor for contactService.
func NewContactService(
	repo repository.ContactRepository,
	tokens service.TokenSource,
	graph service.GraphGateway,
	logger *slog.Logger,
) usecase.ContactUsecase {
	return &contactService{
		repo:   repo,
		tokens: tokens,
		graph:  graph,
		logger: logger,
	}
}

// List returns every stored contact ordered by display name.
func (srv *contactService) List(ctx context.Context) ([]*entity.Contact, error) {
	contacts, err := srv.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list contacts")
	}

	return contacts, nil
}

// Get returns a single stored contact.
func (srv *contactService) Get(ctx context.Context, id uint) (*entity.Contact, error) {
	contact, err := srv.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, domainerrors.ErrContactNotFound
		}

		return nil, errors.Wrap(err, "failed to get contact")
	}

	return contact, nil
}

// Create persists a new contact from form input.
func (srv *contactService) Create(ctx context.Context, input *usecase.CreateContactInput) (*entity.Contact, error) {
	contact := &entity.Contact{
		DisplayName:    input.DisplayName,
		Email:          input.Email,
		GivenName:      input.GivenName,
		Surname:        input.Surname,
		JobTitle:       input.JobTitle,
		CompanyName:    input.CompanyName,
		Department:     input.Department,
		BusinessPhones: input.BusinessPhones,
		MobilePhone:    input.MobilePhone,
		OfficeLocation: input.OfficeLocation,
	}

	if err := srv.repo.Create(ctx, contact); err != nil {
		return nil, errors.Wrap(err, "failed to create contact")
	}

	srv.logger.Info("contact created", slog.Any("id", contact.ID), slog.String("displayName", contact.DisplayName))

	return contact, nil
}

// Update modifies an existing contact. Only the attributes carried by the
// input type can change; anything else a client sends is dropped during
// binding.
func (srv *contactService) Update(ctx context.Context, id uint, input *usecase.UpdateContactInput) (*entity.Contact, error) {
	// 1. Find the contact
	contact, err := srv.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, domainerrors.ErrContactNotFound
		}

		return nil, errors.Wrap(err, "failed to find contact")
	}

	// 2. Apply the provided fields
	if input.DisplayName != nil {
		contact.DisplayName = *input.DisplayName
	}
	if input.Email != nil {
		contact.Email = *input.Email
	}
	if input.GivenName != nil {
		contact.GivenName = *input.GivenName
	}
	if input.Surname != nil {
		contact.Surname = *input.Surname
	}
	if input.JobTitle != nil {
		contact.JobTitle = *input.JobTitle
	}
	if input.CompanyName != nil {
		contact.CompanyName = *input.CompanyName
	}
	if input.Department != nil {
		contact.Department = *input.Department
	}
	if input.BusinessPhones != nil {
		contact.BusinessPhones = *input.BusinessPhones
	}
	if input.MobilePhone != nil {
		contact.MobilePhone = *input.MobilePhone
	}
	if input.OfficeLocation != nil {
		contact.OfficeLocation = *input.OfficeLocation
	}

	// 3. Save the updated contact
	if err := srv.repo.Update(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return nil, domainerrors.ErrContactNotFound
		}

		return nil, errors.Wrap(err, "failed to update contact")
	}

	return contact, nil
}

// Delete removes a stored contact. Deleting an unknown ID is an error, not
// a silent no-op.
func (srv *contactService) Delete(ctx context.Context, id uint) error {
	if err := srv.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return domainerrors.ErrContactNotFound
		}

		return errors.Wrap(err, "failed to delete contact")
	}

	srv.logger.Info("contact deleted", slog.Any("id", id))

	return nil
}

// csvColumns maps CSV header names to contact field setters. Headers not
// listed here are ignored so exports carrying extra columns still import.
var csvColumns = map[string]func(*entity.Contact, string){
	"display_name":    func(c *entity.Contact, v string) { c.DisplayName = v },
	"email":           func(c *entity.Contact, v string) { c.Email = v },
	"given_name":      func(c *entity.Contact, v string) { c.GivenName = v },
	"surname":         func(c *entity.Contact, v string) { c.Surname = v },
	"job_title":       func(c *entity.Contact, v string) { c.JobTitle = v },
	"company_name":    func(c *entity.Contact, v string) { c.CompanyName = v },
	"department":      func(c *entity.Contact, v string) { c.Department = v },
	"business_phones": func(c *entity.Contact, v string) { c.BusinessPhones = v },
	"mobile_phone":    func(c *entity.Contact, v string) { c.MobilePhone = v },
	"office_location": func(c *entity.Contact, v string) { c.OfficeLocation = v },
}

// ImportCSV reads a header-mapped CSV stream and persists one contact per
// row in a single commit. Unknown columns are skipped; rows do not need a
// display name.
func (srv *contactService) ImportCSV(ctx context.Context, file io.Reader) ([]*entity.Contact, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	// Rows shorter than the header are legal; missing cells stay empty.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "failed to read CSV header")
	}

	setters := make([]func(*entity.Contact, string), len(header))
	for i, column := range header {
		name := strings.ToLower(strings.TrimSpace(column))
		if setter, ok := csvColumns[name]; ok {
			setters[i] = setter
		} else {
			srv.logger.Debug("ignoring unknown CSV column", slog.String("column", column))
		}
	}

	var contacts []*entity.Contact
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(domainerrors.ErrValidationFailed, "failed to parse CSV row")
		}

		contact := &entity.Contact{}
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](contact, value)
			}
		}
		contacts = append(contacts, contact)
	}

	if err := srv.repo.CreateBatch(ctx, contacts); err != nil {
		return nil, errors.Wrap(err, "failed to import contacts")
	}

	srv.logger.Info("contacts imported from CSV", slog.Int("count", len(contacts)))

	return contacts, nil
}

// ImportGAL copies a single directory user from the address list into the
// local contact store.
func (srv *contactService) ImportGAL(ctx context.Context, sessionID string, userID string) (*entity.Contact, error) {
	token, err := srv.tokens.Token(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := srv.graph.Get(ctx, token, "/users/"+url.PathEscape(userID), url.Values{
		"$select": {"id,displayName,mail,givenName,surname,jobTitle,companyName,department,businessPhones,mobilePhone,officeLocation"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch directory user")
	}

	var user entity.DirectoryUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, errors.Wrap(err, "failed to decode directory user")
	}

	contact := &entity.Contact{
		DisplayName:    user.DisplayName,
		Email:          user.Mail,
		GivenName:      user.GivenName,
		Surname:        user.Surname,
		JobTitle:       user.JobTitle,
		CompanyName:    user.CompanyName,
		Department:     user.Department,
		BusinessPhones: strings.Join(user.BusinessPhones, "; "),
		MobilePhone:    user.MobilePhone,
		OfficeLocation: user.OfficeLocation,
	}
	if contact.Email == "" {
		contact.Email = user.UserPrincipalName
	}

	if err := srv.repo.Create(ctx, contact); err != nil {
		return nil, errors.Wrap(err, "failed to store imported contact")
	}

	srv.logger.Info("contact imported from directory", slog.String("userID", userID), slog.Any("contactID", contact.ID))

	return contact, nil
}
