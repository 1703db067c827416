package usecase

import (
	"context"
	"io"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
)

// ContactUsecase defines the interface for managing the locally stored
// contact list.
type ContactUsecase interface {
	List(ctx context.Context) ([]*entity.Contact, error)
	Get(ctx context.Context, id uint) (*entity.Contact, error)
	Create(ctx context.Context, input *CreateContactInput) (*entity.Contact, error)
	Update(ctx context.Context, id uint, input *UpdateContactInput) (*entity.Contact, error)
	Delete(ctx context.Context, id uint) error
	ImportCSV(ctx context.Context, file io.Reader) ([]*entity.Contact, error)
	ImportGAL(ctx context.Context, sessionID string, userID string) (*entity.Contact, error)
}

// --- Input DTOs ---

// CreateContactInput defines the data required to create a contact. All
// attributes are optional; a contact with an empty display name is legal.
type CreateContactInput struct {
	DisplayName    string `json:"display_name" form:"display_name"`
	Email          string `json:"email" form:"email" validate:"omitempty,email"`
	GivenName      string `json:"given_name" form:"given_name"`
	Surname        string `json:"surname" form:"surname"`
	JobTitle       string `json:"job_title" form:"job_title"`
	CompanyName    string `json:"company_name" form:"company_name"`
	Department     string `json:"department" form:"department"`
	BusinessPhones string `json:"business_phones" form:"business_phones"`
	MobilePhone    string `json:"mobile_phone" form:"mobile_phone"`
	OfficeLocation string `json:"office_location" form:"office_location"`
}

// UpdateContactInput defines the updatable contact attributes. Nil fields
// are left untouched; any other attribute sent by a client is ignored.
type UpdateContactInput struct {
	DisplayName    *string `json:"display_name,omitempty" form:"display_name"`
	Email          *string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	GivenName      *string `json:"given_name,omitempty" form:"given_name"`
	Surname        *string `json:"surname,omitempty" form:"surname"`
	JobTitle       *string `json:"job_title,omitempty" form:"job_title"`
	CompanyName    *string `json:"company_name,omitempty" form:"company_name"`
	Department     *string `json:"department,omitempty" form:"department"`
	BusinessPhones *string `json:"business_phones,omitempty" form:"business_phones"`
	MobilePhone    *string `json:"mobile_phone,omitempty" form:"mobile_phone"`
	OfficeLocation *string `json:"office_location,omitempty" form:"office_location"`
}
