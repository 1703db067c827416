// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
)

// ErrContactNotFound is a domain-specific error returned when a contact is not found.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepository defines the standard operations for contact persistence.
// The application layer depends on this interface, not the concrete implementation.
type ContactRepository interface {
	// List retrieves every contact ordered by display name.
	List(ctx context.Context) ([]*entity.Contact, error)

	// FindByID retrieves a single contact by its surrogate ID.
	FindByID(ctx context.Context, id uint) (*entity.Contact, error)

	// Create persists a new contact entity to the storage.
	Create(ctx context.Context, contact *entity.Contact) error

	// CreateBatch persists a set of contacts in a single commit (CSV import).
	CreateBatch(ctx context.Context, contacts []*entity.Contact) error

	// Update modifies an existing contact entity in the storage.
	Update(ctx context.Context, contact *entity.Contact) error

	// Delete removes a contact by ID. Returns ErrContactNotFound when no
	// row was affected.
	Delete(ctx context.Context, id uint) error
}
