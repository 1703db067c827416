package sqlite

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/repository"
	"github.com/TimLeitch/ms-contact-sync/internal/infra/persistence/model"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a contact repository backed by SQLite.
func NewContactRepository(db *gorm.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) List(ctx context.Context) ([]*entity.Contact, error) {
	var models []model.ContactModel
	if err := r.db.WithContext(ctx).Order("display_name COLLATE NOCASE ASC").Find(&models).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list contacts")
	}

	contacts := make([]*entity.Contact, 0, len(models))
	for i := range models {
		contacts = append(contacts, toContactEntity(&models[i]))
	}

	return contacts, nil
}

func (r *contactRepository) FindByID(ctx context.Context, id uint) (*entity.Contact, error) {
	var m model.ContactModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrContactNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find contact")
	}

	return toContactEntity(&m), nil
}

func (r *contactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	m := toContactModel(contact)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create contact")
	}

	contact.ID = m.ID
	contact.CreatedAt = m.CreatedAt
	contact.UpdatedAt = m.UpdatedAt

	return nil
}

func (r *contactRepository) CreateBatch(ctx context.Context, contacts []*entity.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	models := make([]*model.ContactModel, 0, len(contacts))
	for _, c := range contacts {
		models = append(models, toContactModel(c))
	}

	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create contacts")
	}

	for i, m := range models {
		contacts[i].ID = m.ID
		contacts[i].CreatedAt = m.CreatedAt
		contacts[i].UpdatedAt = m.UpdatedAt
	}

	return nil
}

func (r *contactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	m := toContactModel(contact)
	result := r.db.WithContext(ctx).Model(&model.ContactModel{}).
		Where("id = ?", contact.ID).
		Select("*").Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update contact")
	}
	if result.RowsAffected == 0 {
		return repository.ErrContactNotFound
	}

	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.ContactModel{}, id)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete contact")
	}
	if result.RowsAffected == 0 {
		return repository.ErrContactNotFound
	}

	return nil
}
