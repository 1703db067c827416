package sqlite

import (
	"github.com/TimLeitch/ms-contact-sync/internal/domain/entity"
	"github.com/TimLeitch/ms-contact-sync/internal/infra/persistence/model"
)

func toContactEntity(m *model.ContactModel) *entity.Contact {
	return &entity.Contact{
		ID:             m.ID,
		DisplayName:    m.DisplayName,
		Email:          m.Email,
		GivenName:      m.GivenName,
		Surname:        m.Surname,
		JobTitle:       m.JobTitle,
		CompanyName:    m.CompanyName,
		Department:     m.Department,
		BusinessPhones: m.BusinessPhones,
		MobilePhone:    m.MobilePhone,
		OfficeLocation: m.OfficeLocation,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toContactModel(c *entity.Contact) *model.ContactModel {
	return &model.ContactModel{
		ID:             c.ID,
		DisplayName:    c.DisplayName,
		Email:          c.Email,
		GivenName:      c.GivenName,
		Surname:        c.Surname,
		JobTitle:       c.JobTitle,
		CompanyName:    c.CompanyName,
		Department:     c.Department,
		BusinessPhones: c.BusinessPhones,
		MobilePhone:    c.MobilePhone,
		OfficeLocation: c.OfficeLocation,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
