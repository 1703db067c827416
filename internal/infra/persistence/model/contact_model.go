// Package model contains the GORM persistence models mirroring the local
// database schema.
package model

import "time"

// ContactModel mirrors the 'contacts' table. DisplayName is the only
// required column; every other attribute is optional.
type ContactModel struct {
	ID             uint   `gorm:"primaryKey"`
	DisplayName    string `gorm:"type:varchar(255);not null;index"`
	Email          string `gorm:"type:varchar(255)"`
	GivenName      string `gorm:"type:varchar(100)"`
	Surname        string `gorm:"type:varchar(100)"`
	JobTitle       string `gorm:"type:varchar(255)"`
	CompanyName    string `gorm:"type:varchar(255)"`
	Department     string `gorm:"type:varchar(255)"`
	BusinessPhones string `gorm:"type:varchar(255)"`
	MobilePhone    string `gorm:"type:varchar(64)"`
	OfficeLocation string `gorm:"type:varchar(255)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ContactModel) TableName() string {
	return "contacts"
}
