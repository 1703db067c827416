// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// Contact is a locally owned address-book entry. It may originate from a
// manual form submission, a CSV import, or a one-time copy of a directory
// user (GAL import); after creation it has no relation to the directory.
type Contact struct {
	ID             uint      // Surrogate primary key.
	DisplayName    string    // The name shown in every listing.
	Email          string    // Primary email address.
	GivenName      string    // First name.
	Surname        string    // Last name.
	JobTitle       string    // Job title as copied or entered.
	CompanyName    string    // Employer or organization name.
	Department     string    // Department within the organization.
	BusinessPhones string    // Single display string, not a list.
	MobilePhone    string    // Mobile phone number.
	OfficeLocation string    // Office or desk location.
	CreatedAt      time.Time // Timestamp of when this contact was created.
	UpdatedAt      time.Time // Timestamp of the last modification.
}
