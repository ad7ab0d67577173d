package domain

import (
	"strings"
	"time"
)

// Tenant is a person renting one or more units
type Tenant struct {
	ID                    string    `json:"id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Email                 string    `json:"email"`
	PhoneNumber           string    `json:"phone_number"`
	EmergencyContactName  string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `json:"emergency_contact_phone,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// FullName returns "First Last"
func (t *Tenant) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Normalize trims names and lowercases the email
func (t *Tenant) Normalize() {
	t.FirstName = strings.TrimSpace(t.FirstName)
	t.LastName = strings.TrimSpace(t.LastName)
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	t.PhoneNumber = strings.TrimSpace(t.PhoneNumber)
}

// Validate checks required tenant fields
func (t *Tenant) Validate() error {
	switch {
	case t.FirstName == "":
		return requiredErr("first_name")
	case t.LastName == "":
		return requiredErr("last_name")
	case t.Email == "" || !strings.Contains(t.Email, "@"):
		return requiredErr("email")
	}
	return nil
}
