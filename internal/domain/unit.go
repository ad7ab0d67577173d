package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RentalUnit is a rentable property
type RentalUnit struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	AddressLine1 string           `json:"address_line1"`
	AddressLine2 string           `json:"address_line2,omitempty"`
	City         string           `json:"city"`
	State        string           `json:"state"`
	PostalCode   string           `json:"postal_code"`
	MonthlyRent  decimal.Decimal  `json:"monthly_rent"`
	Bedrooms     int              `json:"bedrooms"`
	Bathrooms    int              `json:"bathrooms"`
	SquareFeet   float64          `json:"square_feet"`
	Status       RentalUnitStatus `json:"status"`
	Notes        string           `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Validate checks required unit fields and applies the default status
func (u *RentalUnit) Validate() error {
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return requiredErr("name")
	}
	if u.MonthlyRent.IsNegative() {
		return ErrNegativeAmount
	}
	if u.Bedrooms < 0 || u.Bathrooms < 0 || u.SquareFeet < 0 {
		return ErrInvalidValue
	}
	if u.Status == "" {
		u.Status = RentalUnitStatusAvailable
	}
	if !u.Status.Valid() {
		return ErrInvalidValue
	}
	return nil
}
