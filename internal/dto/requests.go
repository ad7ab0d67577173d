package dto

import (
	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/shopspring/decimal"
)

// TenantRequest creates or updates a tenant
type TenantRequest struct {
	FirstName             string `json:"first_name" binding:"required,max=100"`
	LastName              string `json:"last_name" binding:"required,max=100"`
	Email                 string `json:"email" binding:"required,email,max=200"`
	PhoneNumber           string `json:"phone_number" binding:"max=50"`
	EmergencyContactName  string `json:"emergency_contact_name,omitempty" binding:"max=100"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty" binding:"max=50"`
	Notes                 string `json:"notes,omitempty"`
}

// ToTenant maps the request onto a tenant
func (r *TenantRequest) ToTenant() *domain.Tenant {
	return &domain.Tenant{
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Email:                 r.Email,
		PhoneNumber:           r.PhoneNumber,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
		Notes:                 r.Notes,
	}
}

// RentalUnitRequest creates or updates a unit
type RentalUnitRequest struct {
	Name         string                  `json:"name" binding:"required,max=150"`
	AddressLine1 string                  `json:"address_line1" binding:"required,max=200"`
	AddressLine2 string                  `json:"address_line2,omitempty" binding:"max=200"`
	City         string                  `json:"city" binding:"required,max=100"`
	State        string                  `json:"state" binding:"max=100"`
	PostalCode   string                  `json:"postal_code" binding:"max=20"`
	MonthlyRent  decimal.Decimal         `json:"monthly_rent"`
	Bedrooms     int                     `json:"bedrooms" binding:"gte=0"`
	Bathrooms    int                     `json:"bathrooms" binding:"gte=0"`
	SquareFeet   float64                 `json:"square_feet" binding:"gte=0"`
	Status       domain.RentalUnitStatus `json:"status,omitempty"`
	Notes        string                  `json:"notes,omitempty"`
}

// ToUnit maps the request onto a unit
func (r *RentalUnitRequest) ToUnit() *domain.RentalUnit {
	return &domain.RentalUnit{
		Name:         r.Name,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		MonthlyRent:  r.MonthlyRent,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		SquareFeet:   r.SquareFeet,
		Status:       r.Status,
		Notes:        r.Notes,
	}
}

// CreateRentalContractRequest creates a contract
type CreateRentalContractRequest struct {
	TenantID        string                 `json:"tenant_id" binding:"required,uuid"`
	RentalUnitID    string                 `json:"rental_unit_id" binding:"required,uuid"`
	StartDate       Date                   `json:"start_date"`
	EndDate         *Date                  `json:"end_date,omitempty"`
	MonthlyRent     decimal.Decimal        `json:"monthly_rent"`
	DepositAmount   decimal.Decimal        `json:"deposit_amount"`
	Currency        string                 `json:"currency,omitempty"`
	PaymentDueDay   int                    `json:"payment_due_day" binding:"gte=0,lte=31"`
	PaymentSchedule domain.PaymentSchedule `json:"payment_schedule,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
}

// ToContract maps the request onto a contract with defaults applied
func (r *CreateRentalContractRequest) ToContract() (*domain.RentalContract, error) {
	currency, err := domain.ParseCurrency(r.Currency, domain.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	c := &domain.RentalContract{
		TenantID:        r.TenantID,
		RentalUnitID:    r.RentalUnitID,
		StartDate:       r.StartDate.Time,
		EndDate:         r.EndDate.Ptr(),
		MonthlyRent:     r.MonthlyRent,
		DepositAmount:   r.DepositAmount,
		Currency:        currency,
		PaymentDueDay:   r.PaymentDueDay,
		PaymentSchedule: r.PaymentSchedule,
		Notes:           r.Notes,
	}
	c.ApplyDefaults()
	return c, nil
}

// UpdateRentalContractRequest overwrites the mutable contract terms
type UpdateRentalContractRequest struct {
	StartDate       Date                   `json:"start_date"`
	EndDate         *Date                  `json:"end_date,omitempty"`
	MonthlyRent     decimal.Decimal        `json:"monthly_rent"`
	DepositAmount   decimal.Decimal        `json:"deposit_amount"`
	PaymentDueDay   int                    `json:"payment_due_day" binding:"gte=1,lte=31"`
	PaymentSchedule domain.PaymentSchedule `json:"payment_schedule" binding:"required"`
	Status          domain.ContractStatus  `json:"status" binding:"required"`
	Notes           string                 `json:"notes,omitempty"`
}

// Apply copies the request onto an existing contract
func (r *UpdateRentalContractRequest) Apply(c *domain.RentalContract) {
	c.StartDate = r.StartDate.Time
	c.EndDate = r.EndDate.Ptr()
	c.MonthlyRent = r.MonthlyRent
	c.DepositAmount = r.DepositAmount
	c.PaymentDueDay = r.PaymentDueDay
	c.PaymentSchedule = r.PaymentSchedule
	c.Status = r.Status
	c.Notes = r.Notes
}

// CreateRentPaymentRequest creates a payment for a contract
type CreateRentPaymentRequest struct {
	RentalContractID string          `json:"rental_contract_id" binding:"required,uuid"`
	DueDate          Date            `json:"due_date"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	Currency         string          `json:"currency,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// RecordRentPaymentRequest records money received against a payment
type RecordRentPaymentRequest struct {
	AmountPaid      decimal.Decimal  `json:"amount_paid"`
	PaidDate        Timestamp        `json:"paid_date"`
	PaymentMethod   string           `json:"payment_method,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty" binding:"max=100"`
	LateFee         *decimal.Decimal `json:"late_fee,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// ToRecording maps the request onto a domain recording
func (r *RecordRentPaymentRequest) ToRecording() (domain.Recording, error) {
	method, err := domain.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return domain.Recording{}, err
	}
	return domain.Recording{
		AmountPaid:      r.AmountPaid,
		PaidDate:        r.PaidDate.Time,
		PaymentMethod:   method,
		ReferenceNumber: r.ReferenceNumber,
		LateFee:         r.LateFee,
		Notes:           r.Notes,
	}, nil
}

// SendReceiptRequest emails a receipt
type SendReceiptRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
	RecipientName  string `json:"recipient_name,omitempty"`
	AttachPDF      bool   `json:"attach_pdf"`
}
