package domain

import (
	"strings"
	"time"
)

// PaymentDetail is a payment joined with its tenant and unit
type PaymentDetail struct {
	RentPayment
	TenantID        string `json:"tenant_id"`
	TenantFirstName string `json:"tenant_first_name"`
	TenantLastName  string `json:"tenant_last_name"`
	TenantEmail     string `json:"tenant_email"`
	RentalUnitName  string `json:"rental_unit_name"`
}

// TenantFullName returns "First Last"
func (d *PaymentDetail) TenantFullName() string {
	return strings.TrimSpace(d.TenantFirstName + " " + d.TenantLastName)
}

// ContractDetail is a contract joined with display names
type ContractDetail struct {
	RentalContract
	TenantName     string `json:"tenant_name"`
	RentalUnitName string `json:"rental_unit_name"`
}

// OverduePayment is the projection the alert scan works on
type OverduePayment struct {
	PaymentID       string
	ReceiptNumber   string
	TenantFirstName string
	TenantLastName  string
	DueDate         time.Time
	Status          RentPaymentStatus
}
