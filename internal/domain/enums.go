package domain

import "fmt"

// RentalUnitStatus is the occupancy state of a unit
type RentalUnitStatus string

const (
	RentalUnitStatusAvailable   RentalUnitStatus = "Available"
	RentalUnitStatusOccupied    RentalUnitStatus = "Occupied"
	RentalUnitStatusMaintenance RentalUnitStatus = "Maintenance"
	RentalUnitStatusArchived    RentalUnitStatus = "Archived"
)

// Valid reports whether s is a known unit status
func (s RentalUnitStatus) Valid() bool {
	switch s {
	case RentalUnitStatusAvailable, RentalUnitStatusOccupied, RentalUnitStatusMaintenance, RentalUnitStatusArchived:
		return true
	}
	return false
}

// ContractStatus is the lifecycle state of a lease
type ContractStatus string

const (
	ContractStatusDraft          ContractStatus = "Draft"
	ContractStatusActive         ContractStatus = "Active"
	ContractStatusPendingRenewal ContractStatus = "PendingRenewal"
	ContractStatusTerminated     ContractStatus = "Terminated"
)

// Valid reports whether s is a known contract status
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusPendingRenewal, ContractStatusTerminated:
		return true
	}
	return false
}

// PaymentSchedule is the billing cadence of a contract.
// Only Monthly generates an initial payment.
type PaymentSchedule string

const (
	PaymentScheduleMonthly   PaymentSchedule = "Monthly"
	PaymentScheduleQuarterly PaymentSchedule = "Quarterly"
	PaymentScheduleAnnually  PaymentSchedule = "Annually"
)

// Valid reports whether s is a known schedule
func (s PaymentSchedule) Valid() bool {
	switch s {
	case PaymentScheduleMonthly, PaymentScheduleQuarterly, PaymentScheduleAnnually:
		return true
	}
	return false
}

// RentPaymentStatus is the derived state of one due-date obligation
type RentPaymentStatus string

const (
	RentPaymentStatusPending RentPaymentStatus = "Pending"
	RentPaymentStatusPaid    RentPaymentStatus = "Paid"
	RentPaymentStatusPartial RentPaymentStatus = "Partial"
	RentPaymentStatusLate    RentPaymentStatus = "Late"
	// Waived has no producer in the application; it only arrives through direct data edits
	RentPaymentStatusWaived RentPaymentStatus = "Waived"
)

// Valid reports whether s is a known payment status
func (s RentPaymentStatus) Valid() bool {
	switch s {
	case RentPaymentStatusPending, RentPaymentStatusPaid, RentPaymentStatusPartial, RentPaymentStatusLate, RentPaymentStatusWaived:
		return true
	}
	return false
}

// PaymentMethod is how a payment was settled
type PaymentMethod string

const (
	PaymentMethodUnknown      PaymentMethod = "Unknown"
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodBankTransfer PaymentMethod = "BankTransfer"
	PaymentMethodMobileMoney  PaymentMethod = "MobileMoney"
	PaymentMethodCheque       PaymentMethod = "Cheque"
	PaymentMethodCard         PaymentMethod = "Card"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUnknown, PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney, PaymentMethodCheque, PaymentMethodCard:
		return true
	}
	return false
}

// DocumentType tags stored documents
type DocumentType string

const (
	DocumentTypeReceipt        DocumentType = "Receipt"
	DocumentTypePaymentsReport DocumentType = "PaymentsReport"
)

// ParsePaymentMethod maps an empty value to Unknown and rejects anything not listed above
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return PaymentMethodUnknown, nil
	}
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: payment method %q", ErrInvalidValue, s)
	}
	return m, nil
}
