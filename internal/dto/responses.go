package dto

import "time"

// PaymentIntentResponse is returned when a card payment is started
type PaymentIntentResponse struct {
	PaymentID       string `json:"payment_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

// AlertScanResponse reports the outcome of an on-demand scan
type AlertScanResponse struct {
	AlertsRaised int       `json:"alerts_raised"`
	ScannedAt    time.Time `json:"scanned_at"`
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}
