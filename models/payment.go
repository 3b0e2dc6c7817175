package models

// --- ChargeRequest & ChargeResult ---

// ChargeRequest is what the core hands to the external payment gateway.
type ChargeRequest struct {
	BookingID   string
	RequesterID string
	Amount      float64
	Currency    string
	Method      string // "card" or "cash"
	Description string
}

// ChargeOutcomeStatus is the closed set of gateway outcomes.
type ChargeOutcomeStatus string

const (
	ChargeSucceeded ChargeOutcomeStatus = "succeeded"
	ChargeFailed    ChargeOutcomeStatus = "failed"
	ChargePending   ChargeOutcomeStatus = "pending"
)

// ChargeResult is the gateway's answer, treated as an opaque oracle.
type ChargeResult struct {
	Status        ChargeOutcomeStatus
	TransactionID string
	FailureReason string
}
