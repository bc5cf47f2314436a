package models

import "time"

// Event types
const (
	EventTypeCheckoutStarted = "CHECKOUT_STARTED"
	EventTypeTokenIssued     = "TOKEN_ISSUED"
	EventTypeTokenFailed     = "TOKEN_FAILED"
	EventTypePaymentOutcome  = "PAYMENT_OUTCOME"
)

// Payment outcomes delivered by the hosted payment popup. Exactly one fires
// per checkout attempt.
const (
	OutcomeSuccess = "success"
	OutcomePending = "pending"
	OutcomeError   = "error"
	OutcomeClosed  = "closed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckoutStartedEvent published when a checkout attempt is accepted
type CheckoutStartedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	GrossAmount int64  `json:"gross_amount"`
	Quantity    int    `json:"quantity"`
}

// TokenIssuedEvent published when the gateway returns a payment token
type TokenIssuedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// TokenFailedEvent published when the gateway call fails
type TokenFailedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// PaymentOutcomeEvent published when the popup reports a terminal outcome
type PaymentOutcomeEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Outcome string `json:"outcome"`
}
