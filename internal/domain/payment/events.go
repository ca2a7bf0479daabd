package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventPaymentOpened    = "PaymentOpened"
	EventPaymentSubmitted = "PaymentSubmitted"
	EventPaymentSucceeded = "PaymentSucceeded"
	EventPaymentFailed    = "PaymentFailed"
	EventPaymentRetried   = "PaymentRetried"
	EventPaymentClosed    = "PaymentClosed"
)

type PaymentOpened struct {
	SessionID         string          `json:"session_id"`
	AttemptID         string          `json:"attempt_id"`
	Total             decimal.Decimal `json:"total"`
	TransportIncluded bool            `json:"transport_included"`
	OpenedAt          time.Time       `json:"opened_at"`
}

type PaymentSubmitted struct {
	SessionID   string          `json:"session_id"`
	AttemptID   string          `json:"attempt_id"`
	Method      Method          `json:"method"`
	Total       decimal.Decimal `json:"total"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// OrderLine is the receipt view of a cart line.
type OrderLine struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Kg            decimal.Decimal `json:"kg"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	TransportCost decimal.Decimal `json:"transport_cost"`
}

type PaymentSucceeded struct {
	SessionID     string          `json:"session_id"`
	AttemptID     string          `json:"attempt_id"`
	TransactionID string          `json:"transaction_id"`
	Method        Method          `json:"method"`
	CardBrand     string          `json:"card_brand,omitempty"`
	CardLast4     string          `json:"card_last4,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Lines         []OrderLine     `json:"lines"`
	ContactEmail  string          `json:"contact_email,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
}

type PaymentFailed struct {
	SessionID string          `json:"session_id"`
	AttemptID string          `json:"attempt_id"`
	Method    Method          `json:"method"`
	Total     decimal.Decimal `json:"total"`
	FailedAt  time.Time       `json:"failed_at"`
}

type PaymentRetried struct {
	SessionID string    `json:"session_id"`
	AttemptID string    `json:"attempt_id"`
	RetriedAt time.Time `json:"retried_at"`
}

type PaymentClosed struct {
	SessionID   string    `json:"session_id"`
	AttemptID   string    `json:"attempt_id"`
	FinalStatus Status    `json:"final_status"`
	CartCleared bool      `json:"cart_cleared"`
	ClosedAt    time.Time `json:"closed_at"`
}
