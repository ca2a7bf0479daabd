package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventItemAdded       = "ItemAddedToCart"
	EventQuantityUpdated = "CartQuantityUpdated"
	EventItemRemoved     = "ItemRemovedFromCart"
	EventCartCleared     = "CartCleared"
	EventCheckoutStarted = "CheckoutStarted"
)

type ItemAddedToCart struct {
	SessionID  string          `json:"session_id"`
	ProductID  string          `json:"product_id"`
	Kg         decimal.Decimal `json:"kg"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	AddedAt    time.Time       `json:"added_at"`
}

type CartQuantityUpdated struct {
	SessionID string          `json:"session_id"`
	ProductID string          `json:"product_id"`
	Kg        decimal.Decimal `json:"kg"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ItemRemovedFromCart struct {
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type CartCleared struct {
	SessionID string    `json:"session_id"`
	ClearedAt time.Time `json:"cleared_at"`
}

type CheckoutStarted struct {
	SessionID     string          `json:"session_id"`
	Lines         int             `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TransportCost decimal.Decimal `json:"transport_cost"`
	Total         decimal.Decimal `json:"total"`
	StartedAt     time.Time       `json:"started_at"`
}
