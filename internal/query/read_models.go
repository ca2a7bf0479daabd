package query

import (
	"time"

	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

type CartLineReadModel struct {
	ProductID         string          `json:"product_id"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	SellerName        string          `json:"seller_name"`
	PricePerKg        decimal.Decimal `json:"price_per_kg"`
	TransportIncluded bool            `json:"transport_included"`
	Kg                decimal.Decimal `json:"kg"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TransportCost     decimal.Decimal `json:"transport_cost"`
}

type CartReadModel struct {
	SessionID            string              `json:"session_id"`
	Items                []CartLineReadModel `json:"items"`
	LineCount            int                 `json:"line_count"`
	TotalKg              decimal.Decimal     `json:"total_kg"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	TransportCost        decimal.Decimal     `json:"transport_cost"`
	Total                decimal.Decimal     `json:"total"`
	HasTransportIncluded bool                `json:"has_transport_included"`
	CartOpen             bool                `json:"cart_open"`
	PaymentOpen          bool                `json:"payment_open"`
}

type MethodReadModel struct {
	ID        payment.Method `json:"id"`
	Label     string         `json:"label"`
	Available bool           `json:"available"`
}

// CardReadModel echoes the formatted card fields. The CVV is never returned.
type CardReadModel struct {
	Number  string `json:"number"`
	Holder  string `json:"holder"`
	Expiry  string `json:"expiry"`
	CVVSet  bool   `json:"cvv_set"`
	Brand   string `json:"brand,omitempty"`
	Display string `json:"display,omitempty"`
}

type PaymentReadModel struct {
	Open              bool                  `json:"open"`
	AttemptID         string                `json:"attempt_id,omitempty"`
	Status            payment.Status        `json:"status,omitempty"`
	Method            payment.Method        `json:"method,omitempty"`
	Methods           []MethodReadModel     `json:"methods"`
	Card              *CardReadModel        `json:"card,omitempty"`
	BankTransfer      *payment.BankTransfer `json:"bank_transfer,omitempty"`
	Ready             bool                  `json:"ready"`
	Total             decimal.Decimal       `json:"total"`
	TransportIncluded bool                  `json:"transport_included"`
	TransactionID     string                `json:"transaction_id,omitempty"`
	ContactEmail      string                `json:"contact_email,omitempty"`
	UpdatedAt         *time.Time            `json:"updated_at,omitempty"`
}

type SellerReadModel struct {
	Seller   product.Seller    `json:"seller"`
	Products []product.Product `json:"products"`
}
