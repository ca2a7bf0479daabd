package command

import "github.com/shopspring/decimal"

// Cart Commands
type AddToCart struct {
	SessionID string          `json:"-"`
	ProductID string          `json:"product_id"`
	Kg        decimal.Decimal `json:"kg"`
}

// UpdateQuantity sets Kg, or moves the current quantity by Step increments
// of 0.5 kg when Step is non-zero.
type UpdateQuantity struct {
	SessionID string          `json:"-"`
	ProductID string          `json:"-"`
	Kg        decimal.Decimal `json:"kg"`
	Step      int             `json:"step"`
}

type RemoveFromCart struct {
	SessionID string `json:"-"`
	ProductID string `json:"-"`
}

type ClearCart struct {
	SessionID string `json:"-"`
}

type SetCartOpen struct {
	SessionID string `json:"-"`
	Open      bool   `json:"open"`
}

type Checkout struct {
	SessionID string `json:"-"`
}

// Payment Commands
type SelectPaymentMethod struct {
	SessionID string `json:"-"`
	Method    string `json:"method"`
}

// UpdateCard changes the card fields that are set; nil fields are kept.
type UpdateCard struct {
	SessionID string  `json:"-"`
	Number    *string `json:"number"`
	Holder    *string `json:"holder"`
	Expiry    *string `json:"expiry"`
	CVV       *string `json:"cvv"`
}

type SetContactEmail struct {
	SessionID string `json:"-"`
	Email     string `json:"email"`
}

type SubmitPayment struct {
	SessionID string `json:"-"`
}

type RetryPayment struct {
	SessionID string `json:"-"`
}

type ClosePayment struct {
	SessionID string `json:"-"`
}
