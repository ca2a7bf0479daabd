package cart

import (
	"slices"

	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

const AggregateType = "Cart"

var (
	// TransportSurchargePerKg applies to every kilogram of a product whose price
	// does not bundle transport.
	TransportSurchargePerKg = decimal.NewFromInt(5)

	MinQuantityKg  = decimal.RequireFromString("0.5")
	MaxQuantityKg  = decimal.NewFromInt(100)
	QuantityStepKg = decimal.RequireFromString("0.5")
)

type LineItem struct {
	Product product.Product `json:"product"`
	Kg      decimal.Decimal `json:"kg"`
}

// Subtotal is the line's price without transport.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.PricePerKg.Mul(l.Kg)
}

// TransportCost is the line's surcharge; zero when transport is bundled.
func (l LineItem) TransportCost() decimal.Decimal {
	if l.Product.TransportIncluded {
		return decimal.Zero
	}
	return TransportSurchargePerKg.Mul(l.Kg)
}

// Store holds the line items of one session and the open state of the cart
// and payment views. Totals are derived from the items on every read.
// A Store is not safe for concurrent use; the owning session serializes access.
type Store struct {
	items       []LineItem
	cartOpen    bool
	paymentOpen bool
}

func NewStore() *Store {
	return &Store{}
}

// AddItem adds kg of p to the cart, merging with an existing line for the same
// product, and opens the cart view. kg is expected to be clamped by the caller.
func (s *Store) AddItem(p product.Product, kg decimal.Decimal) {
	if i := s.indexOf(p.ID); i >= 0 {
		s.items[i].Kg = s.items[i].Kg.Add(kg)
	} else {
		s.items = append(s.items, LineItem{Product: p, Kg: kg})
	}
	s.cartOpen = true
}

// UpdateQuantity replaces the quantity of the line for productID.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(productID string, kg decimal.Decimal) {
	if i := s.indexOf(productID); i >= 0 {
		s.items[i].Kg = kg
	}
}

// RemoveItem deletes the line for productID if present.
func (s *Store) RemoveItem(productID string) {
	if i := s.indexOf(productID); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
}

func (s *Store) Clear() {
	s.items = nil
}

// Checkout closes the cart view and opens the payment view. An empty cart is
// not rejected here; callers disable the action instead.
func (s *Store) Checkout() {
	s.cartOpen = false
	s.paymentOpen = true
}

func (s *Store) SetCartOpen(open bool) { s.cartOpen = open }
func (s *Store) ClosePayment()         { s.paymentOpen = false }
func (s *Store) CartOpen() bool        { return s.cartOpen }
func (s *Store) PaymentOpen() bool     { return s.paymentOpen }

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	return slices.Clone(s.items)
}

// Item returns the line for productID.
func (s *Store) Item(productID string) (LineItem, bool) {
	if i := s.indexOf(productID); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

func (s *Store) LineCount() int { return len(s.items) }
func (s *Store) IsEmpty() bool  { return len(s.items) == 0 }

func (s *Store) TotalKg() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Kg)
	}
	return total
}

func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (s *Store) TransportCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.TransportCost())
	}
	return total
}

func (s *Store) Total() decimal.Decimal {
	return s.Subtotal().Add(s.TransportCost())
}

// HasTransportIncluded reports whether any line bundles transport.
func (s *Store) HasTransportIncluded() bool {
	return slices.ContainsFunc(s.items, func(item LineItem) bool {
		return item.Product.TransportIncluded
	})
}

func (s *Store) indexOf(productID string) int {
	return slices.IndexFunc(s.items, func(item LineItem) bool {
		return item.Product.ID == productID
	})
}

// ClampQuantity applies the storefront's lower bound of 0.5 kg.
func ClampQuantity(kg decimal.Decimal) decimal.Decimal {
	if kg.LessThan(MinQuantityKg) {
		return MinQuantityKg
	}
	return kg
}

// ClampAddQuantity bounds the quantity picked on a product card to [0.5, 100] kg.
func ClampAddQuantity(kg decimal.Decimal) decimal.Decimal {
	return decimal.Min(ClampQuantity(kg), MaxQuantityKg)
}

// StepQuantity moves kg by steps of QuantityStepKg, never below the minimum.
func StepQuantity(kg decimal.Decimal, steps int) decimal.Decimal {
	return ClampQuantity(kg.Add(QuantityStepKg.Mul(decimal.NewFromInt(int64(steps)))))
}
