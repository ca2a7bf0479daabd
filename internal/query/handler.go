package query

import (
	"context"

	"github.com/example/agro-storefront/internal/domain/cart"
	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/example/agro-storefront/internal/notification"
	"github.com/example/agro-storefront/internal/session"
)

type Handler struct {
	sessions *session.Manager
	catalog  *product.Catalog
}

func NewHandler(sessions *session.Manager, catalog *product.Catalog) *Handler {
	return &Handler{sessions: sessions, catalog: catalog}
}

// Products

// SearchProducts returns the catalog filtered by name, premium products first
func (h *Handler) SearchProducts(q string) []product.Product {
	return h.catalog.Search(q)
}

func (h *Handler) GetProduct(id string) (product.Product, error) {
	return h.catalog.Get(id)
}

func (h *Handler) GetSeller(id string) (*SellerReadModel, error) {
	seller, err := h.catalog.Seller(id)
	if err != nil {
		return nil, err
	}
	return &SellerReadModel{Seller: seller, Products: h.catalog.BySeller(id)}, nil
}

// Cart
func (h *Handler) GetCart(ctx context.Context, sessionID string) (*CartReadModel, error) {
	s, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var model *CartReadModel
	_ = s.Do(func(st *session.State) error {
		model = cartReadModel(s.ID, st.Cart)
		return nil
	})
	return model, nil
}

func cartReadModel(sessionID string, c *cart.Store) *CartReadModel {
	items := c.Items()
	lines := make([]CartLineReadModel, len(items))
	for i, item := range items {
		lines[i] = CartLineReadModel{
			ProductID:         item.Product.ID,
			Name:              item.Product.Name,
			Image:             item.Product.Image,
			SellerName:        item.Product.Seller.Name,
			PricePerKg:        item.Product.PricePerKg,
			TransportIncluded: item.Product.TransportIncluded,
			Kg:                item.Kg,
			Subtotal:          item.Subtotal(),
			TransportCost:     item.TransportCost(),
		}
	}
	return &CartReadModel{
		SessionID:            sessionID,
		Items:                lines,
		LineCount:            c.LineCount(),
		TotalKg:              c.TotalKg(),
		Subtotal:             c.Subtotal(),
		TransportCost:        c.TransportCost(),
		Total:                c.Total(),
		HasTransportIncluded: c.HasTransportIncluded(),
		CartOpen:             c.CartOpen(),
		PaymentOpen:          c.PaymentOpen(),
	}
}

// Payment
func (h *Handler) GetPayment(ctx context.Context, sessionID string) (*PaymentReadModel, error) {
	s, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var model *PaymentReadModel
	_ = s.Do(func(st *session.State) error {
		model = paymentReadModel(st)
		return nil
	})
	return model, nil
}

func paymentReadModel(st *session.State) *PaymentReadModel {
	transport := st.Cart.HasTransportIncluded()
	model := &PaymentReadModel{
		Open:              st.Cart.PaymentOpen(),
		Total:             st.Cart.Total(),
		TransportIncluded: transport,
	}

	if st.Payment == nil {
		model.Methods = methods(func(m payment.Method) bool {
			return m != payment.MethodCash || transport
		})
		return model
	}

	// An idle attempt pays whatever the cart holds now; work on a copy so
	// reading never changes the session.
	a := *st.Payment
	if a.Status == payment.StatusIdle {
		a.SetOrder(model.Total, transport)
	}
	updated := a.UpdatedAt
	model.AttemptID = a.ID
	model.Status = a.Status
	model.Method = a.Method
	model.Methods = methods(a.MethodAvailable)
	model.Ready = a.Status == payment.StatusIdle && a.Ready()
	model.Total = a.Total
	model.TransportIncluded = a.TransportIncluded
	model.TransactionID = a.TransactionID
	model.ContactEmail = a.ContactEmail
	model.UpdatedAt = &updated

	switch a.Method {
	case payment.MethodCard:
		model.Card = &CardReadModel{
			Number: a.Card.Number,
			Holder: a.Card.Holder,
			Expiry: a.Card.Expiry,
			CVVSet: a.Card.CVV != "",
		}
		if a.Card.Number != "" {
			model.Card.Brand = payment.CardBrand(a.Card.Number)
		}
		if payment.LastFour(a.Card.Number) != "" {
			model.Card.Display = payment.MaskCardNumber(a.Card.Number)
		}
	case payment.MethodTransfer:
		details := payment.TransferDetails
		model.BankTransfer = &details
	}
	return model
}

func methods(available func(payment.Method) bool) []MethodReadModel {
	out := make([]MethodReadModel, len(payment.Methods))
	for i, m := range payment.Methods {
		out[i] = MethodReadModel{ID: m, Label: m.Label(), Available: available(m)}
	}
	return out
}

// Notifications

// DrainNotices returns and clears the pending notices of a session
func (h *Handler) DrainNotices(ctx context.Context, sessionID string) ([]notification.Notice, error) {
	s, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Notices().Drain(), nil
}
