package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/email"
	"github.com/example/agro-storefront/internal/infrastructure/store"
	"github.com/rs/zerolog"
)

// ReceiptSender delivers payment receipts
type ReceiptSender interface {
	SendPaymentReceipt(ctx context.Context, to string, r email.Receipt) error
}

// Handler processes journal events for sending notifications
type Handler struct {
	sender ReceiptSender
	log    zerolog.Logger
}

func NewHandler(sender ReceiptSender, log zerolog.Logger) *Handler {
	return &Handler{
		sender: sender,
		log:    log,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, _, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	// Only successful payments produce mail
	if event.EventType == payment.EventPaymentSucceeded {
		return h.handlePaymentSucceeded(ctx, event)
	}

	return nil
}

func (h *Handler) handlePaymentSucceeded(ctx context.Context, event store.Event) error {
	var e payment.PaymentSucceeded
	if err := event.Decode(&e); err != nil {
		return err
	}

	log := h.log.With().Str("attempt_id", e.AttemptID).Str("transaction_id", e.TransactionID).Logger()
	if e.ContactEmail == "" {
		log.Debug().Msg("no contact email, receipt skipped")
		return nil
	}

	if err := h.sender.SendPaymentReceipt(ctx, e.ContactEmail, receiptFrom(e)); err != nil {
		return err
	}

	log.Info().Str("to", e.ContactEmail).Msg("payment receipt sent")
	return nil
}

func receiptFrom(e payment.PaymentSucceeded) email.Receipt {
	lines := make([]email.ReceiptLine, len(e.Lines))
	for i, l := range e.Lines {
		name := l.Name
		if name == "" {
			name = l.ProductID
		}
		lines[i] = email.ReceiptLine{
			Name:          name,
			Kg:            l.Kg,
			PricePerKg:    l.PricePerKg,
			TransportCost: l.TransportCost,
		}
	}
	return email.Receipt{
		TransactionID: e.TransactionID,
		Method:        e.Method.Label(),
		CardLast4:     e.CardLast4,
		Lines:         lines,
		Total:         e.Total,
		PaidAt:        e.PaidAt,
	}
}
