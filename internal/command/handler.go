package command

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/agro-storefront/internal/domain/cart"
	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/example/agro-storefront/internal/infrastructure/store"
	"github.com/example/agro-storefront/internal/notification"
	"github.com/example/agro-storefront/internal/session"
	"github.com/rs/zerolog"
)

var (
	ErrNoPayment  = errors.New("no payment in progress")
	ErrCartLocked = errors.New("cart is locked by a payment in progress")
)

type Handler struct {
	sessions  *session.Manager
	catalog   *product.Catalog
	events    store.EventStoreInterface
	processor *payment.Processor
	log       zerolog.Logger

	// pending tracks scheduled payment resolutions
	pending sync.WaitGroup
}

func NewHandler(
	sessions *session.Manager,
	catalog *product.Catalog,
	events store.EventStoreInterface,
	processor *payment.Processor,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		sessions:  sessions,
		catalog:   catalog,
		events:    events,
		processor: processor,
		log:       log,
	}
}

// CreateSession starts an anonymous buyer session
func (h *Handler) CreateSession(ctx context.Context) (*session.Session, error) {
	return h.sessions.Create(ctx)
}

// AddToCart adds kg of a catalog product to the session cart and raises the
// confirmation notice
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) error {
	p, err := h.catalog.Get(cmd.ProductID)
	if err != nil {
		return err
	}
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return err
	}

	kg := cart.ClampAddQuantity(cmd.Kg)
	err = s.Do(func(st *session.State) error {
		if cartLocked(st) {
			return ErrCartLocked
		}
		st.Cart.AddItem(p, kg)
		return nil
	})
	if err != nil {
		return err
	}
	s.Notices().Push(notification.ItemAdded(kg, p.Name))

	h.record(ctx, s.ID, cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{
		SessionID:  s.ID,
		ProductID:  p.ID,
		Kg:         kg,
		PricePerKg: p.PricePerKg,
		AddedAt:    time.Now(),
	})
	h.save(ctx, s)
	return nil
}

// UpdateQuantity sets or steps the quantity of a line, clamped to the 0.5 kg
// minimum. Unknown products are ignored.
func (h *Handler) UpdateQuantity(ctx context.Context, cmd UpdateQuantity) error {
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return err
	}

	kg := cart.ClampQuantity(cmd.Kg)
	var found bool
	err = s.Do(func(st *session.State) error {
		if cartLocked(st) {
			return ErrCartLocked
		}
		var item cart.LineItem
		item, found = st.Cart.Item(cmd.ProductID)
		if found && cmd.Step != 0 {
			kg = cart.StepQuantity(item.Kg, cmd.Step)
		}
		st.Cart.UpdateQuantity(cmd.ProductID, kg)
		return nil
	})
	if err != nil || !found {
		return err
	}

	h.record(ctx, s.ID, cart.AggregateType, cart.EventQuantityUpdated, cart.CartQuantityUpdated{
		SessionID: s.ID,
		ProductID: cmd.ProductID,
		Kg:        kg,
		UpdatedAt: time.Now(),
	})
	h.save(ctx, s)
	return nil
}

// RemoveFromCart deletes a line; removing an absent line is a no-op
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return err
	}

	var found bool
	err = s.Do(func(st *session.State) error {
		if cartLocked(st) {
			return ErrCartLocked
		}
		_, found = st.Cart.Item(cmd.ProductID)
		st.Cart.RemoveItem(cmd.ProductID)
		return nil
	})
	if err != nil || !found {
		return err
	}

	h.record(ctx, s.ID, cart.AggregateType, cart.EventItemRemoved, cart.ItemRemovedFromCart{
		SessionID: s.ID,
		ProductID: cmd.ProductID,
		RemovedAt: time.Now(),
	})
	h.save(ctx, s)
	return nil
}

// ClearCart empties the cart
func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return err
	}

	err = s.Do(func(st *session.State) error {
		if cartLocked(st) {
			return ErrCartLocked
		}
		st.Cart.Clear()
		return nil
	})
	if err != nil {
		return err
	}

	h.record(ctx, s.ID, cart.AggregateType, cart.EventCartCleared, cart.CartCleared{
		SessionID: s.ID,
		ClearedAt: time.Now(),
	})
	h.save(ctx, s)
	return nil
}

// SetCartOpen shows or hides the cart view
func (h *Handler) SetCartOpen(ctx context.Context, cmd SetCartOpen) error {
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return err
	}

	_ = s.Do(func(st *session.State) error {
		st.Cart.SetCartOpen(cmd.Open)
		return nil
	})
	h.save(ctx, s)
	return nil
}

// Checkout closes the cart view and opens the payment dialog. A running
// attempt is kept; otherwise a fresh idle attempt is opened for the current
// total.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) error {
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return err
	}

	var started cart.CheckoutStarted
	var opened *payment.PaymentOpened
	_ = s.Do(func(st *session.State) error {
		st.Cart.Checkout()
		total, transport := st.Cart.Total(), st.Cart.HasTransportIncluded()
		started = cart.CheckoutStarted{
			SessionID:     s.ID,
			Lines:         st.Cart.LineCount(),
			Subtotal:      st.Cart.Subtotal(),
			TransportCost: st.Cart.TransportCost(),
			Total:         total,
			StartedAt:     time.Now(),
		}

		switch {
		case st.Payment == nil || st.Payment.Status == payment.StatusClosed:
			st.Payment = payment.NewAttempt(total, transport)
			opened = &payment.PaymentOpened{
				SessionID:         s.ID,
				AttemptID:         st.Payment.ID,
				Total:             total,
				TransportIncluded: transport,
				OpenedAt:          st.Payment.CreatedAt,
			}
		case st.Payment.Status == payment.StatusIdle:
			st.Payment.SetOrder(total, transport)
		}
		return nil
	})

	h.record(ctx, s.ID, cart.AggregateType, cart.EventCheckoutStarted, started)
	if opened != nil {
		h.record(ctx, opened.AttemptID, payment.AggregateType, payment.EventPaymentOpened, opened)
	}
	h.save(ctx, s)
	return nil
}

// withAttempt runs fn on the open payment attempt of a session
func (h *Handler) withAttempt(ctx context.Context, sessionID string, fn func(st *session.State, a *payment.Attempt) error) (*session.Session, error) {
	s, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	err = s.Do(func(st *session.State) error {
		if st.Payment == nil {
			return ErrNoPayment
		}
		return fn(st, st.Payment)
	})
	return s, err
}

// SelectPaymentMethod switches the method of an idle attempt. Cash needs a
// transport-included product in the current cart.
func (h *Handler) SelectPaymentMethod(ctx context.Context, cmd SelectPaymentMethod) error {
	m, err := payment.ParseMethod(cmd.Method)
	if err != nil {
		return err
	}
	_, err = h.withAttempt(ctx, cmd.SessionID, func(st *session.State, a *payment.Attempt) error {
		if a.Status == payment.StatusIdle {
			a.SetOrder(st.Cart.Total(), st.Cart.HasTransportIncluded())
		}
		return a.SelectMethod(m)
	})
	return err
}

// UpdateCard formats and stores the card fields present in cmd
func (h *Handler) UpdateCard(ctx context.Context, cmd UpdateCard) error {
	_, err := h.withAttempt(ctx, cmd.SessionID, func(_ *session.State, a *payment.Attempt) error {
		setters := []struct {
			value *string
			set   func(string) error
		}{
			{cmd.Number, a.SetCardNumber},
			{cmd.Holder, a.SetCardHolder},
			{cmd.Expiry, a.SetCardExpiry},
			{cmd.CVV, a.SetCardCVV},
		}
		for _, s := range setters {
			if s.value == nil {
				continue
			}
			if err := s.set(*s.value); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// SetContactEmail stores where the receipt is mailed to
func (h *Handler) SetContactEmail(ctx context.Context, cmd SetContactEmail) error {
	_, err := h.withAttempt(ctx, cmd.SessionID, func(_ *session.State, a *payment.Attempt) error {
		return a.SetContactEmail(cmd.Email)
	})
	return err
}

// SubmitPayment moves a ready attempt to processing and schedules its
// resolution. It returns without waiting for the outcome.
func (h *Handler) SubmitPayment(ctx context.Context, cmd SubmitPayment) error {
	var submitted payment.PaymentSubmitted
	s, err := h.withAttempt(ctx, cmd.SessionID, func(st *session.State, a *payment.Attempt) error {
		if a.Status == payment.StatusIdle {
			a.SetOrder(st.Cart.Total(), st.Cart.HasTransportIncluded())
		}
		if err := a.Begin(); err != nil {
			return err
		}
		submitted = payment.PaymentSubmitted{
			SessionID:   cmd.SessionID,
			AttemptID:   a.ID,
			Method:      a.Method,
			Total:       a.Total,
			SubmittedAt: time.Now(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	log := h.log.With().Str("session_id", s.ID).Str("attempt_id", submitted.AttemptID).Logger()
	log.Info().Str("method", string(submitted.Method)).Str("total", submitted.Total.StringFixed(2)).Msg("payment submitted")
	h.record(ctx, submitted.AttemptID, payment.AggregateType, payment.EventPaymentSubmitted, submitted)

	h.pending.Add(1)
	h.processor.Schedule(func() {
		defer h.pending.Done()
		h.resolve(s, submitted.AttemptID)
	})
	return nil
}

// resolve settles an attempt after the simulated delay. The resolution is
// dropped when the session no longer holds that attempt in processing.
func (h *Handler) resolve(s *session.Session, attemptID string) {
	ctx := context.Background()
	log := h.log.With().Str("session_id", s.ID).Str("attempt_id", attemptID).Logger()

	var (
		eventType string
		event     any
		notice    notification.Notice
		dropped   bool
	)
	err := s.Do(func(st *session.State) error {
		a := st.Payment
		if a == nil || a.ID != attemptID || a.Status != payment.StatusProcessing {
			dropped = true
			return nil
		}
		outcome, err := h.processor.Resolve(ctx, a)
		if err != nil {
			return err
		}

		now := time.Now()
		if outcome.Status == payment.StatusSuccess {
			eventType = payment.EventPaymentSucceeded
			succeeded := payment.PaymentSucceeded{
				SessionID:     s.ID,
				AttemptID:     a.ID,
				TransactionID: outcome.TransactionID,
				Method:        a.Method,
				Total:         a.Total,
				Lines:         orderLines(st.Cart.Items()),
				ContactEmail:  a.ContactEmail,
				PaidAt:        now,
			}
			if a.Method == payment.MethodCard {
				succeeded.CardBrand = payment.CardBrand(a.Card.Number)
				succeeded.CardLast4 = payment.LastFour(a.Card.Number)
			}
			event = succeeded
			notice = notification.PaymentSucceeded(outcome.TransactionID)
			return nil
		}

		eventType = payment.EventPaymentFailed
		event = payment.PaymentFailed{
			SessionID: s.ID,
			AttemptID: a.ID,
			Method:    a.Method,
			Total:     a.Total,
			FailedAt:  now,
		}
		notice = notification.PaymentFailed()
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("resolve payment")
		return
	}
	if dropped {
		log.Debug().Msg("payment closed before resolution, outcome dropped")
		return
	}

	log.Info().Str("event", eventType).Msg("payment resolved")
	s.Notices().Push(notice)
	h.record(ctx, attemptID, payment.AggregateType, eventType, event)
}

// RetryPayment returns a failed attempt to idle with its fields intact
func (h *Handler) RetryPayment(ctx context.Context, cmd RetryPayment) error {
	var attemptID string
	s, err := h.withAttempt(ctx, cmd.SessionID, func(_ *session.State, a *payment.Attempt) error {
		attemptID = a.ID
		return a.Retry()
	})
	if err != nil {
		return err
	}

	h.record(ctx, attemptID, payment.AggregateType, payment.EventPaymentRetried, payment.PaymentRetried{
		SessionID: s.ID,
		AttemptID: attemptID,
		RetriedAt: time.Now(),
	})
	return nil
}

// ClosePayment dismisses the payment dialog from any state. After a successful
// payment the cart is cleared. Closing without an attempt only hides the view.
func (h *Handler) ClosePayment(ctx context.Context, cmd ClosePayment) error {
	s, err := h.sessions.Get(ctx, cmd.SessionID)
	if err != nil {
		return err
	}

	var closed *payment.PaymentClosed
	_ = s.Do(func(st *session.State) error {
		st.Cart.ClosePayment()
		a := st.Payment
		if a == nil {
			return nil
		}
		final := a.Status
		cleared := final == payment.StatusSuccess
		if cleared {
			st.Cart.Clear()
		}
		a.Close()
		st.Payment = nil
		closed = &payment.PaymentClosed{
			SessionID:   s.ID,
			AttemptID:   a.ID,
			FinalStatus: final,
			CartCleared: cleared,
			ClosedAt:    time.Now(),
		}
		return nil
	})

	if closed != nil {
		h.record(ctx, closed.AttemptID, payment.AggregateType, payment.EventPaymentClosed, closed)
		if closed.CartCleared {
			h.record(ctx, s.ID, cart.AggregateType, cart.EventCartCleared, cart.CartCleared{
				SessionID: s.ID,
				ClearedAt: closed.ClosedAt,
			})
		}
	}
	h.save(ctx, s)
	return nil
}

// cartLocked reports whether the cart is what a processing or settled attempt
// charges for. It stays locked until the payment dialog is closed.
func cartLocked(st *session.State) bool {
	if st.Payment == nil {
		return false
	}
	return st.Payment.Status == payment.StatusProcessing || st.Payment.Status == payment.StatusSuccess
}

// Wait blocks until every scheduled payment resolution has run
func (h *Handler) Wait() {
	h.pending.Wait()
}

// record appends to the journal. Journal failures never fail the command.
func (h *Handler) record(ctx context.Context, aggregateID, aggregateType, eventType string, data any) {
	if _, err := h.events.Append(ctx, aggregateID, aggregateType, eventType, data); err != nil {
		h.log.Warn().Err(err).Str("aggregate_id", aggregateID).Str("event", eventType).Msg("journal append failed")
	}
}

// save must not be called from inside Session.Do.
func (h *Handler) save(ctx context.Context, s *session.Session) {
	if err := h.sessions.Save(ctx, s); err != nil {
		h.log.Warn().Err(err).Str("session_id", s.ID).Msg("session snapshot failed")
	}
}

func orderLines(items []cart.LineItem) []payment.OrderLine {
	lines := make([]payment.OrderLine, len(items))
	for i, item := range items {
		lines[i] = payment.OrderLine{
			ProductID:     item.Product.ID,
			Name:          item.Product.Name,
			Kg:            item.Kg,
			PricePerKg:    item.Product.PricePerKg,
			TransportCost: item.TransportCost(),
		}
	}
	return lines
}
