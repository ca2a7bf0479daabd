package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/agro-storefront/internal/domain/cart"
	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/example/agro-storefront/internal/infrastructure/store/mocks"
	"github.com/example/agro-storefront/internal/session"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler   *Handler
	events    *mocks.MockEventStore
	sessions  *session.Manager
	sessionID string
}

func newFixture(t *testing.T, decide payment.Decider) *fixture {
	t.Helper()
	return newDelayedFixture(t, decide, 0)
}

func newDelayedFixture(t *testing.T, decide payment.Decider, delay time.Duration) *fixture {
	t.Helper()
	events := mocks.NewMockEventStore()
	sessions := session.NewManager(nil, time.Hour, zerolog.Nop())
	processor := payment.NewProcessor(delay, 1, payment.WithDecider(decide))
	handler := NewHandler(sessions, product.NewCatalog(product.Seed()), events, processor, zerolog.Nop())

	s, err := handler.CreateSession(context.Background())
	require.NoError(t, err)
	return &fixture{handler: handler, events: events, sessions: sessions, sessionID: s.ID}
}

func (f *fixture) state(t *testing.T, fn func(st *session.State)) {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), f.sessionID)
	require.NoError(t, err)
	_ = s.Do(func(st *session.State) error {
		fn(st)
		return nil
	})
}

func (f *fixture) add(t *testing.T, productID, kg string) {
	t.Helper()
	require.NoError(t, f.handler.AddToCart(context.Background(), AddToCart{
		SessionID: f.sessionID,
		ProductID: productID,
		Kg:        decimal.RequireFromString(kg),
	}))
}

func (f *fixture) notices(t *testing.T) []string {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), f.sessionID)
	require.NoError(t, err)
	var titles []string
	for _, n := range s.Notices().Drain() {
		titles = append(titles, n.Title)
	}
	return titles
}

func ptr(s string) *string { return &s }

func (f *fixture) fillCard(t *testing.T) {
	t.Helper()
	require.NoError(t, f.handler.UpdateCard(context.Background(), UpdateCard{
		SessionID: f.sessionID,
		Number:    ptr("4532123456789010"),
		Holder:    ptr("juan perez"),
		Expiry:    ptr("1229"),
		CVV:       ptr("123"),
	}))
}

// ============================================
// Cart Tests
// ============================================

func TestHandler_AddToCart(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())

	f.add(t, "1", "2")
	f.add(t, "1", "0.5")

	f.state(t, func(st *session.State) {
		item, ok := st.Cart.Item("1")
		require.True(t, ok)
		assert.Equal(t, "2.5", item.Kg.String())
		assert.True(t, st.Cart.CartOpen())
	})
	assert.Equal(t, []string{"Producto Añadido", "Producto Añadido"}, f.notices(t))
	assert.Equal(t, []string{cart.EventItemAdded, cart.EventItemAdded}, f.events.EventTypes())
}

func TestHandler_AddToCart_ClampsQuantity(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())

	f.add(t, "1", "0")
	f.add(t, "2", "250")

	f.state(t, func(st *session.State) {
		low, _ := st.Cart.Item("1")
		high, _ := st.Cart.Item("2")
		assert.Equal(t, "0.5", low.Kg.String())
		assert.Equal(t, "100", high.Kg.String())
	})
}

func TestHandler_AddToCart_UnknownProduct(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())

	err := f.handler.AddToCart(context.Background(), AddToCart{SessionID: f.sessionID, ProductID: "404", Kg: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Empty(t, f.events.Calls())
}

func TestHandler_UnknownSession(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()

	err := f.handler.AddToCart(ctx, AddToCart{SessionID: "nope", ProductID: "1", Kg: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	err = f.handler.Checkout(ctx, Checkout{SessionID: "nope"})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestHandler_UpdateQuantity(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "3", "2")

	require.NoError(t, f.handler.UpdateQuantity(ctx, UpdateQuantity{SessionID: f.sessionID, ProductID: "3", Kg: decimal.RequireFromString("0.2")}))

	f.state(t, func(st *session.State) {
		item, _ := st.Cart.Item("3")
		assert.Equal(t, "0.5", item.Kg.String())
	})
	assert.Equal(t, []string{cart.EventItemAdded, cart.EventQuantityUpdated}, f.events.EventTypes())
}

func TestHandler_UpdateQuantity_Step(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "3", "1")

	require.NoError(t, f.handler.UpdateQuantity(ctx, UpdateQuantity{SessionID: f.sessionID, ProductID: "3", Step: 1}))
	f.state(t, func(st *session.State) {
		item, _ := st.Cart.Item("3")
		assert.Equal(t, "1.5", item.Kg.String())
	})

	require.NoError(t, f.handler.UpdateQuantity(ctx, UpdateQuantity{SessionID: f.sessionID, ProductID: "3", Step: -4}))
	f.state(t, func(st *session.State) {
		item, _ := st.Cart.Item("3")
		assert.Equal(t, "0.5", item.Kg.String())
	})
}

func TestHandler_UpdateAndRemove_UnknownLineIsNoOp(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "3", "2")

	require.NoError(t, f.handler.UpdateQuantity(ctx, UpdateQuantity{SessionID: f.sessionID, ProductID: "9", Kg: decimal.NewFromInt(4)}))
	require.NoError(t, f.handler.RemoveFromCart(ctx, RemoveFromCart{SessionID: f.sessionID, ProductID: "9"}))

	f.state(t, func(st *session.State) {
		assert.Equal(t, 1, st.Cart.LineCount())
		assert.Equal(t, "34", st.Cart.Total().String())
	})
	assert.Equal(t, []string{cart.EventItemAdded}, f.events.EventTypes())
}

func TestHandler_RemoveAndClear(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "1", "1")
	f.add(t, "2", "1")

	require.NoError(t, f.handler.RemoveFromCart(ctx, RemoveFromCart{SessionID: f.sessionID, ProductID: "1"}))
	f.state(t, func(st *session.State) { assert.Equal(t, 1, st.Cart.LineCount()) })

	require.NoError(t, f.handler.ClearCart(ctx, ClearCart{SessionID: f.sessionID}))
	f.state(t, func(st *session.State) { assert.True(t, st.Cart.IsEmpty()) })
}

func TestHandler_SetCartOpen(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	f.add(t, "1", "1")

	require.NoError(t, f.handler.SetCartOpen(context.Background(), SetCartOpen{SessionID: f.sessionID, Open: false}))

	f.state(t, func(st *session.State) { assert.False(t, st.Cart.CartOpen()) })
}

// ============================================
// Checkout / Payment Tests
// ============================================

func TestHandler_Checkout_OpensAttempt(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	f.add(t, "1", "2")
	f.add(t, "3", "1")

	require.NoError(t, f.handler.Checkout(context.Background(), Checkout{SessionID: f.sessionID}))

	f.state(t, func(st *session.State) {
		assert.False(t, st.Cart.CartOpen())
		assert.True(t, st.Cart.PaymentOpen())
		require.NotNil(t, st.Payment)
		assert.Equal(t, payment.StatusIdle, st.Payment.Status)
		assert.Equal(t, payment.MethodCard, st.Payment.Method)
		assert.Equal(t, "19.4", st.Payment.Total.String())
		assert.True(t, st.Payment.TransportIncluded)
	})
	types := f.events.EventTypes()
	assert.Equal(t, []string{cart.EventCheckoutStarted, payment.EventPaymentOpened}, types[len(types)-2:])
}

func TestHandler_Checkout_KeepsRunningAttempt(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "1", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	var first string
	f.state(t, func(st *session.State) { first = st.Payment.ID })

	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))

	f.state(t, func(st *session.State) { assert.Equal(t, first, st.Payment.ID) })
}

func TestHandler_PaymentCommands_WithoutCheckout(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()

	assert.ErrorIs(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "wallet"}), ErrNoPayment)
	assert.ErrorIs(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}), ErrNoPayment)
	assert.ErrorIs(t, f.handler.RetryPayment(ctx, RetryPayment{SessionID: f.sessionID}), ErrNoPayment)
	assert.ErrorIs(t, f.handler.UpdateCard(ctx, UpdateCard{SessionID: f.sessionID, CVV: ptr("1")}), ErrNoPayment)
	assert.ErrorIs(t, f.handler.SetContactEmail(ctx, SetContactEmail{SessionID: f.sessionID, Email: "a@b.ec"}), ErrNoPayment)
	assert.NoError(t, f.handler.ClosePayment(ctx, ClosePayment{SessionID: f.sessionID}))
}

func TestHandler_SelectPaymentMethod(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "3", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))

	err := f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "cash"})
	assert.ErrorIs(t, err, payment.ErrMethodUnavailable)

	err = f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "bitcoin"})
	assert.ErrorIs(t, err, payment.ErrUnknownMethod)

	require.NoError(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "transfer"}))
	f.state(t, func(st *session.State) { assert.Equal(t, payment.MethodTransfer, st.Payment.Method) })
}

func TestHandler_SelectCash_AfterAddingTransportProduct(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "3", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	f.add(t, "1", "1")

	require.NoError(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "cash"}))
}

func TestHandler_SubmitPayment_NotReady(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "1", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))

	err := f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID})

	assert.ErrorIs(t, err, payment.ErrNotReady)
	f.state(t, func(st *session.State) { assert.Equal(t, payment.StatusIdle, st.Payment.Status) })
}

func TestHandler_SubmitPayment_CashLostTransport(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "1", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	require.NoError(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "cash"}))
	require.NoError(t, f.handler.RemoveFromCart(ctx, RemoveFromCart{SessionID: f.sessionID, ProductID: "1"}))
	f.add(t, "3", "1")

	err := f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID})

	assert.ErrorIs(t, err, payment.ErrNotReady)
}

func TestHandler_SubmitPayment_Success(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "1", "2")
	f.add(t, "3", "1")
	f.notices(t)
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	f.fillCard(t)
	require.NoError(t, f.handler.SetContactEmail(ctx, SetContactEmail{SessionID: f.sessionID, Email: "compras@pyme.ec"}))

	require.NoError(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}))
	f.handler.Wait()

	f.state(t, func(st *session.State) {
		assert.Equal(t, payment.StatusSuccess, st.Payment.Status)
		assert.Regexp(t, `^TX[A-Z0-9]{9}$`, st.Payment.TransactionID)
	})
	assert.Equal(t, []string{"¡Pago realizado exitosamente!"}, f.notices(t))

	calls := f.events.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, payment.EventPaymentSucceeded, last.EventType)
	succeeded, ok := last.Data.(payment.PaymentSucceeded)
	require.True(t, ok)
	assert.Equal(t, "19.4", succeeded.Total.String())
	assert.Equal(t, "compras@pyme.ec", succeeded.ContactEmail)
	assert.Equal(t, "visa", succeeded.CardBrand)
	assert.Equal(t, "9010", succeeded.CardLast4)
	require.Len(t, succeeded.Lines, 2)
	assert.Equal(t, "Café Arábigo", succeeded.Lines[1].Name)
	assert.Equal(t, "5", succeeded.Lines[1].TransportCost.String())
}

func TestHandler_SubmitPayment_DoubleSubmit(t *testing.T) {
	f := newDelayedFixture(t, payment.AlwaysSucceed(), 200*time.Millisecond)
	ctx := context.Background()
	f.add(t, "1", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	require.NoError(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "wallet"}))

	require.NoError(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}))
	err := f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID})
	f.handler.Wait()

	assert.ErrorIs(t, err, payment.ErrInvalidTransition)
	submitted := 0
	for _, et := range f.events.EventTypes() {
		if et == payment.EventPaymentSubmitted {
			submitted++
		}
	}
	assert.Equal(t, 1, submitted)
	f.state(t, func(st *session.State) { assert.Equal(t, payment.StatusSuccess, st.Payment.Status) })
}

func TestHandler_FailureThenRetry(t *testing.T) {
	f := newFixture(t, payment.AlwaysFail())
	ctx := context.Background()
	f.add(t, "1", "1")
	f.notices(t)
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	f.fillCard(t)

	require.NoError(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}))
	f.handler.Wait()

	f.state(t, func(st *session.State) {
		assert.Equal(t, payment.StatusError, st.Payment.Status)
		assert.Empty(t, st.Payment.TransactionID)
	})
	assert.Equal(t, []string{"Error al procesar el pago"}, f.notices(t))

	require.NoError(t, f.handler.RetryPayment(ctx, RetryPayment{SessionID: f.sessionID}))
	f.state(t, func(st *session.State) {
		assert.Equal(t, payment.StatusIdle, st.Payment.Status)
		assert.Equal(t, "4532 1234 5678 9010", st.Payment.Card.Number)
		assert.True(t, st.Payment.Ready())
	})
	assert.Contains(t, f.events.EventTypes(), payment.EventPaymentRetried)
}

func TestHandler_ClosePayment_AfterSuccessClearsCart(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "1", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	require.NoError(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "transfer"}))
	require.NoError(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}))
	f.handler.Wait()

	require.NoError(t, f.handler.ClosePayment(ctx, ClosePayment{SessionID: f.sessionID}))

	f.state(t, func(st *session.State) {
		assert.True(t, st.Cart.IsEmpty())
		assert.False(t, st.Cart.PaymentOpen())
		assert.Nil(t, st.Payment)
	})
	types := f.events.EventTypes()
	assert.Equal(t, []string{payment.EventPaymentClosed, cart.EventCartCleared}, types[len(types)-2:])
}

func TestHandler_CartLockedWhilePaying(t *testing.T) {
	f := newDelayedFixture(t, payment.AlwaysSucceed(), 50*time.Millisecond)
	ctx := context.Background()
	f.add(t, "1", "2")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	f.fillCard(t)
	require.NoError(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}))

	mutations := map[string]func() error{
		"add": func() error {
			return f.handler.AddToCart(ctx, AddToCart{SessionID: f.sessionID, ProductID: "3", Kg: decimal.NewFromInt(1)})
		},
		"update": func() error {
			return f.handler.UpdateQuantity(ctx, UpdateQuantity{SessionID: f.sessionID, ProductID: "1", Kg: decimal.NewFromInt(5)})
		},
		"remove": func() error {
			return f.handler.RemoveFromCart(ctx, RemoveFromCart{SessionID: f.sessionID, ProductID: "1"})
		},
		"clear": func() error {
			return f.handler.ClearCart(ctx, ClearCart{SessionID: f.sessionID})
		},
	}

	for name, mutate := range mutations {
		assert.ErrorIs(t, mutate(), ErrCartLocked, "processing: %s", name)
	}
	f.handler.Wait()
	for name, mutate := range mutations {
		assert.ErrorIs(t, mutate(), ErrCartLocked, "success: %s", name)
	}

	var paid payment.PaymentSucceeded
	for _, call := range f.events.Calls() {
		if call.EventType == payment.EventPaymentSucceeded {
			paid = call.Data.(payment.PaymentSucceeded)
		}
	}
	require.Len(t, paid.Lines, 1)
	assert.Equal(t, "1", paid.Lines[0].ProductID)
	assert.Equal(t, "2", paid.Lines[0].Kg.String())
	assert.Equal(t, "2.4", paid.Total.String())

	// Closing unlocks the cart again
	require.NoError(t, f.handler.ClosePayment(ctx, ClosePayment{SessionID: f.sessionID}))
	f.add(t, "3", "1")
	f.state(t, func(st *session.State) {
		assert.Equal(t, 1, st.Cart.LineCount())
	})
}

func TestHandler_CartUnlockedAfterFailure(t *testing.T) {
	f := newFixture(t, payment.AlwaysFail())
	ctx := context.Background()
	f.add(t, "1", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	require.NoError(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "wallet"}))
	require.NoError(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}))
	f.handler.Wait()

	f.add(t, "3", "1")

	f.state(t, func(st *session.State) {
		assert.Equal(t, payment.StatusError, st.Payment.Status)
		assert.Equal(t, 2, st.Cart.LineCount())
	})
}

func TestHandler_ClosePayment_CancelKeepsCart(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	ctx := context.Background()
	f.add(t, "1", "1")
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	f.fillCard(t)

	require.NoError(t, f.handler.ClosePayment(ctx, ClosePayment{SessionID: f.sessionID}))

	f.state(t, func(st *session.State) {
		assert.Equal(t, 1, st.Cart.LineCount())
		assert.Nil(t, st.Payment)
	})

	// A new checkout starts from a blank form
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	f.state(t, func(st *session.State) {
		assert.Equal(t, payment.Card{}, st.Payment.Card)
		assert.Equal(t, payment.StatusIdle, st.Payment.Status)
	})
}

func TestHandler_ClosePayment_WhileProcessingDropsOutcome(t *testing.T) {
	f := newDelayedFixture(t, payment.AlwaysSucceed(), 100*time.Millisecond)
	ctx := context.Background()
	f.add(t, "1", "1")
	f.notices(t)
	require.NoError(t, f.handler.Checkout(ctx, Checkout{SessionID: f.sessionID}))
	require.NoError(t, f.handler.SelectPaymentMethod(ctx, SelectPaymentMethod{SessionID: f.sessionID, Method: "wallet"}))
	require.NoError(t, f.handler.SubmitPayment(ctx, SubmitPayment{SessionID: f.sessionID}))

	require.NoError(t, f.handler.ClosePayment(ctx, ClosePayment{SessionID: f.sessionID}))
	f.handler.Wait()

	f.state(t, func(st *session.State) {
		assert.Nil(t, st.Payment)
		assert.Equal(t, 1, st.Cart.LineCount())
	})
	assert.Empty(t, f.notices(t))
	assert.NotContains(t, f.events.EventTypes(), payment.EventPaymentSucceeded)
	assert.NotContains(t, f.events.EventTypes(), payment.EventPaymentFailed)
}

func TestHandler_JournalFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture(t, payment.AlwaysSucceed())
	f.events.SetAppendErr(errors.New("journal down"))

	f.add(t, "1", "1")

	f.state(t, func(st *session.State) { assert.Equal(t, 1, st.Cart.LineCount()) })
}
