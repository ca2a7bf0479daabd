package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/agro-storefront/internal/api/middleware"
	"github.com/example/agro-storefront/internal/auth"
	"github.com/example/agro-storefront/internal/command"
	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/example/agro-storefront/internal/query"
	"github.com/example/agro-storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	tokens       *auth.SessionTokens
	log          zerolog.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, tokens *auth.SessionTokens, log zerolog.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		tokens:       tokens,
		log:          log,
	}
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Session Handlers

// CreateSession opens an anonymous buyer session and hands out its token,
// both in the body and as a cookie for browsers.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.cmdHandler.CreateSession(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(s.ID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, token, expiresAt)
	respondJSON(w, http.StatusCreated, SessionResponse{
		SessionID: s.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Product Handlers

func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.SearchProducts(r.URL.Query().Get("q")))
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.queryHandler.GetProduct(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) GetSeller(w http.ResponseWriter, r *http.Request) {
	seller, err := h.queryHandler.GetSeller(chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, seller)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var cmd command.AddToCart
	if !decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	if err := h.cmdHandler.AddToCart(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateQuantity
	if !decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())
	cmd.ProductID = chi.URLParam(r, "id")

	if err := h.cmdHandler.UpdateQuantity(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveFromCart{
		SessionID: middleware.GetSessionID(r.Context()),
		ProductID: chi.URLParam(r, "id"),
	}
	if err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.ClearCart{SessionID: middleware.GetSessionID(r.Context())}
	if err := h.cmdHandler.ClearCart(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) SetCartView(w http.ResponseWriter, r *http.Request) {
	var cmd command.SetCartOpen
	if !decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	if err := h.cmdHandler.SetCartOpen(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// Checkout Handlers

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	cmd := command.Checkout{SessionID: middleware.GetSessionID(r.Context())}
	if err := h.cmdHandler.Checkout(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondPayment(w, r, http.StatusOK)
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	h.respondPayment(w, r, http.StatusOK)
}

func (h *Handlers) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var cmd command.SelectPaymentMethod
	if !decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	if err := h.cmdHandler.SelectPaymentMethod(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondPayment(w, r, http.StatusOK)
}

func (h *Handlers) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateCard
	if !decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	if err := h.cmdHandler.UpdateCard(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondPayment(w, r, http.StatusOK)
}

func (h *Handlers) SetContactEmail(w http.ResponseWriter, r *http.Request) {
	var cmd command.SetContactEmail
	if !decode(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	if err := h.cmdHandler.SetContactEmail(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondPayment(w, r, http.StatusOK)
}

// SubmitPayment answers 202 with the attempt in processing; the outcome shows
// up later in GET /payment and GET /notifications.
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	cmd := command.SubmitPayment{SessionID: middleware.GetSessionID(r.Context())}
	if err := h.cmdHandler.SubmitPayment(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondPayment(w, r, http.StatusAccepted)
}

func (h *Handlers) RetryPayment(w http.ResponseWriter, r *http.Request) {
	cmd := command.RetryPayment{SessionID: middleware.GetSessionID(r.Context())}
	if err := h.cmdHandler.RetryPayment(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondPayment(w, r, http.StatusOK)
}

// ClosePayment returns the cart, which is empty after a successful payment.
func (h *Handlers) ClosePayment(w http.ResponseWriter, r *http.Request) {
	cmd := command.ClosePayment{SessionID: middleware.GetSessionID(r.Context())}
	if err := h.cmdHandler.ClosePayment(r.Context(), cmd); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// Notification Handlers

func (h *Handlers) GetNotifications(w http.ResponseWriter, r *http.Request) {
	notices, err := h.queryHandler.DrainNotices(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notices)
}

// Helpers

func (h *Handlers) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.queryHandler.GetCart(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, status, view)
}

func (h *Handlers) respondPayment(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.queryHandler.GetPayment(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, status, view)
}

// respondErr maps domain errors to status codes. Anything unmapped is logged
// and reported as a 500 without its message.
func (h *Handlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		message = "internal error"
	}
	respondError(w, message, status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, product.ErrSellerNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrInvalidTransition),
		errors.Is(err, payment.ErrNotEditable),
		errors.Is(err, command.ErrNoPayment),
		errors.Is(err, command.ErrCartLocked):
		return http.StatusConflict
	case errors.Is(err, payment.ErrNotReady),
		errors.Is(err, payment.ErrMethodUnavailable),
		errors.Is(err, payment.ErrInvalidEmail):
		return http.StatusUnprocessableEntity
	case errors.Is(err, payment.ErrUnknownMethod):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
