package api

import (
	"net/http"

	"github.com/example/agro-storefront/internal/api/middleware"
	"github.com/example/agro-storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	Handlers *Handlers
	Tokens   *auth.SessionTokens
	Logger   zerolog.Logger

	// SubmitLimit bounds payment submissions per session
	SubmitLimit rate.Limit
	SubmitBurst int
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.Health)

	// Public
	r.Post("/sessions", h.CreateSession)
	r.Get("/products", h.SearchProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/sellers/{id}", h.GetSeller)

	// Session scoped
	submitLimiter := middleware.NewRateLimiter(cfg.SubmitLimit, cfg.SubmitBurst)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(cfg.Tokens))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Put("/view", h.SetCartView)
			r.Post("/items", h.AddToCart)
			r.Put("/items/{id}", h.UpdateQuantity)
			r.Delete("/items/{id}", h.RemoveFromCart)
		})

		r.Post("/checkout", h.Checkout)

		r.Route("/payment", func(r chi.Router) {
			r.Get("/", h.GetPayment)
			r.Put("/method", h.SelectPaymentMethod)
			r.Put("/card", h.UpdateCard)
			r.Put("/email", h.SetContactEmail)
			r.With(submitLimiter.Handler).Post("/submit", h.SubmitPayment)
			r.Post("/retry", h.RetryPayment)
			r.Post("/close", h.ClosePayment)
		})

		r.Get("/notifications", h.GetNotifications)
	})

	return otelhttp.NewHandler(r, "storefront-api")
}
