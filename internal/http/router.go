package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/marketvest/internal/auth"
	"github.com/MrJamesThe3rd/marketvest/internal/http/checkout"
	"github.com/MrJamesThe3rd/marketvest/internal/http/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/http/export"
	"github.com/MrJamesThe3rd/marketvest/internal/http/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/http/matching"
	"github.com/MrJamesThe3rd/marketvest/internal/http/order"
	"github.com/MrJamesThe3rd/marketvest/internal/http/payment"
	"github.com/MrJamesThe3rd/marketvest/internal/http/respond"
	"github.com/MrJamesThe3rd/marketvest/internal/http/settlement"
	"github.com/MrJamesThe3rd/marketvest/internal/http/wallet"
)

type Handlers struct {
	Checkout    *checkout.Handler
	Payments    *payment.Handler
	Orders      *order.Handler
	Wallet      *wallet.Handler
	Export      *export.Handler
	Investments *investment.Handler
	Settlements *settlement.Handler
	Deposits    *deposit.Handler
	Mappings    *matching.Handler
}

type Options struct {
	Verifier       *auth.Verifier
	CallbackToken  string
	AllowedOrigins []string
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/payments/callback", h.Payments.CallbackRoutes)

		r.Route("/payments/webhook", func(r chi.Router) {
			r.Use(auth.CallbackToken(opts.CallbackToken))
			h.Payments.WebhookRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.Verifier))

			r.Route("/checkout", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Checkout.Routes(r)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Payments.Routes(r)
			})

			r.Route("/orders", h.Orders.Routes)

			r.Route("/wallet", func(r chi.Router) {
				h.Wallet.Routes(r)
				r.Route("/export", h.Export.Routes)
			})

			r.Route("/investments", h.Investments.Routes)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Route("/investments", h.Investments.AdminRoutes)
				r.Route("/settlements", h.Settlements.Routes)
				r.Route("/payments", h.Payments.AdminRoutes)
				r.Route("/orders", h.Orders.AdminRoutes)

				r.Route("/wallets", func(r chi.Router) {
					h.Wallet.AdminRoutes(r)
					h.Export.AdminRoutes(r)
				})

				r.Route("/deposits", func(r chi.Router) {
					h.Deposits.Routes(r)
					r.Route("/mappings", h.Mappings.Routes)
				})
			})
		})
	})

	return router
}
