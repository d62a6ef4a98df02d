package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"brokergate/internal/gateway"
)

type RouterDeps struct {
	Gateway  *gateway.Handler
	WS       http.Handler
	APIToken string
	Log      zerolog.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Internal-Token"},
		AllowCredentials: false,
	}))
	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", d.Gateway.Health)
	r.Get("/ws", d.WS.ServeHTTP)

	// Read-only session queries.
	r.Get("/portfolio", d.Gateway.Portfolio)
	r.Get("/balance", d.Gateway.Balance)
	r.Get("/orders", d.Gateway.Orders)
	r.Get("/today_trades", d.Gateway.TodayTrades)

	// Session- and order-mutating operations; guarded by the static
	// internal token when one is configured.
	r.Group(func(r chi.Router) {
		if d.APIToken != "" {
			r.Use(InternalAuth(d.APIToken))
		}
		r.Post("/login", d.Gateway.Login)
		r.Get("/logout", d.Gateway.Logout)
		r.Post("/buy", d.Gateway.Buy)
		r.Post("/sell", d.Gateway.Sell)
		r.Post("/cancel", d.Gateway.Cancel)
	})

	return r
}
