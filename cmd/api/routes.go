// AngelaMos | 2026
// routes.go

package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/bookheaven/internal/address"
	"github.com/carterperez-dev/bookheaven/internal/admin"
	"github.com/carterperez-dev/bookheaven/internal/auth"
	"github.com/carterperez-dev/bookheaven/internal/cart"
	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/contact"
	"github.com/carterperez-dev/bookheaven/internal/customer"
	"github.com/carterperez-dev/bookheaven/internal/health"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
	"github.com/carterperez-dev/bookheaven/internal/order"
	"github.com/carterperez-dev/bookheaven/internal/subscription"
	"github.com/carterperez-dev/bookheaven/internal/wishlist"
)

// routes carries everything mountRoutes needs so tests can build the same
// tree over in-memory stores.
type routes struct {
	config        *config.Config
	logger        *slog.Logger
	redis         *redis.Client
	httpMetrics   middleware.HTTPRecorder
	gatherer      prometheus.Gatherer
	jwt           *auth.JWTManager
	authenticator middleware.SessionAuthenticator

	health       *health.Handler
	admin        *admin.Handler
	auth         *auth.Handler
	customer     *customer.Handler
	catalog      *catalog.Handler
	cart         *cart.Handler
	address      *address.Handler
	wishlist     *wishlist.Handler
	subscription *subscription.Handler
	contact      *contact.Handler
	order        *order.Handler
}

func mountRoutes(router chi.Router, rt routes) {
	cfg := rt.config

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.httpMetrics != nil {
		router.Use(middleware.Metrics(rt.httpMetrics))
	}
	router.Use(middleware.NewRateLimiter(rt.redis, middleware.RateLimitConfig{
		Limit:      middleware.GlobalLimit(cfg.RateLimit),
		FailOpen:   true,
		BypassFunc: isHealthCheck,
	}).Handler)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	sensitive := middleware.NewRateLimiter(rt.redis, middleware.RateLimitConfig{
		Limit:    middleware.AuthLimit(cfg.RateLimit),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
	}).Handler

	authenticator := middleware.Authenticator(rt.authenticator, cfg.Auth.TokenHeader)

	rt.health.RegisterRoutes(router)
	if rt.gatherer != nil {
		router.Handle("/metrics", metrics.Handler(rt.gatherer))
	}
	router.Get("/.well-known/jwks.json", rt.jwt.JWKSHandler())

	router.Route("/customer", func(r chi.Router) {
		rt.auth.RegisterRoutes(r, authenticator, sensitive)
		rt.customer.RegisterRoutes(r, authenticator, sensitive)
	})

	router.Route("/api", func(r chi.Router) {
		rt.catalog.RegisterRoutes(r)
		rt.cart.RegisterRoutes(r, authenticator)
		rt.address.RegisterRoutes(r, authenticator)
		rt.wishlist.RegisterRoutes(r, authenticator)
		rt.subscription.RegisterRoutes(r)
		rt.contact.RegisterRoutes(r, sensitive)
	})

	router.Route("/order", func(r chi.Router) {
		rt.order.RegisterRoutes(r, authenticator)
	})

	rt.admin.RegisterRoutes(router, authenticator, middleware.RequireAdmin)
}

func isHealthCheck(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz", "/metrics":
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/.well-known/")
}
