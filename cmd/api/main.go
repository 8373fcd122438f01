// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carterperez-dev/bookheaven/internal/address"
	"github.com/carterperez-dev/bookheaven/internal/admin"
	"github.com/carterperez-dev/bookheaven/internal/auth"
	"github.com/carterperez-dev/bookheaven/internal/cart"
	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/contact"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/customer"
	"github.com/carterperez-dev/bookheaven/internal/events"
	"github.com/carterperez-dev/bookheaven/internal/health"
	"github.com/carterperez-dev/bookheaven/internal/mail"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
	"github.com/carterperez-dev/bookheaven/internal/order"
	"github.com/carterperez-dev/bookheaven/internal/server"
	"github.com/carterperez-dev/bookheaven/internal/subscription"
	"github.com/carterperez-dev/bookheaven/internal/wishlist"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}
	logger.Info("database connected",
		"name", cfg.Database.Name,
		"max_pool_size", cfg.Database.MaxPoolSize,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	mailer, err := mail.New(cfg.Mail, logger)
	if err != nil {
		return err
	}
	notifier, err := mail.NewNotifier(mailer, cfg.Mail,
		mail.WithTokenTTLs(cfg.Auth.VerificationTTL, cfg.Auth.ResetTTL),
		mail.WithMetrics(collector),
	)
	if err != nil {
		return err
	}
	logger.Info("mail configured", "provider", cfg.Mail.Provider)

	dispatcher := events.NewDispatcher()
	dispatcher.Handle(events.TypeOrderPlaced, notifier.HandleOrderPlaced)

	deps := []health.Dependency{
		{Name: "mongodb", Checker: db},
		{Name: "redis", Checker: redis},
	}

	var (
		publisher events.Publisher = events.NewInline(dispatcher, logger)
		broker    *events.Client
	)
	if cfg.Events.Enabled {
		broker, err = events.NewClient(cfg.Events, logger)
		if err != nil {
			return err
		}
		publisher = broker
		deps = append(deps, health.Dependency{Name: "rabbitmq", Checker: broker})

		go func() {
			if err := broker.Consume(ctx, dispatcher); err != nil {
				logger.Error("event consumer stopped", "error", err)
			}
		}()
		logger.Info("event broker connected", "queue", cfg.Events.Queue)
	}

	customerRepo := customer.NewRepository(db)
	authSvc := auth.NewService(
		customer.NewAccountStore(customerRepo),
		jwtManager,
		auth.WithMetrics(collector),
	)
	customerSvc := customer.NewService(
		customerRepo,
		authSvc,
		notifier,
		cfg.Auth,
		customer.WithMetrics(collector),
	)

	catalogSvc := catalog.NewService(catalog.NewRepository(db))
	cartSvc := cart.NewService(cart.NewRepository(db), catalogSvc, collector)
	addressSvc := address.NewService(address.NewRepository(db))
	orderSvc := order.NewService(
		order.NewRepository(db),
		cartSvc,
		addressSvc,
		publisher,
		collector,
	)

	sessions := auth.SessionWriter{Secure: cfg.IsProduction()}
	healthHandler := health.NewHandler(deps...)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	mountRoutes(srv.Router(), routes{
		config:        cfg,
		logger:        logger,
		redis:         redis.Client,
		httpMetrics:   collector,
		gatherer:      registry,
		jwt:           jwtManager,
		authenticator: authSvc,
		health:        healthHandler,
		admin:         admin.NewHandler(db, redis, customerSvc),
		auth:          auth.NewHandler(authSvc, sessions),
		customer:      customer.NewHandler(customerSvc, sessions, cfg.Auth.DebugEndpoints),
		catalog:       catalog.NewHandler(catalogSvc),
		cart:          cart.NewHandler(cartSvc),
		address:       address.NewHandler(addressSvc),
		wishlist:      wishlist.NewHandler(wishlist.NewService(wishlist.NewRepository(db), catalogSvc)),
		subscription: subscription.NewHandler(
			subscription.NewService(subscription.NewRepository(db), customerSvc),
		),
		contact: contact.NewHandler(contact.NewService(notifier, collector)),
		order:   order.NewHandler(orderSvc),
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if broker != nil {
		if err := broker.Close(); err != nil {
			logger.Error("event broker close error", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(shutdownCtx); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
