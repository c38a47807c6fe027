package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/httpapi"
	"github.com/xenking/order-entry/internal/notify"
	"github.com/xenking/order-entry/internal/storage/postgres"
	"github.com/xenking/order-entry/pkg/health"
	"github.com/xenking/order-entry/pkg/httpmiddleware"
)

// notifier is what the app needs from a confirmation dispatcher: the domain
// interface plus a Close for shutdown.
type notifier interface {
	order.Notifier
	Close() error
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Metrics, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Confirmation dispatch over NATS Streaming, optional.
	var events notifier = notify.Nop{}
	if cfg.NATS.URL != "" {
		n, err := notify.New(notify.Config{
			ClusterID: cfg.NATS.ClusterID,
			ClientID:  cfg.NATS.ClientID,
			URL:       cfg.NATS.URL,
			Subject:   cfg.NATS.Subject,
		})
		if err != nil {
			return errors.Wrap(err, "connect notifier")
		}
		events = n
		lg.Info("Confirmation events enabled",
			zap.String("url", cfg.NATS.URL), zap.String("subject", cfg.NATS.Subject))
	} else {
		lg.Warn("No NATS URL configured, order confirmations will not be published")
	}
	defer func() {
		if err := events.Close(); err != nil {
			lg.Error("Close notifier", zap.Error(err))
		}
	}()

	// Repositories and domain services.
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	taxRepo := postgres.NewTaxRepository(pool)
	fulfillment := postgres.NewFulfillmentService(pool)

	orderService := order.NewService(productRepo, customerRepo, fulfillment, taxRepo, events)

	// HTTP surface: health endpoints + API routes on one server.
	api := httpapi.NewHandler(productRepo, orderService)
	router := api.Router()
	router.HandleFunc("/livez", healthSvc.LiveEndpoint)
	router.HandleFunc("/readyz", healthSvc.ReadyEndpoint)

	instrumented := otelhttp.NewHandler(router, "order-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
