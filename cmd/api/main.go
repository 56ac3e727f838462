package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/seo-expert-api/internal/api/router"
	appconfig "github.com/wolfman30/seo-expert-api/internal/config"
	"github.com/wolfman30/seo-expert-api/internal/docstore"
	"github.com/wolfman30/seo-expert-api/internal/health"
	httpmiddleware "github.com/wolfman30/seo-expert-api/internal/http/middleware"
	"github.com/wolfman30/seo-expert-api/internal/leads"
	"github.com/wolfman30/seo-expert-api/internal/notify"
	"github.com/wolfman30/seo-expert-api/internal/observability/metrics"
	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting seo-expert-api server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsHandler, leadMetrics := setupMetrics()
	store := setupStore(ctx, cfg, leadMetrics, logger)
	limiter, closeLimiter := setupLeadLimiter(ctx, cfg, logger)
	defer closeLimiter()

	// Initialize handlers
	leadOpts := []leads.Option{
		leads.WithRecorder(leadMetrics),
		leads.WithLimits(cfg.LeadsDefaultLimit, cfg.LeadsMaxLimit),
	}
	if notifier := setupNotifier(cfg, logger); notifier != nil {
		leadOpts = append(leadOpts, leads.WithNotifier(notifier))
	}
	leadsHandler := leads.NewHandler(store, logger, leadOpts...)
	healthHandler := health.NewHandler(store, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		HealthHandler:      healthHandler,
		LeadsHandler:       leadsHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LeadLimiter:        limiter,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server...")
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := leadsHandler.Drain(shutdownCtx); err != nil {
		logger.Error("lead notifications still pending at shutdown", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("failed to close store", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg)
}

// setupStore never fails: without a reachable database the service still
// boots and /test reports the store as unavailable.
func setupStore(ctx context.Context, cfg *appconfig.Config, observer docstore.Observer, logger *logging.Logger) docstore.Store {
	if cfg.UseMemoryStore() {
		logger.Warn("using in-memory document store; leads are lost on restart")
		return docstore.NewMemoryStore()
	}

	client, err := docstore.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseConnectTimeout)
	if err != nil {
		logger.Error("document store unavailable", "error", err)
		return docstore.NewMongoStore(nil, cfg.DatabaseName, docstore.WithObserver(observer))
	}
	logger.Info("connected to document store", "database", cfg.DatabaseName)
	return docstore.NewMongoStore(client, cfg.DatabaseName, docstore.WithObserver(observer))
}

func setupLeadLimiter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (httpmiddleware.Limiter, func()) {
	if cfg.LeadRateLimitRPS <= 0 {
		logger.Info("lead rate limiting disabled")
		return nil, func() {}
	}

	if cfg.RedisAddr == "" {
		local := httpmiddleware.NewLocalLimiter(cfg.LeadRateLimitRPS, cfg.LeadRateLimitBurst)
		local.StartJanitor(ctx, 5*time.Minute)
		return local, func() {}
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	window := time.Minute
	limit := cfg.LeadRateLimitBurst + int(cfg.LeadRateLimitRPS*window.Seconds())
	logger.Info("lead rate limiting via redis", "addr", cfg.RedisAddr, "limit_per_minute", limit)
	return httpmiddleware.NewRedisLimiter(client, limit, window), func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
}

func setupNotifier(cfg *appconfig.Config, logger *logging.Logger) leads.Notifier {
	if cfg.LeadNotifyEmail == "" {
		return nil
	}

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("SENDGRID_API_KEY not set; lead notifications are logged only")
		sender = notify.NewStubEmailSender(logger)
	}

	if n := notify.NewLeadNotifier(sender, cfg.LeadNotifyEmail, logger); n != nil {
		return n
	}
	return nil
}
