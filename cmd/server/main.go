package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/stockroom/internal/handler"
	"github.com/aryan0dhankhar/stockroom/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/stockroom/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/stockroom/internal/notify"
	"github.com/aryan0dhankhar/stockroom/internal/observability/metrics"
	"github.com/aryan0dhankhar/stockroom/internal/observability/tracing"
	"github.com/aryan0dhankhar/stockroom/internal/repository"
	"github.com/aryan0dhankhar/stockroom/internal/security"
	"github.com/aryan0dhankhar/stockroom/internal/security/audit"
	"github.com/aryan0dhankhar/stockroom/internal/security/auth"
	"github.com/aryan0dhankhar/stockroom/internal/security/middleware"
	"github.com/aryan0dhankhar/stockroom/internal/security/ratelimit"
	"github.com/aryan0dhankhar/stockroom/internal/service"
	"github.com/aryan0dhankhar/stockroom/internal/worker"
	"github.com/aryan0dhankhar/stockroom/pkg/config"
	"github.com/aryan0dhankhar/stockroom/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting stockroom server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, cfg.Tracing, "stockroom", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Connect to Postgres
	pool, err := database.NewConnectionPool(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.ApplySchema {
		if err := pool.ApplySchema(ctx); err != nil {
			log.Error("failed to apply schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 4. Redis is optional; without it rate limits are per process
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redis.NewClient(cfg.Redis.URL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	// 5. Initialize repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	productRepo := repository.NewPostgresProductRepository(db, log)
	inventoryRepo := repository.NewPostgresInventoryRepository(db, log)
	itemRepo := repository.NewPostgresItemRepository(db, log)

	// 6. Alert delivery: email plus websocket push, off the request path
	var mailer notify.Mailer = notify.NewLogMailer(log)
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Warn("SMTP_HOST not set, low-stock emails will only be logged")
	}
	hub := notify.NewHub(log)
	dispatcher := notify.NewDispatcher(
		notify.Fanout{notify.NewEmailNotifier(mailer, log), hub},
		cfg.Alerts.QueueSize,
		cfg.Alerts.SendTimeout,
		log,
	)

	// 7. Initialize services
	tokenManager, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error("failed to initialize token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	authz := security.NewAuthorizer(log)
	authService := service.NewAuthService(userRepo, tokenManager, log)
	productService := service.NewProductService(productRepo, authz, log)
	inventoryService := service.NewInventoryService(inventoryRepo, authz, log)
	itemService := service.NewItemService(itemRepo, productService, inventoryService, authz, dispatcher, log)

	// 8. Security components
	apiLocal := ratelimit.NewMemoryLimiter(cfg.Auth.RateLimitPerMin, time.Minute)
	defer apiLocal.Stop()
	loginLocal := ratelimit.NewMemoryLimiter(cfg.Auth.LoginLimitPerMin, time.Minute)
	defer loginLocal.Stop()
	apiLimiter := sharedLimiter(redisClient, "api", cfg.Auth.RateLimitPerMin, apiLocal, log)
	loginLimiter := sharedLimiter(redisClient, "login", cfg.Auth.LoginLimitPerMin, loginLocal, log)
	auditLogger := audit.NewLogger(log)

	// 9. Setup HTTP routes
	var redisCheck handler.Check
	if redisClient != nil {
		redisCheck = redisClient.Ping
	}
	mux := handler.NewRouter(handler.Routes{
		Auth:        handler.NewAuthHandler(authService, log),
		Products:    handler.NewProductHandler(productService, authService, log),
		Inventories: handler.NewInventoryHandler(inventoryService, itemService, authService, log),
		Items:       handler.NewItemHandler(itemService, authService, log),
		Alerts:      handler.NewAlertsHandler(hub, authService, cfg.CORSAllowedOrigins, log),
		Health:      handler.NewHealthHandler(pool.Health, redisCheck, log),
		Metrics:     promhttp.Handler(),
		LoginGuard:  middleware.RateLimitMiddleware(loginLimiter, log),
	})

	// Chain middleware, outermost first: tracing -> request ID -> CORS ->
	// sanitize -> JWT -> rate limit -> audit -> content type -> metrics.
	// Audit and metrics read the matched route, so nothing between them
	// and the mux may replace the request.
	var root http.Handler = metrics.HTTPMetricsMiddleware(mux)
	root = middleware.ValidateJSONContentType(log)(root)
	root = middleware.AuditMiddleware(auditLogger)(root)
	root = middleware.RateLimitMiddleware(apiLimiter, log)(root)
	root = middleware.JWTMiddleware(tokenManager, log)(root)
	root = middleware.SanitizeInputs(log)(root)
	root = middleware.CORS(cfg.CORSAllowedOrigins)(root)
	root = middleware.RequestID(log)(root)
	root = otelhttp.NewHandler(root, "stockroom.http")

	// 10. Start background workers
	go dispatcher.Run(ctx)
	go worker.NewLowStockSweeper(itemRepo, log, cfg.Alerts.SweepInterval).Start(ctx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Int("rate_limit_per_minute", cfg.Auth.RateLimitPerMin),
		slog.Bool("shared_rate_limit", redisClient != nil),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	// Stops the workers and closes websocket subscriptions; the dispatcher
	// flushes queued alerts before returning.
	cancel()
	select {
	case <-dispatcher.Done():
	case <-shutdownCtx.Done():
		log.Warn("alert dispatcher did not drain in time")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// sharedLimiter puts Redis in front of the local limiter so every replica
// shares one window. Without Redis the local limiter is used directly.
func sharedLimiter(client *redis.Client, prefix string, perMinute int, local ratelimit.Limiter, log *slog.Logger) ratelimit.Limiter {
	if client == nil {
		return local
	}
	return ratelimit.NewRedisLimiter(client, "ratelimit:"+prefix, perMinute, time.Minute, local, log)
}
