package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/api"
	"github.com/hackgods/practitioner-scheduling/internal/appointment"
	"github.com/hackgods/practitioner-scheduling/internal/availability"
	"github.com/hackgods/practitioner-scheduling/internal/config"
	"github.com/hackgods/practitioner-scheduling/internal/db"
	"github.com/hackgods/practitioner-scheduling/internal/logger"
	"github.com/hackgods/practitioner-scheduling/internal/messaging"
	"github.com/hackgods/practitioner-scheduling/internal/metrics"
	redisclient "github.com/hackgods/practitioner-scheduling/internal/redis"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	cancelPg()
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("error closing redis", zap.Error(err))
		}
	}()
	log.Info("connected to Redis")

	availRepo := availability.NewPgRepository(pgPool)
	availSvc := availability.NewService(availRepo, log.Named("availability"))

	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL, cfg.LockWait)
	apptSvc := appointment.NewService(
		appointment.NewPgRepository(pgPool),
		availRepo,
		locker,
		log.Named("appointment"),
		appointment.WithMetrics(metrics.NewBookingMetrics(prometheus.DefaultRegisterer)),
	)

	msgSvc := messaging.NewService(
		messaging.NewPgRepository(pgPool),
		log.Named("messaging"),
		metrics.NewMessagingMetrics(prometheus.DefaultRegisterer),
	)

	handler := api.NewRouter(api.RouterConfig{
		Availability:       availSvc,
		Appointments:       apptSvc,
		Messaging:          msgSvc,
		Health:             api.NewHealthHandler(pgPool, api.RedisPinger(rdb), cfg.Env, version),
		Logger:             log.Named("http"),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := newHTTPServer(rootCtx, cfg.HTTPPort, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	log.Info("api-server stopped")
}

// newHTTPServer builds the API server. Request contexts keep the values of
// ctx but not its cancellation, so a shutdown signal lets in-flight requests
// finish while Shutdown drains them.
func newHTTPServer(ctx context.Context, port string, handler http.Handler) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}
