package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/appointment"
	"github.com/hackgods/practitioner-scheduling/internal/availability"
	"github.com/hackgods/practitioner-scheduling/internal/config"
	"github.com/hackgods/practitioner-scheduling/internal/db"
	"github.com/hackgods/practitioner-scheduling/internal/logger"
	redisclient "github.com/hackgods/practitioner-scheduling/internal/redis"
)

// overdue-worker periodically reports scheduled appointments whose day has
// passed. It never changes their status; completion is recorded elsewhere.
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

	log.Info("overdue-worker starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.WorkerInterval),
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

	svc := appointment.NewService(
		appointment.NewPgRepository(pgPool),
		availability.NewPgRepository(pgPool),
		redisclient.NoopLocker{},
		log.Named("appointment"),
	)

	// Run once at startup
	runOnce(rootCtx, svc, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("shutdown signal received, stopping overdue worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, log)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, log *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	overdue, err := svc.OverdueScheduled(runCtx)
	if err != nil {
		log.Error("overdue run error", zap.Error(err))
		return
	}

	for _, a := range overdue {
		log.Warn("appointment still scheduled after its day",
			zap.String("appointment_id", a.ID.String()),
			zap.String("practitioner_id", a.PractitionerID.String()),
			zap.String("date", a.Date.String()),
			zap.String("time_slot", a.TimeSlot),
		)
	}
	log.Info("overdue run complete",
		zap.Int("overdue", len(overdue)),
		zap.Duration("took", time.Since(start)),
	)
}
