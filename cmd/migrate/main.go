package main

import (
	"database/sql"
	"errors"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/config"
	"github.com/hackgods/practitioner-scheduling/internal/logger"
	"github.com/hackgods/practitioner-scheduling/migrations"
)

// Usage: migrate [up | down | force <version>]
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

	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatal("ping db", zap.Error(err))
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("db driver", zap.Error(err))
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatal("source driver", zap.Error(err))
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		log.Fatal("create migrator", zap.Error(err))
	}
	defer func() { _, _ = m.Close() }()

	cmd := "up"
	if len(os.Args) >= 2 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "force":
		if len(os.Args) < 3 {
			log.Fatal("force requires a version")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal("invalid version", zap.Error(err))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("force version", zap.Error(err))
		}
		log.Info("forced migration version", zap.Int("version", version))
		return
	case "down":
		err = m.Down()
	case "up":
		err = m.Up()
	default:
		log.Fatal("unknown command", zap.String("command", cmd))
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("migrate", zap.String("command", cmd), zap.Error(err))
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Warn("read migration version", zap.Error(verr))
	}
	log.Info("migrations complete", zap.String("command", cmd), zap.Uint("version", version), zap.Bool("dirty", dirty))
}
