package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/availability"
	"github.com/hackgods/practitioner-scheduling/internal/calendar"
	"github.com/hackgods/practitioner-scheduling/internal/config"
	"github.com/hackgods/practitioner-scheduling/internal/db"
	"github.com/hackgods/practitioner-scheduling/internal/logger"
)

var specialties = []string{
	"Psychiatry",
	"Clinical Psychology",
	"Child Psychiatry",
	"Addiction Medicine",
	"Geriatric Psychiatry",
	"Neuropsychiatry",
	"General Practice",
}

func main() {
	practitioners := flag.Int("practitioners", 100, "number of practitioners to create")
	patients := flag.Int("patients", 9000, "number of patients to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("seed starting", zap.Int("practitioners", *practitioners), zap.Int("patients", *patients))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	if err := seedPractitioners(context.Background(), pool, faker, *practitioners, log); err != nil {
		log.Fatal("seed practitioners", zap.Error(err))
	}
	if err := seedPatients(context.Background(), pool, faker, *patients, log); err != nil {
		log.Fatal("seed patients", zap.Error(err))
	}

	log.Info("seed complete")
}

// seedPractitioners creates practitioners together with a random weekday window.
func seedPractitioners(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int, log *zap.Logger) error {
	log.Info("seeding practitioners", zap.Int("count", count))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	windows := availability.NewPgRepository(tx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + faker.Name()
		spec := specialties[faker.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO practitioners (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return err
		}

		a := randomWindow(faker, id)
		if err := a.Validate(); err != nil {
			return fmt.Errorf("generated window for %s: %w", id, err)
		}
		if _, err := windows.UpsertAvailability(ctx, a); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info("practitioners seeded")
	return nil
}

func randomWindow(faker *gofakeit.Faker, practitionerID uuid.UUID) availability.Availability {
	startHour := faker.Number(7, 10)
	startMinute := 30 * faker.Number(0, 1)
	length := time.Duration(faker.Number(4, 9)) * time.Hour

	start := calendar.MustClock(startHour, startMinute)

	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	faker.ShuffleAnySlice(weekdays)
	days := weekdays[:faker.Number(3, len(weekdays))]

	return availability.Availability{
		PractitionerID: practitionerID,
		Start:          start,
		End:            start.Add(length),
		WorkingDays:    days,
	}
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int, log *zap.Logger) error {
	log.Info("seeding patients", zap.Int("count", count))

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, uuid.New(), faker.Name(), faker.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Info("patients seeded", zap.Int("done", end), zap.Int("total", count))
	}

	return nil
}
