package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/practitioner-scheduling/internal/calendar"
	"github.com/hackgods/practitioner-scheduling/internal/config"
	"github.com/hackgods/practitioner-scheduling/internal/db"
	"github.com/hackgods/practitioner-scheduling/internal/logger"
)

// simulate drives the HTTP API with concurrent bookings against a small set of
// hot slots, then checks Postgres for double bookings.

type SimConfig struct {
	APIBaseURL        string
	Duration          time.Duration
	Workers           int
	BookingRatio      float64
	CancelRatio       float64
	PatientLimit      int
	PractitionerLimit int
	HotTargets        int
	Days              int
}

// target is one bookable (practitioner, day, slot) coordinate.
type target struct {
	PractitionerID uuid.UUID
	Date           calendar.Date
	TimeSlot       string
}

type booked struct {
	ID        uuid.UUID
	PatientID uuid.UUID
}

type DataPool struct {
	Patients      []uuid.UUID
	Practitioners []uuid.UUID
	Targets       []target

	mu     sync.Mutex
	booked []booked
}

func (dp *DataPool) addBooked(b booked) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.booked = append(dp.booked, b)
}

// takeBooked removes and returns a random booked appointment.
func (dp *DataPool) takeBooked(rng *rand.Rand) (booked, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.booked) == 0 {
		return booked{}, false
	}
	i := rng.IntN(len(dp.booked))
	b := dp.booked[i]
	dp.booked[i] = dp.booked[len(dp.booked)-1]
	dp.booked = dp.booked[:len(dp.booked)-1]
	return b, true
}

type Simulator struct {
	cfg    SimConfig
	pool   *DataPool
	client *http.Client
	log    *zap.Logger
	stats  Stats
}

func main() {
	base, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(base.LogLevel, base.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatal("invalid simulator config", zap.Error(err))
	}

	log.Info("simulator starting",
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Float64("booking_ratio", cfg.BookingRatio),
		zap.Float64("cancel_ratio", cfg.CancelRatio),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, base.PostgresDSN, 4)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pgPool.Close()

	sim := &Simulator{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	sim.pool, err = loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatal("load data pool", zap.Error(err))
	}
	if err := sim.discoverTargets(ctx); err != nil {
		log.Fatal("discover slots", zap.Error(err))
	}

	log.Info("data loaded",
		zap.Int("patients", len(sim.pool.Patients)),
		zap.Int("practitioners", len(sim.pool.Practitioners)),
		zap.Int("hot_targets", len(sim.pool.Targets)),
	)

	sim.Run()

	checkCtx, cancelCheck := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelCheck()
	duplicates, err := countDoubleBookings(checkCtx, pgPool)
	if err != nil {
		log.Error("double-booking check failed", zap.Error(err))
		duplicates = -1
	}

	sim.stats.Print(cfg.Duration, cfg.Workers, duplicates)
	if duplicates > 0 {
		os.Exit(1)
	}
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:        getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:          getDuration("SIM_DURATION", 30*time.Second),
		Workers:           getInt("SIM_WORKERS", 20),
		BookingRatio:      getFloat("SIM_BOOKING_RATIO", 0.6),
		CancelRatio:       getFloat("SIM_CANCEL_RATIO", 0.15),
		PatientLimit:      getInt("SIM_PATIENT_LIMIT", 4000),
		PractitionerLimit: getInt("SIM_PRACTITIONER_LIMIT", 10),
		HotTargets:        getInt("SIM_HOT_TARGETS", 25),
		Days:              getInt("SIM_DAYS", 7),
	}

	// Remaining share is reads.
	if total := cfg.BookingRatio + cfg.CancelRatio; total > 1 {
		cfg.BookingRatio /= total
		cfg.CancelRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.HotTargets <= 0 || cfg.Days <= 0 {
		return fmt.Errorf("SIM_HOT_TARGETS and SIM_DAYS must be > 0")
	}
	return nil
}

func loadIDs(ctx context.Context, pool *pgxpool.Pool, query string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	patients, err := loadIDs(ctx, pool, `SELECT id FROM patients LIMIT $1`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	practitioners, err := loadIDs(ctx, pool, `
		SELECT p.id FROM practitioners p
		JOIN availabilities a ON a.practitioner_id = p.id
		LIMIT $1
	`, cfg.PractitionerLimit)
	if err != nil {
		return nil, fmt.Errorf("load practitioners: %w", err)
	}

	if len(patients) == 0 {
		return nil, fmt.Errorf("no patients loaded")
	}
	if len(practitioners) == 0 {
		return nil, fmt.Errorf("no practitioners with availability loaded")
	}

	return &DataPool{Patients: patients, Practitioners: practitioners}, nil
}

// discoverTargets asks the API for free slots over the next few days and keeps
// a small set so workers contend on the same coordinates.
func (s *Simulator) discoverTargets(ctx context.Context) error {
	today := calendar.Today(time.Now())
	for _, practitionerID := range s.pool.Practitioners {
		for d := 1; d <= s.cfg.Days; d++ {
			date := today.AddDays(d)
			slots, err := s.freeSlots(ctx, practitionerID, date)
			if err != nil {
				return err
			}
			for _, label := range slots {
				s.pool.Targets = append(s.pool.Targets, target{PractitionerID: practitionerID, Date: date, TimeSlot: label})
				if len(s.pool.Targets) >= s.cfg.HotTargets {
					return nil
				}
			}
		}
	}
	if len(s.pool.Targets) == 0 {
		return fmt.Errorf("no free slots found in the next %d days", s.cfg.Days)
	}
	return nil
}

func (s *Simulator) freeSlots(ctx context.Context, practitionerID uuid.UUID, date calendar.Date) ([]string, error) {
	u := fmt.Sprintf("%s/practitioners/%s/slots?date=%s", s.cfg.APIBaseURL, practitionerID, url.QueryEscape(date.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET slots: status %d", resp.StatusCode)
	}
	var body struct {
		Slots []string `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Slots, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Duration)
	defer cancel()

	s.log.Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.cfg.BookingRatio:
			s.doBook(ctx, rng)
		case r < s.cfg.BookingRatio+s.cfg.CancelRatio:
			s.doCancel(ctx, rng)
		case rng.IntN(2) == 0:
			s.doSlots(ctx, rng)
		default:
			s.doListParty(ctx, rng)
		}
	}
}

// send issues the request and returns the status code, or 0 on transport error.
func (s *Simulator) send(ctx context.Context, method, path string, body any, out any) int {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.APIBaseURL+path, reader)
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func (s *Simulator) doBook(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.IntN(len(s.pool.Targets))]
	patientID := s.pool.Patients[rng.IntN(len(s.pool.Patients))]

	start := time.Now()
	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	status := s.send(ctx, http.MethodPost, "/appointments", map[string]string{
		"practitioner_id": t.PractitionerID.String(),
		"patient_id":      patientID.String(),
		"date":            t.Date.String(),
		"time_slot":       t.TimeSlot,
	}, &resp)
	latency := time.Since(start)

	if status == http.StatusCreated && resp.ID != uuid.Nil {
		s.pool.addBooked(booked{ID: resp.ID, PatientID: patientID})
	}
	s.stats.Book.Record(latency, status == http.StatusCreated, status == http.StatusConflict)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pool.takeBooked(rng)
	if !ok {
		return
	}

	start := time.Now()
	status := s.send(ctx, http.MethodPost, "/appointments/"+b.ID.String()+"/cancel",
		map[string]string{"requester_id": b.PatientID.String()}, nil)
	s.stats.Cancel.Record(time.Since(start), status == http.StatusOK, status == http.StatusConflict)
}

func (s *Simulator) doSlots(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.IntN(len(s.pool.Targets))]

	start := time.Now()
	status := s.send(ctx, http.MethodGet,
		fmt.Sprintf("/practitioners/%s/slots?date=%s", t.PractitionerID, t.Date), nil, nil)
	s.stats.Slots.Record(time.Since(start), status == http.StatusOK, false)
}

func (s *Simulator) doListParty(ctx context.Context, rng *rand.Rand) {
	patientID := s.pool.Patients[rng.IntN(len(s.pool.Patients))]

	start := time.Now()
	status := s.send(ctx, http.MethodGet,
		"/appointments?role=patient&party_id="+patientID.String(), nil, nil)
	s.stats.ListParty.Record(time.Since(start), status == http.StatusOK, false)
}

func countDoubleBookings(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `
		SELECT count(*) FROM (
			SELECT practitioner_id, date, time_slot
			FROM appointments
			WHERE status = 'scheduled'
			GROUP BY practitioner_id, date, time_slot
			HAVING count(*) > 1
		) dup
	`).Scan(&n)
	return n, err
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
