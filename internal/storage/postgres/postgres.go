package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"studioBooker/internal/config"
	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/storage"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Storage struct {
	DB *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	return Open(connStr)
}

// Open connects using a ready DSN.
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// lockDays serialises writers touching the same calendar days until the
// transaction ends. Days are locked in ascending order.
func lockDays(ctx context.Context, tx *sql.Tx, days ...time.Time) error {
	keys := make([]int64, 0, len(days))
	seen := make(map[int64]bool, len(days))
	for _, d := range days {
		key := dayLockKey(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
			return fmt.Errorf("failed to lock day: %w", err)
		}
	}
	return nil
}

func dayLockKey(d time.Time) int64 {
	y, m, day := d.Date()
	return int64(y*10000 + int(m)*100 + day)
}

// mapWriteErr turns constraint violations into storage errors.
func mapWriteErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Constraint {
	case "bookings_no_overlap":
		return &storage.SlotTakenError{}
	case "reservations_no_overlap":
		return &storage.EquipmentTakenError{}
	}

	switch pqErr.Code.Name() {
	case "exclusion_violation":
		return &storage.SlotTakenError{}
	case "foreign_key_violation":
		return fmt.Errorf("%w: %s", storage.ErrNotFound, pqErr.Detail)
	}

	return err
}

func formatDate(d time.Time) string {
	return timeslot.FormatDate(d)
}

func parseClock(s string) (timeslot.Clock, error) {
	c, err := timeslot.ParseClock(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse stored time: %w", err)
	}
	return c, nil
}
