package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// daily_records no tiene índice único por (cycle_id, cycle_day): los
// duplicados se reconcilian en el servicio.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS cycles (
		id          TEXT PRIMARY KEY,
		label       TEXT NOT NULL DEFAULT '',
		start_date  DATE NOT NULL,
		logged_days JSONB NOT NULL DEFAULT '[]',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recurring_plans (
		cycle_id   TEXT PRIMARY KEY,
		entries    JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_records (
		id         TEXT PRIMARY KEY,
		cycle_id   TEXT NOT NULL,
		cycle_day  INTEGER NOT NULL,
		date       DATE NULL,
		adherence  JSONB NOT NULL DEFAULT '[]',
		one_time   JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_records_cycle_day ON daily_records (cycle_id, cycle_day)`,
	`CREATE TABLE IF NOT EXISTS migrated_medications (
		id            TEXT PRIMARY KEY,
		cycle_id      TEXT NOT NULL,
		cycle_day     INTEGER NOT NULL,
		type          TEXT NOT NULL,
		source        TEXT NOT NULL,
		source_id     TEXT NOT NULL,
		name          TEXT NOT NULL,
		dosage        TEXT NOT NULL,
		actual_dosage TEXT NOT NULL,
		time          TEXT NOT NULL,
		refrigerated  BOOLEAN NOT NULL DEFAULT FALSE,
		start_day     INTEGER NOT NULL DEFAULT 0,
		end_day       INTEGER NOT NULL DEFAULT 0,
		taken         BOOLEAN NOT NULL DEFAULT FALSE,
		skipped       BOOLEAN NOT NULL DEFAULT FALSE,
		taken_at      TIMESTAMPTZ NULL,
		notes         TEXT NOT NULL DEFAULT '',
		migrated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_migrated_medications_cycle ON migrated_medications (cycle_id, cycle_day)`,
}

// EnsureSchema crea las tablas si faltan. Es idempotente.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
