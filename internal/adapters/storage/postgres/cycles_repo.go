package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"treatment-tracker/internal/domain/cycles"
)

type CyclesRepo struct {
	db *sql.DB
}

func NewCyclesRepo(db *sql.DB) *CyclesRepo {
	return &CyclesRepo{db: db}
}

func (r *CyclesRepo) Create(ctx context.Context, c cycles.Cycle) error {
	days, err := json.Marshal(nonNilDays(c.LoggedDays))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cycles (id, label, start_date, logged_days, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		c.ID,
		c.Label,
		c.StartDate,
		days,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CyclesRepo) Update(ctx context.Context, c cycles.Cycle) error {
	days, err := json.Marshal(nonNilDays(c.LoggedDays))
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE cycles
		SET
			label = $2,
			start_date = $3,
			logged_days = $4,
			updated_at = $5
		WHERE id = $1
	`,
		c.ID,
		c.Label,
		c.StartDate,
		days,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cycles.ErrNotFound
	}
	return nil
}

func (r *CyclesRepo) GetByID(ctx context.Context, id string) (cycles.Cycle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cycles.Cycle{}, cycles.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, label, start_date, logged_days, created_at, updated_at
		FROM cycles
		WHERE id = $1
	`, id)

	var c cycles.Cycle
	var days []byte
	if err := row.Scan(&c.ID, &c.Label, &c.StartDate, &days, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cycles.Cycle{}, cycles.ErrNotFound
		}
		return cycles.Cycle{}, err
	}
	if err := json.Unmarshal(days, &c.LoggedDays); err != nil {
		return cycles.Cycle{}, err
	}
	return c, nil
}

func nonNilDays(d []int) []int {
	if d == nil {
		return []int{}
	}
	return d
}
