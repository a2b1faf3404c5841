package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"treatment-tracker/internal/domain/medications"
)

type PlansRepo struct {
	db *sql.DB
}

func NewPlansRepo(db *sql.DB) *PlansRepo {
	return &PlansRepo{db: db}
}

func (r *PlansRepo) GetPlan(ctx context.Context, cycleID string) (medications.RecurringPlan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT cycle_id, entries, created_at, updated_at
		FROM recurring_plans
		WHERE cycle_id = $1
	`, cycleID)

	var p medications.RecurringPlan
	var raw []byte
	if err := row.Scan(&p.CycleID, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.RecurringPlan{}, medications.ErrNotFound
		}
		return medications.RecurringPlan{}, err
	}

	var entries []entryJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return medications.RecurringPlan{}, err
	}
	p.Entries = fromEntriesJSON(entries)
	return p, nil
}

// SavePlan reemplaza el plan entero (upsert).
func (r *PlansRepo) SavePlan(ctx context.Context, p medications.RecurringPlan) error {
	raw, err := json.Marshal(toEntriesJSON(p.Entries))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recurring_plans (cycle_id, entries, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (cycle_id) DO UPDATE
		SET entries = EXCLUDED.entries, updated_at = EXCLUDED.updated_at
	`,
		p.CycleID,
		raw,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}
