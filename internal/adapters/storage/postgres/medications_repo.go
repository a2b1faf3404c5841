package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"treatment-tracker/internal/domain/migration"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) CountByCycle(ctx context.Context, cycleID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM migrated_medications WHERE cycle_id = $1`, cycleID).Scan(&n)
	return n, err
}

// CreateBatch inserta todo el lote en una transacción.
func (r *MedicationsRepo) CreateBatch(ctx context.Context, cycleID string, meds []migration.Medication) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO migrated_medications (
			id, cycle_id, cycle_day, type,
			source, source_id,
			name, dosage, actual_dosage, time, refrigerated,
			start_day, end_day,
			taken, skipped, taken_at, notes,
			migrated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range meds {
		if m.CycleID != cycleID {
			return fmt.Errorf("medication %d belongs to cycle %s", i, m.CycleID)
		}
		if _, err := stmt.ExecContext(ctx,
			m.ID,
			m.CycleID,
			m.CycleDay,
			string(m.Type),
			string(m.Source),
			m.SourceID,
			m.Name,
			m.Dosage,
			m.ActualDosage,
			m.Time,
			m.Refrigerated,
			m.StartDay,
			m.EndDay,
			m.Taken,
			m.Skipped,
			toNullTime(m.TakenAt),
			m.Notes,
			m.MigratedAt,
		); err != nil {
			return fmt.Errorf("insert medication %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *MedicationsRepo) ListByCycle(ctx context.Context, cycleID string) ([]migration.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, cycle_id, cycle_day, type,
			source, source_id,
			name, dosage, actual_dosage, time, refrigerated,
			start_day, end_day,
			taken, skipped, taken_at, notes,
			migrated_at
		FROM migrated_medications
		WHERE cycle_id = $1
		ORDER BY cycle_day ASC, time ASC, id ASC
	`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]migration.Medication, 0)
	for rows.Next() {
		var (
			m           migration.Medication
			typ, source string
			takenAt     sql.NullTime
		)
		if err := rows.Scan(
			&m.ID,
			&m.CycleID,
			&m.CycleDay,
			&typ,
			&source,
			&m.SourceID,
			&m.Name,
			&m.Dosage,
			&m.ActualDosage,
			&m.Time,
			&m.Refrigerated,
			&m.StartDay,
			&m.EndDay,
			&m.Taken,
			&m.Skipped,
			&takenAt,
			&m.Notes,
			&m.MigratedAt,
		); err != nil {
			return nil, err
		}
		m.Type = migration.MedicationType(typ)
		m.Source = migration.LegacyKind(source)
		m.TakenAt = fromNullTime(takenAt)
		out = append(out, m)
	}
	return out, rows.Err()
}
