package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"treatment-tracker/internal/domain/medications"
)

type AdherenceRepo struct {
	db *sql.DB
}

func NewAdherenceRepo(db *sql.DB) *AdherenceRepo {
	return &AdherenceRepo{db: db}
}

const selectRecord = `
	SELECT id, cycle_id, cycle_day, date, adherence, one_time, created_at, updated_at
	FROM daily_records
`

func (r *AdherenceRepo) Create(ctx context.Context, rec medications.DailyRecord) error {
	adherence, oneTime, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_records (
			id, cycle_id, cycle_day, date,
			adherence, one_time,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rec.ID,
		rec.CycleID,
		rec.CycleDay,
		toNullDate(rec.Date),
		adherence,
		oneTime,
		rec.CreatedAt,
		toNullTime(rec.UpdatedAt),
	)
	return err
}

func (r *AdherenceRepo) Update(ctx context.Context, rec medications.DailyRecord) error {
	adherence, oneTime, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE daily_records
		SET
			date = $2,
			adherence = $3,
			one_time = $4,
			updated_at = $5
		WHERE id = $1
	`,
		rec.ID,
		toNullDate(rec.Date),
		adherence,
		oneTime,
		toNullTime(rec.UpdatedAt),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *AdherenceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *AdherenceRepo) ListByDay(ctx context.Context, cycleID string, day int) ([]medications.DailyRecord, error) {
	return r.list(ctx, selectRecord+` WHERE cycle_id = $1 AND cycle_day = $2 ORDER BY created_at ASC, id ASC`, cycleID, day)
}

func (r *AdherenceRepo) ListByCycle(ctx context.Context, cycleID string) ([]medications.DailyRecord, error) {
	return r.list(ctx, selectRecord+` WHERE cycle_id = $1 ORDER BY cycle_day ASC, created_at ASC, id ASC`, cycleID)
}

func (r *AdherenceRepo) DuplicateKeys(ctx context.Context) ([]medications.DayKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cycle_id, cycle_day
		FROM daily_records
		GROUP BY cycle_id, cycle_day
		HAVING COUNT(*) > 1
		ORDER BY cycle_id, cycle_day
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.DayKey, 0)
	for rows.Next() {
		var k medications.DayKey
		if err := rows.Scan(&k.CycleID, &k.Day); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *AdherenceRepo) list(ctx context.Context, query string, args ...any) ([]medications.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.DailyRecord, 0)
	for rows.Next() {
		var (
			rec                medications.DailyRecord
			date, updatedAt    sql.NullTime
			rawAdh, rawOneTime []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.CycleID,
			&rec.CycleDay,
			&date,
			&rawAdh,
			&rawOneTime,
			&rec.CreatedAt,
			&updatedAt,
		); err != nil {
			return nil, err
		}

		var adh []adherenceJSON
		if err := json.Unmarshal(rawAdh, &adh); err != nil {
			return nil, err
		}
		var ot []oneTimeJSON
		if err := json.Unmarshal(rawOneTime, &ot); err != nil {
			return nil, err
		}

		if date.Valid {
			rec.Date = date.Time
		}
		rec.UpdatedAt = fromNullTime(updatedAt)
		rec.Adherence = fromAdherenceJSON(adh)
		rec.OneTime = fromOneTimeJSON(ot)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func marshalRecord(rec medications.DailyRecord) ([]byte, []byte, error) {
	adherence, err := json.Marshal(toAdherenceJSON(rec.Adherence))
	if err != nil {
		return nil, nil, err
	}
	oneTime, err := json.Marshal(toOneTimeJSON(rec.OneTime))
	if err != nil {
		return nil, nil, err
	}
	return adherence, oneTime, nil
}

func toNullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}
