package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"treatment-tracker/internal/domain/medications"
)

// adherenceRepo no impone unicidad por (cycle, day); los duplicados los
// resuelve el servicio.
type adherenceRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.DailyRecord
}

func NewAdherenceRepo() medications.AdherenceRepository {
	return &adherenceRepo{
		byID: make(map[string]medications.DailyRecord),
	}
}

func (r *adherenceRepo) Create(ctx context.Context, rec medications.DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}
	r.byID[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *adherenceRepo) Update(ctx context.Context, rec medications.DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rec.ID]; !exists {
		return medications.ErrNotFound
	}
	r.byID[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *adherenceRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return medications.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *adherenceRepo) ListByDay(ctx context.Context, cycleID string, day int) ([]medications.DailyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.DailyRecord, 0, 1)
	for _, rec := range r.byID {
		if rec.CycleID == cycleID && rec.CycleDay == day {
			out = append(out, cloneRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *adherenceRepo) ListByCycle(ctx context.Context, cycleID string) ([]medications.DailyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.DailyRecord, 0)
	for _, rec := range r.byID {
		if rec.CycleID == cycleID {
			out = append(out, cloneRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *adherenceRepo) DuplicateKeys(ctx context.Context) ([]medications.DayKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := make(map[medications.DayKey]int)
	for _, rec := range r.byID {
		count[rec.Key()]++
	}
	out := make([]medications.DayKey, 0)
	for k, n := range count {
		if n > 1 {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CycleID != out[j].CycleID {
			return out[i].CycleID < out[j].CycleID
		}
		return out[i].Day < out[j].Day
	})
	return out, nil
}

// Orden estable por día y created_at (solo para consistencia en dev)
func sortRecords(recs []medications.DailyRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CycleDay != recs[j].CycleDay {
			return recs[i].CycleDay < recs[j].CycleDay
		}
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

// cloneRecord evita que el llamador mute lo guardado.
func cloneRecord(rec medications.DailyRecord) medications.DailyRecord {
	out := rec
	out.UpdatedAt = clonePtr(rec.UpdatedAt)
	out.Adherence = make([]medications.RecurringAdherence, len(rec.Adherence))
	for i, a := range rec.Adherence {
		a.TakenAt = clonePtr(a.TakenAt)
		out.Adherence[i] = a
	}
	out.OneTime = make([]medications.OneTimeEntry, len(rec.OneTime))
	for i, e := range rec.OneTime {
		e.TakenAt = clonePtr(e.TakenAt)
		out.OneTime[i] = e
	}
	return out
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
