package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"treatment-tracker/internal/platform/logger"
	cycleports "treatment-tracker/internal/ports/cycles"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Service es el único escritor de planes y registros diarios.
// Todas las mutaciones pasan por mu; EnsureDailyRecord además agrupa
// llamadas concurrentes sobre la misma clave.
type Service struct {
	plans   PlanRepository
	records AdherenceRepository
	cycles  cycleports.Provider

	log     logger.Logger
	metrics Recorder

	mu    sync.Mutex
	group singleflight.Group

	now   func() time.Time
	newID func() string
}

type Options struct {
	Logger  logger.Logger
	Metrics Recorder
}

func NewService(plans PlanRepository, records AdherenceRepository, cycles cycleports.Provider, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	var rec Recorder = noopRecorder{}
	if opts.Metrics != nil {
		rec = opts.Metrics
	}
	return &Service{
		plans:   plans,
		records: records,
		cycles:  cycles,
		log:     log.With(map[string]any{"component": "medications"}),
		metrics: rec,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// -------------------------
// Plan
// -------------------------

type EntryInput struct {
	ID           string // opcional: conservarlo mantiene la adherencia histórica
	Name         string
	Dosage       string
	Hour         int
	Minute       int
	Meridiem     Meridiem
	Refrigerated bool
	StartDay     int
	EndDay       int
	Notes        string
}

func (s *Service) GetPlan(ctx context.Context, cycleID string) (RecurringPlan, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" {
		return RecurringPlan{}, ErrInvalidInput
	}
	return s.plans.GetPlan(ctx, cycleID)
}

// ReplacePlan es la única vía de edición de entradas recurrentes.
func (s *Service) ReplacePlan(ctx context.Context, cycleID string, in []EntryInput) (RecurringPlan, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" {
		return RecurringPlan{}, ErrInvalidInput
	}

	entries := make([]RecurringEntry, 0, len(in))
	seen := map[string]struct{}{}
	for i, e := range in {
		entry, err := s.buildEntry(e)
		if err != nil {
			return RecurringPlan{}, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[entry.ID]; dup {
			return RecurringPlan{}, fmt.Errorf("entry %d: duplicate id: %w", i, ErrInvalidInput)
		}
		seen[entry.ID] = struct{}{}
		entries = append(entries, entry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	plan := RecurringPlan{
		CycleID:   cycleID,
		Entries:   entries,
		CreatedAt: now,
		UpdatedAt: now,
	}
	existing, err := s.plans.GetPlan(ctx, cycleID)
	switch {
	case err == nil:
		plan.CreatedAt = existing.CreatedAt
	case !errors.Is(err, ErrNotFound):
		return RecurringPlan{}, err
	}

	if err := s.plans.SavePlan(ctx, plan); err != nil {
		return RecurringPlan{}, err
	}
	s.log.Info("plan replaced", map[string]any{"cycle_id": cycleID, "entries": len(entries)})
	return plan, nil
}

// ImportPlan agrega al plan existente las entradas cuyo ID no conoce.
// Lo usa la migración.
func (s *Service) ImportPlan(ctx context.Context, p RecurringPlan) error {
	if strings.TrimSpace(p.CycleID) == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	existing, err := s.plans.GetPlan(ctx, p.CycleID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		return s.plans.SavePlan(ctx, p)
	}

	known := map[string]struct{}{}
	for _, e := range existing.Entries {
		known[e.ID] = struct{}{}
	}
	added := 0
	for _, e := range p.Entries {
		if _, ok := known[e.ID]; ok {
			continue
		}
		existing.Entries = append(existing.Entries, e)
		added++
	}
	if added == 0 {
		return nil
	}
	existing.UpdatedAt = now
	return s.plans.SavePlan(ctx, existing)
}

func (s *Service) buildEntry(in EntryInput) (RecurringEntry, error) {
	name := strings.TrimSpace(in.Name)
	dosage := strings.TrimSpace(in.Dosage)
	if name == "" || dosage == "" {
		return RecurringEntry{}, ErrInvalidInput
	}
	mer := Meridiem(strings.ToUpper(strings.TrimSpace(string(in.Meridiem))))
	if !ValidClock(in.Hour, in.Minute, mer) {
		return RecurringEntry{}, ErrInvalidInput
	}
	if in.StartDay < 1 || in.EndDay < in.StartDay {
		return RecurringEntry{}, ErrInvalidInput
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.newID()
	}
	return RecurringEntry{
		ID:           id,
		Name:         name,
		Dosage:       dosage,
		Hour:         in.Hour,
		Minute:       in.Minute,
		Meridiem:     mer,
		Refrigerated: in.Refrigerated,
		StartDay:     in.StartDay,
		EndDay:       in.EndDay,
		Notes:        strings.TrimSpace(in.Notes),
	}, nil
}

// -------------------------
// Lecturas
// -------------------------

// GetMedicationsForDay nunca falla por storage: degrada a vista vacía.
func (s *Service) GetMedicationsForDay(ctx context.Context, cycleID string, day int) UnifiedView {
	plan := s.loadPlan(ctx, cycleID)

	records, err := s.records.ListByDay(ctx, cycleID, day)
	if err != nil {
		s.log.Error("list daily records failed", map[string]any{"cycle_id": cycleID, "day": day, "err": err})
		records = nil
	}
	return MedicationsForDay(cycleID, day, plan, records)
}

// GetScheduleOverview usa los días registrados del ciclo. nil si no hay nada que mostrar.
func (s *Service) GetScheduleOverview(ctx context.Context, cycleID string) *Overview {
	plan := s.loadPlan(ctx, cycleID)

	records, err := s.records.ListByCycle(ctx, cycleID)
	if err != nil {
		s.log.Error("list cycle records failed", map[string]any{"cycle_id": cycleID, "err": err})
		records = nil
	}

	var days []int
	if s.cycles != nil {
		c, err := s.cycles.GetCycle(ctx, cycleID)
		if err == nil {
			days = c.LoggedDays
		} else if !errors.Is(err, cycleports.ErrCycleNotFound) {
			s.log.Warn("cycle lookup failed", map[string]any{"cycle_id": cycleID, "err": err})
		}
	}
	return ScheduleOverview(cycleID, plan, days, records)
}

func (s *Service) loadPlan(ctx context.Context, cycleID string) *RecurringPlan {
	p, err := s.plans.GetPlan(ctx, cycleID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("load plan failed", map[string]any{"cycle_id": cycleID, "err": err})
		}
		return nil
	}
	return &p
}

// -------------------------
// Registros diarios
// -------------------------

// EnsureDailyRecord devuelve el registro del día o lo crea con adherencia
// untouched para cada entrada recurrente activa.
func (s *Service) EnsureDailyRecord(ctx context.Context, cycleID string, day int, date time.Time) (DailyRecord, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" || day < 1 {
		return DailyRecord{}, ErrInvalidInput
	}

	key := fmt.Sprintf("%s#%d", cycleID, day)
	v, err, _ := s.group.Do(key, func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.ensureLocked(ctx, cycleID, day, date)
	})
	if err != nil {
		return DailyRecord{}, err
	}
	return copyRecord(v.(DailyRecord)), nil
}

func (s *Service) ensureLocked(ctx context.Context, cycleID string, day int, date time.Time) (DailyRecord, error) {
	existing, err := s.records.ListByDay(ctx, cycleID, day)
	if err != nil {
		return DailyRecord{}, err
	}
	if len(existing) > 0 {
		return s.reconcileLocked(ctx, existing)
	}

	plan := s.loadPlan(ctx, cycleID)
	active := plan.ActiveEntries(day)

	rec := DailyRecord{
		ID:        s.newID(),
		CycleID:   cycleID,
		CycleDay:  day,
		Date:      date,
		Adherence: make([]RecurringAdherence, 0, len(active)),
		OneTime:   make([]OneTimeEntry, 0),
		CreatedAt: s.now(),
	}
	for _, e := range active {
		rec.Adherence = append(rec.Adherence, RecurringAdherence{
			RecurringEntryID: e.ID,
			Status:           StatusUntouched,
		})
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return DailyRecord{}, err
	}
	s.log.Debug("daily record created", map[string]any{"cycle_id": cycleID, "day": day, "record_id": rec.ID})
	return rec, nil
}

// ReconcileDay persiste la fusión de duplicados de un día.
func (s *Service) ReconcileDay(ctx context.Context, cycleID string, day int) (DailyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.records.ListByDay(ctx, cycleID, day)
	if err != nil {
		return DailyRecord{}, false, err
	}
	if len(existing) == 0 {
		return DailyRecord{}, false, nil
	}
	merged, err := s.reconcileLocked(ctx, existing)
	if err != nil {
		return DailyRecord{}, false, err
	}
	return merged, true, nil
}

// SweepDuplicates reconcilia todas las claves duplicadas del store.
// Devuelve cuántas claves se fusionaron.
func (s *Service) SweepDuplicates(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.records.DuplicateKeys(ctx)
	if err != nil {
		return 0, err
	}

	merged := 0
	var errs []error
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		existing, err := s.records.ListByDay(ctx, k.CycleID, k.Day)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(existing) < 2 {
			continue
		}
		if _, err := s.reconcileLocked(ctx, existing); err != nil {
			errs = append(errs, fmt.Errorf("reconcile %s day %d: %w", k.CycleID, k.Day, err))
			continue
		}
		merged++
	}
	return merged, errors.Join(errs...)
}

// ImportDailyRecord guarda un registro migrado y lo fusiona con lo que ya
// existiera para su clave.
func (s *Service) ImportDailyRecord(ctx context.Context, rec DailyRecord) (DailyRecord, error) {
	if strings.TrimSpace(rec.CycleID) == "" || rec.CycleDay < 1 {
		return DailyRecord{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	existing, err := s.records.ListByDay(ctx, rec.CycleID, rec.CycleDay)
	if err != nil {
		return DailyRecord{}, err
	}
	stored := false
	for _, r := range existing {
		if r.ID == rec.ID {
			stored = true
			break
		}
	}
	if stored {
		// re-ejecución: lo importado ya está en el registro guardado y puede
		// tener ediciones posteriores del usuario
		return s.reconcileLocked(ctx, existing)
	}

	// lo importado nunca gana como base frente a lo que ya existe
	if len(existing) > 0 {
		oldest := existing[0].LastModified()
		for _, r := range existing[1:] {
			if lm := r.LastModified(); lm.Before(oldest) {
				oldest = lm
			}
		}
		rec.UpdatedAt = nil
		if !rec.CreatedAt.Before(oldest) {
			rec.CreatedAt = oldest.Add(-time.Second)
		}
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return DailyRecord{}, err
	}
	return s.reconcileLocked(ctx, append(existing, rec))
}

func (s *Service) reconcileLocked(ctx context.Context, records []DailyRecord) (DailyRecord, error) {
	if len(records) == 1 {
		return records[0], nil
	}

	merged, discard := ReconcileDuplicateRecords(records)
	now := s.now()
	merged.UpdatedAt = &now

	if err := s.records.Update(ctx, merged); err != nil {
		return DailyRecord{}, fmt.Errorf("update merged record: %w", err)
	}
	for _, d := range discard {
		if err := s.records.Delete(ctx, d.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return DailyRecord{}, fmt.Errorf("delete duplicate record %s: %w", d.ID, err)
		}
	}

	s.metrics.RecordsReconciled(len(discard))
	s.log.Info("duplicate daily records reconciled", map[string]any{
		"cycle_id":  merged.CycleID,
		"day":       merged.CycleDay,
		"kept":      merged.ID,
		"discarded": len(discard),
	})
	return merged, nil
}
