package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	cycleports "treatment-tracker/internal/ports/cycles"
)

// TakeOptions acompaña a MarkTaken. Ambos campos son opcionales.
type TakeOptions struct {
	TakenAt      *time.Time
	ActualDosage string // solo entradas recurrentes
}

// transition aplica un cambio de estado. Todas las transiciones son válidas
// desde cualquier estado: reset funciona como deshacer.
type transition struct {
	status       Status
	takenAt      *time.Time
	actualDosage string
}

func (t transition) applyRecurring(a *RecurringAdherence) {
	a.Status = t.status
	a.TakenAt = copyTime(t.takenAt)
	switch t.status {
	case StatusTaken:
		if t.actualDosage != "" {
			a.ActualDosage = t.actualDosage
		}
	case StatusSkipped, StatusUntouched:
		a.ActualDosage = ""
	}
}

func (t transition) applyOneTime(e *OneTimeEntry) {
	e.Status = t.status
	e.TakenAt = copyTime(t.takenAt)
}

// MarkTaken deja la entrada en taken con TakenAt = opts.TakenAt o ahora.
// applied=false si la entrada no existe para ese día (no es error).
func (s *Service) MarkTaken(ctx context.Context, ref EntryRef, opts TakeOptions) (DailyRecord, bool, error) {
	at := s.now()
	if opts.TakenAt != nil {
		at = *opts.TakenAt
	}
	return s.apply(ctx, ref, transition{
		status:       StatusTaken,
		takenAt:      &at,
		actualDosage: strings.TrimSpace(opts.ActualDosage),
	})
}

// MarkSkipped limpia taken y TakenAt.
func (s *Service) MarkSkipped(ctx context.Context, ref EntryRef) (DailyRecord, bool, error) {
	return s.apply(ctx, ref, transition{status: StatusSkipped})
}

// Reset vuelve a untouched.
func (s *Service) Reset(ctx context.Context, ref EntryRef) (DailyRecord, bool, error) {
	return s.apply(ctx, ref, transition{status: StatusUntouched})
}

func (s *Service) apply(ctx context.Context, ref EntryRef, t transition) (DailyRecord, bool, error) {
	ref.CycleID = strings.TrimSpace(ref.CycleID)
	ref.EntryID = strings.TrimSpace(ref.EntryID)
	if ref.CycleID == "" || ref.EntryID == "" || ref.Day < 1 {
		return DailyRecord{}, false, ErrInvalidInput
	}

	var (
		rec     DailyRecord
		applied bool
		err     error
	)
	switch ref.Origin {
	case OriginRecurring:
		rec, applied, err = s.applyRecurring(ctx, ref, t)
	case OriginOneTime:
		rec, applied, err = s.applyOneTime(ctx, ref, t)
	default:
		return DailyRecord{}, false, ErrInvalidInput
	}
	if err != nil || !applied {
		return rec, applied, err
	}

	s.metrics.AdherenceTransition(string(ref.Origin), string(t.status))
	s.log.Debug("adherence updated", map[string]any{
		"cycle_id": ref.CycleID,
		"day":      ref.Day,
		"entry_id": ref.EntryID,
		"origin":   string(ref.Origin),
		"status":   string(t.status),
	})
	return rec, true, nil
}

func (s *Service) applyRecurring(ctx context.Context, ref EntryRef, t transition) (DailyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := s.loadPlan(ctx, ref.CycleID)
	found := false
	for _, e := range plan.ActiveEntries(ref.Day) {
		if e.ID == ref.EntryID {
			found = true
			break
		}
	}
	if !found {
		return DailyRecord{}, false, nil
	}

	date, ok, err := s.dateForDay(ctx, ref.CycleID, ref.Day)
	if err != nil {
		return DailyRecord{}, false, err
	}
	if !ok {
		return DailyRecord{}, false, nil
	}

	rec, err := s.ensureLocked(ctx, ref.CycleID, ref.Day, date)
	if err != nil {
		return DailyRecord{}, false, err
	}
	rec = copyRecord(rec)

	idx := -1
	for i := range rec.Adherence {
		if rec.Adherence[i].RecurringEntryID == ref.EntryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		// entrada agregada al plan después de crear el registro
		rec.Adherence = append(rec.Adherence, RecurringAdherence{RecurringEntryID: ref.EntryID, Status: StatusUntouched})
		idx = len(rec.Adherence) - 1
	}
	t.applyRecurring(&rec.Adherence[idx])

	if err := s.touch(ctx, &rec); err != nil {
		return DailyRecord{}, false, err
	}
	return rec, true, nil
}

func (s *Service) applyOneTime(ctx context.Context, ref EntryRef, t transition) (DailyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.currentLocked(ctx, ref.CycleID, ref.Day)
	if err != nil || !ok {
		return DailyRecord{}, false, err
	}
	idx := oneTimeIndex(rec, ref.EntryID)
	if idx < 0 {
		return DailyRecord{}, false, nil
	}
	t.applyOneTime(&rec.OneTime[idx])

	if err := s.touch(ctx, &rec); err != nil {
		return DailyRecord{}, false, err
	}
	return rec, true, nil
}

// -------------------------
// Entradas puntuales
// -------------------------

type OneTimeInput struct {
	Name         string
	Dosage       string
	Hour         int
	Minute       int
	Meridiem     Meridiem
	Refrigerated bool
	Notes        string
}

func (in OneTimeInput) normalize() (OneTimeInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Meridiem = Meridiem(strings.ToUpper(strings.TrimSpace(string(in.Meridiem))))
	if in.Name == "" || in.Dosage == "" {
		return OneTimeInput{}, ErrInvalidInput
	}
	if !ValidClock(in.Hour, in.Minute, in.Meridiem) {
		return OneTimeInput{}, ErrInvalidInput
	}
	return in, nil
}

// AddOneTimeEntry crea el registro del día si falta.
func (s *Service) AddOneTimeEntry(ctx context.Context, cycleID string, day int, date time.Time, in OneTimeInput) (OneTimeEntry, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" || day < 1 {
		return OneTimeEntry{}, ErrInvalidInput
	}
	in, err := in.normalize()
	if err != nil {
		return OneTimeEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.ensureLocked(ctx, cycleID, day, date)
	if err != nil {
		return OneTimeEntry{}, err
	}
	rec = copyRecord(rec)

	e := OneTimeEntry{
		ID:           s.newID(),
		Name:         in.Name,
		Dosage:       in.Dosage,
		Hour:         in.Hour,
		Minute:       in.Minute,
		Meridiem:     in.Meridiem,
		Refrigerated: in.Refrigerated,
		Status:       StatusUntouched,
		Notes:        in.Notes,
	}
	rec.OneTime = append(rec.OneTime, e)

	if err := s.touch(ctx, &rec); err != nil {
		return OneTimeEntry{}, err
	}
	s.log.Info("one-time entry added", map[string]any{"cycle_id": cycleID, "day": day, "entry_id": e.ID})
	return e, nil
}

// UpdateOneTimeEntry no cambia ID ni estado de adherencia.
// found=false si no hay registro o entrada.
func (s *Service) UpdateOneTimeEntry(ctx context.Context, cycleID string, day int, entryID string, in OneTimeInput) (OneTimeEntry, bool, error) {
	in, err := in.normalize()
	if err != nil {
		return OneTimeEntry{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.currentLocked(ctx, cycleID, day)
	if err != nil || !ok {
		return OneTimeEntry{}, false, err
	}
	idx := oneTimeIndex(rec, entryID)
	if idx < 0 {
		return OneTimeEntry{}, false, nil
	}

	e := &rec.OneTime[idx]
	e.Name = in.Name
	e.Dosage = in.Dosage
	e.Hour = in.Hour
	e.Minute = in.Minute
	e.Meridiem = in.Meridiem
	e.Refrigerated = in.Refrigerated
	e.Notes = in.Notes

	if err := s.touch(ctx, &rec); err != nil {
		return OneTimeEntry{}, false, err
	}
	return rec.OneTime[idx], true, nil
}

// DeleteOneTimeEntry: found=false si no había nada que borrar.
func (s *Service) DeleteOneTimeEntry(ctx context.Context, cycleID string, day int, entryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.currentLocked(ctx, cycleID, day)
	if err != nil || !ok {
		return false, err
	}
	idx := oneTimeIndex(rec, entryID)
	if idx < 0 {
		return false, nil
	}
	rec.OneTime = append(rec.OneTime[:idx], rec.OneTime[idx+1:]...)

	if err := s.touch(ctx, &rec); err != nil {
		return false, err
	}
	s.log.Info("one-time entry deleted", map[string]any{"cycle_id": cycleID, "day": day, "entry_id": entryID})
	return true, nil
}

// currentLocked devuelve el registro del día (reconciliado) sin crearlo.
func (s *Service) currentLocked(ctx context.Context, cycleID string, day int) (DailyRecord, bool, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" || day < 1 {
		return DailyRecord{}, false, nil
	}
	existing, err := s.records.ListByDay(ctx, cycleID, day)
	if err != nil {
		return DailyRecord{}, false, err
	}
	if len(existing) == 0 {
		return DailyRecord{}, false, nil
	}
	rec, err := s.reconcileLocked(ctx, existing)
	if err != nil {
		return DailyRecord{}, false, err
	}
	return copyRecord(rec), true, nil
}

func (s *Service) touch(ctx context.Context, rec *DailyRecord) error {
	now := s.now()
	rec.UpdatedAt = &now
	return s.records.Update(ctx, *rec)
}

// dateForDay: ok=false si el ciclo no existe. Sin provider la fecha queda vacía.
func (s *Service) dateForDay(ctx context.Context, cycleID string, day int) (time.Time, bool, error) {
	if s.cycles == nil {
		return time.Time{}, true, nil
	}
	c, err := s.cycles.GetCycle(ctx, cycleID)
	if err != nil {
		if errors.Is(err, cycleports.ErrCycleNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return c.DateForDay(day), true, nil
}

func oneTimeIndex(rec DailyRecord, entryID string) int {
	entryID = strings.TrimSpace(entryID)
	for i := range rec.OneTime {
		if rec.OneTime[i].ID == entryID {
			return i
		}
	}
	return -1
}
