package migration

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"treatment-tracker/internal/domain/medications"

	"github.com/google/uuid"
)

// maxCycleDays acota el rango de días de una entrada recurrente.
const maxCycleDays = 366

var (
	errIncomplete = errors.New("missing name or dosage")

	// namespace para IDs deterministas: re-ejecutar da los mismos IDs.
	idNamespace = uuid.MustParse("6f1c2a4e-8d0b-4c55-9a7e-3b2f1d9c0e71")
)

// Migrator convierte un LegacyBatch en medicaciones aplanadas. No escribe nada.
type Migrator struct {
	now func() time.Time
}

func NewMigrator() *Migrator {
	return &Migrator{now: time.Now}
}

// Migrate procesa cada entrada aislada: un error suma a ErrorCount y se
// sigue con la próxima.
func (m *Migrator) Migrate(b LegacyBatch, opts Options) Report {
	rep := Report{
		Medications: make([]Medication, 0),
		Errors:      make([]EntryError, 0),
	}
	now := m.now()

	for _, lm := range Collect(b) {
		meds, err := m.synthesize(b, lm, opts, now)
		switch {
		case errors.Is(err, errIncomplete):
			rep.SkippedCount++
			continue
		case err != nil:
			rep.ErrorCount++
			rep.Errors = append(rep.Errors, EntryError{Ref: lm.Ref(), Message: err.Error()})
			continue
		}
		rep.Medications = append(rep.Medications, meds...)
	}

	rep.Summary = summarize(rep)
	return rep
}

func (m *Migrator) synthesize(b LegacyBatch, lm LegacyMedication, opts Options, now time.Time) ([]Medication, error) {
	switch v := lm.(type) {
	case RecurringLegacy:
		return m.fromRecurring(b.CycleID, v, opts, now)
	case OneTimeLegacy:
		med, err := m.fromOneTime(b.CycleID, v, opts, now)
		if err != nil {
			return nil, err
		}
		return []Medication{med}, nil
	case EmbeddedLegacy:
		med, err := m.fromEmbedded(b.CycleID, v, opts, now)
		if err != nil {
			return nil, err
		}
		return []Medication{med}, nil
	default:
		return nil, fmt.Errorf("unknown legacy medication %T", lm)
	}
}

// fromRecurring genera una fila por día activo en [StartDay, EndDay].
func (m *Migrator) fromRecurring(cycleID string, v RecurringLegacy, opts Options, now time.Time) ([]Medication, error) {
	e := v.Entry
	name, dosage := strings.TrimSpace(e.Name), strings.TrimSpace(e.Dosage)
	if opts.SkipIncompleteData && (name == "" || dosage == "") {
		return nil, errIncomplete
	}
	if e.StartDay < 1 {
		return nil, fmt.Errorf("start day %d must be >= 1", e.StartDay)
	}
	if e.EndDay < e.StartDay {
		return nil, fmt.Errorf("end day %d before start day %d", e.EndDay, e.StartDay)
	}
	if e.EndDay > maxCycleDays {
		return nil, fmt.Errorf("end day %d beyond cycle limit %d", e.EndDay, maxCycleDays)
	}
	clock, err := legacyClock(e.Time, e.Hour, e.Minute, e.Meridiem)
	if err != nil {
		return nil, err
	}

	sourceID := e.ID
	if sourceID == "" {
		sourceID = deterministicID(cycleID, "recurring", name, clock).String()
	}

	out := make([]Medication, 0, e.EndDay-e.StartDay+1)
	for day := e.StartDay; day <= e.EndDay; day++ {
		med := Medication{
			ID:           deterministicID(cycleID, "scheduled", sourceID, strconv.Itoa(day)).String(),
			CycleID:      cycleID,
			CycleDay:     day,
			Type:         TypeScheduled,
			Source:       KindRecurring,
			SourceID:     sourceID,
			Name:         name,
			Dosage:       dosage,
			ActualDosage: dosage,
			Time:         clock,
			Refrigerated: e.Refrigerated,
			StartDay:     e.StartDay,
			EndDay:       e.EndDay,
			Notes:        strings.TrimSpace(e.Notes),
			MigratedAt:   now,
		}
		if a, ok := v.Adherence[day]; ok {
			if d := strings.TrimSpace(a.ActualDosage); d != "" {
				med.ActualDosage = d
			}
			med.Taken = a.Taken
			med.Skipped = a.Skipped
			med.TakenAt = a.TakenAt
			if n := strings.TrimSpace(a.Notes); n != "" {
				med.Notes = n
			}
		}
		out = append(out, med)
	}
	return out, nil
}

func (m *Migrator) fromOneTime(cycleID string, v OneTimeLegacy, opts Options, now time.Time) (Medication, error) {
	e := v.Entry
	name, dosage := strings.TrimSpace(e.Name), strings.TrimSpace(e.Dosage)
	if opts.SkipIncompleteData && (name == "" || dosage == "") {
		return Medication{}, errIncomplete
	}
	clock, err := legacyClock(e.Time, e.Hour, e.Minute, e.Meridiem)
	if err != nil {
		return Medication{}, err
	}

	day := strconv.Itoa(v.CycleDay)
	sourceID := e.ID
	if sourceID == "" {
		sourceID = deterministicID(cycleID, "one-time", day, name, clock).String()
	}
	return Medication{
		ID:           deterministicID(cycleID, "one-time", sourceID, day).String(),
		CycleID:      cycleID,
		CycleDay:     v.CycleDay,
		Type:         TypeOneTime,
		Source:       KindOneTime,
		SourceID:     sourceID,
		Name:         name,
		Dosage:       dosage,
		ActualDosage: dosage,
		Time:         clock,
		Refrigerated: e.Refrigerated,
		Taken:        e.Taken,
		Skipped:      e.Skipped,
		TakenAt:      e.TakenAt,
		Notes:        strings.TrimSpace(e.Notes),
		MigratedAt:   now,
	}, nil
}

func (m *Migrator) fromEmbedded(cycleID string, v EmbeddedLegacy, opts Options, now time.Time) (Medication, error) {
	e := v.Entry
	name, dosage := strings.TrimSpace(e.Name), strings.TrimSpace(e.Dose)
	if opts.SkipIncompleteData && (name == "" || dosage == "") {
		return Medication{}, errIncomplete
	}
	clock, err := legacyClock(e.Time, "", "", "")
	if err != nil {
		return Medication{}, err
	}

	day := strconv.Itoa(v.CycleDay)
	sourceID := e.ID
	if sourceID == "" {
		sourceID = deterministicID(cycleID, "embedded", day, name, clock).String()
	}
	return Medication{
		ID:           deterministicID(cycleID, "one-time", sourceID, day).String(),
		CycleID:      cycleID,
		CycleDay:     v.CycleDay,
		Type:         TypeOneTime,
		Source:       KindEmbedded,
		SourceID:     sourceID,
		Name:         name,
		Dosage:       dosage,
		ActualDosage: dosage,
		Time:         clock,
		Taken:        e.Completed,
		Skipped:      e.Skipped,
		Notes:        strings.TrimSpace(e.Notes),
		MigratedAt:   now,
	}, nil
}

// legacyClock normaliza la hora vieja a "HH:MM AM|PM".
func legacyClock(text, hour, minute, meridiem string) (string, error) {
	if strings.TrimSpace(text) != "" {
		h, mi, mer, err := medications.ParseClock(text)
		if err != nil {
			return "", err
		}
		return medications.FormatClock(h, mi, mer), nil
	}

	h, err := strconv.Atoi(strings.TrimSpace(hour))
	if err != nil {
		return "", fmt.Errorf("invalid hour %q", hour)
	}
	mi := 0
	if strings.TrimSpace(minute) != "" {
		mi, err = strconv.Atoi(strings.TrimSpace(minute))
		if err != nil {
			return "", fmt.Errorf("invalid minute %q", minute)
		}
	}
	if h < 1 || h > 12 || mi < 0 || mi > 59 {
		return "", fmt.Errorf("clock out of range %d:%d", h, mi)
	}
	mer := medications.Meridiem(strings.ToUpper(strings.TrimSpace(meridiem)))
	if mer != medications.AM && mer != medications.PM {
		return "", fmt.Errorf("invalid meridiem %q", meridiem)
	}
	return medications.FormatClock(h, mi, mer), nil
}

func deterministicID(parts ...string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(strings.Join(parts, "|")))
}

func summarize(r Report) string {
	scheduled, oneTime := 0, 0
	for _, m := range r.Medications {
		if m.Type == TypeScheduled {
			scheduled++
		} else {
			oneTime++
		}
	}
	return fmt.Sprintf("migrated %d medications (%d scheduled, %d one-time), skipped %d, errors %d",
		len(r.Medications), scheduled, oneTime, r.SkippedCount, r.ErrorCount)
}

func sortedDays(days []LegacyDay) []LegacyDay {
	out := make([]LegacyDay, len(days))
	copy(out, days)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CycleDay < out[j].CycleDay })
	return out
}
