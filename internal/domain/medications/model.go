package medications

import "time"

type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// Status es el estado de adherencia de una entrada en un día.
// Un enum de tres estados evita que taken y skipped convivan.
type Status string

const (
	StatusUntouched Status = "untouched"
	StatusTaken     Status = "taken"
	StatusSkipped   Status = "skipped"
)

type Origin string

const (
	OriginRecurring Origin = "recurring"
	OriginOneTime   Origin = "one-time"
)

// RecurringEntry es una medicación del plan activa en [StartDay, EndDay].
type RecurringEntry struct {
	ID string

	Name   string
	Dosage string // con unidad: "150 IU", "0.25 mg"

	Hour     int // 1..12
	Minute   int // 0, 15, 30, 45
	Meridiem Meridiem

	Refrigerated bool

	StartDay int
	EndDay   int

	Notes string
}

// ActiveOn indica si la entrada aplica al día (intervalo cerrado).
func (e RecurringEntry) ActiveOn(day int) bool {
	return e.StartDay <= day && day <= e.EndDay
}

// RecurringPlan es el protocolo de un ciclo. Cero o uno por ciclo.
type RecurringPlan struct {
	CycleID string
	Entries []RecurringEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveEntries devuelve las entradas activas en day, en orden del plan.
func (p *RecurringPlan) ActiveEntries(day int) []RecurringEntry {
	if p == nil {
		return nil
	}
	out := make([]RecurringEntry, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.ActiveOn(day) {
			out = append(out, e)
		}
	}
	return out
}

type RecurringAdherence struct {
	RecurringEntryID string

	Status       Status
	ActualDosage string
	TakenAt      *time.Time
	Notes        string
}

func (a RecurringAdherence) Taken() bool   { return a.Status == StatusTaken }
func (a RecurringAdherence) Skipped() bool { return a.Status == StatusSkipped }

// OneTimeEntry vive dentro del DailyRecord de su día.
type OneTimeEntry struct {
	ID string

	Name   string
	Dosage string

	Hour     int
	Minute   int
	Meridiem Meridiem

	Refrigerated bool

	Status  Status
	TakenAt *time.Time
	Notes   string
}

func (e OneTimeEntry) Taken() bool   { return e.Status == StatusTaken }
func (e OneTimeEntry) Skipped() bool { return e.Status == StatusSkipped }

// DailyRecord se identifica por (CycleID, CycleDay). Puede haber duplicados
// por inicializaciones solapadas; ver ReconcileDuplicateRecords.
type DailyRecord struct {
	ID string

	CycleID  string
	CycleDay int
	Date     time.Time

	Adherence []RecurringAdherence
	OneTime   []OneTimeEntry

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// LastModified es UpdatedAt si existe, si no CreatedAt.
func (r DailyRecord) LastModified() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

func (r DailyRecord) Key() DayKey {
	return DayKey{CycleID: r.CycleID, Day: r.CycleDay}
}

type DayKey struct {
	CycleID string
	Day     int
}

// EntryRef identifica una entrada de un día, recurrente o puntual.
type EntryRef struct {
	CycleID string
	Day     int
	EntryID string
	Origin  Origin
}

type UnifiedEntry struct {
	ID           string
	Name         string
	Dosage       string
	ActualDosage string

	TimeKey int
	Time    string

	Refrigerated bool
	Origin       Origin

	Taken   bool
	Skipped bool
	TakenAt *time.Time
	Notes   string
}

// UnifiedView es derivada, nunca se persiste.
type UnifiedView struct {
	CycleID string
	Day     int

	Entries        []UnifiedEntry
	TotalCount     int
	CompletedCount int
}

type DayBreakdown struct {
	Day       int
	Total     int
	Completed int
}

type Overview struct {
	CycleID string

	TotalMedications     int
	CompletedMedications int
	AdherenceRate        float64

	DailyBreakdown []DayBreakdown
}
