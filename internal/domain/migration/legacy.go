package migration

import "time"

// Formato anterior: plan recurrente + días con medicaciones embebidas.
// La hora podía venir como texto libre ("8:30 AM") o en campos sueltos.

type LegacyBatch struct {
	CycleID string
	Plan    *LegacyPlan
	Days    []LegacyDay
}

type LegacyPlan struct {
	Entries   []LegacyRecurringEntry
	CreatedAt time.Time
}

type LegacyRecurringEntry struct {
	ID     string
	Name   string
	Dosage string

	Time     string // "8:30 AM"; si está vacío se usan Hour/Minute/Meridiem
	Hour     string
	Minute   string
	Meridiem string

	Refrigerated bool
	StartDay     int
	EndDay       int
	Notes        string
}

// LegacyDay es el registro diario viejo.
type LegacyDay struct {
	CycleDay int
	Date     time.Time

	Adherence []LegacyAdherence
	OneTime   []LegacyOneTimeEntry // dentro del sub-registro de adherencia
	Embedded  []LegacyEmbeddedMed  // colgadas directamente del día
}

type LegacyAdherence struct {
	RecurringEntryID string
	Taken            bool
	Skipped          bool
	ActualDosage     string
	TakenAt          *time.Time
	Notes            string
}

type LegacyOneTimeEntry struct {
	ID     string
	Name   string
	Dosage string

	Time     string
	Hour     string
	Minute   string
	Meridiem string

	Refrigerated bool
	Taken        bool
	Skipped      bool
	TakenAt      *time.Time
	Notes        string
}

// LegacyEmbeddedMed usa otros nombres de campo: Dose y Completed.
type LegacyEmbeddedMed struct {
	ID        string
	Name      string
	Dose      string
	Time      string
	Completed bool
	Skipped   bool
	Notes     string
}

// -------------------------
// Unión etiquetada
// -------------------------

type LegacyKind string

const (
	KindRecurring LegacyKind = "recurring"
	KindOneTime   LegacyKind = "one-time"
	KindEmbedded  LegacyKind = "embedded"
)

// LegacyMedication = RecurringLegacy | OneTimeLegacy | EmbeddedLegacy.
// Solo el migrador las consume.
type LegacyMedication interface {
	Kind() LegacyKind
	Ref() string
}

type RecurringLegacy struct {
	Entry LegacyRecurringEntry
	// Adherence por día del ciclo para esta entrada.
	Adherence map[int]LegacyAdherence
}

type OneTimeLegacy struct {
	CycleDay int
	Entry    LegacyOneTimeEntry
}

type EmbeddedLegacy struct {
	CycleDay int
	Entry    LegacyEmbeddedMed
}

func (RecurringLegacy) Kind() LegacyKind { return KindRecurring }
func (OneTimeLegacy) Kind() LegacyKind   { return KindOneTime }
func (EmbeddedLegacy) Kind() LegacyKind  { return KindEmbedded }

func (m RecurringLegacy) Ref() string { return "recurring:" + refName(m.Entry.ID, m.Entry.Name) }
func (m OneTimeLegacy) Ref() string   { return "one-time:" + refName(m.Entry.ID, m.Entry.Name) }
func (m EmbeddedLegacy) Ref() string  { return "embedded:" + refName(m.Entry.ID, m.Entry.Name) }

func refName(id, name string) string {
	if id != "" {
		return id
	}
	if name != "" {
		return name
	}
	return "?"
}

// Collect aplana el batch en el orden de procesamiento: entradas del plan
// en su orden y luego, por día, puntuales y embebidas.
func Collect(b LegacyBatch) []LegacyMedication {
	out := make([]LegacyMedication, 0)

	if b.Plan != nil {
		byEntry := map[string]map[int]LegacyAdherence{}
		for _, d := range b.Days {
			for _, a := range d.Adherence {
				if byEntry[a.RecurringEntryID] == nil {
					byEntry[a.RecurringEntryID] = map[int]LegacyAdherence{}
				}
				byEntry[a.RecurringEntryID][d.CycleDay] = a
			}
		}
		for _, e := range b.Plan.Entries {
			out = append(out, RecurringLegacy{Entry: e, Adherence: byEntry[e.ID]})
		}
	}

	for _, d := range sortedDays(b.Days) {
		for _, e := range d.OneTime {
			out = append(out, OneTimeLegacy{CycleDay: d.CycleDay, Entry: e})
		}
		for _, e := range d.Embedded {
			out = append(out, EmbeddedLegacy{CycleDay: d.CycleDay, Entry: e})
		}
	}
	return out
}
