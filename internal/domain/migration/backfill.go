package migration

import (
	"sort"
	"strconv"
	"strings"

	"treatment-tracker/internal/domain/medications"
)

// buildPlan arma el plan recurrente con las entradas que sobrevivieron a la
// migración (al menos una fila scheduled), en el orden del plan viejo.
func buildPlan(b LegacyBatch, meds []Medication) *medications.RecurringPlan {
	if b.Plan == nil {
		return nil
	}

	notes := map[string]string{}
	for _, e := range b.Plan.Entries {
		if e.ID != "" {
			notes[e.ID] = strings.TrimSpace(e.Notes)
		}
	}

	plan := &medications.RecurringPlan{CycleID: b.CycleID, CreatedAt: b.Plan.CreatedAt}
	seen := map[string]struct{}{}
	for _, m := range meds {
		if m.Type != TypeScheduled {
			continue
		}
		if _, ok := seen[m.SourceID]; ok {
			continue
		}
		h, mi, mer, err := medications.ParseClock(m.Time)
		if err != nil {
			continue
		}
		seen[m.SourceID] = struct{}{}
		plan.Entries = append(plan.Entries, medications.RecurringEntry{
			ID:           m.SourceID,
			Name:         m.Name,
			Dosage:       m.Dosage,
			Hour:         h,
			Minute:       mi,
			Meridiem:     mer,
			Refrigerated: m.Refrigerated,
			StartDay:     m.StartDay,
			EndDay:       m.EndDay,
			Notes:        notes[m.SourceID],
		})
	}
	if len(plan.Entries) == 0 {
		return nil
	}
	return plan
}

// buildRecords arma un DailyRecord por cada día que existía en los datos
// viejos, con la adherencia recurrente y las entradas puntuales migradas.
func buildRecords(b LegacyBatch, meds []Medication) []medications.DailyRecord {
	dates := map[int]medications.DailyRecord{}
	for _, d := range b.Days {
		if d.CycleDay < 1 {
			continue
		}
		if _, ok := dates[d.CycleDay]; ok {
			continue
		}
		dates[d.CycleDay] = medications.DailyRecord{
			CycleID:   b.CycleID,
			CycleDay:  d.CycleDay,
			Date:      d.Date,
			Adherence: make([]medications.RecurringAdherence, 0),
			OneTime:   make([]medications.OneTimeEntry, 0),
		}
	}

	for _, m := range meds {
		rec, ok := dates[m.CycleDay]
		if !ok {
			continue
		}
		switch m.Type {
		case TypeScheduled:
			a := medications.RecurringAdherence{
				RecurringEntryID: m.SourceID,
				Status:           statusOf(m),
				TakenAt:          m.TakenAt,
				Notes:            m.Notes,
			}
			if m.ActualDosage != m.Dosage {
				a.ActualDosage = m.ActualDosage
			}
			if a.Status != medications.StatusTaken {
				a.TakenAt = nil
			}
			rec.Adherence = append(rec.Adherence, a)
		case TypeOneTime:
			h, mi, mer, err := medications.ParseClock(m.Time)
			if err != nil {
				continue
			}
			e := medications.OneTimeEntry{
				ID:           m.ID,
				Name:         m.Name,
				Dosage:       m.Dosage,
				Hour:         h,
				Minute:       mi,
				Meridiem:     mer,
				Refrigerated: m.Refrigerated,
				Status:       statusOf(m),
				TakenAt:      m.TakenAt,
				Notes:        m.Notes,
			}
			if e.Status != medications.StatusTaken {
				e.TakenAt = nil
			}
			rec.OneTime = append(rec.OneTime, e)
		}
		dates[m.CycleDay] = rec
	}

	days := make([]int, 0, len(dates))
	for d := range dates {
		days = append(days, d)
	}
	sort.Ints(days)

	out := make([]medications.DailyRecord, 0, len(days))
	for _, d := range days {
		rec := dates[d]
		rec.ID = deterministicID(b.CycleID, "record", rec.Date.Format("2006-01-02"), strconv.Itoa(d)).String()
		out = append(out, rec)
	}
	return out
}

// statusOf: con datos sucios (ambas banderas) gana taken.
func statusOf(m Medication) medications.Status {
	switch {
	case m.Taken:
		return medications.StatusTaken
	case m.Skipped:
		return medications.StatusSkipped
	default:
		return medications.StatusUntouched
	}
}
