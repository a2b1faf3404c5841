package medications

import (
	"sort"
	"time"
)

// MedicationsForDay une el plan recurrente y el registro diario de
// (cycleID, day) en una vista ordenada por hora. No tiene efectos.
func MedicationsForDay(cycleID string, day int, plan *RecurringPlan, records []DailyRecord) UnifiedView {
	view := UnifiedView{
		CycleID: cycleID,
		Day:     day,
		Entries: make([]UnifiedEntry, 0),
	}

	rec := recordForDay(cycleID, day, records)

	var adherence map[string]RecurringAdherence
	if rec != nil {
		adherence = make(map[string]RecurringAdherence, len(rec.Adherence))
		for _, a := range rec.Adherence {
			adherence[a.RecurringEntryID] = a
		}
	}

	if plan != nil && (plan.CycleID == "" || plan.CycleID == cycleID) {
		for _, e := range plan.ActiveEntries(day) {
			a, ok := adherence[e.ID]
			if !ok {
				a = RecurringAdherence{RecurringEntryID: e.ID, Status: StatusUntouched}
			}
			view.Entries = append(view.Entries, UnifiedEntry{
				ID:           e.ID,
				Name:         e.Name,
				Dosage:       e.Dosage,
				ActualDosage: a.ActualDosage,
				TimeKey:      TimeKey(e.Hour, e.Minute, e.Meridiem),
				Time:         FormatClock(e.Hour, e.Minute, e.Meridiem),
				Refrigerated: e.Refrigerated,
				Origin:       OriginRecurring,
				Taken:        a.Taken(),
				Skipped:      a.Skipped(),
				TakenAt:      copyTime(a.TakenAt),
				Notes:        firstNonEmpty(a.Notes, e.Notes),
			})
		}
	}

	if rec != nil {
		for _, e := range rec.OneTime {
			view.Entries = append(view.Entries, UnifiedEntry{
				ID:           e.ID,
				Name:         e.Name,
				Dosage:       e.Dosage,
				TimeKey:      TimeKey(e.Hour, e.Minute, e.Meridiem),
				Time:         FormatClock(e.Hour, e.Minute, e.Meridiem),
				Refrigerated: e.Refrigerated,
				Origin:       OriginOneTime,
				Taken:        e.Taken(),
				Skipped:      e.Skipped(),
				TakenAt:      copyTime(e.TakenAt),
				Notes:        e.Notes,
			})
		}
	}

	// Estable: en empate quedan las recurrentes antes que las puntuales.
	sort.SliceStable(view.Entries, func(i, j int) bool {
		return view.Entries[i].TimeKey < view.Entries[j].TimeKey
	})

	view.TotalCount = len(view.Entries)
	for _, e := range view.Entries {
		if e.Taken || e.Skipped {
			view.CompletedCount++
		}
	}
	return view
}

// ScheduleOverview suma MedicationsForDay sobre los días indicados por el
// llamador. Devuelve nil si el ciclo no tiene plan ni registros.
func ScheduleOverview(cycleID string, plan *RecurringPlan, dayIndices []int, records []DailyRecord) *Overview {
	hasRecords := false
	for _, r := range records {
		if r.CycleID == cycleID {
			hasRecords = true
			break
		}
	}
	if plan == nil && !hasRecords {
		return nil
	}

	ov := &Overview{
		CycleID:        cycleID,
		DailyBreakdown: make([]DayBreakdown, 0, len(dayIndices)),
	}
	for _, d := range dayIndices {
		v := MedicationsForDay(cycleID, d, plan, records)
		ov.TotalMedications += v.TotalCount
		ov.CompletedMedications += v.CompletedCount
		ov.DailyBreakdown = append(ov.DailyBreakdown, DayBreakdown{
			Day:       d,
			Total:     v.TotalCount,
			Completed: v.CompletedCount,
		})
	}
	if ov.TotalMedications > 0 {
		ov.AdherenceRate = float64(ov.CompletedMedications) / float64(ov.TotalMedications)
	}
	return ov
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyAdherence(a RecurringAdherence) RecurringAdherence {
	a.TakenAt = copyTime(a.TakenAt)
	return a
}

func copyOneTime(e OneTimeEntry) OneTimeEntry {
	e.TakenAt = copyTime(e.TakenAt)
	return e
}

func copyRecord(r DailyRecord) DailyRecord {
	out := r
	out.UpdatedAt = copyTime(r.UpdatedAt)
	out.Adherence = make([]RecurringAdherence, 0, len(r.Adherence))
	for _, a := range r.Adherence {
		out.Adherence = append(out.Adherence, copyAdherence(a))
	}
	out.OneTime = make([]OneTimeEntry, 0, len(r.OneTime))
	for _, e := range r.OneTime {
		out.OneTime = append(out.OneTime, copyOneTime(e))
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
