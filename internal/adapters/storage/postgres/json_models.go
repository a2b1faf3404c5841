package postgres

import (
	"time"

	"treatment-tracker/internal/domain/medications"
)

// Formas JSONB de las columnas entries / adherence / one_time.

type entryJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Meridiem     string `json:"meridiem"`
	Refrigerated bool   `json:"refrigerated"`
	StartDay     int    `json:"start_day"`
	EndDay       int    `json:"end_day"`
	Notes        string `json:"notes,omitempty"`
}

type adherenceJSON struct {
	RecurringEntryID string     `json:"recurring_entry_id"`
	Status           string     `json:"status"`
	ActualDosage     string     `json:"actual_dosage,omitempty"`
	TakenAt          *time.Time `json:"taken_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

type oneTimeJSON struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Hour         int        `json:"hour"`
	Minute       int        `json:"minute"`
	Meridiem     string     `json:"meridiem"`
	Refrigerated bool       `json:"refrigerated"`
	Status       string     `json:"status"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

func toEntriesJSON(in []medications.RecurringEntry) []entryJSON {
	out := make([]entryJSON, 0, len(in))
	for _, e := range in {
		out = append(out, entryJSON{
			ID:           e.ID,
			Name:         e.Name,
			Dosage:       e.Dosage,
			Hour:         e.Hour,
			Minute:       e.Minute,
			Meridiem:     string(e.Meridiem),
			Refrigerated: e.Refrigerated,
			StartDay:     e.StartDay,
			EndDay:       e.EndDay,
			Notes:        e.Notes,
		})
	}
	return out
}

func fromEntriesJSON(in []entryJSON) []medications.RecurringEntry {
	out := make([]medications.RecurringEntry, 0, len(in))
	for _, e := range in {
		out = append(out, medications.RecurringEntry{
			ID:           e.ID,
			Name:         e.Name,
			Dosage:       e.Dosage,
			Hour:         e.Hour,
			Minute:       e.Minute,
			Meridiem:     medications.Meridiem(e.Meridiem),
			Refrigerated: e.Refrigerated,
			StartDay:     e.StartDay,
			EndDay:       e.EndDay,
			Notes:        e.Notes,
		})
	}
	return out
}

func toAdherenceJSON(in []medications.RecurringAdherence) []adherenceJSON {
	out := make([]adherenceJSON, 0, len(in))
	for _, a := range in {
		out = append(out, adherenceJSON{
			RecurringEntryID: a.RecurringEntryID,
			Status:           string(a.Status),
			ActualDosage:     a.ActualDosage,
			TakenAt:          a.TakenAt,
			Notes:            a.Notes,
		})
	}
	return out
}

func fromAdherenceJSON(in []adherenceJSON) []medications.RecurringAdherence {
	out := make([]medications.RecurringAdherence, 0, len(in))
	for _, a := range in {
		status := medications.Status(a.Status)
		if status == "" {
			status = medications.StatusUntouched
		}
		out = append(out, medications.RecurringAdherence{
			RecurringEntryID: a.RecurringEntryID,
			Status:           status,
			ActualDosage:     a.ActualDosage,
			TakenAt:          a.TakenAt,
			Notes:            a.Notes,
		})
	}
	return out
}

func toOneTimeJSON(in []medications.OneTimeEntry) []oneTimeJSON {
	out := make([]oneTimeJSON, 0, len(in))
	for _, e := range in {
		out = append(out, oneTimeJSON{
			ID:           e.ID,
			Name:         e.Name,
			Dosage:       e.Dosage,
			Hour:         e.Hour,
			Minute:       e.Minute,
			Meridiem:     string(e.Meridiem),
			Refrigerated: e.Refrigerated,
			Status:       string(e.Status),
			TakenAt:      e.TakenAt,
			Notes:        e.Notes,
		})
	}
	return out
}

func fromOneTimeJSON(in []oneTimeJSON) []medications.OneTimeEntry {
	out := make([]medications.OneTimeEntry, 0, len(in))
	for _, e := range in {
		status := medications.Status(e.Status)
		if status == "" {
			status = medications.StatusUntouched
		}
		out = append(out, medications.OneTimeEntry{
			ID:           e.ID,
			Name:         e.Name,
			Dosage:       e.Dosage,
			Hour:         e.Hour,
			Minute:       e.Minute,
			Meridiem:     medications.Meridiem(e.Meridiem),
			Refrigerated: e.Refrigerated,
			Status:       status,
			TakenAt:      e.TakenAt,
			Notes:        e.Notes,
		})
	}
	return out
}
