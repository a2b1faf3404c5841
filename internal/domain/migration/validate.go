package migration

import (
	"regexp"
	"strings"
)

var canonicalTime = regexp.MustCompile(`^(0[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`)

// Validate revisa el lote migrado. Errors bloquean la aceptación;
// Warnings no.
func Validate(meds []Medication) ValidationResult {
	res := ValidationResult{
		Errors:   make([]Issue, 0),
		Warnings: make([]Issue, 0),
	}

	for i, m := range meds {
		fail := func(field, msg string) {
			res.Errors = append(res.Errors, Issue{Index: i, ID: m.ID, Field: field, Message: msg})
		}

		if strings.TrimSpace(m.CycleID) == "" {
			fail("cycle_id", "required")
		}
		if strings.TrimSpace(m.Name) == "" {
			fail("name", "required")
		}
		if strings.TrimSpace(m.Dosage) == "" {
			fail("dosage", "required")
		}
		if m.CycleDay < 1 {
			fail("cycle_day", "must be >= 1")
		}
		switch m.Type {
		case TypeScheduled:
			if m.StartDay > m.EndDay {
				fail("start_day", "must be <= end_day")
			}
		case TypeOneTime:
		default:
			fail("type", "unknown type "+string(m.Type))
		}
		if !canonicalTime.MatchString(m.Time) {
			fail("time", "must match HH:MM AM|PM")
		}

		if m.Taken && m.Skipped {
			res.Warnings = append(res.Warnings, Issue{Index: i, ID: m.ID, Field: "status", Message: "both taken and skipped set"})
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}
