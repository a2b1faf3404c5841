package medications

import (
	"reflect"
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func duplicatePair() (DailyRecord, DailyRecord) {
	t0 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	older := DailyRecord{
		ID: "a", CycleID: "c-1", CycleDay: 2, CreatedAt: t0,
		Adherence: []RecurringAdherence{
			{RecurringEntryID: "stim", Status: StatusTaken, TakenAt: tp(t0.Add(time.Hour))},
			{RecurringEntryID: "dex", Status: StatusUntouched},
		},
		OneTime: []OneTimeEntry{{ID: "ot-1", Name: "Trigger", Dosage: "1 vial", Hour: 9, Meridiem: PM}},
	}
	newer := DailyRecord{
		ID: "b", CycleID: "c-1", CycleDay: 2, CreatedAt: t0.Add(time.Minute), UpdatedAt: tp(t0.Add(2 * time.Hour)),
		Adherence: []RecurringAdherence{
			{RecurringEntryID: "stim", Status: StatusUntouched},
			{RecurringEntryID: "dex", Status: StatusSkipped},
		},
		OneTime: []OneTimeEntry{{ID: "ot-2", Name: "Aspirin", Dosage: "81 mg", Hour: 8, Meridiem: AM}},
	}
	return older, newer
}

func TestReconcile_MergesOntoNewest(t *testing.T) {
	older, newer := duplicatePair()

	merged, discard := ReconcileDuplicateRecords([]DailyRecord{older, newer})
	if merged.ID != "b" {
		t.Fatalf("expected newest record as base, got %s", merged.ID)
	}
	if len(discard) != 1 || discard[0].ID != "a" {
		t.Fatalf("expected record a discarded, got %+v", discard)
	}

	status := map[string]Status{}
	for _, a := range merged.Adherence {
		status[a.RecurringEntryID] = a.Status
	}
	if status["stim"] != StatusTaken || status["dex"] != StatusSkipped {
		t.Fatalf("touched statuses must survive, got %+v", status)
	}
	if len(merged.OneTime) != 2 {
		t.Fatalf("expected union of one-time entries, got %d", len(merged.OneTime))
	}
}

func TestReconcile_OrderIndependent(t *testing.T) {
	older, newer := duplicatePair()

	m1, _ := ReconcileDuplicateRecords([]DailyRecord{older, newer})
	m2, _ := ReconcileDuplicateRecords([]DailyRecord{newer, older})
	if !reflect.DeepEqual(m1, m2) {
		t.Fatalf("reconcile must be order independent:\n%+v\n%+v", m1, m2)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	older, newer := duplicatePair()

	m1, _ := ReconcileDuplicateRecords([]DailyRecord{older, newer})
	m2, discard := ReconcileDuplicateRecords([]DailyRecord{m1})
	if !reflect.DeepEqual(m1, m2) || len(discard) != 0 {
		t.Fatalf("reconciling a single record must be a no-op")
	}
}

func TestReconcile_TieBrokenByID(t *testing.T) {
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	a := DailyRecord{ID: "r-1", CycleID: "c", CycleDay: 1, CreatedAt: at}
	b := DailyRecord{ID: "r-2", CycleID: "c", CycleDay: 1, CreatedAt: at}

	merged, _ := ReconcileDuplicateRecords([]DailyRecord{a, b})
	if merged.ID != "r-2" {
		t.Fatalf("expected higher id to win the tie, got %s", merged.ID)
	}
}

func TestReconcile_SameIDNotDiscarded(t *testing.T) {
	older, _ := duplicatePair()
	_, discard := ReconcileDuplicateRecords([]DailyRecord{older, older})
	if len(discard) != 0 {
		t.Fatalf("a record repeated in the input must not be discarded")
	}
}
