package medications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	cycleports "treatment-tracker/internal/ports/cycles"
)

type testPlans struct {
	mu      sync.Mutex
	byCycle map[string]RecurringPlan
}

func newTestPlans() *testPlans { return &testPlans{byCycle: map[string]RecurringPlan{}} }

func (r *testPlans) GetPlan(ctx context.Context, cycleID string) (RecurringPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byCycle[cycleID]
	if !ok {
		return RecurringPlan{}, ErrNotFound
	}
	return p, nil
}

func (r *testPlans) SavePlan(ctx context.Context, p RecurringPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCycle[p.CycleID] = p
	return nil
}

// testRecords permite duplicados por (cycle, day), igual que los adapters.
type testRecords struct {
	mu   sync.Mutex
	byID map[string]DailyRecord
}

func newTestRecords() *testRecords { return &testRecords{byID: map[string]DailyRecord{}} }

func (r *testRecords) Create(ctx context.Context, rec DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rec.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[rec.ID] = copyRecord(rec)
	return nil
}

func (r *testRecords) Update(ctx context.Context, rec DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rec.ID]; !ok {
		return ErrNotFound
	}
	r.byID[rec.ID] = copyRecord(rec)
	return nil
}

func (r *testRecords) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRecords) ListByDay(ctx context.Context, cycleID string, day int) ([]DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []DailyRecord{}
	for _, rec := range r.byID {
		if rec.CycleID == cycleID && rec.CycleDay == day {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRecords) ListByCycle(ctx context.Context, cycleID string) ([]DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []DailyRecord{}
	for _, rec := range r.byID {
		if rec.CycleID == cycleID {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (r *testRecords) DuplicateKeys(ctx context.Context) ([]DayKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := map[DayKey]int{}
	for _, rec := range r.byID {
		count[rec.Key()]++
	}
	out := []DayKey{}
	for k, n := range count {
		if n > 1 {
			out = append(out, k)
		}
	}
	return out, nil
}

type testCycles map[string]cycleports.Cycle

func (c testCycles) GetCycle(ctx context.Context, id string) (cycleports.Cycle, error) {
	cy, ok := c[id]
	if !ok {
		return cycleports.Cycle{}, cycleports.ErrCycleNotFound
	}
	return cy, nil
}

type testRecorder struct {
	mu          sync.Mutex
	transitions []string
	discarded   int
}

func (r *testRecorder) AdherenceTransition(origin, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, origin+":"+status)
}

func (r *testRecorder) RecordsReconciled(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discarded += n
}

var (
	testStart = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	testNow   = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *testRecords, *testRecorder) {
	t.Helper()
	records := newTestRecords()
	rec := &testRecorder{}
	cycles := testCycles{"c-1": {ID: "c-1", StartDate: testStart, LoggedDays: []int{1, 2, 3}}}
	svc := NewService(newTestPlans(), records, cycles, Options{Metrics: rec})
	svc.now = func() time.Time { return testNow }

	seq := 0
	var mu sync.Mutex
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}

	_, err := svc.ReplacePlan(context.Background(), "c-1", []EntryInput{
		{ID: "stim", Name: "Gonal-F", Dosage: "225 IU", Hour: 8, Minute: 0, Meridiem: PM, StartDay: 1, EndDay: 10},
		{ID: "dex", Name: "Dexamethasone", Dosage: "0.5 mg", Hour: 8, Minute: 0, Meridiem: AM, StartDay: 2, EndDay: 3},
	})
	if err != nil {
		t.Fatalf("ReplacePlan error: %v", err)
	}
	return svc, records, rec
}

func TestService_ReplacePlan_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	bad := [][]EntryInput{
		{{Name: "", Dosage: "1 mg", Hour: 8, Meridiem: AM, StartDay: 1, EndDay: 1}},
		{{Name: "X", Dosage: "1 mg", Hour: 8, Minute: 10, Meridiem: AM, StartDay: 1, EndDay: 1}},
		{{Name: "X", Dosage: "1 mg", Hour: 8, Meridiem: AM, StartDay: 3, EndDay: 1}},
		{
			{ID: "dup", Name: "X", Dosage: "1 mg", Hour: 8, Meridiem: AM, StartDay: 1, EndDay: 1},
			{ID: "dup", Name: "Y", Dosage: "1 mg", Hour: 9, Meridiem: AM, StartDay: 1, EndDay: 1},
		},
	}
	for i, in := range bad {
		if _, err := svc.ReplacePlan(ctx, "c-1", in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	p, err := svc.GetPlan(ctx, "c-1")
	if err != nil || len(p.Entries) != 2 {
		t.Fatalf("rejected replacements must keep the previous plan, got %+v (%v)", p, err)
	}
}

func TestService_EnsureDailyRecord_Concurrent(t *testing.T) {
	svc, records, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.EnsureDailyRecord(ctx, "c-1", 2, testStart.AddDate(0, 0, 1)); err != nil {
				t.Errorf("EnsureDailyRecord error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := records.ListByDay(ctx, "c-1", 2)
	if len(got) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(got))
	}
	if len(got[0].Adherence) != 2 {
		t.Fatalf("expected adherence for both active entries, got %d", len(got[0].Adherence))
	}
	for _, a := range got[0].Adherence {
		if a.Status != StatusUntouched {
			t.Fatalf("new record must start untouched, got %s", a.Status)
		}
	}
}

func TestService_MarkTaken_ThenReset(t *testing.T) {
	svc, _, metrics := newTestService(t)
	ctx := context.Background()
	ref := EntryRef{CycleID: "c-1", Day: 2, EntryID: "stim", Origin: OriginRecurring}

	rec, applied, err := svc.MarkTaken(ctx, ref, TakeOptions{ActualDosage: "150 IU"})
	if err != nil || !applied {
		t.Fatalf("MarkTaken: applied=%v err=%v", applied, err)
	}
	if !rec.Date.Equal(testStart.AddDate(0, 0, 1)) {
		t.Fatalf("record date must come from the cycle, got %s", rec.Date)
	}

	v := svc.GetMedicationsForDay(ctx, "c-1", 2)
	stim := findEntry(t, v, "stim")
	if !stim.Taken || stim.Skipped || stim.ActualDosage != "150 IU" || stim.TakenAt == nil || !stim.TakenAt.Equal(testNow) {
		t.Fatalf("unexpected entry after taken: %+v", stim)
	}

	if _, _, err := svc.MarkSkipped(ctx, ref); err != nil {
		t.Fatalf("MarkSkipped error: %v", err)
	}
	stim = findEntry(t, svc.GetMedicationsForDay(ctx, "c-1", 2), "stim")
	if stim.Taken || !stim.Skipped || stim.TakenAt != nil || stim.ActualDosage != "" {
		t.Fatalf("skipped must clear taken and actual dosage: %+v", stim)
	}

	if _, _, err := svc.Reset(ctx, ref); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	stim = findEntry(t, svc.GetMedicationsForDay(ctx, "c-1", 2), "stim")
	if stim.Taken || stim.Skipped || stim.TakenAt != nil || stim.ActualDosage != "" {
		t.Fatalf("reset must restore untouched: %+v", stim)
	}

	if len(metrics.transitions) != 3 || metrics.transitions[0] != "recurring:taken" {
		t.Fatalf("unexpected transitions %v", metrics.transitions)
	}
}

func TestService_MarkTaken_InactiveEntryIsNoop(t *testing.T) {
	svc, records, _ := newTestService(t)
	ctx := context.Background()

	// dex solo va de 2 a 3
	_, applied, err := svc.MarkTaken(ctx, EntryRef{CycleID: "c-1", Day: 5, EntryID: "dex", Origin: OriginRecurring}, TakeOptions{})
	if err != nil || applied {
		t.Fatalf("expected no-op, got applied=%v err=%v", applied, err)
	}
	got, _ := records.ListByCycle(ctx, "c-1")
	if len(got) != 0 {
		t.Fatalf("no-op must not create records")
	}

	_, applied, _ = svc.MarkTaken(ctx, EntryRef{CycleID: "ghost", Day: 1, EntryID: "stim", Origin: OriginRecurring}, TakeOptions{})
	if applied {
		t.Fatalf("unknown cycle must be a no-op")
	}

	if _, _, err := svc.MarkTaken(ctx, EntryRef{CycleID: "c-1", Day: 1, EntryID: "stim", Origin: "weekly"}, TakeOptions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown origin, got %v", err)
	}
}

func TestService_OneTimeLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	date := testStart.AddDate(0, 0, 2)

	e, err := svc.AddOneTimeEntry(ctx, "c-1", 3, date, OneTimeInput{Name: "Trigger", Dosage: "1 vial", Hour: 9, Minute: 30, Meridiem: "pm"})
	if err != nil {
		t.Fatalf("AddOneTimeEntry error: %v", err)
	}
	if e.Status != StatusUntouched || e.Meridiem != PM {
		t.Fatalf("unexpected entry %+v", e)
	}

	ref := EntryRef{CycleID: "c-1", Day: 3, EntryID: e.ID, Origin: OriginOneTime}
	if _, applied, err := svc.MarkTaken(ctx, ref, TakeOptions{}); err != nil || !applied {
		t.Fatalf("MarkTaken one-time: applied=%v err=%v", applied, err)
	}

	updated, found, err := svc.UpdateOneTimeEntry(ctx, "c-1", 3, e.ID, OneTimeInput{Name: "Ovidrel", Dosage: "250 mcg", Hour: 9, Minute: 45, Meridiem: PM})
	if err != nil || !found {
		t.Fatalf("UpdateOneTimeEntry: found=%v err=%v", found, err)
	}
	if updated.Status != StatusTaken {
		t.Fatalf("update must keep the adherence status, got %s", updated.Status)
	}

	v := svc.GetMedicationsForDay(ctx, "c-1", 3)
	if v.TotalCount != 3 || v.CompletedCount != 1 {
		t.Fatalf("expected 3 total / 1 completed, got %d / %d", v.TotalCount, v.CompletedCount)
	}
	if last := v.Entries[len(v.Entries)-1]; last.ID != e.ID || last.Name != "Ovidrel" {
		t.Fatalf("expected one-time entry last (9:45 PM), got %+v", last)
	}

	deleted, err := svc.DeleteOneTimeEntry(ctx, "c-1", 3, e.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteOneTimeEntry: deleted=%v err=%v", deleted, err)
	}
	deleted, err = svc.DeleteOneTimeEntry(ctx, "c-1", 3, e.ID)
	if err != nil || deleted {
		t.Fatalf("second delete must be a no-op, got deleted=%v err=%v", deleted, err)
	}
	_, found, err = svc.UpdateOneTimeEntry(ctx, "c-1", 3, e.ID, OneTimeInput{Name: "X", Dosage: "1", Hour: 9, Meridiem: PM})
	if err != nil || found {
		t.Fatalf("update of missing entry must be a no-op, got found=%v err=%v", found, err)
	}
}

func TestService_AddOneTimeEntry_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AddOneTimeEntry(context.Background(), "c-1", 1, testStart, OneTimeInput{Name: "X", Dosage: "1", Hour: 9, Minute: 20, Meridiem: AM})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_SweepDuplicates(t *testing.T) {
	svc, records, metrics := newTestService(t)
	ctx := context.Background()
	older := testNow.Add(-time.Hour)

	_ = records.Create(ctx, DailyRecord{ID: "dup-a", CycleID: "c-1", CycleDay: 1, CreatedAt: older,
		Adherence: []RecurringAdherence{{RecurringEntryID: "stim", Status: StatusTaken, TakenAt: &older}}})
	_ = records.Create(ctx, DailyRecord{ID: "dup-b", CycleID: "c-1", CycleDay: 1, CreatedAt: testNow,
		Adherence: []RecurringAdherence{{RecurringEntryID: "stim", Status: StatusUntouched}}})

	// la lectura reconcilia en memoria sin escribir
	if v := svc.GetMedicationsForDay(ctx, "c-1", 1); !findEntry(t, v, "stim").Taken {
		t.Fatalf("read path must see the merged status")
	}
	if got, _ := records.ListByDay(ctx, "c-1", 1); len(got) != 2 {
		t.Fatalf("read path must not persist, got %d records", len(got))
	}

	n, err := svc.SweepDuplicates(ctx)
	if err != nil || n != 1 {
		t.Fatalf("SweepDuplicates: n=%d err=%v", n, err)
	}
	got, _ := records.ListByDay(ctx, "c-1", 1)
	if len(got) != 1 || got[0].ID != "dup-b" || got[0].Adherence[0].Status != StatusTaken {
		t.Fatalf("unexpected records after sweep: %+v", got)
	}
	if metrics.discarded != 1 {
		t.Fatalf("expected 1 discarded record recorded, got %d", metrics.discarded)
	}

	n, err = svc.SweepDuplicates(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second sweep must be a no-op, got n=%d err=%v", n, err)
	}
}

func TestService_ImportDailyRecord_Rerun(t *testing.T) {
	svc, records, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.EnsureDailyRecord(ctx, "c-1", 2, testStart.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("EnsureDailyRecord error: %v", err)
	}

	imported := DailyRecord{
		ID: "legacy-2", CycleID: "c-1", CycleDay: 2, CreatedAt: testNow.Add(-48 * time.Hour),
		Adherence: []RecurringAdherence{{RecurringEntryID: "dex", Status: StatusSkipped}},
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.ImportDailyRecord(ctx, imported); err != nil {
			t.Fatalf("ImportDailyRecord run %d error: %v", i, err)
		}
	}

	got, _ := records.ListByDay(ctx, "c-1", 2)
	if len(got) != 1 {
		t.Fatalf("expected a single record after import, got %d", len(got))
	}
	if !findEntry(t, svc.GetMedicationsForDay(ctx, "c-1", 2), "dex").Skipped {
		t.Fatalf("imported status must survive the merge")
	}
}

func TestService_ImportDailyRecord_RerunKeepsUserEdits(t *testing.T) {
	svc, records, _ := newTestService(t)
	ctx := context.Background()

	clock := testNow
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	takenAt := testNow.Add(-time.Hour)
	imported := DailyRecord{
		ID: "legacy-3", CycleID: "c-1", CycleDay: 3, Date: testStart.AddDate(0, 0, 2),
		OneTime: []OneTimeEntry{{ID: "ot", Name: "Trigger", Dosage: "1 vial", Hour: 9, Meridiem: PM, Status: StatusTaken, TakenAt: &takenAt}},
	}
	if _, err := svc.ImportDailyRecord(ctx, imported); err != nil {
		t.Fatalf("first import error: %v", err)
	}

	ref := EntryRef{CycleID: "c-1", Day: 3, EntryID: "ot", Origin: OriginOneTime}
	if _, applied, err := svc.Reset(ctx, ref); err != nil || !applied {
		t.Fatalf("Reset: applied=%v err=%v", applied, err)
	}

	if _, err := svc.ImportDailyRecord(ctx, imported); err != nil {
		t.Fatalf("second import error: %v", err)
	}

	got, _ := records.ListByDay(ctx, "c-1", 3)
	if len(got) != 1 {
		t.Fatalf("expected a single record, got %d", len(got))
	}
	ot := findEntry(t, svc.GetMedicationsForDay(ctx, "c-1", 3), "ot")
	if ot.Taken || ot.TakenAt != nil {
		t.Fatalf("re-import must keep the user's reset, got %+v", ot)
	}
}

func TestService_ImportDailyRecord_RanksBelowExisting(t *testing.T) {
	svc, records, _ := newTestService(t)
	ctx := context.Background()

	existing, err := svc.EnsureDailyRecord(ctx, "c-1", 2, testStart.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("EnsureDailyRecord error: %v", err)
	}

	// más nuevo que el registro existente
	imported := DailyRecord{
		ID: "legacy-2", CycleID: "c-1", CycleDay: 2, CreatedAt: testNow.Add(time.Hour),
		OneTime: []OneTimeEntry{{ID: "ot-legacy", Name: "Aspirin", Dosage: "81 mg", Hour: 8, Meridiem: AM}},
	}
	merged, err := svc.ImportDailyRecord(ctx, imported)
	if err != nil {
		t.Fatalf("ImportDailyRecord error: %v", err)
	}
	if merged.ID != existing.ID {
		t.Fatalf("existing record must stay the base, got %s", merged.ID)
	}
	got, _ := records.ListByDay(ctx, "c-1", 2)
	if len(got) != 1 || len(got[0].OneTime) != 1 {
		t.Fatalf("expected one record carrying the imported entry, got %+v", got)
	}
}

func TestService_GetScheduleOverview(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.MarkTaken(ctx, EntryRef{CycleID: "c-1", Day: 1, EntryID: "stim", Origin: OriginRecurring}, TakeOptions{}); err != nil {
		t.Fatalf("MarkTaken error: %v", err)
	}
	ov := svc.GetScheduleOverview(ctx, "c-1")
	if ov == nil {
		t.Fatalf("expected overview")
	}
	// días 1..3: stim x3 + dex x2
	if ov.TotalMedications != 5 || ov.CompletedMedications != 1 {
		t.Fatalf("expected 5/1, got %d/%d", ov.TotalMedications, ov.CompletedMedications)
	}

	if ov := svc.GetScheduleOverview(ctx, "c-unknown"); ov != nil {
		t.Fatalf("expected nil overview for unknown cycle")
	}
}

func findEntry(t *testing.T, v UnifiedView, id string) UnifiedEntry {
	t.Helper()
	for _, e := range v.Entries {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("entry %s not found in %+v", id, v.Entries)
	return UnifiedEntry{}
}
