package cycles

import (
	"context"
	"errors"
	"testing"
	"time"

	cycleports "treatment-tracker/internal/ports/cycles"
)

type testRepo struct {
	byID map[string]Cycle
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Cycle{}}
}

func (r *testRepo) Create(ctx context.Context, c Cycle) error {
	if _, ok := r.byID[c.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Update(ctx context.Context, c Cycle) error {
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Cycle, error) {
	c, ok := r.byID[id]
	if !ok {
		return Cycle{}, ErrNotFound
	}
	return c, nil
}

func TestService_LogDay_SortedAndIdempotent(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	c, err := svc.Register(ctx, RegisterInput{Label: "IVF #1", StartDate: time.Date(2025, 3, 10, 15, 4, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if c.StartDate.Hour() != 0 {
		t.Fatalf("expected start date truncated to day, got %s", c.StartDate)
	}

	for _, d := range []int{3, 1, 3, 2} {
		if _, err := svc.LogDay(ctx, c.ID, d); err != nil {
			t.Fatalf("LogDay(%d) error: %v", d, err)
		}
	}

	got, _ := svc.GetByID(ctx, c.ID)
	want := []int{1, 2, 3}
	if len(got.LoggedDays) != len(want) {
		t.Fatalf("expected %v, got %v", want, got.LoggedDays)
	}
	for i := range want {
		if got.LoggedDays[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got.LoggedDays)
		}
	}
}

func TestService_LogDay_RejectsZero(t *testing.T) {
	svc := NewService(newTestRepo())
	if _, err := svc.LogDay(context.Background(), "c-1", 0); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_GetCycle_ProviderContract(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	if _, err := svc.GetCycle(ctx, "missing"); !errors.Is(err, cycleports.ErrCycleNotFound) {
		t.Fatalf("expected ErrCycleNotFound, got %v", err)
	}

	c, _ := svc.Register(ctx, RegisterInput{StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)})
	_, _ = svc.LogDay(ctx, c.ID, 5)

	pc, err := svc.GetCycle(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCycle error: %v", err)
	}
	if got := pc.DateForDay(5); !got.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected day 5 = 2025-03-14, got %s", got)
	}
	if len(pc.LoggedDays) != 1 || pc.LoggedDays[0] != 5 {
		t.Fatalf("expected logged days [5], got %v", pc.LoggedDays)
	}
}
