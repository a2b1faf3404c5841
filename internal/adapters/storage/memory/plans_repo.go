package memory

import (
	"context"
	"sync"

	"treatment-tracker/internal/domain/medications"
)

type planRepo struct {
	mu      sync.RWMutex
	byCycle map[string]medications.RecurringPlan
}

func NewPlanRepo() medications.PlanRepository {
	return &planRepo{
		byCycle: make(map[string]medications.RecurringPlan),
	}
}

func (r *planRepo) GetPlan(ctx context.Context, cycleID string) (medications.RecurringPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byCycle[cycleID]
	if !ok {
		return medications.RecurringPlan{}, medications.ErrNotFound
	}
	p.Entries = append([]medications.RecurringEntry(nil), p.Entries...)
	return p, nil
}

func (r *planRepo) SavePlan(ctx context.Context, p medications.RecurringPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.Entries = append([]medications.RecurringEntry(nil), p.Entries...)
	r.byCycle[p.CycleID] = p
	return nil
}
