package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"treatment-tracker/internal/domain/cycles"
)

type cycleRepo struct {
	mu   sync.RWMutex
	byID map[string]cycles.Cycle
}

func NewCycleRepo() cycles.Repository {
	return &cycleRepo{
		byID: make(map[string]cycles.Cycle),
	}
}

func (r *cycleRepo) Create(ctx context.Context, c cycles.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cycle id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("cycle already exists")
	}
	r.byID[c.ID] = cloneCycle(c)
	return nil
}

func (r *cycleRepo) Update(ctx context.Context, c cycles.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return cycles.ErrNotFound
	}
	r.byID[c.ID] = cloneCycle(c)
	return nil
}

func (r *cycleRepo) GetByID(ctx context.Context, id string) (cycles.Cycle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cycles.Cycle{}, cycles.ErrNotFound
	}
	return cloneCycle(c), nil
}

func cloneCycle(c cycles.Cycle) cycles.Cycle {
	c.LoggedDays = append([]int(nil), c.LoggedDays...)
	return c
}
