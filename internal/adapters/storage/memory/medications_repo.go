package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"treatment-tracker/internal/domain/migration"
)

// medicationRepo guarda las filas aplanadas que produce la migración.
type medicationRepo struct {
	mu      sync.RWMutex
	byCycle map[string][]migration.Medication
}

func NewMedicationRepo() migration.MedicationRepository {
	return &medicationRepo{
		byCycle: make(map[string][]migration.Medication),
	}
}

func (r *medicationRepo) CountByCycle(ctx context.Context, cycleID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCycle[cycleID]), nil
}

// CreateBatch valida el lote completo antes de guardar nada.
func (r *medicationRepo) CreateBatch(ctx context.Context, cycleID string, meds []migration.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make(map[string]struct{}, len(r.byCycle[cycleID])+len(meds))
	for _, m := range r.byCycle[cycleID] {
		ids[m.ID] = struct{}{}
	}
	for _, m := range meds {
		if strings.TrimSpace(m.ID) == "" {
			return errors.New("medication id required")
		}
		if m.CycleID != cycleID {
			return errors.New("medication belongs to another cycle")
		}
		if _, dup := ids[m.ID]; dup {
			return errors.New("medication already exists")
		}
		ids[m.ID] = struct{}{}
	}

	r.byCycle[cycleID] = append(r.byCycle[cycleID], meds...)
	return nil
}

func (r *medicationRepo) ListByCycle(ctx context.Context, cycleID string) ([]migration.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]migration.Medication(nil), r.byCycle[cycleID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CycleDay < out[j].CycleDay })
	if out == nil {
		out = make([]migration.Medication, 0)
	}
	return out, nil
}
