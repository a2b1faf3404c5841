package memory

import (
	"context"
	"sync"

	"treatment-tracker/internal/domain/migration"
)

// LegacySource sirve lotes viejos cargados a mano (dev y tests).
type LegacySource struct {
	mu      sync.RWMutex
	byCycle map[string]migration.LegacyBatch
}

func NewLegacySource() *LegacySource {
	return &LegacySource{byCycle: make(map[string]migration.LegacyBatch)}
}

func (s *LegacySource) Seed(b migration.LegacyBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCycle[b.CycleID] = b
}

func (s *LegacySource) LoadLegacy(ctx context.Context, cycleID string) (migration.LegacyBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byCycle[cycleID]
	if !ok {
		return migration.LegacyBatch{}, migration.ErrNotFound
	}
	return b, nil
}
