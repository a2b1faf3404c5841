package cycles

import (
	"context"
	"errors"
)

var ErrCycleNotFound = errors.New("cycle not found")

// Provider expone los ciclos al motor de medicación.
// Implementaciones: domain/cycles (local) y adapters/cycles/remote (HTTP).
type Provider interface {
	GetCycle(ctx context.Context, cycleID string) (Cycle, error)
}
