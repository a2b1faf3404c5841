package migration

import (
	"context"

	"treatment-tracker/internal/domain/medications"
)

// MedicationRepository guarda las filas aplanadas. CreateBatch es atómico:
// o se guarda el lote entero o nada.
type MedicationRepository interface {
	CountByCycle(ctx context.Context, cycleID string) (int, error)
	CreateBatch(ctx context.Context, cycleID string, meds []Medication) error
	ListByCycle(ctx context.Context, cycleID string) ([]Medication, error)
}

// LegacySource carga los datos viejos de un ciclo. ErrNotFound si no hay.
type LegacySource interface {
	LoadLegacy(ctx context.Context, cycleID string) (LegacyBatch, error)
}

// Backfiller escribe en los stores del motor (medications.Service).
type Backfiller interface {
	ImportPlan(ctx context.Context, p medications.RecurringPlan) error
	ImportDailyRecord(ctx context.Context, r medications.DailyRecord) (medications.DailyRecord, error)
}

type Recorder interface {
	MigrationFinished(result string, migrated, skipped, errored int)
}

type noopRecorder struct{}

func (noopRecorder) MigrationFinished(string, int, int, int) {}
