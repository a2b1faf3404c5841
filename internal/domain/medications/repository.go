package medications

import "context"

// PlanRepository guarda cero o un plan por ciclo. SavePlan reemplaza el plan entero.
type PlanRepository interface {
	GetPlan(ctx context.Context, cycleID string) (RecurringPlan, error)
	SavePlan(ctx context.Context, p RecurringPlan) error
}

// AdherenceRepository no impone unicidad de (cycle, day): puede devolver
// varios registros por clave y el servicio los reconcilia.
type AdherenceRepository interface {
	Create(ctx context.Context, r DailyRecord) error
	Update(ctx context.Context, r DailyRecord) error
	Delete(ctx context.Context, id string) error

	ListByDay(ctx context.Context, cycleID string, day int) ([]DailyRecord, error)
	ListByCycle(ctx context.Context, cycleID string) ([]DailyRecord, error)

	// DuplicateKeys lista las claves con más de un registro.
	DuplicateKeys(ctx context.Context) ([]DayKey, error)
}

// Recorder recibe contadores del motor (metrics.Metrics lo implementa).
type Recorder interface {
	AdherenceTransition(origin, status string)
	RecordsReconciled(discarded int)
}

type noopRecorder struct{}

func (noopRecorder) AdherenceTransition(string, string) {}
func (noopRecorder) RecordsReconciled(int)              {}
