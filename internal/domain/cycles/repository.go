package cycles

import "context"

type Repository interface {
	Create(ctx context.Context, c Cycle) error
	Update(ctx context.Context, c Cycle) error
	GetByID(ctx context.Context, id string) (Cycle, error)
}
