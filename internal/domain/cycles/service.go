package cycles

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	cycleports "treatment-tracker/internal/ports/cycles"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	Label     string
	StartDate time.Time
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Cycle, error) {
	if in.StartDate.IsZero() {
		return Cycle{}, ErrInvalidInput
	}

	now := s.now()
	c := Cycle{
		ID:         uuid.NewString(),
		Label:      strings.TrimSpace(in.Label),
		StartDate:  truncateDay(in.StartDate),
		LoggedDays: []int{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Cycle{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Cycle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cycle{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// LogDay registra el día en el ciclo. Idempotente.
func (s *Service) LogDay(ctx context.Context, id string, day int) (Cycle, error) {
	if day < 1 {
		return Cycle{}, ErrInvalidInput
	}
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Cycle{}, err
	}

	for _, d := range c.LoggedDays {
		if d == day {
			return c, nil
		}
	}
	c.LoggedDays = append(c.LoggedDays, day)
	sort.Ints(c.LoggedDays)
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return Cycle{}, err
	}
	return c, nil
}

// GetCycle implementa cycleports.Provider para el motor de medicación.
func (s *Service) GetCycle(ctx context.Context, cycleID string) (cycleports.Cycle, error) {
	c, err := s.GetByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			return cycleports.Cycle{}, cycleports.ErrCycleNotFound
		}
		return cycleports.Cycle{}, err
	}
	days := make([]int, len(c.LoggedDays))
	copy(days, c.LoggedDays)
	return cycleports.Cycle{
		ID:         c.ID,
		StartDate:  c.StartDate,
		LoggedDays: days,
	}, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
