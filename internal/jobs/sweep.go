package jobs

import (
	"context"
	"fmt"
	"time"

	"treatment-tracker/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper es lo que el job necesita del servicio de medicaciones.
type Sweeper interface {
	SweepDuplicates(ctx context.Context) (int, error)
}

type SweepObserver interface {
	SweepFinished(err error)
}

// ReconcileSweep reconcilia periódicamente los registros diarios
// duplicados que quedaron en el store.
type ReconcileSweep struct {
	svc     Sweeper
	log     logger.Logger
	obs     SweepObserver
	timeout time.Duration

	cron *cron.Cron
}

type SweepOptions struct {
	Logger   logger.Logger
	Observer SweepObserver
	// Timeout por ejecución; 0 => 1 minuto
	Timeout time.Duration
}

func NewReconcileSweep(svc Sweeper, opts SweepOptions) *ReconcileSweep {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &ReconcileSweep{
		svc:     svc,
		log:     log.With(map[string]any{"component": "reconcile_sweep"}),
		obs:     opts.Observer,
		timeout: timeout,
	}
}

// Start agenda el barrido con una expresión cron ("@every 15m", "0 3 * * *").
// Las ejecuciones no se solapan.
func (s *ReconcileSweep) Start(schedule string) error {
	if s.cron != nil {
		return fmt.Errorf("sweep already started")
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		_, _ = s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron = c
	c.Start()
	s.log.Info("sweep scheduled", map[string]any{"schedule": schedule})
	return nil
}

// Stop espera a que termine la ejecución en curso o a que ctx venza.
func (s *ReconcileSweep) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *ReconcileSweep) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	merged, err := s.svc.SweepDuplicates(ctx)
	if s.obs != nil {
		s.obs.SweepFinished(err)
	}

	fields := map[string]any{"merged": merged, "elapsed_ms": time.Since(start).Milliseconds()}
	if err != nil {
		fields["err"] = err
		s.log.Error("sweep failed", fields)
		return merged, err
	}
	if merged > 0 {
		s.log.Info("sweep reconciled duplicates", fields)
	} else {
		s.log.Debug("sweep found nothing", fields)
	}
	return merged, nil
}
