package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"treatment-tracker/internal/platform/logger"

	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Service orquesta la migración de un ciclo: carga, aplana, valida,
// deduplica, rellena el motor y por último guarda las filas aplanadas.
// CreateBatch va al final y funciona como marca de "ya migrado".
type Service struct {
	meds     MedicationRepository
	legacy   LegacySource
	backfill Backfiller
	migrator *Migrator

	log     logger.Logger
	metrics Recorder
	group   singleflight.Group
}

type ServiceOptions struct {
	Logger  logger.Logger
	Metrics Recorder
}

func NewService(meds MedicationRepository, legacy LegacySource, backfill Backfiller, opts ServiceOptions) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	var rec Recorder = noopRecorder{}
	if opts.Metrics != nil {
		rec = opts.Metrics
	}
	return &Service{
		meds:     meds,
		legacy:   legacy,
		backfill: backfill,
		migrator: NewMigrator(),
		log:      log.With(map[string]any{"component": "migration"}),
		metrics:  rec,
	}
}

// Migrate nunca escribe si la validación falla. Llamadas concurrentes para
// el mismo ciclo comparten una sola ejecución.
func (s *Service) Migrate(ctx context.Context, cycleID string, opts Options) (Result, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" {
		return Result{}, ErrInvalidInput
	}

	key := cycleID
	if opts.DryRun {
		key += "#dry"
	}
	if opts.SkipIncompleteData {
		key += "#skip"
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.migrate(ctx, cycleID, opts)
	})
	if err != nil {
		s.metrics.MigrationFinished("error", 0, 0, 0)
		s.log.Error("migration failed", map[string]any{"cycle_id": cycleID, "err": err})
		return Result{}, err
	}
	return v.(Result), nil
}

func (s *Service) migrate(ctx context.Context, cycleID string, opts Options) (Result, error) {
	n, err := s.meds.CountByCycle(ctx, cycleID)
	if err != nil {
		return Result{}, fmt.Errorf("count migrated medications: %w", err)
	}
	if n > 0 {
		s.metrics.MigrationFinished("already_migrated", 0, 0, 0)
		return Result{
			Success:         true,
			AlreadyMigrated: true,
			Message:         fmt.Sprintf("cycle already migrated (%d medications)", n),
		}, nil
	}

	batch, err := s.legacy.LoadLegacy(ctx, cycleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.MigrationFinished("no_data", 0, 0, 0)
			return Result{Success: true, Message: "no legacy data for cycle"}, nil
		}
		return Result{}, fmt.Errorf("load legacy data: %w", err)
	}
	batch.CycleID = cycleID

	rep := s.migrator.Migrate(batch, opts)
	validation := Validate(rep.Medications)
	data := &ResultData{Report: rep, Validation: validation}

	if !validation.IsValid {
		s.metrics.MigrationFinished("invalid", len(rep.Medications), rep.SkippedCount, rep.ErrorCount)
		s.log.Warn("migration blocked by validation", map[string]any{
			"cycle_id": cycleID,
			"errors":   len(validation.Errors),
		})
		return Result{
			Success: false,
			Message: fmt.Sprintf("validation failed with %d errors", len(validation.Errors)),
			Data:    data,
		}, nil
	}

	meds, removed := Deduplicate(rep.Medications)
	data.DuplicatesRemoved = removed
	data.Report.Medications = meds

	plan := buildPlan(batch, meds)
	records := buildRecords(batch, meds)
	if plan != nil {
		data.PlanEntries = len(plan.Entries)
	}
	data.RecordsBackfilled = len(records)

	if opts.DryRun {
		s.metrics.MigrationFinished("dry_run", len(meds), rep.SkippedCount, rep.ErrorCount)
		return Result{
			Success: true,
			Message: "dry run: " + rep.Summary,
			Data:    data,
		}, nil
	}

	if plan != nil {
		if err := s.backfill.ImportPlan(ctx, *plan); err != nil {
			return Result{}, fmt.Errorf("backfill plan: %w", err)
		}
	}
	for _, r := range records {
		if _, err := s.backfill.ImportDailyRecord(ctx, r); err != nil {
			return Result{}, fmt.Errorf("backfill day %d: %w", r.CycleDay, err)
		}
	}

	if len(meds) > 0 {
		if err := s.meds.CreateBatch(ctx, cycleID, meds); err != nil {
			return Result{}, fmt.Errorf("store migrated medications: %w", err)
		}
	}

	s.metrics.MigrationFinished("migrated", len(meds), rep.SkippedCount, rep.ErrorCount)
	s.log.Info("cycle migrated", map[string]any{
		"cycle_id":   cycleID,
		"migrated":   len(meds),
		"skipped":    rep.SkippedCount,
		"errors":     rep.ErrorCount,
		"duplicates": removed,
		"records":    len(records),
	})
	return Result{Success: true, Message: rep.Summary, Data: data}, nil
}

func (s *Service) ListMigrated(ctx context.Context, cycleID string) ([]Medication, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" {
		return nil, ErrInvalidInput
	}
	return s.meds.ListByCycle(ctx, cycleID)
}
