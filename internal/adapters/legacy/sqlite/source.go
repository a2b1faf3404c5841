// Package sqlite lee el export SQLite de la app anterior y lo entrega al
// migrador como migration.LegacyBatch.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"treatment-tracker/internal/domain/migration"

	_ "github.com/glebarez/go-sqlite" // driver SQLite en Go puro
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Source struct {
	db *gorm.DB
}

// Open abre el archivo en modo lectura compartida. "" o ":memory:" abre una
// base en memoria (tests).
func Open(path string) (*Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ":memory:"
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_busy_timeout=5000"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy sqlite: %w", err)
	}
	// una sola conexión: con :memory: cada conexión sería otra base
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(gormsqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open legacy sqlite: %w", err)
	}
	return New(db), nil
}

func New(db *gorm.DB) *Source {
	return &Source{db: db}
}

// EnsureSchema crea las tablas del export si faltan (dev y tests).
func (s *Source) EnsureSchema() error {
	if err := s.db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate legacy schema: %w", err)
	}
	return nil
}

func (s *Source) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LoadLegacy arma el lote de un ciclo. migration.ErrNotFound si el ciclo
// no tiene plan ni días.
func (s *Source) LoadLegacy(ctx context.Context, cycleID string) (migration.LegacyBatch, error) {
	db := s.db.WithContext(ctx)
	batch := migration.LegacyBatch{CycleID: cycleID}

	var plans []legacyPlan
	if err := db.Where("cycle_id = ?", cycleID).Limit(1).Find(&plans).Error; err != nil {
		return migration.LegacyBatch{}, err
	}
	var entries []legacyPlanEntry
	if err := db.Where("cycle_id = ?", cycleID).Order("position ASC, id ASC").Find(&entries).Error; err != nil {
		return migration.LegacyBatch{}, err
	}
	if len(plans) > 0 || len(entries) > 0 {
		batch.Plan = &migration.LegacyPlan{Entries: make([]migration.LegacyRecurringEntry, 0, len(entries))}
		if len(plans) > 0 {
			batch.Plan.CreatedAt = plans[0].CreatedAt
		}
		for _, e := range entries {
			batch.Plan.Entries = append(batch.Plan.Entries, migration.LegacyRecurringEntry{
				ID:           e.ID,
				Name:         e.Name,
				Dosage:       e.Dosage,
				Time:         e.Time,
				Hour:         e.Hour,
				Minute:       e.Minute,
				Meridiem:     e.Meridiem,
				Refrigerated: e.Refrigerated,
				StartDay:     e.StartDay,
				EndDay:       e.EndDay,
				Notes:        e.Notes,
			})
		}
	}

	var days []legacyDay
	if err := db.Where("cycle_id = ?", cycleID).Order("cycle_day ASC").Find(&days).Error; err != nil {
		return migration.LegacyBatch{}, err
	}
	if batch.Plan == nil && len(days) == 0 {
		return migration.LegacyBatch{}, migration.ErrNotFound
	}

	dayIDs := make([]string, 0, len(days))
	for _, d := range days {
		dayIDs = append(dayIDs, d.ID)
	}

	var (
		adherence []legacyAdherence
		oneTime   []legacyOneTime
		embedded  []legacyEmbedded
	)
	if len(dayIDs) > 0 {
		if err := db.Where("day_id IN ?", dayIDs).Order("id ASC").Find(&adherence).Error; err != nil {
			return migration.LegacyBatch{}, err
		}
		if err := db.Where("day_id IN ?", dayIDs).Order("id ASC").Find(&oneTime).Error; err != nil {
			return migration.LegacyBatch{}, err
		}
		if err := db.Where("day_id IN ?", dayIDs).Order("id ASC").Find(&embedded).Error; err != nil {
			return migration.LegacyBatch{}, err
		}
	}

	byDay := make(map[string]*migration.LegacyDay, len(days))
	batch.Days = make([]migration.LegacyDay, len(days))
	for i, d := range days {
		batch.Days[i] = migration.LegacyDay{CycleDay: d.CycleDay}
		if d.Date != nil {
			batch.Days[i].Date = *d.Date
		}
		byDay[d.ID] = &batch.Days[i]
	}

	for _, a := range adherence {
		if d, ok := byDay[a.DayID]; ok {
			d.Adherence = append(d.Adherence, migration.LegacyAdherence{
				RecurringEntryID: a.RecurringEntryID,
				Taken:            a.Taken,
				Skipped:          a.Skipped,
				ActualDosage:     a.ActualDosage,
				TakenAt:          a.TakenAt,
				Notes:            a.Notes,
			})
		}
	}
	for _, e := range oneTime {
		if d, ok := byDay[e.DayID]; ok {
			d.OneTime = append(d.OneTime, migration.LegacyOneTimeEntry{
				ID:           e.ID,
				Name:         e.Name,
				Dosage:       e.Dosage,
				Time:         e.Time,
				Hour:         e.Hour,
				Minute:       e.Minute,
				Meridiem:     e.Meridiem,
				Refrigerated: e.Refrigerated,
				Taken:        e.Taken,
				Skipped:      e.Skipped,
				TakenAt:      e.TakenAt,
				Notes:        e.Notes,
			})
		}
	}
	for _, e := range embedded {
		if d, ok := byDay[e.DayID]; ok {
			d.Embedded = append(d.Embedded, migration.LegacyEmbeddedMed{
				ID:        e.ID,
				Name:      e.Name,
				Dose:      e.Dose,
				Time:      e.Time,
				Completed: e.Completed,
				Skipped:   e.Skipped,
				Notes:     e.Notes,
			})
		}
	}

	return batch, nil
}
