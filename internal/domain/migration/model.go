package migration

import (
	"fmt"
	"time"
)

type MedicationType string

const (
	TypeScheduled MedicationType = "scheduled"
	TypeOneTime   MedicationType = "one-time"
)

// Medication es el registro aplanado del modelo unificado: una fila por
// (día, medicación).
type Medication struct {
	ID       string
	CycleID  string
	CycleDay int
	Type     MedicationType

	Source   LegacyKind
	SourceID string

	Name         string
	Dosage       string
	ActualDosage string
	Time         string // "HH:MM AM|PM"
	Refrigerated bool

	StartDay int // solo scheduled
	EndDay   int

	Taken   bool
	Skipped bool
	TakenAt *time.Time
	Notes   string

	MigratedAt time.Time
}

type Options struct {
	// SkipIncompleteData omite entradas sin name o dosage en vez de
	// completarlas con strings vacíos.
	SkipIncompleteData bool
	// DryRun devuelve el reporte sin escribir nada.
	DryRun bool
}

type EntryError struct {
	Ref     string
	Message string
}

type Report struct {
	Medications  []Medication
	SkippedCount int
	ErrorCount   int
	Errors       []EntryError
	Summary      string
}

type Issue struct {
	Index   int
	ID      string
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("medication[%d] %s: %s", i.Index, i.Field, i.Message)
}

type ValidationResult struct {
	IsValid  bool
	Errors   []Issue
	Warnings []Issue
}

type Result struct {
	Success         bool
	AlreadyMigrated bool
	Message         string
	Data            *ResultData
}

type ResultData struct {
	Report            Report
	Validation        ValidationResult
	DuplicatesRemoved int
	PlanEntries       int
	RecordsBackfilled int
}
