package migration

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/cycles/{cycleID}/migrate", migrateHandler(svc))
	r.Get("/cycles/{cycleID}/migrated", listMigratedHandler(svc))
}

type migrateRequest struct {
	SkipIncompleteData bool `json:"skip_incomplete_data"`
	DryRun             bool `json:"dry_run"`
}

type entryErrorResponse struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

type issueResponse struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type migrateDataResponse struct {
	MigratedCount     int                  `json:"migrated_count"`
	SkippedCount      int                  `json:"skipped_count"`
	ErrorCount        int                  `json:"error_count"`
	Errors            []entryErrorResponse `json:"errors"`
	Summary           string               `json:"summary"`
	IsValid           bool                 `json:"is_valid"`
	ValidationErrors  []issueResponse      `json:"validation_errors"`
	Warnings          []issueResponse      `json:"warnings"`
	DuplicatesRemoved int                  `json:"duplicates_removed"`
	PlanEntries       int                  `json:"plan_entries"`
	RecordsBackfilled int                  `json:"records_backfilled"`
}

type migrateResponse struct {
	Success         bool                 `json:"success"`
	AlreadyMigrated bool                 `json:"already_migrated"`
	Message         string               `json:"message"`
	Data            *migrateDataResponse `json:"data,omitempty"`
}

type medicationResponse struct {
	ID           string     `json:"id"`
	CycleID      string     `json:"cycle_id"`
	CycleDay     int        `json:"cycle_day"`
	Type         string     `json:"type"`
	Source       string     `json:"source"`
	SourceID     string     `json:"source_id"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	ActualDosage string     `json:"actual_dosage"`
	Time         string     `json:"time"`
	Refrigerated bool       `json:"refrigerated"`
	StartDay     int        `json:"start_day,omitempty"`
	EndDay       int        `json:"end_day,omitempty"`
	Taken        bool       `json:"taken"`
	Skipped      bool       `json:"skipped"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	Notes        string     `json:"notes"`
	MigratedAt   time.Time  `json:"migrated_at"`
}

// migrateHandler godoc
// @Summary Migrar datos viejos del ciclo
// @Description Aplana el plan y los registros viejos, valida, deduplica y rellena el motor. Body opcional.
// @Tags migration
// @Accept json
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param payload body migrateRequest false "opciones"
// @Success 200 {object} migrateResponse
// @Failure 400 {string} string "invalid json"
// @Failure 422 {object} migrateResponse "validación fallida"
// @Router /cycles/{cycleID}/migrate [post]
func migrateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req migrateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Migrate(r.Context(), chi.URLParam(r, "cycleID"), Options{
			SkipIncompleteData: req.SkipIncompleteData,
			DryRun:             req.DryRun,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		status := http.StatusOK
		if !res.Success {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, toMigrateResponse(res))
	}
}

// listMigratedHandler godoc
// @Summary Listar medicaciones migradas
// @Tags migration
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Success 200 {array} medicationResponse
// @Router /cycles/{cycleID}/migrated [get]
func listMigratedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meds, err := svc.ListMigrated(r.Context(), chi.URLParam(r, "cycleID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]medicationResponse, 0, len(meds))
		for _, m := range meds {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toMigrateResponse(res Result) migrateResponse {
	out := migrateResponse{
		Success:         res.Success,
		AlreadyMigrated: res.AlreadyMigrated,
		Message:         res.Message,
	}
	if res.Data == nil {
		return out
	}

	d := res.Data
	data := &migrateDataResponse{
		MigratedCount:     len(d.Report.Medications),
		SkippedCount:      d.Report.SkippedCount,
		ErrorCount:        d.Report.ErrorCount,
		Errors:            make([]entryErrorResponse, 0, len(d.Report.Errors)),
		Summary:           d.Report.Summary,
		IsValid:           d.Validation.IsValid,
		ValidationErrors:  toIssues(d.Validation.Errors),
		Warnings:          toIssues(d.Validation.Warnings),
		DuplicatesRemoved: d.DuplicatesRemoved,
		PlanEntries:       d.PlanEntries,
		RecordsBackfilled: d.RecordsBackfilled,
	}
	for _, e := range d.Report.Errors {
		data.Errors = append(data.Errors, entryErrorResponse{Ref: e.Ref, Message: e.Message})
	}
	out.Data = data
	return out
}

func toIssues(in []Issue) []issueResponse {
	out := make([]issueResponse, 0, len(in))
	for _, i := range in {
		out = append(out, issueResponse{Index: i.Index, ID: i.ID, Field: i.Field, Message: i.Message})
	}
	return out
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:           m.ID,
		CycleID:      m.CycleID,
		CycleDay:     m.CycleDay,
		Type:         string(m.Type),
		Source:       string(m.Source),
		SourceID:     m.SourceID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		ActualDosage: m.ActualDosage,
		Time:         m.Time,
		Refrigerated: m.Refrigerated,
		StartDay:     m.StartDay,
		EndDay:       m.EndDay,
		Taken:        m.Taken,
		Skipped:      m.Skipped,
		TakenAt:      m.TakenAt,
		Notes:        m.Notes,
		MigratedAt:   m.MigratedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
