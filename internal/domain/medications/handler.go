package medications

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/cycles/{cycleID}/plan", getPlanHandler(svc))
	r.Put("/cycles/{cycleID}/plan", replacePlanHandler(svc))

	r.Get("/cycles/{cycleID}/overview", overviewHandler(svc))
	r.Get("/cycles/{cycleID}/days/{day}/medications", dayMedicationsHandler(svc))

	// taken | skipped | reset, ?origin=recurring|one-time
	r.Post("/cycles/{cycleID}/days/{day}/entries/{entryID}/{action}", adherenceHandler(svc))

	r.Post("/cycles/{cycleID}/days/{day}/one-time", addOneTimeHandler(svc))
	r.Patch("/cycles/{cycleID}/days/{day}/one-time/{entryID}", updateOneTimeHandler(svc))
	r.Delete("/cycles/{cycleID}/days/{day}/one-time/{entryID}", deleteOneTimeHandler(svc))

	r.Post("/cycles/{cycleID}/days/{day}/reconcile", reconcileDayHandler(svc))
}

type entryRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Meridiem     string `json:"meridiem" enums:"AM,PM"`
	Refrigerated bool   `json:"refrigerated"`
	StartDay     int    `json:"start_day"`
	EndDay       int    `json:"end_day"`
	Notes        string `json:"notes"`
}

type replacePlanRequest struct {
	Entries []entryRequest `json:"entries"`
}

type oneTimeRequest struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Hour         int    `json:"hour"`
	Minute       int    `json:"minute"`
	Meridiem     string `json:"meridiem" enums:"AM,PM"`
	Refrigerated bool   `json:"refrigerated"`
	Notes        string `json:"notes"`
	Date         string `json:"date"` // opcional, YYYY-MM-DD
}

type takenRequest struct {
	TakenAt      string `json:"taken_at"` // RFC3339, opcional
	ActualDosage string `json:"actual_dosage"`
}

type entryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Time         string `json:"time"`
	Refrigerated bool   `json:"refrigerated"`
	StartDay     int    `json:"start_day"`
	EndDay       int    `json:"end_day"`
	Notes        string `json:"notes"`
}

type planResponse struct {
	CycleID   string          `json:"cycle_id"`
	Entries   []entryResponse `json:"entries"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type oneTimeResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Time         string     `json:"time"`
	Refrigerated bool       `json:"refrigerated"`
	Status       string     `json:"status"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	Notes        string     `json:"notes"`
}

type unifiedEntryResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	ActualDosage string     `json:"actual_dosage,omitempty"`
	Time         string     `json:"time"`
	TimeKey      int        `json:"time_key"`
	Refrigerated bool       `json:"refrigerated"`
	Origin       string     `json:"origin"`
	Taken        bool       `json:"taken"`
	Skipped      bool       `json:"skipped"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	Notes        string     `json:"notes"`
}

type dayResponse struct {
	CycleID        string                 `json:"cycle_id"`
	Day            int                    `json:"day"`
	Entries        []unifiedEntryResponse `json:"entries"`
	TotalCount     int                    `json:"total_count"`
	CompletedCount int                    `json:"completed_count"`
}

type dayBreakdownResponse struct {
	Day       int `json:"day"`
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

type overviewResponse struct {
	CycleID              string                 `json:"cycle_id"`
	TotalMedications     int                    `json:"total_medications"`
	CompletedMedications int                    `json:"completed_medications"`
	AdherenceRate        float64                `json:"adherence_rate"`
	DailyBreakdown       []dayBreakdownResponse `json:"daily_breakdown"`
}

type adherenceResponse struct {
	RecurringEntryID string     `json:"recurring_entry_id"`
	Status           string     `json:"status"`
	ActualDosage     string     `json:"actual_dosage,omitempty"`
	TakenAt          *time.Time `json:"taken_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

type recordResponse struct {
	ID        string              `json:"id"`
	CycleID   string              `json:"cycle_id"`
	CycleDay  int                 `json:"cycle_day"`
	Date      string              `json:"date,omitempty"`
	Adherence []adherenceResponse `json:"adherence"`
	OneTime   []oneTimeResponse   `json:"one_time"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt *time.Time          `json:"updated_at,omitempty"`
}

// getPlanHandler godoc
// @Summary Obtener plan recurrente
// @Tags medications
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Success 200 {object} planResponse
// @Failure 404 {string} string "plan not found"
// @Router /cycles/{cycleID}/plan [get]
func getPlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPlan(r.Context(), chi.URLParam(r, "cycleID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(p))
	}
}

// replacePlanHandler godoc
// @Summary Reemplazar plan recurrente
// @Description Reemplaza todas las entradas. Conservar el id de una entrada mantiene su adherencia histórica.
// @Tags medications
// @Accept json
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param payload body replacePlanRequest true "entradas del plan"
// @Success 200 {object} planResponse
// @Failure 400 {string} string "invalid json / entrada inválida"
// @Router /cycles/{cycleID}/plan [put]
func replacePlanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replacePlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := make([]EntryInput, 0, len(req.Entries))
		for _, e := range req.Entries {
			in = append(in, EntryInput{
				ID:           e.ID,
				Name:         e.Name,
				Dosage:       e.Dosage,
				Hour:         e.Hour,
				Minute:       e.Minute,
				Meridiem:     Meridiem(e.Meridiem),
				Refrigerated: e.Refrigerated,
				StartDay:     e.StartDay,
				EndDay:       e.EndDay,
				Notes:        e.Notes,
			})
		}

		p, err := svc.ReplacePlan(r.Context(), chi.URLParam(r, "cycleID"), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPlanResponse(p))
	}
}

// dayMedicationsHandler godoc
// @Summary Medicaciones del día
// @Description Vista unificada (recurrentes + puntuales) ordenada por hora.
// @Tags medications
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param day path int true "día del ciclo (1-based)"
// @Success 200 {object} dayResponse
// @Failure 400 {string} string "invalid day"
// @Router /cycles/{cycleID}/days/{day}/medications [get]
func dayMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}
		v := svc.GetMedicationsForDay(r.Context(), chi.URLParam(r, "cycleID"), day)
		writeJSON(w, http.StatusOK, toDayResponse(v))
	}
}

// overviewHandler godoc
// @Summary Resumen de adherencia del ciclo
// @Tags medications
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Success 200 {object} overviewResponse
// @Failure 404 {string} string "no schedule for cycle"
// @Router /cycles/{cycleID}/overview [get]
func overviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov := svc.GetScheduleOverview(r.Context(), chi.URLParam(r, "cycleID"))
		if ov == nil {
			http.Error(w, "no schedule for cycle", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toOverviewResponse(*ov))
	}
}

// adherenceHandler godoc
// @Summary Cambiar adherencia de una entrada
// @Description action: taken, skipped o reset. Body solo para taken (opcional).
// @Tags medications
// @Accept json
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param day path int true "día del ciclo"
// @Param entryID path string true "ID de la entrada"
// @Param action path string true "taken | skipped | reset"
// @Param origin query string true "recurring | one-time"
// @Param payload body takenRequest false "solo taken"
// @Success 200 {object} recordResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "entry not found"
// @Router /cycles/{cycleID}/days/{day}/entries/{entryID}/{action} [post]
func adherenceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}
		ref := EntryRef{
			CycleID: chi.URLParam(r, "cycleID"),
			Day:     day,
			EntryID: chi.URLParam(r, "entryID"),
			Origin:  Origin(strings.TrimSpace(r.URL.Query().Get("origin"))),
		}

		var (
			rec     DailyRecord
			applied bool
			err     error
		)
		switch chi.URLParam(r, "action") {
		case "taken":
			var req takenRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			opts := TakeOptions{ActualDosage: req.ActualDosage}
			if s := strings.TrimSpace(req.TakenAt); s != "" {
				at, perr := time.Parse(time.RFC3339, s)
				if perr != nil {
					http.Error(w, "taken_at must be RFC3339", http.StatusBadRequest)
					return
				}
				opts.TakenAt = &at
			}
			rec, applied, err = svc.MarkTaken(r.Context(), ref, opts)
		case "skipped":
			rec, applied, err = svc.MarkSkipped(r.Context(), ref)
		case "reset":
			rec, applied, err = svc.Reset(r.Context(), ref)
		default:
			http.Error(w, "unknown action", http.StatusNotFound)
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !applied {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// addOneTimeHandler godoc
// @Summary Agregar medicación puntual
// @Tags medications
// @Accept json
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param day path int true "día del ciclo"
// @Param payload body oneTimeRequest true "minute en múltiplos de 15"
// @Success 201 {object} oneTimeResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "cycle not found"
// @Router /cycles/{cycleID}/days/{day}/one-time [post]
func addOneTimeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}
		var req oneTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		cycleID := chi.URLParam(r, "cycleID")

		var date time.Time
		if s := strings.TrimSpace(req.Date); s != "" {
			d, err := time.Parse("2006-01-02", s)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = d
		} else {
			d, found, err := svc.dateForDay(r.Context(), cycleID, day)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if !found {
				http.Error(w, "cycle not found", http.StatusNotFound)
				return
			}
			date = d
		}

		e, err := svc.AddOneTimeEntry(r.Context(), cycleID, day, date, req.input())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toOneTimeResponse(e))
	}
}

// updateOneTimeHandler godoc
// @Summary Editar medicación puntual
// @Description No cambia el estado de adherencia.
// @Tags medications
// @Accept json
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param day path int true "día del ciclo"
// @Param entryID path string true "ID de la entrada"
// @Param payload body oneTimeRequest true "campos editables"
// @Success 200 {object} oneTimeResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "entry not found"
// @Router /cycles/{cycleID}/days/{day}/one-time/{entryID} [patch]
func updateOneTimeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}
		var req oneTimeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, found, err := svc.UpdateOneTimeEntry(r.Context(), chi.URLParam(r, "cycleID"), day, chi.URLParam(r, "entryID"), req.input())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !found {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toOneTimeResponse(e))
	}
}

// deleteOneTimeHandler godoc
// @Summary Borrar medicación puntual
// @Tags medications
// @Param cycleID path string true "ID del ciclo"
// @Param day path int true "día del ciclo"
// @Param entryID path string true "ID de la entrada"
// @Success 204
// @Failure 404 {string} string "entry not found"
// @Router /cycles/{cycleID}/days/{day}/one-time/{entryID} [delete]
func deleteOneTimeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}
		found, err := svc.DeleteOneTimeEntry(r.Context(), chi.URLParam(r, "cycleID"), day, chi.URLParam(r, "entryID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !found {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// reconcileDayHandler godoc
// @Summary Fusionar registros duplicados del día
// @Tags medications
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param day path int true "día del ciclo"
// @Success 200 {object} recordResponse
// @Failure 404 {string} string "no record for day"
// @Router /cycles/{cycleID}/days/{day}/reconcile [post]
func reconcileDayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, ok := parseDay(w, r)
		if !ok {
			return
		}
		rec, found, err := svc.ReconcileDay(r.Context(), chi.URLParam(r, "cycleID"), day)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !found {
			http.Error(w, "no record for day", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func (req oneTimeRequest) input() OneTimeInput {
	return OneTimeInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		Hour:         req.Hour,
		Minute:       req.Minute,
		Meridiem:     Meridiem(req.Meridiem),
		Refrigerated: req.Refrigerated,
		Notes:        req.Notes,
	}
}

func parseDay(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return 0, false
	}
	return day, true
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

func toPlanResponse(p RecurringPlan) planResponse {
	out := planResponse{
		CycleID:   p.CycleID,
		Entries:   make([]entryResponse, 0, len(p.Entries)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, e := range p.Entries {
		out.Entries = append(out.Entries, entryResponse{
			ID:           e.ID,
			Name:         e.Name,
			Dosage:       e.Dosage,
			Time:         FormatClock(e.Hour, e.Minute, e.Meridiem),
			Refrigerated: e.Refrigerated,
			StartDay:     e.StartDay,
			EndDay:       e.EndDay,
			Notes:        e.Notes,
		})
	}
	return out
}

func toOneTimeResponse(e OneTimeEntry) oneTimeResponse {
	return oneTimeResponse{
		ID:           e.ID,
		Name:         e.Name,
		Dosage:       e.Dosage,
		Time:         FormatClock(e.Hour, e.Minute, e.Meridiem),
		Refrigerated: e.Refrigerated,
		Status:       string(e.Status),
		TakenAt:      e.TakenAt,
		Notes:        e.Notes,
	}
}

func toDayResponse(v UnifiedView) dayResponse {
	out := dayResponse{
		CycleID:        v.CycleID,
		Day:            v.Day,
		Entries:        make([]unifiedEntryResponse, 0, len(v.Entries)),
		TotalCount:     v.TotalCount,
		CompletedCount: v.CompletedCount,
	}
	for _, e := range v.Entries {
		out.Entries = append(out.Entries, unifiedEntryResponse{
			ID:           e.ID,
			Name:         e.Name,
			Dosage:       e.Dosage,
			ActualDosage: e.ActualDosage,
			Time:         e.Time,
			TimeKey:      e.TimeKey,
			Refrigerated: e.Refrigerated,
			Origin:       string(e.Origin),
			Taken:        e.Taken,
			Skipped:      e.Skipped,
			TakenAt:      e.TakenAt,
			Notes:        e.Notes,
		})
	}
	return out
}

func toOverviewResponse(ov Overview) overviewResponse {
	out := overviewResponse{
		CycleID:              ov.CycleID,
		TotalMedications:     ov.TotalMedications,
		CompletedMedications: ov.CompletedMedications,
		AdherenceRate:        ov.AdherenceRate,
		DailyBreakdown:       make([]dayBreakdownResponse, 0, len(ov.DailyBreakdown)),
	}
	for _, d := range ov.DailyBreakdown {
		out.DailyBreakdown = append(out.DailyBreakdown, dayBreakdownResponse{Day: d.Day, Total: d.Total, Completed: d.Completed})
	}
	return out
}

func toRecordResponse(rec DailyRecord) recordResponse {
	out := recordResponse{
		ID:        rec.ID,
		CycleID:   rec.CycleID,
		CycleDay:  rec.CycleDay,
		Adherence: make([]adherenceResponse, 0, len(rec.Adherence)),
		OneTime:   make([]oneTimeResponse, 0, len(rec.OneTime)),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if !rec.Date.IsZero() {
		out.Date = rec.Date.Format("2006-01-02")
	}
	for _, a := range rec.Adherence {
		out.Adherence = append(out.Adherence, adherenceResponse{
			RecurringEntryID: a.RecurringEntryID,
			Status:           string(a.Status),
			ActualDosage:     a.ActualDosage,
			TakenAt:          a.TakenAt,
			Notes:            a.Notes,
		})
	}
	for _, e := range rec.OneTime {
		out.OneTime = append(out.OneTime, toOneTimeResponse(e))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
