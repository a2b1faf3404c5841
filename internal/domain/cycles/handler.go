package cycles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/cycles", createCycleHandler(svc))
	r.Get("/cycles/{cycleID}", getCycleHandler(svc))

	// Registrar un día del ciclo (acota el overview)
	r.Post("/cycles/{cycleID}/days", logDayHandler(svc))
}

type createCycleRequest struct {
	Label     string `json:"label"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
}

type logDayRequest struct {
	Day int `json:"day"`
}

type cycleResponse struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	StartDate  string    `json:"start_date"`
	LoggedDays []int     `json:"logged_days"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// createCycleHandler godoc
// @Summary Registrar ciclo de tratamiento
// @Tags cycles
// @Accept json
// @Produce json
// @Param payload body createCycleRequest true "start_date en formato YYYY-MM-DD"
// @Success 201 {object} cycleResponse
// @Failure 400 {string} string "invalid json / start_date inválido"
// @Router /cycles [post]
func createCycleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCycleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		c, err := svc.Register(r.Context(), RegisterInput{Label: req.Label, StartDate: start})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCycleResponse(c))
	}
}

// getCycleHandler godoc
// @Summary Obtener ciclo
// @Tags cycles
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Success 200 {object} cycleResponse
// @Failure 404 {string} string "cycle not found"
// @Router /cycles/{cycleID} [get]
func getCycleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "cycleID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCycleResponse(c))
	}
}

// logDayHandler godoc
// @Summary Registrar día del ciclo
// @Tags cycles
// @Accept json
// @Produce json
// @Param cycleID path string true "ID del ciclo"
// @Param payload body logDayRequest true "día 1-based"
// @Success 200 {object} cycleResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "cycle not found"
// @Router /cycles/{cycleID}/days [post]
func logDayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logDayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		c, err := svc.LogDay(r.Context(), chi.URLParam(r, "cycleID"), req.Day)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCycleResponse(c))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "cycle not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toCycleResponse(c Cycle) cycleResponse {
	days := c.LoggedDays
	if days == nil {
		days = []int{}
	}
	return cycleResponse{
		ID:         c.ID,
		Label:      c.Label,
		StartDate:  c.StartDate.Format("2006-01-02"),
		LoggedDays: days,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
