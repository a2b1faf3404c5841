package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"treatment-tracker/internal/platform/httpclient"
	"treatment-tracker/internal/platform/logger"
	cycleports "treatment-tracker/internal/ports/cycles"

	"github.com/sony/gobreaker/v2"
)

var ErrNotConfigured = errors.New("remote cycles provider not configured")

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// Fallos consecutivos antes de abrir el circuito; 0 => 5
	MaxFailures uint32
	// Tiempo en estado abierto antes de probar de nuevo; 0 => 30s
	OpenTimeout time.Duration
}

// Provider lee los ciclos de otro servicio por HTTP (GET /cycles/{id}).
type Provider struct {
	client *httpclient.Client
	cb     *gobreaker.CircuitBreaker[cycleports.Cycle]
	log    logger.Logger
}

func New(cfg Config, log logger.Logger) (*Provider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(map[string]any{"component": "cycles_remote"})

	h := http.Header{}
	if k := strings.TrimSpace(cfg.APIKey); k != "" {
		h.Set("X-API-Key", k)
	}
	client, err := httpclient.New(httpclient.Options{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout, Header: h})
	if err != nil {
		return nil, err
	}

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[cycleports.Cycle](gobreaker.Settings{
		Name:    "cycles",
		Timeout: openTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		// un 404 es una respuesta válida del upstream
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, cycleports.ErrCycleNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit state changed", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Provider{client: client, cb: cb, log: log}, nil
}

type cycleDTO struct {
	ID         string `json:"id"`
	StartDate  string `json:"start_date"`
	LoggedDays []int  `json:"logged_days"`
}

func (p *Provider) GetCycle(ctx context.Context, cycleID string) (cycleports.Cycle, error) {
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" {
		return cycleports.Cycle{}, cycleports.ErrCycleNotFound
	}

	c, err := p.cb.Execute(func() (cycleports.Cycle, error) {
		return p.fetch(ctx, cycleID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return cycleports.Cycle{}, fmt.Errorf("cycles upstream unavailable: %w", err)
		}
		return cycleports.Cycle{}, err
	}
	return c, nil
}

func (p *Provider) fetch(ctx context.Context, cycleID string) (cycleports.Cycle, error) {
	var dto cycleDTO
	err := p.client.GetJSON(ctx, "/cycles/"+url.PathEscape(cycleID), &dto)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return cycleports.Cycle{}, cycleports.ErrCycleNotFound
		}
		p.log.Error("get cycle failed", map[string]any{"cycle_id": cycleID, "err": err})
		return cycleports.Cycle{}, err
	}

	start, err := time.Parse("2006-01-02", dto.StartDate)
	if err != nil {
		return cycleports.Cycle{}, fmt.Errorf("cycle %s: bad start_date %q", cycleID, dto.StartDate)
	}
	id := dto.ID
	if id == "" {
		id = cycleID
	}
	return cycleports.Cycle{ID: id, StartDate: start, LoggedDays: dto.LoggedDays}, nil
}
