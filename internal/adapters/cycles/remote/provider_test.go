package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	cycleports "treatment-tracker/internal/ports/cycles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_GetCycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		switch r.URL.Path {
		case "/cycles/c1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","start_date":"2026-03-01","logged_days":[1,2,4]}`))
		default:
			http.Error(w, "cycle not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p, err := New(Config{BaseURL: srv.URL, APIKey: "secret"}, nil)
	require.NoError(t, err)

	c, err := p.GetCycle(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, []int{1, 2, 4}, c.LoggedDays)
	assert.Equal(t, "2026-03-03", c.DateForDay(3).Format("2006-01-02"))

	_, err = p.GetCycle(context.Background(), "nope")
	assert.ErrorIs(t, err, cycleports.ErrCycleNotFound)
}

func TestProvider_BreakerOpensOnUpstreamErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := New(Config{BaseURL: srv.URL, MaxFailures: 2, OpenTimeout: time.Minute}, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := p.GetCycle(context.Background(), "c1")
		require.Error(t, err)
	}

	_, err = p.GetCycle(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
	assert.Equal(t, int32(2), hits.Load())
}

func TestProvider_NotFoundDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p, err := New(Config{BaseURL: srv.URL, MaxFailures: 1}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := p.GetCycle(context.Background(), "x")
		assert.True(t, errors.Is(err, cycleports.ErrCycleNotFound))
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
