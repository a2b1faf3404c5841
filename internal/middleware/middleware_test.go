package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"treatment-tracker/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testObserver struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (o *testObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, method+" "+route)
	o.status = append(o.status, status)
}

func TestRequestLogger_UsesRoutePattern(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	obs := &testObserver{}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestID)
	r.Use(RequestLogger(logger.NewZap(zap.New(core)), obs))
	r.Get("/cycles/{cycleID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cycles/abc", nil))

	if rr.Header().Get(chimw.RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
	if len(obs.routes) != 1 || obs.routes[0] != "GET /cycles/{cycleID}" || obs.status[0] != http.StatusNotFound {
		t.Fatalf("unexpected observation %v %v", obs.routes, obs.status)
	}
	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 || entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}

func TestRecover_Returns500(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	h := Recover(logger.NewZap(zap.New(core)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}
