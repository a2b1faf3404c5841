package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del servicio en un registry propio.
// Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	registry *prometheus.Registry

	transitions  *prometheus.CounterVec
	reconciled   prometheus.Counter
	migrations   *prometheus.CounterVec
	migratedMeds *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	sweepRuns    *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adherence_transitions_total",
			Help:      "Cambios de adherencia aplicados por origen y estado.",
		}, []string{"origin", "status"}),
		reconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_records_discarded_total",
			Help:      "Registros diarios duplicados descartados al reconciliar.",
		}),
		migrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "Ejecuciones de migración por resultado.",
		}, []string{"result"}),
		migratedMeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_entries_total",
			Help:      "Entradas procesadas por la migración: migrated, skipped, errored.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de requests HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_sweeps_total",
			Help:      "Barridos de duplicados por resultado.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.transitions,
		m.reconciled,
		m.migrations,
		m.migratedMeds,
		m.httpRequests,
		m.httpDuration,
		m.sweepRuns,
	)
	return m
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// medications.Recorder

func (m *Metrics) AdherenceTransition(origin, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(origin, status).Inc()
}

func (m *Metrics) RecordsReconciled(discarded int) {
	if m == nil || discarded <= 0 {
		return
	}
	m.reconciled.Add(float64(discarded))
}

// migration.Recorder

func (m *Metrics) MigrationFinished(result string, migrated, skipped, errored int) {
	if m == nil {
		return
	}
	m.migrations.WithLabelValues(result).Inc()
	m.migratedMeds.WithLabelValues("migrated").Add(float64(migrated))
	m.migratedMeds.WithLabelValues("skipped").Add(float64(skipped))
	m.migratedMeds.WithLabelValues("errored").Add(float64(errored))
}

// jobs

func (m *Metrics) SweepFinished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sweepRuns.WithLabelValues(result).Inc()
}

// middleware

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
