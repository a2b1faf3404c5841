package router

import (
	"database/sql"
	"net/http"

	_ "treatment-tracker/docs"
	mem "treatment-tracker/internal/adapters/storage/memory"
	pg "treatment-tracker/internal/adapters/storage/postgres"
	"treatment-tracker/internal/domain/cycles"
	"treatment-tracker/internal/domain/medications"
	"treatment-tracker/internal/domain/migration"
	"treatment-tracker/internal/middleware"
	"treatment-tracker/internal/platform/logger"
	"treatment-tracker/internal/platform/metrics"
	cycleports "treatment-tracker/internal/ports/cycles"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene, usa Postgres (schema ya creado). Si no, in-memory.
	DB *sql.DB

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Opcional: proveedor remoto de ciclos. Si es nil se usan los ciclos locales.
	Cycles cycleports.Provider

	// Opcional: origen de datos legacy. Si es nil, uno en memoria vacío.
	Legacy migration.LegacySource
}

// App expone el handler y los servicios que cmd necesita (jobs).
type App struct {
	Handler     http.Handler
	Cycles      *cycles.Service
	Medications *medications.Service
	Migration   *migration.Service
}

func New(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	var (
		cycleRepo  cycles.Repository
		planRepo   medications.PlanRepository
		recordRepo medications.AdherenceRepository
		medRepo    migration.MedicationRepository
	)
	if opts.DB != nil {
		cycleRepo = pg.NewCyclesRepo(opts.DB)
		planRepo = pg.NewPlansRepo(opts.DB)
		recordRepo = pg.NewAdherenceRepo(opts.DB)
		medRepo = pg.NewMedicationsRepo(opts.DB)
	} else {
		cycleRepo = mem.NewCycleRepo()
		planRepo = mem.NewPlanRepo()
		recordRepo = mem.NewAdherenceRepo()
		medRepo = mem.NewMedicationRepo()
	}

	legacy := opts.Legacy
	if legacy == nil {
		legacy = mem.NewLegacySource()
	}

	// Services por módulo
	cyclesSvc := cycles.NewService(cycleRepo)
	var provider cycleports.Provider = cyclesSvc
	if opts.Cycles != nil {
		provider = opts.Cycles
	}

	medOpts := medications.Options{Logger: log}
	migOpts := migration.ServiceOptions{Logger: log}
	if opts.Metrics != nil {
		medOpts.Metrics = opts.Metrics
		migOpts.Metrics = opts.Metrics
	}
	medsSvc := medications.NewService(planRepo, recordRepo, provider, medOpts)
	migSvc := migration.NewService(medRepo, legacy, medsSvc, migOpts)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogger(log, opts.Metrics))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	cycles.RegisterRoutes(r, cyclesSvc)
	medications.RegisterRoutes(r, medsSvc)
	migration.RegisterRoutes(r, migSvc)

	return &App{
		Handler:     r,
		Cycles:      cyclesSvc,
		Medications: medsSvc,
		Migration:   migSvc,
	}
}

func NewRouter(opts Options) http.Handler {
	return New(opts).Handler
}
