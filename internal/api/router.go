// Package api wires the HTTP handlers and middleware into a chi router.
package api

import (
	"net/http"

	"github.com/dvloznov/finance-dashboard/internal/api/handlers"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router needs. Metrics may be nil.
type Deps struct {
	Service   *dashboard.Service
	JobStore  jobs.JobStore
	Publisher jobs.Publisher
	Defaults  generator.Config
	Metrics   *metrics.Metrics
	RateLimit config.RateLimitConfig
	Log       zerolog.Logger
}

// NewRouter builds the HTTP handler for the dashboard API.
func NewRouter(d Deps) http.Handler {
	dash := handlers.NewDashboardHandler(d.Service)
	jobsHandler := handlers.NewJobsHandler(d.JobStore, d.Publisher, d.Defaults, d.Log)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recovery(d.Log),
		middleware.Logger(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORS,
	)
	if d.RateLimit.Enabled {
		r.Use(middleware.RateLimit(d.RateLimit.RPS, d.RateLimit.Burst, d.Log))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", dash.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", dash.Dataset)
		r.Get("/dashboard", dash.Dashboard)
		r.Get("/kpis", dash.KPIs)
		r.Get("/summary", dash.Summary)

		r.Route("/series", func(r chi.Router) {
			r.Get("/revenue", dash.RevenueSeries)
			r.Get("/expenses", dash.ExpenseSeries)
			r.Get("/cost-drivers", dash.CostDrivers)
		})

		r.Get("/export.csv", dash.ExportCSV)
		r.Get("/export.xlsx", dash.ExportXLSX)
		r.Get("/charts/{chart}.png", dash.Chart)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jobsHandler.ListJobs)
			r.Post("/generate", jobsHandler.Generate)
			r.Get("/{id}", jobsHandler.GetJob)
		})
	})

	return r
}
