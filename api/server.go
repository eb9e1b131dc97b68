/*
server.go - Router and middleware wiring

PURPOSE:
  Builds the chi router for the payroll API: standard middleware stack,
  CORS for the review UI origin, and the /api route tree.

ROUTES:
  POST /api/runs                    process and store a workbook
  GET  /api/runs                    run history, newest first
  GET  /api/runs/{runID}            one run with its counters
  GET  /api/runs/{runID}/results    emitted variables in order
  GET  /api/runs/{runID}/audit      per-employee review lines
  GET  /api/runs/{runID}/employees/{legajo}  one employee's review line
  GET  /api/runs/{runID}/export     liquidation workbook download
  POST /api/schedule/parse          parse one free-text schedule
  GET  /api/catalog                 the variable catalog
  GET  /api/health                  liveness probe
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clinsuite/payroll-engine/config"
)

// NewRouter assembles the HTTP router around the handler.
func NewRouter(h *Handler, corsCfg config.CORSConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/catalog", h.GetCatalog)

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", h.CreateRun)
			r.Get("/", h.ListRuns)

			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", h.GetRun)
				r.Get("/results", h.GetResults)
				r.Get("/audit", h.GetAudit)
				r.Get("/employees/{legajo}", h.GetEmployeeAudit)
				r.Get("/export", h.ExportRun)
			})
		})

		r.Post("/schedule/parse", h.ParseSchedule)
	})

	return r
}
