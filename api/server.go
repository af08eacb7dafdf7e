/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in error logs
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the timesheet front end

ROUTE GROUPS:
  /api/employees/*      Roster, schedules and manual events
  /api/holidays/*       Holiday registry
  /api/cities/*         Cities grouping posts for LOCAL holidays
  /api/schedules/*      Batch generation
  /api/roster/*         Spreadsheet import and template
  /api/posts            Post history
  /api/legacy/*         Legacy store migration
  /api/scenarios/*      Demo rosters (dev only)
  /api/health           Liveness
  /                     Endpoint index

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/rota/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultAllowedOrigins are used when the config lists none.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Put("/", h.UpdateEmployee)
				r.Delete("/", h.DeleteEmployee)
				r.Get("/schedule", h.GetSchedule)
				r.Get("/events", h.ListEvents)
				r.Put("/events", h.SetEvents)
				r.Put("/events/{date}", h.SetEvent)
				r.Delete("/events/{date}", h.DeleteEvent)
			})
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Post("/defaults", h.AddDefaultHolidays)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		// City routes
		r.Route("/cities", func(r chi.Router) {
			r.Get("/", h.ListCities)
			r.Post("/", h.CreateCity)
			r.Get("/{city}", h.GetCity)
			r.Put("/{city}", h.UpdateCity)
			r.Delete("/{city}", h.DeleteCity)
		})

		// Schedule routes
		r.Post("/schedules/batch", h.BatchSchedules)

		// Roster routes
		r.Route("/roster", func(r chi.Router) {
			r.Post("/import", h.ImportRoster)
			r.Get("/template", h.ExportTemplate)
		})
		r.Get("/posts", h.ListPosts)

		// Legacy store routes
		r.Route("/legacy", func(r chi.Router) {
			r.Post("/import", h.ImportLegacy)
			r.Get("/export", h.ExportLegacy)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetStore)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Rota Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Rota Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - List employees</li>
<li><a href="/api/holidays">/api/holidays</a> - List holidays</li>
<li><a href="/api/cities">/api/cities</a> - List cities</li>
<li><a href="/api/posts">/api/posts</a> - List posts</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List demo rosters</li>
<li><a href="/api/roster/template">/api/roster/template</a> - Roster template</li>
</ul>
</body>
</html>`))
	})

	return r
}
