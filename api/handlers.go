/*
handlers.go - HTTP API handlers for the rota engine

PURPOSE:
  Exposes the schedule engine and its configuration store via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  rota package for classification.

ENDPOINTS:
  Employees:
    GET    /api/employees                         List roster
    POST   /api/employees                         Create or replace employee
    GET    /api/employees/{name}                  Get employee
    PUT    /api/employees/{name}                  Replace employee
    DELETE /api/employees/{name}                  Delete employee and events
    GET    /api/employees/{name}/schedule         Schedule (?start=&end=)

  Manual events:
    GET    /api/employees/{name}/events           List overrides
    PUT    /api/employees/{name}/events           Mark {kind, start, days} range
    PUT    /api/employees/{name}/events/{date}    Set REST/HOLIDAY override
    DELETE /api/employees/{name}/events/{date}    Remove override

  Holidays:
    GET    /api/holidays                          Registry in match order
    POST   /api/holidays                          Register holiday
    POST   /api/holidays/defaults                 Seed fixed national holidays
    DELETE /api/holidays/{id}                     Delete holiday

  Cities:
    GET    /api/cities                            List cities and their posts
    POST   /api/cities                            Create city
    GET    /api/cities/{city}                     Get city
    PUT    /api/cities/{city}                     Replace posts, rebinding LOCAL holidays
    DELETE /api/cities/{city}                     Delete city, unbinding holidays

  Schedules:
    POST   /api/schedules/batch                   Many employees, one snapshot

  Roster:
    POST   /api/roster/import                     Upload .xlsx/.csv (multipart "file")
    GET    /api/roster/template                   Download blank .xlsx template
    GET    /api/posts                             Posts seen on rosters

  Legacy store:
    POST   /api/legacy/import                     Load escalas_store.json
    GET    /api/legacy/export                     Dump configuration in that shape

  Scenarios:
    GET    /api/scenarios                         List demo rosters
    GET    /api/scenarios/current                 Loaded demo roster
    POST   /api/scenarios/load                    Reset and load a demo roster
    POST   /api/scenarios/reset                   Clear the store

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: configuration repository (SQLite in production)
  - Logger: zap logger for failures and skipped configuration entries
  - Options: limits and defaults from config

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator tags on DTOs)
  3. Take a configuration snapshot and build schedules from it
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON {error, details} with HTTP status:
  - 400: Validation errors, invalid dates or periods, unreadable imports
  - 404: Employee, holiday or city not found
  - 409: City name taken, or post already held by another city
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication or authorization. Deploy behind a trusted proxy.

SEE ALSO:
  - dto.go: Request/response data structures
  - validate.go: Custom validations
  - scenarios.go: Demo rosters
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/roster"
)

const (
	maxUploadBytes = 32 << 20
	xlsxMediaType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options are the limits and defaults the handlers apply.
type Options struct {
	MaxRangeDays    int
	BatchWorkers    int
	DefaultRotation rota.Variant // roster rows and API requests without one
	LegacyRotation  rota.Variant // legacy store entries without one
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   rota.Repository
	Logger  *zap.Logger
	Options Options

	validate *validator.Validate
	now      func() time.Time
	scenario scenarioState
}

// NewHandler creates a new handler with the given store.
func NewHandler(store rota.Repository, logger *zap.Logger, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !opts.DefaultRotation.Valid() {
		opts.DefaultRotation = rota.DefaultVariant
	}
	if !opts.LegacyRotation.Valid() {
		opts.LegacyRotation = rota.SixOneFixed
	}
	return &Handler{
		Store:    store,
		Logger:   logger,
		Options:  opts,
		validate: newValidator(),
		now:      time.Now,
	}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns the roster sorted by name.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": dtos})
}

// GetEmployee returns one employee.
// GET /api/employees/{name}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), nameParam(r))
	if err != nil {
		h.writeFailure(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates or replaces an employee by name.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.saveEmployee(w, r, req, http.StatusCreated)
}

// UpdateEmployee replaces the employee named in the path. A name in the
// body is ignored.
// PUT /api/employees/{name}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Name = nameParam(r)
	if err := h.validateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.saveEmployee(w, r, req, http.StatusOK)
}

func (h *Handler) saveEmployee(w http.ResponseWriter, r *http.Request, req SaveEmployeeRequest, status int) {
	emp := req.toEmployee(h.Options.DefaultRotation)
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeFailure(w, r, "Failed to save employee", err)
		return
	}
	if emp.Post != "" && !roster.IsTaxIDLike(emp.Post) {
		if err := h.Store.AddPosts(r.Context(), emp.Post); err != nil {
			h.Logger.Warn("failed to remember post", zap.String("post", emp.Post), zap.Error(err))
		}
	}
	writeJSON(w, status, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee and their manual events.
// DELETE /api/employees/{name}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), nameParam(r)); err != nil {
		h.writeFailure(w, r, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

// GetSchedule classifies every day of [start, end] for one employee.
// GET /api/employees/{name}/schedule?start=2025-03-01&end=2025-03-31
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := h.parsePeriod(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	snap, err := h.snapshot(r)
	if err != nil {
		h.writeFailure(w, r, "Failed to load configuration", err)
		return
	}

	name := nameParam(r)
	if _, ok := snap.Employee(name); !ok {
		h.writeFailure(w, r, "Failed to build schedule", fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, name))
		return
	}

	results, err := rota.BatchBuilder{Workers: 1}.Build(r.Context(), period, snap,
		rota.Selection{Mode: rota.SelectNames, Values: []string{name}})
	if err == nil && len(results) == 0 {
		err = fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, name)
	}
	if err != nil {
		h.writeFailure(w, r, "Failed to build schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, NewScheduleResponse(results[0]))
}

// BatchSchedules builds schedules for a selection of the roster from one
// snapshot.
// POST /api/schedules/batch
func (h *Handler) BatchSchedules(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sel := rota.Selection{Mode: rota.SelectionMode(req.Mode), Values: req.Values}
	if sel.Mode != "" && sel.Mode != rota.SelectAll {
		if len(sel.Values) == 0 {
			writeError(w, http.StatusBadRequest, "Invalid request body",
				fmt.Errorf("%w: values are required for mode %s", errInvalidRequest, sel.Mode))
			return
		}
		for i, v := range sel.Values {
			sel.Values[i] = rota.NormalizeName(v)
		}
	}

	period, err := h.parsePeriod(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	snap, err := h.snapshot(r)
	if err != nil {
		h.writeFailure(w, r, "Failed to load configuration", err)
		return
	}

	started := h.now()
	results, err := rota.BatchBuilder{Workers: h.Options.BatchWorkers}.Build(r.Context(), period, snap, sel)
	if err != nil {
		h.writeFailure(w, r, "Failed to build schedules", err)
		return
	}
	h.Logger.Info("batch built",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("period", period.String()),
		zap.String("mode", string(sel.Mode)),
		zap.Int("schedules", len(results)),
		zap.Duration("elapsed", h.now().Sub(started)),
	)

	resp := BatchResponse{
		Start:     period.Start.String(),
		End:       period.End.String(),
		Schedules: make([]ScheduleResponse, 0, len(results)),
		Warnings:  append([]string{}, snap.Warnings...),
	}
	for _, res := range results {
		resp.Schedules = append(resp.Schedules, NewScheduleResponse(res))
	}
	writeJSON(w, http.StatusOK, resp)
}

// parsePeriod validates a requested range before any schedule is built.
func (h *Handler) parsePeriod(start, end string) (generic.Period, error) {
	if start == "" || end == "" {
		return generic.Period{}, fmt.Errorf("%w: start and end are required", generic.ErrInvalidPeriod)
	}
	period, err := generic.ParsePeriod(start, end)
	if err != nil {
		return generic.Period{}, err
	}
	if limit := h.Options.MaxRangeDays; limit > 0 && period.Len() > limit {
		return generic.Period{}, fmt.Errorf("%w: %d days (max %d)", generic.ErrRangeTooLong, period.Len(), limit)
	}
	return period, nil
}

// snapshot loads configuration and logs entries the store had to skip.
func (h *Handler) snapshot(r *http.Request) (rota.Snapshot, error) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		return rota.Snapshot{}, err
	}
	for _, warning := range snap.Warnings {
		h.Logger.Warn("skipped configuration entry",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("entry", warning),
		)
	}
	return snap, nil
}

// =============================================================================
// MANUAL EVENT ENDPOINTS
// =============================================================================

// ListEvents returns an employee's overrides by date.
// GET /api/employees/{name}/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := nameParam(r)

	if _, err := h.Store.GetEmployee(ctx, name); err != nil {
		h.writeFailure(w, r, "Failed to list events", err)
		return
	}
	events, err := h.Store.ListEvents(ctx, name)
	if err != nil {
		h.writeFailure(w, r, "Failed to list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": toEventDTOs(events)})
}

// SetEvent marks one day as a manual rest or holiday.
// PUT /api/employees/{name}/events/{date}
func (h *Handler) SetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := nameParam(r)

	d, err := generic.ParseDate(pathParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	var req SetEventRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	kind, err := rota.ParseEventKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event kind", err)
		return
	}

	if _, err := h.Store.GetEmployee(ctx, name); err != nil {
		h.writeFailure(w, r, "Failed to set event", err)
		return
	}
	event := rota.ManualEvent{Employee: name, Date: d, Kind: kind}
	if err := h.Store.SetEvent(ctx, event); err != nil {
		h.writeFailure(w, r, "Failed to set event", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs([]rota.ManualEvent{event})[0])
}

// SetEvents marks Days consecutive days from Start with one kind. Days=1
// marks the start date only.
// PUT /api/employees/{name}/events
func (h *Handler) SetEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := nameParam(r)

	var req SetEventsRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	kind, err := rota.ParseEventKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event kind", err)
		return
	}
	start, err := generic.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	period, err := generic.NewPeriod(start, start.AddDays(req.Days-1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	if _, err := h.Store.GetEmployee(ctx, name); err != nil {
		h.writeFailure(w, r, "Failed to set events", err)
		return
	}
	events := make([]rota.ManualEvent, 0, period.Len())
	for _, d := range period.Days() {
		events = append(events, rota.ManualEvent{Employee: name, Date: d, Kind: kind})
	}
	if err := h.Store.SetEvents(ctx, events); err != nil {
		h.writeFailure(w, r, "Failed to set events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period": period.String(),
		"events": toEventDTOs(events),
	})
}

// DeleteEvent removes an override. Removing a missing override succeeds.
// DELETE /api/employees/{name}/events/{date}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	d, err := generic.ParseDate(pathParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if err := h.Store.DeleteEvent(r.Context(), nameParam(r), d); err != nil {
		h.writeFailure(w, r, "Failed to delete event", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns all holidays in the order lookups consult them.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday registers a holiday. Scope defaults to NATIONAL; LOCAL
// holidays need at least one post or a city. A city's posts replace any
// posts in the body and follow later edits of the city.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateHolidayRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	registered, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	scope := rota.ScopeNational
	if req.Scope != "" {
		if scope, err = rota.ParseScope(req.Scope); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid scope", err)
			return
		}
	}
	city := rota.NormalizeName(req.City)
	var posts []string
	switch {
	case scope == rota.ScopeNational && city != "":
		writeError(w, http.StatusBadRequest, "Invalid request body",
			fmt.Errorf("%w: only LOCAL holidays take a city", errInvalidRequest))
		return
	case scope == rota.ScopeLocal && city != "":
		c, err := h.Store.GetCity(ctx, city)
		if err != nil {
			if errors.Is(err, generic.ErrCityNotFound) {
				err = fmt.Errorf("%w: %w", errInvalidRequest, err)
			}
			h.writeFailure(w, r, "Failed to create holiday", err)
			return
		}
		posts = append([]string{}, c.Posts...)
	case scope == rota.ScopeLocal:
		if posts = rota.NormalizePosts(req.Posts); len(posts) == 0 {
			writeError(w, http.StatusBadRequest, "Invalid request body",
				fmt.Errorf("%w: LOCAL holidays need at least one post or a city", errInvalidRequest))
			return
		}
	}

	holiday := rota.HolidayRecord{
		ID:   uuid.NewString(),
		City: city,
		HolidayDefinition: rota.HolidayDefinition{
			Registered: registered,
			Name:       strings.TrimSpace(req.Name),
			Scope:      scope,
			Posts:      posts,
		},
	}
	if err := h.Store.SaveHoliday(ctx, holiday); err != nil {
		h.writeFailure(w, r, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeFailure(w, r, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// nationalHolidays are the fixed-date Brazilian national holidays.
var nationalHolidays = []struct {
	month time.Month
	day   int
	name  string
}{
	{time.January, 1, "Confraternização Universal"},
	{time.April, 21, "Tiradentes"},
	{time.May, 1, "Dia do Trabalho"},
	{time.September, 7, "Independência do Brasil"},
	{time.October, 12, "Nossa Senhora Aparecida"},
	{time.November, 2, "Finados"},
	{time.November, 15, "Proclamação da República"},
	{time.November, 20, "Dia Nacional de Zumbi e da Consciência Negra"},
	{time.December, 25, "Natal"},
}

// AddDefaultHolidays seeds the fixed national holidays. Ids derive from the
// date, so seeding the same year twice changes nothing.
// POST /api/holidays/defaults
func (h *Handler) AddDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	var req DefaultHolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	year := req.Year
	if year == 0 {
		year = h.now().Year()
	}

	dtos := make([]HolidayDTO, 0, len(nationalHolidays))
	for _, d := range nationalHolidays {
		registered := generic.NewDate(year, d.month, d.day)
		holiday := rota.HolidayRecord{
			ID: factory.LegacyHolidayID(registered.String()),
			HolidayDefinition: rota.HolidayDefinition{
				Registered: registered,
				Name:       d.name,
				Scope:      rota.ScopeNational,
			},
		}
		if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
			h.writeFailure(w, r, "Failed to create holidays", err)
			return
		}
		dtos = append(dtos, toHolidayDTO(holiday))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":   "created",
		"count":    len(dtos),
		"holidays": dtos,
	})
}

// =============================================================================
// CITY ENDPOINTS
// =============================================================================

// ListCities returns every city with its posts, sorted by name.
// GET /api/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Store.ListCities(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to list cities", err)
		return
	}

	dtos := make([]CityDTO, 0, len(cities))
	for _, c := range cities {
		dtos = append(dtos, toCityDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": dtos})
}

// GetCity returns one city.
// GET /api/cities/{city}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetCity(r.Context(), cityParam(r))
	if err != nil {
		h.writeFailure(w, r, "Failed to get city", err)
		return
	}
	writeJSON(w, http.StatusOK, toCityDTO(c))
}

// CreateCity registers a new city.
// POST /api/cities
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCityRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	name := rota.NormalizeName(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body",
			fmt.Errorf("%w: name is required", errInvalidRequest))
		return
	}

	_, err := h.Store.GetCity(ctx, name)
	switch {
	case err == nil:
		h.writeFailure(w, r, "Failed to create city", fmt.Errorf("%w: %s", generic.ErrCityExists, name))
		return
	case !errors.Is(err, generic.ErrCityNotFound):
		h.writeFailure(w, r, "Failed to create city", err)
		return
	}
	h.saveCity(w, r, rota.City{Name: name, Posts: rota.NormalizePosts(req.Posts)}, http.StatusCreated)
}

// UpdateCity replaces a city's posts. LOCAL holidays bound to the city
// take the new posts.
// PUT /api/cities/{city}
func (h *Handler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateCityRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c, err := h.Store.GetCity(ctx, cityParam(r))
	if err != nil {
		h.writeFailure(w, r, "Failed to update city", err)
		return
	}
	c.Posts = rota.NormalizePosts(req.Posts)
	h.saveCity(w, r, c, http.StatusOK)
}

// saveCity enforces that a post belongs to one city at most.
func (h *Handler) saveCity(w http.ResponseWriter, r *http.Request, c rota.City, status int) {
	ctx := r.Context()

	cities, err := h.Store.ListCities(ctx)
	if err != nil {
		h.writeFailure(w, r, "Failed to save city", err)
		return
	}
	owners := rota.PostOwners(cities)
	for _, p := range c.Posts {
		if owner, ok := owners[p]; ok && owner != c.Name {
			h.writeFailure(w, r, "Failed to save city",
				fmt.Errorf("%w: %s is in %s", generic.ErrPostInOtherCity, p, owner))
			return
		}
	}

	if err := h.Store.SaveCity(ctx, c); err != nil {
		h.writeFailure(w, r, "Failed to save city", err)
		return
	}
	if len(c.Posts) > 0 {
		if err := h.Store.AddPosts(ctx, c.Posts...); err != nil {
			h.Logger.Warn("failed to remember posts", zap.String("city", c.Name), zap.Error(err))
		}
	}
	writeJSON(w, status, toCityDTO(c))
}

// DeleteCity removes a city. Holidays bound to it keep their posts.
// DELETE /api/cities/{city}
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCity(r.Context(), cityParam(r)); err != nil {
		h.writeFailure(w, r, "Failed to delete city", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// ROSTER ENDPOINTS
// =============================================================================

// ImportRoster reads an uploaded spreadsheet and upserts its employees.
// The format comes from ?format= or the file extension.
// POST /api/roster/import
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field", err)
		return
	}
	defer file.Close()

	format := roster.Format(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		if format, err = roster.FormatFromFilename(header.Filename); err != nil {
			writeError(w, http.StatusBadRequest, "Unsupported file", err)
			return
		}
	}

	res, err := roster.NewImporter(h.Options.DefaultRotation).Import(file, format)
	if err != nil {
		h.writeFailure(w, r, "Failed to read roster", err)
		return
	}
	if err := res.Apply(r.Context(), h.Store); err != nil {
		h.writeFailure(w, r, "Failed to save roster", err)
		return
	}

	warnings := make([]string, 0, len(res.Warnings))
	for _, issue := range res.Warnings {
		warnings = append(warnings, issue.String())
	}
	h.Logger.Info("roster imported",
		zap.String("batch_id", res.BatchID),
		zap.String("file", header.Filename),
		zap.Int("employees", len(res.Employees)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("warnings", len(warnings)),
	)

	writeJSON(w, http.StatusCreated, ImportResponse{
		BatchID:  res.BatchID,
		Imported: len(res.Employees),
		Posts:    nonNil(res.Posts),
		Skipped:  res.Skipped,
		Warnings: warnings,
	})
}

// ExportTemplate returns the blank roster workbook. ?examples=true adds
// two sample rows.
// GET /api/roster/template
func (h *Handler) ExportTemplate(w http.ResponseWriter, r *http.Request) {
	withExamples := r.URL.Query().Get("examples") == "true"

	var buf bytes.Buffer
	if err := roster.WriteTemplate(&buf, withExamples); err != nil {
		h.writeFailure(w, r, "Failed to build template", err)
		return
	}
	w.Header().Set("Content-Type", xlsxMediaType)
	w.Header().Set("Content-Disposition", `attachment; filename="modelo_funcionarios.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ListPosts returns every post seen on a roster.
// GET /api/posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.ListPosts(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": nonNil(posts)})
}

// =============================================================================
// LEGACY STORE ENDPOINTS
// =============================================================================

// ImportLegacy loads a legacy JSON store into the repository.
// POST /api/legacy/import
func (h *Handler) ImportLegacy(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	imp, err := factory.NewStoreFactory(h.Options.LegacyRotation).ParseStore(data)
	if err != nil {
		h.writeFailure(w, r, "Failed to read legacy store", err)
		return
	}
	if err := imp.Apply(r.Context(), h.Store); err != nil {
		h.writeFailure(w, r, "Failed to save legacy store", err)
		return
	}
	for _, warning := range imp.Snapshot.Warnings {
		h.Logger.Warn("skipped legacy entry", zap.String("entry", warning))
	}

	writeJSON(w, http.StatusCreated, ImportResponse{
		Imported: len(imp.Snapshot.Employees),
		Holidays: len(imp.Holidays),
		Events:   len(imp.Events),
		Posts:    nonNil(imp.Posts),
		Warnings: nonNil(imp.Snapshot.Warnings),
	})
}

// ExportLegacy dumps the configuration in the legacy JSON store shape.
// GET /api/legacy/export
func (h *Handler) ExportLegacy(w http.ResponseWriter, r *http.Request) {
	sj, err := factory.NewStoreFactory(h.Options.LegacyRotation).Export(r.Context(), h.Store)
	if err != nil {
		h.writeFailure(w, r, "Failed to export configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, sj)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeFailure picks the status from the error and logs server faults.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(message,
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest), generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsConflict(err):
		return http.StatusConflict
	case generic.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// pathParam returns a URL parameter unescaped. chi hands out the escaped
// form when the request path contains encoded slashes.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

// nameParam reads {name} the way rosters store names.
func nameParam(r *http.Request) string {
	return rota.NormalizeName(pathParam(r, "name"))
}

func cityParam(r *http.Request) string {
	return rota.NormalizeName(pathParam(r, "city"))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
