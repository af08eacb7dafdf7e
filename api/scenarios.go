/*
scenarios.go - Demo rosters for testing and demonstrations

PURPOSE:

	Provides pre-built rosters that populate the store with data showing
	one engine feature each. Every scenario suggests a period to view.

AVAILABLE SCENARIOS:

	five-two-anchor:        5x2 aligned on a Saturday first rest day
	five-one-compensation:  5x1 whose rest days miss every Sunday in March
	late-admission:         6x1 fixed with admission mid-February
	security-team:          Mixed rotations, national holidays, a local
	                        holiday bound to a city, manual overrides

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Register cities and holidays
 3. Save employees and their posts
 4. Add manual events

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "security-team"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description, period
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add it to the loaders map

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Schedule endpoints used to view the result
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

// ScenarioDTO describes a demo roster.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "five-two-anchor",
		Name:        "5x2 Anchor",
		Description: "Five days on, two off, first rest on Saturday 2025-01-04",
		Start:       "2025-01-01",
		End:         "2025-01-31",
	},
	{
		ID:          "five-one-compensation",
		Name:        "5x1 Sunday Compensation",
		Description: "Rest days never fall on a Sunday in March, so the third Sunday is given",
		Start:       "2025-03-01",
		End:         "2025-03-31",
	},
	{
		ID:          "late-admission",
		Name:        "Late Admission",
		Description: "Admitted 2025-02-10: January is skipped, early February is pre-employment",
		Start:       "2025-01-01",
		End:         "2025-02-28",
	},
	{
		ID:          "security-team",
		Name:        "Security Team",
		Description: "Every rotation across two posts with national and local holidays and overrides",
		Start:       "2025-11-01",
		End:         "2025-12-31",
	},
}

var loaders = map[string]func(context.Context, *Handler) error{
	"five-two-anchor":       loadFiveTwoAnchorScenario,
	"five-one-compensation": loadFiveOneCompensationScenario,
	"late-admission":        loadLateAdmissionScenario,
	"security-team":         loadSecurityTeamScenario,
}

// scenarioState tracks the loaded scenario across requests.
type scenarioState struct {
	mu      sync.Mutex
	current string
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenario.mu.Lock()
	current := h.scenario.current
	h.scenario.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a demo roster.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	load, ok := loaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.scenario.mu.Lock()
	defer h.scenario.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.writeFailure(w, r, "Failed to reset store", err)
		return
	}
	h.scenario.current = ""

	if err := load(ctx, h); err != nil {
		h.writeFailure(w, r, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}
	h.scenario.current = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetStore clears all configuration.
// POST /api/scenarios/reset
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	h.scenario.mu.Lock()
	defer h.scenario.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeFailure(w, r, "Failed to reset store", err)
		return
	}
	h.scenario.current = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadFiveTwoAnchorScenario(ctx context.Context, h *Handler) error {
	return h.Store.SaveEmployee(ctx, rota.Employee{
		Name:     "ANA PEREIRA",
		Post:     "RECEPCAO",
		Rotation: rota.FiveTwo,
		Anchor:   datePtr("2025-01-04"),
	})
}

func loadFiveOneCompensationScenario(ctx context.Context, h *Handler) error {
	return h.Store.SaveEmployee(ctx, rota.Employee{
		Name:     "BRUNO COSTA",
		Post:     "PORTARIA",
		Rotation: rota.FiveOne,
		Anchor:   datePtr("2025-03-01"),
	})
}

func loadLateAdmissionScenario(ctx context.Context, h *Handler) error {
	return h.Store.SaveEmployee(ctx, rota.Employee{
		Name:      "CARLA MENDES",
		Post:      "PORTARIA",
		Rotation:  rota.SixOneFixed,
		Admission: datePtr("2025-02-10"),
	})
}

func loadSecurityTeamScenario(ctx context.Context, h *Handler) error {
	cities := []rota.City{
		{Name: "OLINDA", Posts: []string{"HOSPITAL OLINDA"}},
		{Name: "RECIFE", Posts: []string{"SHOPPING RECIFE"}},
	}
	for _, c := range cities {
		if err := h.Store.SaveCity(ctx, c); err != nil {
			return err
		}
	}

	holidays := []rota.HolidayDefinition{
		{Registered: date("2024-11-02"), Name: "Finados", Scope: rota.ScopeNational},
		{Registered: date("2024-11-15"), Name: "Proclamação da República", Scope: rota.ScopeNational},
		{Registered: date("2024-11-20"), Name: "Consciência Negra", Scope: rota.ScopeNational},
		{Registered: date("2024-12-08"), Name: "Nossa Senhora da Conceição", Scope: rota.ScopeLocal, Posts: []string{"SHOPPING RECIFE"}},
		{Registered: date("2024-12-25"), Name: "Natal", Scope: rota.ScopeNational},
	}
	for _, def := range holidays {
		rec := rota.HolidayRecord{ID: factory.LegacyHolidayID(def.Registered.String()), HolidayDefinition: def}
		if def.Scope == rota.ScopeLocal {
			rec.City = "RECIFE"
		}
		if err := h.Store.SaveHoliday(ctx, rec); err != nil {
			return err
		}
	}

	employees := []rota.Employee{
		{Name: "DIEGO SANTOS", Post: "SHOPPING RECIFE", Rotation: rota.TwelveThirtySix, Anchor: datePtr("2025-11-01"),
			Profile: rota.Profile{Registration: "1001", Role: "VIGILANTE", City: "RECIFE"}},
		{Name: "ELISA ROCHA", Post: "SHOPPING RECIFE", Rotation: rota.SixOneIntercalated, Anchor: datePtr("2025-11-02"),
			Profile: rota.Profile{Registration: "1002", Role: "VIGILANTE", City: "RECIFE"}},
		{Name: "FABIO LIMA", Post: "HOSPITAL OLINDA", Rotation: rota.SixOneFixed,
			Profile: rota.Profile{Registration: "1003", Role: "PORTEIRO", City: "OLINDA"}},
		{Name: "GABRIELA NUNES", Post: "HOSPITAL OLINDA", Rotation: rota.FiveOne, Anchor: datePtr("2025-11-03"),
			Profile: rota.Profile{Registration: "1004", Role: "RECEPCIONISTA", City: "OLINDA"}},
		{Name: "HUGO ALVES", Post: "SHOPPING RECIFE", Rotation: rota.FiveTwo, Anchor: datePtr("2025-11-01"), Admission: datePtr("2025-12-01"),
			Profile: rota.Profile{Registration: "1005", Role: "VIGILANTE", City: "RECIFE"}},
	}
	if err := h.Store.SaveEmployees(ctx, employees); err != nil {
		return err
	}
	if err := h.Store.AddPosts(ctx, "SHOPPING RECIFE", "HOSPITAL OLINDA"); err != nil {
		return err
	}

	events := []rota.ManualEvent{
		{Employee: "FABIO LIMA", Date: date("2025-11-12"), Kind: rota.EventRest},
		{Employee: "GABRIELA NUNES", Date: date("2025-12-24"), Kind: rota.EventHoliday},
	}
	return h.Store.SetEvents(ctx, events)
}

func date(s string) generic.Date { return generic.MustParseDate(s) }

func datePtr(s string) *generic.Date { return generic.DatePtr(date(s)) }
