package rota

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warp/rota-engine/generic"
)

// =============================================================================
// HOLIDAY DEFINITIONS
// =============================================================================

// Scope decides who rests on a holiday.
type Scope string

const (
	ScopeNational Scope = "NATIONAL" // everyone rests
	ScopeLocal    Scope = "LOCAL"    // only entitled posts rest
)

// ParseScope accepts the English and Portuguese spellings. Empty means national.
func ParseScope(s string) (Scope, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NATIONAL", "NACIONAL":
		return ScopeNational, nil
	case "LOCAL":
		return ScopeLocal, nil
	}
	return "", fmt.Errorf("%w: %q", generic.ErrInvalidScope, s)
}

// HolidayDefinition recurs every year on the day and month of Registered,
// starting with the registration year.
type HolidayDefinition struct {
	Registered generic.Date
	Name       string
	Scope      Scope
	Posts      []string // LOCAL only
}

// OccursOn matches day and month, never a year before registration.
func (h HolidayDefinition) OccursOn(d generic.Date) bool {
	return d.SameMonthDay(h.Registered) && d.Year() >= h.Registered.Year()
}

// Entitles reports whether an employee assigned to post rests on this holiday.
func (h HolidayDefinition) Entitles(post string) bool {
	if h.Scope != ScopeLocal {
		return true
	}
	for _, p := range h.Posts {
		if p == post {
			return true
		}
	}
	return false
}

// =============================================================================
// HOLIDAY REGISTRY
// =============================================================================

// HolidayRegistry is an immutable, ordered set of definitions. Order is
// ascending registration date; definitions registered on the same date keep
// the order they were given in. Lookups return the first match in that order.
type HolidayRegistry struct {
	defs []HolidayDefinition
}

func NewHolidayRegistry(defs ...HolidayDefinition) HolidayRegistry {
	sorted := make([]HolidayDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Registered.Before(sorted[j].Registered)
	})
	return HolidayRegistry{defs: sorted}
}

// Definitions returns a copy in registry order.
func (r HolidayRegistry) Definitions() []HolidayDefinition {
	out := make([]HolidayDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

func (r HolidayRegistry) Len() int { return len(r.defs) }

// Match returns the first definition occurring on d.
func (r HolidayRegistry) Match(d generic.Date) (HolidayDefinition, bool) {
	for _, h := range r.defs {
		if h.OccursOn(d) {
			return h, true
		}
	}
	return HolidayDefinition{}, false
}

// =============================================================================
// HOLIDAY RESOLVER
// =============================================================================

// HolidayResolver decides per employee whether a matched holiday grants rest.
type HolidayResolver struct {
	Registry HolidayRegistry
}

// Resolve returns the holiday and true when the employee at post rests on d
// under rot. Only the first matching definition is considered: a LOCAL match
// that excludes the post is not rescued by a later NATIONAL one.
func (hr HolidayResolver) Resolve(d generic.Date, post string, rot Rotation) (HolidayDefinition, bool) {
	if !rot.HonorsHolidays() {
		return HolidayDefinition{}, false
	}
	h, ok := hr.Registry.Match(d)
	if !ok || !h.Entitles(post) {
		return HolidayDefinition{}, false
	}
	return h, true
}
