package rota

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warp/rota-engine/generic"
)

// =============================================================================
// CLASSIFICATION - Closed set of day outcomes
// =============================================================================

type Classification string

const (
	PreEmployment          Classification = "PRE_EMPLOYMENT"
	ManualRest             Classification = "MANUAL_REST"
	ManualHoliday          Classification = "MANUAL_HOLIDAY"
	Holiday                Classification = "HOLIDAY"
	Rest                   Classification = "REST"
	Workday                Classification = "WORKDAY"
	CompensatorySundayRest Classification = "COMPENSATORY_SUNDAY_REST"
)

// Classifications lists every value in precedence order.
func Classifications() []Classification {
	return []Classification{
		PreEmployment, ManualRest, ManualHoliday, Holiday, Rest, Workday, CompensatorySundayRest,
	}
}

// IsWorked is true only for WORKDAY.
func (c Classification) IsWorked() bool { return c == Workday }

// HasWorkableContent is false for classifications that leave nothing to fill
// in on a timesheet page.
func (c Classification) HasWorkableContent() bool {
	switch c {
	case PreEmployment, Holiday, Rest:
		return false
	case ManualRest, ManualHoliday, Workday, CompensatorySundayRest:
		return true
	}
	return false
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is identified by Name. Profile fields are carried for the
// renderer and never influence classification.
type Employee struct {
	Name      string
	Post      string
	Admission *generic.Date
	Rotation  Variant
	Anchor    *generic.Date // first rest day

	Profile Profile
}

// Profile holds roster data printed on timesheets.
type Profile struct {
	Registration string // matricula
	TaxID        string // CPF
	Role         string
	Branch       string
	BranchTaxID  string // CNPJ
	Address      string
	City         string
}

// =============================================================================
// MANUAL EVENTS
// =============================================================================

type EventKind string

const (
	EventRest    EventKind = "REST"
	EventHoliday EventKind = "HOLIDAY"
)

// ParseEventKind accepts REST/HOLIDAY and the legacy FOLGA/FERIADO.
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REST", "FOLGA":
		return EventRest, nil
	case "HOLIDAY", "FERIADO":
		return EventHoliday, nil
	}
	return "", fmt.Errorf("%w: %q", generic.ErrInvalidEvent, s)
}

// ManualEvent overrides one day for one employee.
type ManualEvent struct {
	Employee string
	Date     generic.Date
	Kind     EventKind
}

// EventLookup is the read-only view the classifier consults.
type EventLookup interface {
	Lookup(employee string, d generic.Date) (EventKind, bool)
}

// EventBook is an immutable EventLookup. Later events for the same
// (employee, date) replace earlier ones.
type EventBook struct {
	byEmployee map[string]map[generic.Date]EventKind
}

func NewEventBook(events ...ManualEvent) EventBook {
	b := EventBook{byEmployee: make(map[string]map[generic.Date]EventKind)}
	for _, e := range events {
		days, ok := b.byEmployee[e.Employee]
		if !ok {
			days = make(map[generic.Date]EventKind)
			b.byEmployee[e.Employee] = days
		}
		days[e.Date] = e.Kind
	}
	return b
}

func (b EventBook) Lookup(employee string, d generic.Date) (EventKind, bool) {
	k, ok := b.byEmployee[employee][d]
	return k, ok
}

// Len is the total number of events.
func (b EventBook) Len() int {
	n := 0
	for _, days := range b.byEmployee {
		n += len(days)
	}
	return n
}

// ForEmployee returns an employee's events sorted by date.
func (b EventBook) ForEmployee(employee string) []ManualEvent {
	days := b.byEmployee[employee]
	out := make([]ManualEvent, 0, len(days))
	for d, k := range days {
		out = append(out, ManualEvent{Employee: employee, Date: d, Kind: k})
	}
	sortEvents(out)
	return out
}

// =============================================================================
// DAY RECORD
// =============================================================================

// DayRecord is the engine's output for one date. Hour fields are left to the
// timesheet for manual entry.
type DayRecord struct {
	Date           generic.Date
	Classification Classification
	Note           string
}

func sortEvents(events []ManualEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Employee != events[j].Employee {
			return events[i].Employee < events[j].Employee
		}
		return events[i].Date.Before(events[j].Date)
	})
}
