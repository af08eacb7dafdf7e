// Package memory provides an in-memory rota.Repository (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[string]rota.Employee
	order     []string // employee names in insertion order
	holidays  []rota.HolidayRecord
	events    map[eventKey]rota.EventKind
	posts     map[string]bool
	cities    map[string][]string
}

type eventKey struct {
	Employee string
	Date     generic.Date
}

var _ rota.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[string]rota.Employee),
		events:    make(map[eventKey]rota.EventKind),
		posts:     make(map[string]bool),
		cities:    make(map[string][]string),
	}
}

// Close is a no-op; it lets Memory stand in for a database-backed store.
func (m *Memory) Close() error { return nil }

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fresh := NewMemory()
	m.employees, m.order, m.holidays, m.events, m.posts = fresh.employees, nil, nil, fresh.events, fresh.posts
	m.cities = fresh.cities
	return nil
}

// Snapshot copies the current state. Later writes do not affect it.
func (m *Memory) Snapshot(_ context.Context) (rota.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	defs := make([]rota.HolidayDefinition, len(m.holidays))
	for i, h := range m.holidays {
		defs[i] = h.HolidayDefinition
	}
	events := make([]rota.ManualEvent, 0, len(m.events))
	for k, kind := range m.events {
		events = append(events, rota.ManualEvent{Employee: k.Employee, Date: k.Date, Kind: kind})
	}
	return rota.Snapshot{
		Employees: m.listEmployeesLocked(),
		Holidays:  rota.NewHolidayRegistry(defs...),
		Events:    rota.NewEventBook(events...),
	}, nil
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) SaveEmployee(_ context.Context, emp rota.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveEmployeeLocked(emp)
	return nil
}

// SaveEmployees upserts all employees under one lock.
func (m *Memory) SaveEmployees(_ context.Context, emps []rota.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, emp := range emps {
		m.saveEmployeeLocked(emp)
	}
	return nil
}

func (m *Memory) saveEmployeeLocked(emp rota.Employee) {
	if _, ok := m.employees[emp.Name]; !ok {
		m.order = append(m.order, emp.Name)
	}
	m.employees[emp.Name] = emp
}

func (m *Memory) GetEmployee(_ context.Context, name string) (rota.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[name]
	if !ok {
		return rota.Employee{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, name)
	}
	return emp, nil
}

// ListEmployees returns employees sorted by name.
func (m *Memory) ListEmployees(_ context.Context) ([]rota.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listEmployeesLocked(), nil
}

func (m *Memory) listEmployeesLocked() []rota.Employee {
	out := make([]rota.Employee, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.employees[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Memory) DeleteEmployee(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[name]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, name)
	}
	delete(m.employees, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for k := range m.events {
		if k.Employee == name {
			delete(m.events, k)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Holidays
// -----------------------------------------------------------------------------

// SaveHoliday replaces a record with the same ID in place, or appends.
func (m *Memory) SaveHoliday(_ context.Context, h rota.HolidayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.holidays {
		if m.holidays[i].ID == h.ID {
			m.holidays[i] = h
			return nil
		}
	}
	m.holidays = append(m.holidays, h)
	return nil
}

// ListHolidays returns holidays in registry order.
func (m *Memory) ListHolidays(_ context.Context) ([]rota.HolidayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rota.HolidayRecord, len(m.holidays))
	copy(out, m.holidays)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Registered.Before(out[j].Registered) })
	return out, nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.holidays {
		if m.holidays[i].ID == id {
			m.holidays = append(m.holidays[:i], m.holidays[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", generic.ErrHolidayNotFound, id)
}

// -----------------------------------------------------------------------------
// Cities
// -----------------------------------------------------------------------------

// SaveCity replaces the city's posts and rebinds its LOCAL holidays.
func (m *Memory) SaveCity(_ context.Context, c rota.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := append([]string{}, c.Posts...)
	m.cities[c.Name] = posts
	for i := range m.holidays {
		if h := &m.holidays[i]; h.City == c.Name && h.Scope == rota.ScopeLocal {
			h.Posts = append([]string(nil), posts...)
		}
	}
	return nil
}

func (m *Memory) GetCity(_ context.Context, name string) (rota.City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	posts, ok := m.cities[name]
	if !ok {
		return rota.City{}, fmt.Errorf("%w: %s", generic.ErrCityNotFound, name)
	}
	return rota.City{Name: name, Posts: append([]string{}, posts...)}, nil
}

// ListCities returns cities sorted by name.
func (m *Memory) ListCities(_ context.Context) ([]rota.City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rota.City, 0, len(m.cities))
	for name, posts := range m.cities {
		out = append(out, rota.City{Name: name, Posts: append([]string{}, posts...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) DeleteCity(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cities[name]; !ok {
		return fmt.Errorf("%w: %s", generic.ErrCityNotFound, name)
	}
	delete(m.cities, name)
	for i := range m.holidays {
		if m.holidays[i].City == name {
			m.holidays[i].City = ""
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Manual events
// -----------------------------------------------------------------------------

func (m *Memory) SetEvent(_ context.Context, e rota.ManualEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventKey{Employee: e.Employee, Date: e.Date}] = e.Kind
	return nil
}

// SetEvents upserts all events under one lock.
func (m *Memory) SetEvents(_ context.Context, events []rota.ManualEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		m.events[eventKey{Employee: e.Employee, Date: e.Date}] = e.Kind
	}
	return nil
}

// DeleteEvent is a no-op when no event exists.
func (m *Memory) DeleteEvent(_ context.Context, employee string, d generic.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, eventKey{Employee: employee, Date: d})
	return nil
}

// ListEvents returns an employee's events by date.
func (m *Memory) ListEvents(_ context.Context, employee string) ([]rota.ManualEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []rota.ManualEvent
	for k, kind := range m.events {
		if k.Employee == employee {
			out = append(out, rota.ManualEvent{Employee: k.Employee, Date: k.Date, Kind: kind})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// -----------------------------------------------------------------------------
// Posts
// -----------------------------------------------------------------------------

func (m *Memory) AddPosts(_ context.Context, posts ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range posts {
		if p != "" {
			m.posts[p] = true
		}
	}
	return nil
}

func (m *Memory) ListPosts(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.posts))
	for p := range m.posts {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
