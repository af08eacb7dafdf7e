/*
store.go - Configuration snapshot and store interface

PURPOSE:
  The engine never reads configuration on its own. A ConfigStore hands out
  an immutable Snapshot (roster, holiday registry, manual events) and every
  schedule in a batch is computed from that one snapshot.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite-backed store used by the API and CLI
  - store/memory/memory.go: in-memory store for tests and dev
  - factory/legacy.go: builds a Snapshot from the legacy JSON store file

SEE ALSO:
  - batch.go: consumes Snapshot
*/
package rota

import (
	"context"

	"github.com/warp/rota-engine/generic"
)

// Snapshot is a read-only view of configuration at one point in time.
type Snapshot struct {
	Employees []Employee
	Holidays  HolidayRegistry
	Events    EventBook

	// Warnings lists configuration entries skipped while loading.
	Warnings []string
}

// Employee finds an employee by name.
func (s Snapshot) Employee(name string) (Employee, bool) {
	for _, e := range s.Employees {
		if e.Name == name {
			return e, true
		}
	}
	return Employee{}, false
}

// Request builds a schedule request for one employee of the snapshot.
func (s Snapshot) Request(period generic.Period, emp Employee) Request {
	return NewRequest(period, emp, s.Holidays, s.Events)
}

// ConfigStore supplies snapshots.
type ConfigStore interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// HolidayRecord is a stored holiday definition. City, when set, names the
// city whose posts the LOCAL holiday entitles.
type HolidayRecord struct {
	ID   string
	City string
	HolidayDefinition
}

// Repository is the read-write configuration store behind the API and CLI.
// Writes never touch snapshots already handed out.
type Repository interface {
	ConfigStore

	// SaveEmployee inserts or replaces by name.
	SaveEmployee(ctx context.Context, emp Employee) error
	// SaveEmployees upserts a whole roster atomically.
	SaveEmployees(ctx context.Context, emps []Employee) error
	GetEmployee(ctx context.Context, name string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, name string) error

	SaveHoliday(ctx context.Context, h HolidayRecord) error
	ListHolidays(ctx context.Context) ([]HolidayRecord, error)
	DeleteHoliday(ctx context.Context, id string) error

	// SaveCity inserts or replaces a city and copies its posts onto every
	// LOCAL holiday bound to it.
	SaveCity(ctx context.Context, c City) error
	GetCity(ctx context.Context, name string) (City, error)
	ListCities(ctx context.Context) ([]City, error)
	// DeleteCity removes a city. Bound holidays keep their posts but lose
	// the binding.
	DeleteCity(ctx context.Context, name string) error

	// SetEvent inserts or replaces the event for (employee, date).
	SetEvent(ctx context.Context, e ManualEvent) error
	// SetEvents upserts several events atomically.
	SetEvents(ctx context.Context, events []ManualEvent) error
	DeleteEvent(ctx context.Context, employee string, d generic.Date) error
	ListEvents(ctx context.Context, employee string) ([]ManualEvent, error)

	// AddPosts remembers posts seen on rosters. Known posts are kept.
	AddPosts(ctx context.Context, posts ...string) error
	ListPosts(ctx context.Context) ([]string, error)

	// Reset clears all configuration.
	Reset(ctx context.Context) error
}
