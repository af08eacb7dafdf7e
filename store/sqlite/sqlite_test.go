/*
sqlite_test.go - Tests for the SQLite configuration store

Tests for:
- Employee upsert, lookup and delete (with event cascade)
- Holiday registry order and entitled posts
- Manual event replacement
- Snapshot isolation and skipped malformed rows
- Cities and their bound LOCAL holidays
- Adding columns to databases created by older versions
*/
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) generic.Date { return generic.MustParseDate(s) }

func TestEmployees_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// GIVEN: an employee with every field set
	emp := rota.Employee{
		Name:      "MARIA SILVA",
		Post:      "POSTO CENTRO",
		Admission: generic.DatePtr(d("2024-02-01")),
		Rotation:  rota.FiveOne,
		Anchor:    generic.DatePtr(d("2025-01-06")),
		Profile: rota.Profile{
			Registration: "123", TaxID: "111.222.333-44", Role: "VIGILANTE",
			Branch: "MATRIZ", BranchTaxID: "00.000.000/0001-00", Address: "RUA A", City: "RECIFE",
		},
	}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	// WHEN: read back
	got, err := store.GetEmployee(ctx, "MARIA SILVA")

	// THEN: nothing is lost
	require.NoError(t, err)
	assert.Equal(t, emp, got)

	// Upsert replaces by name
	emp.Rotation = rota.TwelveThirtySix
	emp.Anchor = nil
	require.NoError(t, store.SaveEmployee(ctx, emp))
	got, err = store.GetEmployee(ctx, "MARIA SILVA")
	require.NoError(t, err)
	assert.Equal(t, rota.TwelveThirtySix, got.Rotation)
	assert.Nil(t, got.Anchor)

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEmployees_NotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.GetEmployee(ctx, "NOBODY")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)

	err = store.DeleteEmployee(ctx, "NOBODY")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}

func TestDeleteEmployee_RemovesEvents(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployees(ctx, []rota.Employee{
		{Name: "ANA", Rotation: rota.FiveTwo},
		{Name: "BRUNO", Rotation: rota.FiveTwo},
	}))
	require.NoError(t, store.SetEvent(ctx, rota.ManualEvent{Employee: "ANA", Date: d("2025-03-10"), Kind: rota.EventRest}))
	require.NoError(t, store.SetEvent(ctx, rota.ManualEvent{Employee: "BRUNO", Date: d("2025-03-10"), Kind: rota.EventRest}))

	require.NoError(t, store.DeleteEmployee(ctx, "ANA"))

	events, err := store.ListEvents(ctx, "ANA")
	require.NoError(t, err)
	assert.Empty(t, events)
	events, err = store.ListEvents(ctx, "BRUNO")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestHolidays_RegistryOrder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// GIVEN: holidays saved out of registration order
	require.NoError(t, store.SaveHoliday(ctx, rota.HolidayRecord{ID: "h2", HolidayDefinition: rota.HolidayDefinition{
		Registered: d("2022-07-09"), Name: "Nacional", Scope: rota.ScopeNational,
	}}))
	require.NoError(t, store.SaveHoliday(ctx, rota.HolidayRecord{ID: "h1", HolidayDefinition: rota.HolidayDefinition{
		Registered: d("2020-07-09"), Name: "Local", Scope: rota.ScopeLocal, Posts: []string{"B", "A"},
	}}))

	// WHEN: listed
	holidays, err := store.ListHolidays(ctx)

	// THEN: earliest registration first, posts kept
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "h1", holidays[0].ID)
	assert.Equal(t, []string{"A", "B"}, holidays[0].Posts)
	assert.Equal(t, "h2", holidays[1].ID)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	h, ok := snap.Holidays.Match(d("2025-07-09"))
	require.True(t, ok)
	assert.Equal(t, "Local", h.Name)

	// Saving again replaces the post list
	holidays[0].Posts = []string{"C"}
	require.NoError(t, store.SaveHoliday(ctx, holidays[0]))
	holidays, err = store.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, holidays[0].Posts)

	require.NoError(t, store.DeleteHoliday(ctx, "h1"))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, "h1"), generic.ErrHolidayNotFound)
}

func TestEvents_ReplaceAndDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetEvent(ctx, rota.ManualEvent{Employee: "ANA", Date: d("2025-03-10"), Kind: rota.EventRest}))
	require.NoError(t, store.SetEvent(ctx, rota.ManualEvent{Employee: "ANA", Date: d("2025-03-10"), Kind: rota.EventHoliday}))
	require.NoError(t, store.SetEvent(ctx, rota.ManualEvent{Employee: "ANA", Date: d("2025-03-01"), Kind: rota.EventRest}))

	events, err := store.ListEvents(ctx, "ANA")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, d("2025-03-01"), events[0].Date)
	assert.Equal(t, rota.EventHoliday, events[1].Kind)

	require.NoError(t, store.DeleteEvent(ctx, "ANA", d("2025-03-10")))
	require.NoError(t, store.DeleteEvent(ctx, "ANA", d("2025-03-10")))
	events, err = store.ListEvents(ctx, "ANA")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSnapshot_IsolatedFromLaterWrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, rota.Employee{Name: "ANA", Rotation: rota.FiveTwo}))
	require.NoError(t, store.SetEvent(ctx, rota.ManualEvent{Employee: "ANA", Date: d("2025-03-10"), Kind: rota.EventRest}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, store.SaveEmployee(ctx, rota.Employee{Name: "BRUNO", Rotation: rota.FiveTwo}))
	require.NoError(t, store.DeleteEvent(ctx, "ANA", d("2025-03-10")))

	assert.Len(t, snap.Employees, 1)
	kind, ok := snap.Events.Lookup("ANA", d("2025-03-10"))
	assert.True(t, ok)
	assert.Equal(t, rota.EventRest, kind)
}

func TestSnapshot_SkipsMalformedRows(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// GIVEN: rows written by hand with values the engine cannot read
	_, err := store.db.Exec(`
		INSERT INTO employees (name, rotation, admission, created_at, updated_at)
			VALUES ('BAD', 'FIVE_TWO', '31/31/2024', 'x', 'x');
		INSERT INTO employees (name, rotation, created_at, updated_at)
			VALUES ('GOOD', 'FIVE_TWO', 'x', 'x');
		INSERT INTO holidays (id, registered, name, scope, created_at)
			VALUES ('h1', '2020-01-01', 'Ano Novo', 'ESTADUAL', 'x');
		INSERT INTO manual_events (employee, date, kind, created_at)
			VALUES ('GOOD', '2025-03-10', 'FALTA', 'x');
		INSERT INTO manual_events (employee, date, kind, created_at)
			VALUES ('GOOD', '2025-03-11', 'FOLGA', 'x');
	`)
	require.NoError(t, err)

	// WHEN: a snapshot is taken
	snap, err := store.Snapshot(ctx)

	// THEN: bad rows are excluded and reported
	require.NoError(t, err)
	require.Len(t, snap.Employees, 1)
	assert.Equal(t, "GOOD", snap.Employees[0].Name)
	assert.Equal(t, 0, snap.Holidays.Len())
	assert.Equal(t, 1, snap.Events.Len())
	assert.Len(t, snap.Warnings, 3)
}

func TestPosts(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddPosts(ctx, "POSTO B", "POSTO A", " ", "POSTO B"))
	require.NoError(t, store.AddPosts(ctx, "POSTO C"))

	posts, err := store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"POSTO A", "POSTO B", "POSTO C"}, posts)

	require.NoError(t, store.Reset(ctx))
	posts, err = store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSnapshot_MalformedAnchorKeepsEmployee(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// GIVEN: an employee whose first rest day cannot be parsed
	_, err := store.db.Exec(`
		INSERT INTO employees (name, rotation, anchor, created_at, updated_at)
			VALUES ('ANA', 'FIVE_ONE', '2025-13-40', 'x', 'x');
	`)
	require.NoError(t, err)

	// WHEN
	snap, err := store.Snapshot(ctx)

	// THEN: the employee stays, unaligned, and the anchor is reported
	require.NoError(t, err)
	require.Len(t, snap.Employees, 1)
	assert.Equal(t, rota.FiveOne, snap.Employees[0].Rotation)
	assert.Nil(t, snap.Employees[0].Anchor)
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "ANA")

	emp, err := store.GetEmployee(ctx, "ANA")
	require.NoError(t, err)
	assert.Nil(t, emp.Anchor)
}

func TestCities_BindLocalHolidays(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// GIVEN: a city and a LOCAL holiday bound to it
	require.NoError(t, store.SaveCity(ctx, rota.City{Name: "RECIFE", Posts: []string{"SHOPPING"}}))
	require.NoError(t, store.SaveHoliday(ctx, rota.HolidayRecord{ID: "h1", City: "RECIFE", HolidayDefinition: rota.HolidayDefinition{
		Registered: d("2020-12-08"), Name: "Conceição", Scope: rota.ScopeLocal, Posts: []string{"SHOPPING"},
	}}))
	require.NoError(t, store.SaveHoliday(ctx, rota.HolidayRecord{ID: "h2", HolidayDefinition: rota.HolidayDefinition{
		Registered: d("2020-06-24"), Name: "São João", Scope: rota.ScopeLocal, Posts: []string{"SHOPPING"},
	}}))

	// WHEN: the city's posts change
	require.NoError(t, store.SaveCity(ctx, rota.City{Name: "RECIFE", Posts: []string{"HOSPITAL", "SHOPPING"}}))

	// THEN: the bound holiday follows, the unbound one does not
	holidays, err := store.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "h2", holidays[0].ID)
	assert.Equal(t, []string{"SHOPPING"}, holidays[0].Posts)
	assert.Equal(t, "RECIFE", holidays[1].City)
	assert.Equal(t, []string{"HOSPITAL", "SHOPPING"}, holidays[1].Posts)

	city, err := store.GetCity(ctx, "RECIFE")
	require.NoError(t, err)
	assert.Equal(t, []string{"HOSPITAL", "SHOPPING"}, city.Posts)

	// Deleting the city unbinds but keeps the entitlement
	require.NoError(t, store.DeleteCity(ctx, "RECIFE"))
	holidays, err = store.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays[1].City)
	assert.Equal(t, []string{"HOSPITAL", "SHOPPING"}, holidays[1].Posts)

	_, err = store.GetCity(ctx, "RECIFE")
	assert.ErrorIs(t, err, generic.ErrCityNotFound)
	assert.ErrorIs(t, store.DeleteCity(ctx, "RECIFE"), generic.ErrCityNotFound)
}

func TestCities_ListIncludesEmptyCities(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCity(ctx, rota.City{Name: "OLINDA"}))
	require.NoError(t, store.SaveCity(ctx, rota.City{Name: "CARUARU", Posts: []string{"FEIRA"}}))

	cities, err := store.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []rota.City{
		{Name: "CARUARU", Posts: []string{"FEIRA"}},
		{Name: "OLINDA", Posts: []string{}},
	}, cities)

	require.NoError(t, store.Reset(ctx))
	cities, err = store.ListCities(ctx)
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestSetEvents_Batch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetEvent(ctx, rota.ManualEvent{Employee: "ANA", Date: d("2025-03-11"), Kind: rota.EventHoliday}))
	require.NoError(t, store.SetEvents(ctx, []rota.ManualEvent{
		{Employee: "ANA", Date: d("2025-03-10"), Kind: rota.EventRest},
		{Employee: "ANA", Date: d("2025-03-11"), Kind: rota.EventRest},
	}))

	events, err := store.ListEvents(ctx, "ANA")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, rota.EventRest, events[1].Kind)
}

func TestMigrate_AddsHolidayCityColumn(t *testing.T) {
	// GIVEN: a database whose holidays table predates cities
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE holidays (
			id TEXT PRIMARY KEY, registered TEXT NOT NULL, name TEXT NOT NULL,
			scope TEXT NOT NULL, created_at TEXT NOT NULL);
		INSERT INTO holidays VALUES ('h1', '2020-12-25', 'Natal', 'NATIONAL', 'x');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// WHEN: opened twice
	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	store, err = New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// THEN: old rows read back unbound
	holidays, err := store.ListHolidays(context.Background())
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Natal", holidays[0].Name)
	assert.Empty(t, holidays[0].City)
}
