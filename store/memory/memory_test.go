package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

func TestMemory_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// GIVEN: a roster, a holiday and an event
	require.NoError(t, m.SaveEmployees(ctx, []rota.Employee{
		{Name: "CARLA", Rotation: rota.FiveTwo},
		{Name: "ANA", Rotation: rota.FiveOne},
	}))
	require.NoError(t, m.SaveHoliday(ctx, rota.HolidayRecord{ID: "h1", HolidayDefinition: rota.HolidayDefinition{
		Registered: generic.MustParseDate("2020-12-25"), Name: "Natal", Scope: rota.ScopeNational,
	}}))
	require.NoError(t, m.SetEvent(ctx, rota.ManualEvent{Employee: "ANA", Date: generic.MustParseDate("2025-03-10"), Kind: rota.EventRest}))

	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)

	// WHEN: the store changes afterwards
	require.NoError(t, m.DeleteEmployee(ctx, "ANA"))
	require.NoError(t, m.DeleteHoliday(ctx, "h1"))

	// THEN: the snapshot still sees the old state
	require.Len(t, snap.Employees, 2)
	assert.Equal(t, "ANA", snap.Employees[0].Name)
	assert.Equal(t, 1, snap.Holidays.Len())
	assert.Equal(t, 1, snap.Events.Len())

	emps, err := m.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, emps, 1)
	events, err := m.ListEvents(ctx, "ANA")
	require.NoError(t, err)
	assert.Empty(t, events, "deleting an employee drops their events")
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetEmployee(ctx, "X")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
	assert.ErrorIs(t, m.DeleteEmployee(ctx, "X"), generic.ErrEmployeeNotFound)
	assert.ErrorIs(t, m.DeleteHoliday(ctx, "X"), generic.ErrHolidayNotFound)
	assert.NoError(t, m.DeleteEvent(ctx, "X", generic.MustParseDate("2025-01-01")))
}

func TestMemory_Posts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.AddPosts(ctx, "B", "", "A", "B"))

	posts, err := m.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, posts)
}

func TestMemory_CitiesRebindHolidays(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// GIVEN: a LOCAL holiday bound to a city
	require.NoError(t, m.SaveCity(ctx, rota.City{Name: "RECIFE", Posts: []string{"SHOPPING"}}))
	require.NoError(t, m.SaveHoliday(ctx, rota.HolidayRecord{ID: "h1", City: "RECIFE", HolidayDefinition: rota.HolidayDefinition{
		Registered: generic.MustParseDate("2020-12-08"), Name: "Conceição", Scope: rota.ScopeLocal, Posts: []string{"SHOPPING"},
	}}))

	// WHEN: the city gains a post
	require.NoError(t, m.SaveCity(ctx, rota.City{Name: "RECIFE", Posts: []string{"HOSPITAL", "SHOPPING"}}))

	// THEN: the snapshot entitles the new post
	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)
	def, ok := snap.Holidays.Match(generic.MustParseDate("2025-12-08"))
	require.True(t, ok)
	assert.True(t, def.Entitles("HOSPITAL"))

	// Deleting the city keeps the posts
	require.NoError(t, m.DeleteCity(ctx, "RECIFE"))
	holidays, err := m.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays[0].City)
	assert.Equal(t, []string{"HOSPITAL", "SHOPPING"}, holidays[0].Posts)
	assert.ErrorIs(t, m.DeleteCity(ctx, "RECIFE"), generic.ErrCityNotFound)
}
