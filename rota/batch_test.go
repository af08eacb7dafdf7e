package rota_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

func testSnapshot() rota.Snapshot {
	return rota.Snapshot{
		Employees: []rota.Employee{
			{Name: "ANA", Post: "POSTO A", Rotation: rota.FiveTwo, Anchor: generic.DatePtr(date("2025-01-04"))},
			{Name: "BRUNO", Post: "POSTO B", Rotation: rota.FiveOne, Anchor: generic.DatePtr(date("2025-03-01"))},
			{Name: "CARLA", Post: "POSTO A", Rotation: rota.SixOneFixed, Admission: generic.DatePtr(date("2026-01-01"))},
			{Name: "DIEGO", Post: "POSTO C", Rotation: rota.TwelveThirtySix, Anchor: generic.DatePtr(date("2025-03-01"))},
		},
		Holidays: rota.NewHolidayRegistry(national("2025-03-04", "Carnaval")),
		Events:   rota.NewEventBook(rota.ManualEvent{Employee: "ANA", Date: date("2025-03-10"), Kind: rota.EventRest}),
	}
}

func TestBatchBuilder_ResultsInRosterOrder(t *testing.T) {
	snap := testSnapshot()
	p := period(t, "2025-03-01", "2025-03-31")

	results, err := rota.BatchBuilder{Workers: 3}.Build(context.Background(), p, snap, rota.Selection{Mode: rota.SelectAll})

	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, snap.Employees[i].Name, res.Schedule.Employee.Name)
		assert.Equal(t, p.Len(), res.Schedule.Len())
	}

	// each result equals a standalone build
	for i, emp := range snap.Employees {
		assert.Equal(t, rota.Build(snap.Request(p, emp)).Records(), results[i].Schedule.Records(), emp.Name)
	}

	rec, _ := results[0].Schedule.At(date("2025-03-10"))
	assert.Equal(t, rota.ManualRest, rec.Classification)

	assert.Equal(t, []generic.Date{date("2025-03-16")}, results[1].Schedule.Compensated)

	assert.Empty(t, results[2].Pages)
	assert.Equal(t, rota.SkipBeforeAdmission, results[2].Reason)
}

func TestBatchBuilder_Selection(t *testing.T) {
	snap := testSnapshot()
	p := period(t, "2025-03-01", "2025-03-07")

	byPost, err := rota.BatchBuilder{}.Build(context.Background(), p, snap, rota.Selection{Mode: rota.SelectPosts, Values: []string{"POSTO A"}})
	require.NoError(t, err)
	require.Len(t, byPost, 2)
	assert.Equal(t, "ANA", byPost[0].Schedule.Employee.Name)
	assert.Equal(t, "CARLA", byPost[1].Schedule.Employee.Name)

	byName, err := rota.BatchBuilder{}.Build(context.Background(), p, snap, rota.Selection{Mode: rota.SelectNames, Values: []string{"DIEGO", "NOBODY"}})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "DIEGO", byName[0].Schedule.Employee.Name)
}

func TestBatchBuilder_CanceledContext(t *testing.T) {
	snap := testSnapshot()
	for i := 0; i < 50; i++ {
		snap.Employees = append(snap.Employees, rota.Employee{Name: fmt.Sprintf("EMP-%02d", i), Rotation: rota.FiveTwo})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := rota.BatchBuilder{Workers: 2}.Build(ctx, period(t, "2025-01-01", "2025-12-31"), snap, rota.Selection{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
