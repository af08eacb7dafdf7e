package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/rota-engine/generic"
)

func TestParseDate_AcceptedLayouts(t *testing.T) {
	want := generic.NewDate(2025, time.February, 10)
	for _, in := range []string{"2025-02-10", "10/02/2025", "10-02-2025", " 2025-02-10 "} {
		got, err := generic.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025-13-01", "31/02/2025", "amanhã"} {
		_, err := generic.ParseDate(in)
		assert.ErrorIs(t, err, generic.ErrInvalidDate, in)
		assert.True(t, generic.IsClientError(err))
	}
}

func TestDaysBetween(t *testing.T) {
	a := generic.NewDate(2024, time.December, 31)
	b := generic.NewDate(2025, time.January, 4)
	assert.Equal(t, 4, generic.DaysBetween(a, b))
	assert.Equal(t, -4, generic.DaysBetween(b, a))

	// leap day and a full leap year
	assert.Equal(t, 366, generic.DaysBetween(generic.NewDate(2024, 1, 1), generic.NewDate(2025, 1, 1)))
}

func TestDateOf_KeepsWallClockDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("zoneinfo unavailable")
	}
	late := generic.DateOf(time.Date(2025, 3, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, generic.NewDate(2025, 3, 1), late)
}

func TestFloorMod(t *testing.T) {
	assert.Equal(t, 0, generic.FloorMod(14, 7))
	assert.Equal(t, 6, generic.FloorMod(-1, 7))
	assert.Equal(t, 1, generic.FloorMod(-13, 14))
	assert.Equal(t, 7, generic.FloorMod(-7, 14))
}

func TestDate_TextRoundTrip(t *testing.T) {
	d := generic.NewDate(2025, time.March, 16)
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-16", string(b))

	var back generic.Date
	require.NoError(t, back.UnmarshalText([]byte("16/03/2025")))
	assert.Equal(t, d, back)
}

func TestMonthKey(t *testing.T) {
	k := generic.NewDate(2024, time.February, 14).MonthKey()
	assert.Equal(t, generic.NewDate(2024, time.February, 1), k.First())
	assert.Equal(t, "2024-02", k.String())
	assert.True(t, k.Before(generic.MonthKey{Year: 2024, Month: time.March}))
	assert.True(t, k.Before(generic.MonthKey{Year: 2025, Month: time.January}))
}
