package rota

import "github.com/warp/rota-engine/generic"

// =============================================================================
// COMPENSATOR - Monthly Sunday rest for 5x1
// =============================================================================

// CompensatoryNote is attached to forced Sunday rest days.
const CompensatoryNote = "compensatory Sunday rest"

// thirdSunday is the ordinal of the Sunday that becomes compensatory rest.
const thirdSunday = 3

// Compensate guarantees a Sunday off per month for rotations that need it.
//
// A month qualifies when none of its REST records falls on a Sunday. Only
// REST counts: a Sunday HOLIDAY or MANUAL_REST does not satisfy the month.
// In a qualifying month the third Sunday inside records becomes
// COMPENSATORY_SUNDAY_REST, but only if it is currently a WORKDAY.
//
// records must be in ascending date order; they are modified in place.
// Returns the dates that were changed.
func Compensate(records []DayRecord, rot Rotation) []generic.Date {
	if !rot.NeedsCompensation() {
		return nil
	}

	type month struct {
		hasSundayRest bool
		sundays       int
		third         int // index into records, -1 if none
	}
	months := make(map[generic.MonthKey]*month)
	var order []generic.MonthKey

	for i, rec := range records {
		key := rec.Date.MonthKey()
		m, ok := months[key]
		if !ok {
			m = &month{third: -1}
			months[key] = m
			order = append(order, key)
		}
		if !rec.Date.IsSunday() {
			continue
		}
		if rec.Classification == Rest {
			m.hasSundayRest = true
		}
		m.sundays++
		if m.sundays == thirdSunday {
			m.third = i
		}
	}

	var changed []generic.Date
	for _, key := range order {
		m := months[key]
		if m.hasSundayRest || m.third < 0 {
			continue
		}
		rec := &records[m.third]
		if rec.Classification != Workday {
			continue
		}
		rec.Classification = CompensatorySundayRest
		rec.Note = CompensatoryNote
		changed = append(changed, rec.Date)
	}
	return changed
}
