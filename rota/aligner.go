package rota

import "github.com/warp/rota-engine/generic"

// =============================================================================
// CYCLE ALIGNER - Anchor date to cycle origin
// =============================================================================

// intercalatedPeriod is the length of the 6x1 intercalated pattern: rest on
// day 0 and day 7 counted from the anchor.
const intercalatedPeriod = 14

// AlignedRotation is a rotation pinned to the calendar. The origin is derived
// once and reused for every date, so the phase never drifts.
type AlignedRotation struct {
	Rotation Rotation
	Origin   generic.Date  // date of cycle index 0
	Anchor   *generic.Date // first rest day, if known
}

// Align computes the cycle origin for rot.
//
// With an anchor, origin = anchor - index of the first rest flag, so the
// anchor itself is a rest day. Without one, the cycle starts on periodStart
// and carries no alignment guarantee.
func Align(rot Rotation, anchor *generic.Date, periodStart generic.Date) AlignedRotation {
	a := AlignedRotation{Rotation: rot, Origin: periodStart, Anchor: anchor}
	if anchor != nil && rot.IsCycle() {
		a.Origin = anchor.AddDays(-rot.firstRestIndex())
	}
	return a
}

// CycleIndex is (d - origin) mod len(cycle). Only meaningful for cycle variants.
func (a AlignedRotation) CycleIndex(d generic.Date) int {
	return generic.FloorMod(generic.DaysBetween(a.Origin, d), len(a.Rotation.Cycle))
}

// IsRest evaluates the rotation alone, ignoring holidays and overrides.
func (a AlignedRotation) IsRest(d generic.Date) bool {
	switch a.Rotation.Variant {
	case SixOneFixed:
		return d.IsSunday()
	case SixOneIntercalated:
		if a.Anchor == nil {
			return false
		}
		switch generic.FloorMod(generic.DaysBetween(*a.Anchor, d), intercalatedPeriod) {
		case 0, intercalatedPeriod / 2:
			return true
		}
		return false
	default:
		if !a.Rotation.IsCycle() {
			return false
		}
		return !a.Rotation.Cycle[a.CycleIndex(d)]
	}
}
