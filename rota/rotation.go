/*
Package rota classifies every calendar day of an employee's schedule as
worked, rest, holiday, pre-employment or compensatory rest.

PURPOSE:
  The engine is a pure function of its inputs: a period, an employee, a
  rotation, a holiday registry and a manual-event book. It performs date
  arithmetic and in-memory lookups only and never fails for a valid Period.

KEY CONCEPTS IN THIS FILE (rotation.go):
  - Variant: the five supported rotations (5x2, 5x1, 6x1 fixed, 6x1
    intercalated, 12x36)
  - Rotation: a variant plus its cycle template (nil for rule-based variants)
  - ParseVariant: lenient name matching for spreadsheets and legacy stores

ROTATIONS:
  FIVE_TWO              [W,W,W,W,W,R,R]
  FIVE_ONE              [W,W,W,W,W,R]        (+ compensatory Sunday pass)
  SIX_ONE_FIXED         rest on Sundays
  SIX_ONE_INTERCALATED  rest every 7 days from the anchor (14-day pattern)
  TWELVE_THIRTY_SIX     [R,W]                (ignores holidays)

SEE ALSO:
  - aligner.go: maps the anchor date onto the cycle
  - classifier.go: precedence of the rules
  - schedule.go: Build
*/
package rota

import (
	"strings"
)

// =============================================================================
// VARIANT
// =============================================================================

type Variant string

const (
	FiveTwo            Variant = "FIVE_TWO"
	FiveOne            Variant = "FIVE_ONE"
	SixOneFixed        Variant = "SIX_ONE_FIXED"
	SixOneIntercalated Variant = "SIX_ONE_INTERCALATED"
	TwelveThirtySix    Variant = "TWELVE_THIRTY_SIX"
)

// DefaultVariant is used for unknown or empty rotation names.
const DefaultVariant = FiveTwo

// Variants lists every supported variant in display order.
func Variants() []Variant {
	return []Variant{FiveTwo, FiveOne, SixOneFixed, SixOneIntercalated, TwelveThirtySix}
}

// Label is the short form printed on timesheets.
func (v Variant) Label() string {
	switch v {
	case FiveTwo:
		return "5X2"
	case FiveOne:
		return "5X1"
	case SixOneFixed:
		return "6X1 (FIXO)"
	case SixOneIntercalated:
		return "6X1 (INTERCALADA)"
	case TwelveThirtySix:
		return "12X36"
	default:
		return DefaultVariant.Label()
	}
}

func (v Variant) Valid() bool {
	for _, known := range Variants() {
		if v == known {
			return true
		}
	}
	return false
}

// LookupVariant recognizes canonical names ("FIVE_ONE") and the labels used
// on rosters ("5x1", "5 X 1", "6x1 fixo", "6X1 (INTERCALADA)", "12x36").
func LookupVariant(name string) (Variant, bool) {
	if v := Variant(strings.ToUpper(strings.TrimSpace(name))); v.Valid() {
		return v, true
	}

	n := strings.ToLower(name)
	n = strings.NewReplacer("(", "", ")", "", " ", "").Replace(n)
	switch {
	case strings.Contains(n, "5x2"):
		return FiveTwo, true
	case strings.Contains(n, "5x1"):
		return FiveOne, true
	case strings.Contains(n, "12x36"):
		return TwelveThirtySix, true
	case strings.Contains(n, "6x1"):
		if strings.Contains(n, "intercalad") {
			return SixOneIntercalated, true
		}
		return SixOneFixed, true
	}
	return "", false
}

// ParseVariant is LookupVariant with the documented FIVE_TWO fallback.
func ParseVariant(name string) Variant {
	if v, ok := LookupVariant(name); ok {
		return v
	}
	return DefaultVariant
}

// =============================================================================
// ROTATION
// =============================================================================

const (
	worked = true
	rest   = false
)

var cycles = map[Variant][]bool{
	FiveTwo:         {worked, worked, worked, worked, worked, rest, rest},
	FiveOne:         {worked, worked, worked, worked, worked, rest},
	TwelveThirtySix: {rest, worked},
}

// Rotation is a variant plus its cycle template. Cycle is nil for the
// rule-based 6x1 variants.
type Rotation struct {
	Variant Variant
	Cycle   []bool // true = worked; index 0 is the cycle origin
}

// RotationFor returns the rotation of v, falling back to DefaultVariant.
func RotationFor(v Variant) Rotation {
	if !v.Valid() {
		v = DefaultVariant
	}
	return Rotation{Variant: v, Cycle: cycles[v]}
}

func (r Rotation) IsCycle() bool { return len(r.Cycle) > 0 }

// HonorsHolidays is false for 12x36: those teams work through holidays.
func (r Rotation) HonorsHolidays() bool { return r.Variant != TwelveThirtySix }

// NeedsCompensation is true for the 5x1 rotation, whose 6-day cycle does not
// guarantee a Sunday off every month.
func (r Rotation) NeedsCompensation() bool { return r.Variant == FiveOne }

// firstRestIndex is the index of the first rest flag, or 0 when the cycle
// has none.
func (r Rotation) firstRestIndex() int {
	for i, w := range r.Cycle {
		if !w {
			return i
		}
	}
	return 0
}
