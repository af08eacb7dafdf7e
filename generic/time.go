/*
Package generic provides the calendar primitives shared by the rota engine,
the configuration stores and the API.

PURPOSE:
  The engine reasons in whole calendar days only. Date wraps time.Time
  normalized to midnight UTC so that day arithmetic never drifts across
  DST changes, months or years.

KEY CONCEPTS IN THIS FILE (time.go):
  - Date: a calendar day (no time of day, no zone)
  - DaysBetween: signed whole-day distance, exact for any pair of dates
  - FloorMod: non-negative modulo used for cycle-index arithmetic
  - ParseDate: accepts ISO and day-first layouts found in rosters

USAGE:
  d, err := generic.ParseDate("04/01/2025")
  origin := d.AddDays(-5)
  idx := generic.FloorMod(generic.DaysBetween(origin, d), 7)

SEE ALSO:
  - period.go: inclusive date ranges
  - errors.go: ErrInvalidDate
*/
package generic

import (
	"strings"
	"time"
)

// =============================================================================
// DATE - A calendar day
// =============================================================================

// ISOLayout is the canonical wire and storage format of a Date.
const ISOLayout = "2006-01-02"

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{ISOLayout, "02/01/2006", "02-01-2006"}

type Date struct {
	t time.Time
}

// NewDate builds a Date. Out-of-range values normalize like time.Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day and zone of t, keeping its wall-clock day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD, DD/MM/YYYY and DD-MM-YYYY.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, &InvalidDateError{Value: s}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, &InvalidDateError{Value: s}
}

// MustParseDate panics on invalid input. Tests and fixtures only.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsSunday() bool        { return d.t.Weekday() == time.Sunday }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) String() string        { return d.t.Format(ISOLayout) }

// SameMonthDay reports whether both dates share day and month, ignoring year.
func (d Date) SameMonthDay(other Date) bool {
	return d.Month() == other.Month() && d.Day() == other.Day()
}

// MonthKey returns the (year, month) bucket the date belongs to.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DatePtr is a convenience for optional date fields.
func DatePtr(d Date) *Date { return &d }

// =============================================================================
// MONTH KEY
// =============================================================================

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

func (k MonthKey) First() Date { return NewDate(k.Year, k.Month, 1) }

func (k MonthKey) String() string {
	return k.First().t.Format("2006-01")
}

// =============================================================================
// DAY ARITHMETIC
// =============================================================================

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns to - from in whole days. Negative when to is earlier.
func DaysBetween(from, to Date) int {
	return int((to.t.Unix() - from.t.Unix()) / secondsPerDay)
}

// FloorMod returns a mod n in [0, n). n must be positive.
func FloorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
