package generic

// =============================================================================
// PERIOD - Inclusive range of calendar days
// =============================================================================

// Period is the [Start, End] range a schedule is generated for.
// Build it with NewPeriod so that Start <= End always holds.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod validates the range. This is the only place a reversed range is
// rejected; the engine assumes a valid Period.
func NewPeriod(start, end Date) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, ErrInvalidPeriod
	}
	if end.Before(start) {
		return Period{}, &RangeError{Start: start, End: end}
	}
	return Period{Start: start, End: end}, nil
}

// ParsePeriod parses both bounds with ParseDate and validates the range.
func ParsePeriod(start, end string) (Period, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Period{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Period{}, err
	}
	return NewPeriod(s, e)
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Len is the number of days in the period.
func (p Period) Len() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day in the period in ascending order.
func (p Period) Days() []Date {
	days := make([]Date, 0, p.Len())
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Months returns the months the period touches, in order.
func (p Period) Months() []MonthKey {
	var months []MonthKey
	for k := p.Start.MonthKey(); !p.End.MonthKey().Before(k); k = k.First().AddMonths(1).MonthKey() {
		months = append(months, k)
	}
	return months
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
