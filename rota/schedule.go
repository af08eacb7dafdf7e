package rota

import (
	"iter"

	"github.com/warp/rota-engine/generic"
)

// =============================================================================
// SCHEDULE REQUEST
// =============================================================================

// Request is everything one schedule depends on. Build it per generation; the
// engine keeps nothing between calls.
type Request struct {
	Period   generic.Period
	Employee Employee
	Rotation Rotation
	Anchor   *generic.Date
	Holidays HolidayRegistry
	Events   EventLookup
}

// NewRequest takes rotation and anchor from the employee.
func NewRequest(period generic.Period, emp Employee, holidays HolidayRegistry, events EventLookup) Request {
	return Request{
		Period:   period,
		Employee: emp,
		Rotation: RotationFor(emp.Rotation),
		Anchor:   emp.Anchor,
		Holidays: holidays,
		Events:   events,
	}
}

// =============================================================================
// SCHEDULE BUILDER
// =============================================================================

// Build classifies every date of req.Period in ascending order and then runs
// the compensatory Sunday pass. It never fails for a valid Period.
func Build(req Request) Schedule {
	c := &Classifier{
		Employee: req.Employee,
		Aligned:  Align(req.Rotation, req.Anchor, req.Period.Start),
		Holidays: HolidayResolver{Registry: req.Holidays},
		Events:   req.Events,
	}

	days := req.Period.Days()
	records := make([]DayRecord, 0, len(days))
	for _, d := range days {
		records = append(records, c.Classify(d))
	}

	compensated := Compensate(records, req.Rotation)

	return Schedule{
		Employee:    req.Employee,
		Period:      req.Period,
		Rotation:    req.Rotation,
		Origin:      c.Aligned.Origin,
		records:     records,
		Compensated: compensated,
	}
}

// =============================================================================
// SCHEDULE - Dense ordered output
// =============================================================================

// Schedule holds one record per day of Period, in ascending order.
type Schedule struct {
	Employee    Employee
	Period      generic.Period
	Rotation    Rotation
	Origin      generic.Date   // cycle origin used for this build
	Compensated []generic.Date // days forced to compensatory rest

	records []DayRecord
}

// Records returns a copy of the records.
func (s Schedule) Records() []DayRecord {
	out := make([]DayRecord, len(s.records))
	copy(out, s.records)
	return out
}

// All iterates the records in date order. It can be ranged over any number
// of times.
func (s Schedule) All() iter.Seq[DayRecord] {
	return func(yield func(DayRecord) bool) {
		for _, rec := range s.records {
			if !yield(rec) {
				return
			}
		}
	}
}

func (s Schedule) Len() int { return len(s.records) }

// At returns the record for d.
func (s Schedule) At(d generic.Date) (DayRecord, bool) {
	if !s.Period.Contains(d) {
		return DayRecord{}, false
	}
	return s.records[generic.DaysBetween(s.Period.Start, d)], true
}

// Count returns how many days carry c.
func (s Schedule) Count(c Classification) int {
	n := 0
	for _, rec := range s.records {
		if rec.Classification == c {
			n++
		}
	}
	return n
}

// =============================================================================
// MONTH PAGES - Grouping for renderers
// =============================================================================

// MonthPage is the slice of a schedule that fits on one timesheet page.
type MonthPage struct {
	Month   generic.MonthKey
	Records []DayRecord
}

// Renderable is false when every record is PRE_EMPLOYMENT, HOLIDAY or REST.
func (p MonthPage) Renderable() bool {
	for _, rec := range p.Records {
		if rec.Classification.HasWorkableContent() {
			return true
		}
	}
	return false
}

// Months groups the records by calendar month, in order.
func (s Schedule) Months() []MonthPage {
	var pages []MonthPage
	for _, rec := range s.records {
		key := rec.Date.MonthKey()
		if n := len(pages); n == 0 || pages[n-1].Month != key {
			pages = append(pages, MonthPage{Month: key})
		}
		pages[len(pages)-1].Records = append(pages[len(pages)-1].Records, rec)
	}
	return pages
}

// SkipReason explains why a month or a whole schedule produced no page.
type SkipReason string

const (
	SkipBeforeAdmission SkipReason = "before_admission"
	SkipNoWorkableDays  SkipReason = "no_workable_days"
)

// SkippedMonth is a month left out of Pages.
type SkippedMonth struct {
	Month  generic.MonthKey
	Reason SkipReason
}

// Pages returns the months a renderer should print. Months wholly before the
// admission month are skipped, as are months with no workable content.
func (s Schedule) Pages() ([]MonthPage, []SkippedMonth) {
	var admissionMonth *generic.MonthKey
	if adm := s.Employee.Admission; adm != nil {
		k := adm.MonthKey()
		admissionMonth = &k
	}

	var pages []MonthPage
	var skipped []SkippedMonth
	for _, p := range s.Months() {
		switch {
		case admissionMonth != nil && p.Month.Before(*admissionMonth):
			skipped = append(skipped, SkippedMonth{Month: p.Month, Reason: SkipBeforeAdmission})
		case !p.Renderable():
			skipped = append(skipped, SkippedMonth{Month: p.Month, Reason: SkipNoWorkableDays})
		default:
			pages = append(pages, p)
		}
	}
	return pages, skipped
}

// AdmittedAfter reports whether the employee joins after the period ends.
func (s Schedule) AdmittedAfter() bool {
	adm := s.Employee.Admission
	return adm != nil && adm.After(s.Period.End)
}

