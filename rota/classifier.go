package rota

import "github.com/warp/rota-engine/generic"

// =============================================================================
// DAY CLASSIFIER - Precedence chain for a single date
// =============================================================================

// Classifier resolves one date for one employee. It holds only read-only
// inputs and is safe to share between goroutines.
type Classifier struct {
	Employee Employee
	Aligned  AlignedRotation
	Holidays HolidayResolver
	Events   EventLookup
}

// rule returns ok=true when it decides the day.
type rule struct {
	name  string
	apply func(c *Classifier, d generic.Date) (DayRecord, bool)
}

// precedence is evaluated top to bottom; the first rule that decides wins.
// rotationOutcome always decides, so every date gets exactly one record.
var precedence = []rule{
	{name: "pre-employment", apply: preEmployment},
	{name: "manual-override", apply: manualOverride},
	{name: "holiday", apply: holidayEntitlement},
	{name: "rotation", apply: rotationOutcome},
}

// Classify returns the record for d.
func (c *Classifier) Classify(d generic.Date) DayRecord {
	for _, r := range precedence {
		if rec, ok := r.apply(c, d); ok {
			return rec
		}
	}
	// unreachable: rotationOutcome always decides
	return DayRecord{Date: d, Classification: Workday}
}

func preEmployment(c *Classifier, d generic.Date) (DayRecord, bool) {
	adm := c.Employee.Admission
	if adm == nil || !d.Before(*adm) {
		return DayRecord{}, false
	}
	return DayRecord{Date: d, Classification: PreEmployment}, true
}

func manualOverride(c *Classifier, d generic.Date) (DayRecord, bool) {
	if c.Events == nil {
		return DayRecord{}, false
	}
	kind, ok := c.Events.Lookup(c.Employee.Name, d)
	if !ok {
		return DayRecord{}, false
	}
	switch kind {
	case EventRest:
		return DayRecord{Date: d, Classification: ManualRest}, true
	case EventHoliday:
		return DayRecord{Date: d, Classification: ManualHoliday}, true
	}
	return DayRecord{}, false
}

func holidayEntitlement(c *Classifier, d generic.Date) (DayRecord, bool) {
	h, ok := c.Holidays.Resolve(d, c.Employee.Post, c.Aligned.Rotation)
	if !ok {
		return DayRecord{}, false
	}
	return DayRecord{Date: d, Classification: Holiday, Note: h.Name}, true
}

func rotationOutcome(c *Classifier, d generic.Date) (DayRecord, bool) {
	if c.Aligned.IsRest(d) {
		return DayRecord{Date: d, Classification: Rest}, true
	}
	return DayRecord{Date: d, Classification: Workday}, true
}
