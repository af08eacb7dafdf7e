package rota

import (
	"github.com/shopspring/decimal"

	"github.com/warp/rota-engine/generic"
)

// =============================================================================
// MONTH SUMMARY - Day counts per classification
// =============================================================================

// sharePlaces is the precision of WorkloadShare.
const sharePlaces = 4

// MonthSummary counts a month's classifications. Scheduled excludes
// pre-employment days; WorkloadShare = Worked / Scheduled, exact to 4 places.
type MonthSummary struct {
	Month         generic.MonthKey
	Counts        map[Classification]int
	Worked        int
	Scheduled     int
	WorkloadShare decimal.Decimal
}

// Summarize returns one summary per month of the schedule, in order.
func (s Schedule) Summarize() []MonthSummary {
	pages := s.Months()
	out := make([]MonthSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, summarizePage(p))
	}
	return out
}

func summarizePage(p MonthPage) MonthSummary {
	sum := MonthSummary{
		Month:         p.Month,
		Counts:        make(map[Classification]int, len(Classifications())),
		WorkloadShare: decimal.Zero,
	}
	for _, rec := range p.Records {
		sum.Counts[rec.Classification]++
		if rec.Classification == PreEmployment {
			continue
		}
		sum.Scheduled++
		if rec.Classification.IsWorked() {
			sum.Worked++
		}
	}
	if sum.Scheduled > 0 {
		sum.WorkloadShare = decimal.NewFromInt(int64(sum.Worked)).
			DivRound(decimal.NewFromInt(int64(sum.Scheduled)), sharePlaces)
	}
	return sum
}
