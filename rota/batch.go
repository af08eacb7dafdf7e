package rota

import (
	"context"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/warp/rota-engine/generic"
)

// =============================================================================
// SELECTION - Which employees a batch covers
// =============================================================================

type SelectionMode string

const (
	SelectAll   SelectionMode = "all"
	SelectPosts SelectionMode = "posts"
	SelectNames SelectionMode = "names"
)

// Selection filters a roster. Values are posts or names depending on Mode.
type Selection struct {
	Mode   SelectionMode
	Values []string
}

// Apply returns the selected employees in roster order.
func (sel Selection) Apply(roster []Employee) []Employee {
	if sel.Mode == "" || sel.Mode == SelectAll {
		return append([]Employee(nil), roster...)
	}
	want := make(map[string]bool, len(sel.Values))
	for _, v := range sel.Values {
		want[v] = true
	}
	var out []Employee
	for _, e := range roster {
		switch sel.Mode {
		case SelectPosts:
			if want[e.Post] {
				out = append(out, e)
			}
		case SelectNames:
			if want[e.Name] {
				out = append(out, e)
			}
		}
	}
	return out
}

// =============================================================================
// BATCH BUILDER - Many employees, one snapshot
// =============================================================================

// BatchResult is one employee's outcome. Skipped explains why no page would
// be printed (empty when at least one page exists).
type BatchResult struct {
	Schedule Schedule
	Pages    []MonthPage
	Skipped  []SkippedMonth
	Reason   SkipReason
}

// BatchBuilder computes schedules on a bounded pool. Employees share only the
// snapshot, which is read-only, so results may complete in any order.
type BatchBuilder struct {
	Workers int
}

// Build returns results in roster order. It stops scheduling new employees
// once ctx is done and returns ctx.Err() with the results finished so far.
func (b BatchBuilder) Build(ctx context.Context, period generic.Period, snap Snapshot, sel Selection) ([]BatchResult, error) {
	employees := sel.Apply(snap.Employees)

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type indexed struct {
		idx    int
		result BatchResult
		ok     bool
	}

	p := pool.NewWithResults[indexed]().WithMaxGoroutines(workers)
	for i, emp := range employees {
		i, emp := i, emp
		p.Go(func() indexed {
			if ctx.Err() != nil {
				return indexed{idx: i}
			}
			return indexed{idx: i, result: buildResult(snap.Request(period, emp)), ok: true}
		})
	}
	collected := p.Wait()

	sort.Slice(collected, func(i, j int) bool { return collected[i].idx < collected[j].idx })
	results := make([]BatchResult, 0, len(collected))
	for _, c := range collected {
		if c.ok {
			results = append(results, c.result)
		}
	}
	return results, ctx.Err()
}

func buildResult(req Request) BatchResult {
	s := Build(req)
	pages, skipped := s.Pages()
	res := BatchResult{Schedule: s, Pages: pages, Skipped: skipped}
	if len(pages) == 0 {
		res.Reason = SkipNoWorkableDays
		if s.AdmittedAfter() {
			res.Reason = SkipBeforeAdmission
		}
	}
	return res
}
