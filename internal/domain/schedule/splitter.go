package schedule

import (
	"sort"

	"hitchup/internal/domain/shared/civil"
)

// UnblockPlan is the sequence of external mutations that replaces the
// affected blocked periods with narrower ones covering only the dates that
// stay blocked. Removals and creations are issued one after another by the
// command handler; the plan itself is pure.
type UnblockPlan struct {
	Remove []BlockedPeriod
	Create []BlockedPeriod
}

func (p UnblockPlan) Empty() bool {
	return len(p.Remove) == 0 && len(p.Create) == 0
}

// GroupByPeriod buckets the selected dates by the id of the period covering
// them. Dates inside no blocked period are dropped: unblocking only makes
// sense for dates that are actually blocked.
func GroupByPeriod(periods []BlockedPeriod, dates []civil.Date) map[string][]civil.Date {
	grouped := make(map[string][]civil.Date)
	for _, d := range dates {
		p, ok := CoveringPeriod(periods, d)
		if !ok {
			continue
		}
		grouped[p.ID] = append(grouped[p.ID], d)
	}
	return grouped
}

// SplitForUnblock computes the replacement periods for one blocked period
// after removing the unblock set from it: the maximal contiguous runs of
// dates that remain blocked, each inheriting the original reason and
// trailer. Unblocking every date yields no replacements. Replacement ids
// are left empty for the store to assign.
func SplitForUnblock(period BlockedPeriod, unblock map[civil.Date]bool) []BlockedPeriod {
	var replacements []BlockedPeriod
	var runStart civil.Date
	inRun := false

	flush := func(runEnd civil.Date) {
		replacements = append(replacements, BlockedPeriod{
			TrailerID: period.TrailerID,
			Start:     runStart,
			End:       runEnd,
			Reason:    period.Reason,
		})
	}

	prev := period.Start
	for _, d := range period.Dates() {
		if unblock[d] {
			if inRun {
				flush(prev)
				inRun = false
			}
		} else if !inRun {
			runStart = d
			inRun = true
		}
		prev = d
	}
	if inRun {
		flush(period.End)
	}
	return replacements
}

// PlanUnblock builds the full mutation plan for unblocking the selected
// dates across however many periods they touch. Each affected period is
// deleted; when some of its dates stay blocked, replacements are created.
// Periods are processed in ascending start order so the external call
// sequence is deterministic.
func PlanUnblock(periods []BlockedPeriod, dates []civil.Date) UnblockPlan {
	grouped := GroupByPeriod(periods, dates)
	if len(grouped) == 0 {
		return UnblockPlan{}
	}

	byID := make(map[string]BlockedPeriod, len(periods))
	for _, p := range periods {
		byID[p.ID] = p
	}
	affected := make([]BlockedPeriod, 0, len(grouped))
	for id := range grouped {
		affected = append(affected, byID[id])
	}
	sort.Slice(affected, func(i, j int) bool {
		if c := affected[i].Start.Compare(affected[j].Start); c != 0 {
			return c < 0
		}
		return affected[i].ID < affected[j].ID
	})

	var plan UnblockPlan
	for _, period := range affected {
		unblock := make(map[civil.Date]bool, len(grouped[period.ID]))
		for _, d := range grouped[period.ID] {
			unblock[d] = true
		}
		plan.Remove = append(plan.Remove, period)
		plan.Create = append(plan.Create, SplitForUnblock(period, unblock)...)
	}
	return plan
}

// PlanBlock turns a (possibly gappy) date selection into one blocked period
// per contiguous run. The selection is deduplicated and sorted first.
func PlanBlock(trailerID string, dates []civil.Date, reason string) []BlockedPeriod {
	if len(dates) == 0 {
		return nil
	}
	sorted := dedupeSorted(dates)

	var periods []BlockedPeriod
	runStart := sorted[0]
	prev := sorted[0]
	for _, d := range sorted[1:] {
		if prev.DaysUntil(d) > 1 {
			periods = append(periods, BlockedPeriod{TrailerID: trailerID, Start: runStart, End: prev, Reason: reason})
			runStart = d
		}
		prev = d
	}
	periods = append(periods, BlockedPeriod{TrailerID: trailerID, Start: runStart, End: prev, Reason: reason})
	return periods
}

func dedupeSorted(dates []civil.Date) []civil.Date {
	seen := make(map[civil.Date]bool, len(dates))
	out := make([]civil.Date, 0, len(dates))
	for _, d := range dates {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
