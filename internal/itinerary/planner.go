package itinerary

import "github.com/pkordes/itinerary-export/internal/domain"

// EstimateHeight is the height a day card is expected to take on the page:
// the base height plus one row per event. Empty days still cost the base.
func EstimateHeight(day domain.DayViewModel, policy domain.LayoutPolicy) float64 {
	return policy.ItemBaseHeight + float64(len(day.Events))*policy.ItemHeightPerEvent
}

// Plan partitions days into pages according to policy. Day order is kept
// across and within pages and a day is never split.
//
// The fixed-count strategy breaks every MaxItemsPerPage days. The
// height-budget strategy additionally breaks before a day whose estimated
// height would push the page past PageHeightBudget; a day taller than the
// whole budget gets a page to itself. A height-budget policy with no
// positive budget behaves like fixed-count.
func Plan(days []domain.DayViewModel, policy domain.LayoutPolicy) domain.PagePlan {
	policy = policy.Resolved()
	byHeight := policy.Strategy == domain.StrategyHeightBudget && policy.PageHeightBudget > 0

	plan := domain.PagePlan{Policy: policy, Pages: []domain.Page{}}
	var cur domain.Page

	flush := func() {
		if len(cur.Days) == 0 {
			return
		}
		cur.Number = len(plan.Pages) + 1
		plan.Pages = append(plan.Pages, cur)
		cur = domain.Page{}
	}

	for _, day := range days {
		h := EstimateHeight(day, policy)
		if len(cur.Days) > 0 {
			full := len(cur.Days) >= policy.MaxItemsPerPage
			overflow := byHeight && cur.EstimatedHeight+h > policy.PageHeightBudget
			if full || overflow {
				flush()
			}
		}
		cur.Days = append(cur.Days, day)
		cur.EstimatedHeight += h
	}
	flush()
	return plan
}
