package domain

import "fmt"

// Strategy selects how the layout planner packs days onto pages.
type Strategy string

const (
	// StrategyFixedCount starts a new page every MaxItemsPerPage days,
	// regardless of how tall each day renders.
	StrategyFixedCount Strategy = "fixed"
	// StrategyHeightBudget also starts a new page when the next day's
	// estimated height would overflow PageHeightBudget.
	StrategyHeightBudget Strategy = "height"
)

// Layout defaults. Heights are in the drawing backend's unit (millimetres).
const (
	DefaultMaxItemsPerPage    = 3
	DefaultItemBaseHeight     = 20.0
	DefaultItemHeightPerEvent = 12.0
)

// LayoutPolicy is the capacity policy handed to the layout planner.
type LayoutPolicy struct {
	Strategy           Strategy `json:"strategy"`
	MaxItemsPerPage    int      `json:"maxItemsPerPage"`
	PageHeightBudget   float64  `json:"pageHeightBudget,omitempty"`
	ItemBaseHeight     float64  `json:"itemBaseHeight"`
	ItemHeightPerEvent float64  `json:"itemHeightPerEvent"`
}

// DefaultLayoutPolicy returns the fixed-count policy with three days per page.
func DefaultLayoutPolicy() LayoutPolicy {
	return LayoutPolicy{
		Strategy:           StrategyFixedCount,
		MaxItemsPerPage:    DefaultMaxItemsPerPage,
		ItemBaseHeight:     DefaultItemBaseHeight,
		ItemHeightPerEvent: DefaultItemHeightPerEvent,
	}
}

// NewLayoutPolicy builds a LayoutPolicy from optional request values on top
// of base. Nil pointers keep the base value; non-positive counts and
// negative heights are ignored. A page height without an explicit strategy
// selects the height-budget strategy.
func NewLayoutPolicy(base LayoutPolicy, strategy *string, maxItems *int, pageHeight *float64) (LayoutPolicy, error) {
	p := base.Resolved()
	if pageHeight != nil && *pageHeight >= 0 {
		p.PageHeightBudget = *pageHeight
		if *pageHeight > 0 && strategy == nil {
			p.Strategy = StrategyHeightBudget
		}
	}
	if strategy != nil {
		switch s := Strategy(*strategy); s {
		case StrategyFixedCount, StrategyHeightBudget:
			p.Strategy = s
		default:
			return LayoutPolicy{}, fmt.Errorf("%w: unknown layout strategy %q", ErrValidation, *strategy)
		}
	}
	if maxItems != nil && *maxItems >= 1 {
		p.MaxItemsPerPage = *maxItems
	}
	return p, nil
}

// Resolved returns p with zero or invalid fields replaced by defaults.
func (p LayoutPolicy) Resolved() LayoutPolicy {
	d := DefaultLayoutPolicy()
	if p.Strategy == "" {
		p.Strategy = d.Strategy
	}
	if p.MaxItemsPerPage <= 0 {
		p.MaxItemsPerPage = d.MaxItemsPerPage
	}
	if p.ItemBaseHeight <= 0 {
		p.ItemBaseHeight = d.ItemBaseHeight
	}
	if p.ItemHeightPerEvent <= 0 {
		p.ItemHeightPerEvent = d.ItemHeightPerEvent
	}
	if p.PageHeightBudget < 0 {
		p.PageHeightBudget = 0
	}
	return p
}

// Page is one rendered page: an ordered run of days.
// Number is 1-based.
type Page struct {
	Number          int            `json:"number"`
	Days            []DayViewModel `json:"days"`
	EstimatedHeight float64        `json:"estimatedHeight"`
}

// PagePlan is the ordered partition of a trip's days into pages.
type PagePlan struct {
	Policy LayoutPolicy `json:"policy"`
	Pages  []Page       `json:"pages"`
}

// DayCount returns the number of days across all pages.
func (p PagePlan) DayCount() int {
	n := 0
	for _, pg := range p.Pages {
		n += len(pg.Days)
	}
	return n
}
