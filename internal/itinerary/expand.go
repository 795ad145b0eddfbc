// Package itinerary turns a trip into a paginated, renderer-agnostic page
// plan. Everything here is pure: no I/O, no shared state, safe to call
// concurrently.
package itinerary

import (
	"fmt"
	"time"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// ExpandDates returns every calendar day from start to end inclusive.
// Both inputs are read as calendar dates anchored at midnight in start's
// location, so any time-of-day component is ignored. Returns domain.ErrInvalidRange when end
// falls before start.
func ExpandDates(start, end time.Time) ([]time.Time, error) {
	first := midnight(start, start.Location())
	last := midnight(end, start.Location())
	if last.Before(first) {
		return nil, fmt.Errorf("%w: end %s is before start %s",
			domain.ErrInvalidRange, last.Format(time.DateOnly), first.Format(time.DateOnly))
	}

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
