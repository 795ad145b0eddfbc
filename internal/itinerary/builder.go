package itinerary

import (
	"fmt"
	"time"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// Builder projects a trip's events onto calendar days.
type Builder struct {
	fmt Formatter
}

// NewBuilder returns a Builder using f for day keys and titles.
// A nil f falls back to DefaultFormatter.
func NewBuilder(f Formatter) *Builder {
	if f == nil {
		f = DefaultFormatter{}
	}
	return &Builder{fmt: f}
}

// Build returns the view model for date. Events keep the order arrivals,
// activities, departures, each in source order; they are not sorted by time.
// Events whose date does not equal the day's key are skipped.
func (b *Builder) Build(date time.Time, trip domain.Trip) domain.DayViewModel {
	key := b.fmt.Key(date)
	day := domain.DayViewModel{
		Date:    date,
		DateKey: key,
		Title:   b.fmt.Title(date),
		Events:  []domain.DisplayEvent{},
	}

	for _, a := range trip.Arrivals {
		if a.Date == key {
			day.Events = append(day.Events, displayEvent(domain.CategoryArrival, a.Time, a.Name+" arrives"))
		}
	}
	for _, a := range trip.Activities {
		if a.Date == key {
			day.Events = append(day.Events, displayEvent(domain.CategoryActivity, activityTime(a), a.Name))
		}
	}
	for _, d := range trip.Departures {
		if d.Date == key {
			day.Events = append(day.Events, displayEvent(domain.CategoryDeparture, d.Time, d.Name+" departs"))
		}
	}
	return day
}

// BuildAll expands the trip's date range and builds one view model per day.
// Events dated outside the range appear in no day.
func (b *Builder) BuildAll(trip domain.Trip) ([]domain.DayViewModel, error) {
	dates, err := ExpandDates(trip.StartDate.Time, trip.EndDate.Time)
	if err != nil {
		return nil, fmt.Errorf("itinerary.Builder.BuildAll: %w", err)
	}
	days := make([]domain.DayViewModel, len(dates))
	for i, d := range dates {
		days[i] = b.Build(d, trip)
	}
	return days, nil
}

func displayEvent(c domain.Category, t, desc string) domain.DisplayEvent {
	return domain.DisplayEvent{Category: c, Time: t, Description: desc, Icon: c.Icon()}
}

// activityTime is the start time alone, or "start - end" when an end is set.
func activityTime(a domain.ActivityEvent) string {
	if a.EndTime == "" {
		return a.StartTime
	}
	return a.StartTime + " - " + a.EndTime
}
