// Package domain contains the core data types for the itinerary exporter.
// It is imported by every other internal package (itinerary, render, repo,
// service, handler) and holds no I/O.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Trip is the top-level itinerary record as stored by the travel-planning
// web page. StartDate and EndDate are inclusive calendar dates.
//
// Event dates are kept as the "2006-01-02" strings the page stores; the
// builder matches them verbatim against each day's key.
type Trip struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name"`
	StartDate  openapi_types.Date `json:"startDate"`
	EndDate    openapi_types.Date `json:"endDate"`
	Arrivals   []ArrivalEvent     `json:"arrivals"`
	Activities []ActivityEvent    `json:"activities"`
	Departures []DepartureEvent   `json:"departures"`
}

// ArrivalEvent is a traveller or flight arriving on Date at Time.
type ArrivalEvent struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Name string `json:"name"`
}

// DepartureEvent is a traveller or flight leaving on Date at Time.
type DepartureEvent struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Name string `json:"name"`
}

// ActivityEvent is a scheduled activity. EndTime is empty when the activity
// has no fixed end.
type ActivityEvent struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
	Name      string `json:"name"`
}

// MaxTripDays is the longest trip, in inclusive calendar days, that can be
// planned or exported.
const MaxTripDays = 366

// Validate checks the fields every export needs: a non-blank name, both
// dates, and a span of at most MaxTripDays. An end date before the start date
// is left to the date expander, which reports ErrInvalidRange.
func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if t.StartDate.Time.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrValidation)
	}
	if t.EndDate.Time.IsZero() {
		return fmt.Errorf("%w: endDate is required", ErrValidation)
	}
	if n := t.DayCount(); n > MaxTripDays {
		return fmt.Errorf("%w: trip spans %d days, at most %d are supported", ErrValidation, n, MaxTripDays)
	}
	return nil
}

// DayCount returns the inclusive number of calendar days between StartDate
// and EndDate, or 0 when the end falls before the start.
func (t Trip) DayCount() int {
	d := t.EndDate.Time.Sub(t.StartDate.Time)
	if d < 0 {
		return 0
	}
	return int(d/(24*time.Hour)) + 1
}

// Normalize replaces absent event collections with empty slices so that
// downstream code never branches on presence.
func (t Trip) Normalize() Trip {
	if t.Arrivals == nil {
		t.Arrivals = []ArrivalEvent{}
	}
	if t.Activities == nil {
		t.Activities = []ActivityEvent{}
	}
	if t.Departures == nil {
		t.Departures = []DepartureEvent{}
	}
	return t
}

// EventCount returns the total number of events across all collections.
func (t Trip) EventCount() int {
	return len(t.Arrivals) + len(t.Activities) + len(t.Departures)
}

// DecodeTrip parses a single trip document and normalizes it.
func DecodeTrip(data []byte) (Trip, error) {
	var t Trip
	if err := json.Unmarshal(data, &t); err != nil {
		return Trip{}, fmt.Errorf("%w: trip: %v", ErrValidation, err)
	}
	return t.Normalize(), nil
}

// DecodeCollection parses a trip collection. The web page stores the
// collection as a JSON array; a single trip object is accepted as a
// one-element collection so the CLI can read either shape.
func DecodeCollection(data []byte) ([]Trip, error) {
	var trips []Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		single, serr := DecodeTrip(data)
		if serr != nil {
			return nil, fmt.Errorf("%w: trip collection: %v", ErrValidation, err)
		}
		return []Trip{single}, nil
	}
	for i := range trips {
		trips[i] = trips[i].Normalize()
	}
	if trips == nil {
		trips = []Trip{}
	}
	return trips, nil
}
