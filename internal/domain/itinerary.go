package domain

import (
	"fmt"
	"time"
)

// Category identifies which trip collection a display event came from.
// It drives the icon and the colors renderers use for the event.
type Category string

const (
	CategoryArrival   Category = "arrival"
	CategoryActivity  Category = "activity"
	CategoryDeparture Category = "departure"
)

// Color is an RGB triple usable by both markup and drawing backends.
type Color struct {
	R, G, B uint8
}

// Hex returns the CSS form of c, e.g. "#28a745".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style is the border/background/text color triple of a category.
type Style struct {
	Border     Color
	Background Color
	Text       Color
}

var categoryStyles = map[Category]Style{
	CategoryArrival: {
		Border:     Color{0x28, 0xa7, 0x45},
		Background: Color{0xe8, 0xf5, 0xe9},
		Text:       Color{0x1b, 0x5e, 0x20},
	},
	CategoryActivity: {
		Border:     Color{0x00, 0x7b, 0xff},
		Background: Color{0xe3, 0xf2, 0xfd},
		Text:       Color{0x0d, 0x47, 0xa1},
	},
	CategoryDeparture: {
		Border:     Color{0xfd, 0x7e, 0x14},
		Background: Color{0xff, 0xf3, 0xe0},
		Text:       Color{0xe6, 0x51, 0x00},
	},
}

// Style returns the color triple for c. Unknown categories get a neutral grey.
func (c Category) Style() Style {
	if s, ok := categoryStyles[c]; ok {
		return s
	}
	return Style{
		Border:     Color{0x9e, 0x9e, 0x9e},
		Background: Color{0xf5, 0xf5, 0xf5},
		Text:       Color{0x42, 0x42, 0x42},
	}
}

// Icon returns the glyph shown next to events of category c.
func (c Category) Icon() string {
	switch c {
	case CategoryArrival:
		return "🛬"
	case CategoryActivity:
		return "📅"
	case CategoryDeparture:
		return "🛫"
	}
	return ""
}

// Label returns a human-readable name for c. Backends whose fonts cannot
// draw the icon glyphs use it instead.
func (c Category) Label() string {
	switch c {
	case CategoryArrival:
		return "Arrival"
	case CategoryActivity:
		return "Activity"
	case CategoryDeparture:
		return "Departure"
	}
	return string(c)
}

// DisplayEvent is a rendering-ready projection of an arrival, activity, or
// departure.
type DisplayEvent struct {
	Category    Category `json:"category"`
	Time        string   `json:"time"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

// Text returns the single-line form used by every backend:
// "{time} - {description}".
func (e DisplayEvent) Text() string {
	return e.Time + " - " + e.Description
}

// DayViewModel aggregates the events of one calendar day.
// Events is never nil; a day without events has an empty slice and renderers
// show a placeholder for it.
type DayViewModel struct {
	Date    time.Time      `json:"-"`
	DateKey string         `json:"dateKey"`
	Title   string         `json:"title"`
	Events  []DisplayEvent `json:"events"`
}
