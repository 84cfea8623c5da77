// Package period converts wall-clock time into ISO-8601 (week, week-year)
// reporting periods. All math is anchored to one fixed civil timezone so the
// organization's prompt/reminder cadence and week boundaries agree.
package period

import (
	"fmt"
	"time"
)

// Valid period bounds.
const (
	MinWeek = 1
	MaxWeek = 53
	MinYear = 2020
	MaxYear = 2100
)

// Period identifies one reporting cycle as an ISO-8601 (week, week-year)
// pair. The week-year can differ from the calendar year at year boundaries.
type Period struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

// Valid reports whether the period lies inside the supported bounds.
func (p Period) Valid() bool {
	return p.Week >= MinWeek && p.Week <= MaxWeek && p.Year >= MinYear && p.Year <= MaxYear
}

// String renders the period as e.g. "2026-W07".
func (p Period) String() string {
	return fmt.Sprintf("%d-W%02d", p.Year, p.Week)
}

// Clock derives periods in a fixed civil timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a clock anchored to loc.
func NewClock(loc *time.Location) *Clock {
	return &Clock{loc: loc, now: time.Now}
}

// NewClockAt creates a clock with an injected time source, for tests.
func NewClockAt(loc *time.Location, now func() time.Time) *Clock {
	return &Clock{loc: loc, now: now}
}

// Location returns the clock's timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// At returns the period containing t, evaluated in the clock's timezone.
func (c *Clock) At(t time.Time) Period {
	year, week := t.In(c.loc).ISOWeek()
	return Period{Week: week, Year: year}
}

// Current returns the period containing the present moment.
func (c *Clock) Current() Period {
	return c.At(c.now())
}

// Previous returns the period one calendar week before the present moment.
// Subtracting seven days and re-deriving handles week-1 and week-52/53 year
// rollovers that naive week decrementing gets wrong.
func (c *Clock) Previous() Period {
	return c.At(c.now().In(c.loc).AddDate(0, 0, -7))
}

// Start returns the Monday 00:00 opening the period in the clock's timezone.
func (c *Clock) Start(p Period) time.Time {
	// Jan 4 is always inside ISO week 1 of its year.
	jan4 := time.Date(p.Year, time.January, 4, 0, 0, 0, 0, c.loc)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := jan4.AddDate(0, 0, 1-wd)
	return monday.AddDate(0, 0, (p.Week-1)*7)
}

// End returns the final instant of the period (Sunday 23:59:59.999999999).
func (c *Clock) End(p Period) time.Time {
	return c.Start(p).AddDate(0, 0, 7).Add(-time.Nanosecond)
}
