package reservation

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // embedded zone database, the business timezone must not depend on the host
)

// DefaultBusinessTimezone is the zone calendar dates are interpreted in unless configured otherwise.
const DefaultBusinessTimezone = "Europe/Vilnius"

var ErrUnknownTimezone = errors.New("unknown business timezone")

// BusinessCalendar interprets calendar dates as full local days of one fixed timezone
// and converts them to UTC instants and back.
type BusinessCalendar struct {
	loc *time.Location
}

// NewBusinessCalendar loads the IANA zone tzName.
func NewBusinessCalendar(tzName string) (BusinessCalendar, error) {
	if tzName == "" {
		return BusinessCalendar{}, errors.Join(ErrUnknownTimezone, errors.New("empty timezone name"))
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return BusinessCalendar{}, errors.Join(ErrUnknownTimezone, err)
	}

	return BusinessCalendar{loc: loc}, nil
}

// MustBusinessCalendar is NewBusinessCalendar that panics on an unknown zone.
func MustBusinessCalendar(tzName string) BusinessCalendar {
	calendar, err := NewBusinessCalendar(tzName)
	if err != nil {
		panic(err)
	}

	return calendar
}

// Location returns the business timezone.
func (c BusinessCalendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}

	return c.loc
}

// StartOf returns local midnight of day, expressed in UTC.
func (c BusinessCalendar) StartOf(day Day) time.Time {
	year, month, dom := day.Date()

	return time.Date(year, month, dom, 0, 0, 0, 0, c.Location()).UTC()
}

// DayOf returns the business calendar date the instant t falls on.
func (c BusinessCalendar) DayOf(t time.Time) Day {
	year, month, dom := t.In(c.Location()).Date()

	return NewDay(year, month, dom)
}

// Today returns the current business calendar date according to clock.
func (c BusinessCalendar) Today(clock Clock) Day {
	return c.DayOf(clock.Now())
}

// ParseDateRange parses both dates of a requested range. It does not check their order.
func (c BusinessCalendar) ParseDateRange(startDate, endDate string) (DateRange, error) {
	start, err := ParseDay(startDate)
	if err != nil {
		return DateRange{}, err
	}

	end, err := ParseDay(endDate)
	if err != nil {
		return DateRange{}, err
	}

	return NewDateRange(start, end), nil
}

// ToInstantRange converts two YYYY-MM-DD strings into [local midnight of start, local midnight of the day after end).
// The resulting range covers every instant of both end days.
func (c BusinessCalendar) ToInstantRange(startDate, endDate string) (InstantRange, error) {
	dates, err := c.ParseDateRange(startDate, endDate)
	if err != nil {
		return InstantRange{}, err
	}

	return c.InclusiveRange(dates), nil
}

// InclusiveRange is the instant range covering every day of dates, used for cost.
func (c BusinessCalendar) InclusiveRange(dates DateRange) InstantRange {
	return InstantRange{
		StartAt: c.StartOf(dates.Start),
		EndAt:   c.StartOf(dates.End.AddDays(1)),
	}
}

// BlockingRange is the instant range a reservation occupies for conflict detection:
// [midnight of the start date, midnight of the end date).
// A booking ending on day D and another starting on day D therefore do not overlap.
func (c BusinessCalendar) BlockingRange(dates DateRange) InstantRange {
	return InstantRange{
		StartAt: c.StartOf(dates.Start),
		EndAt:   c.StartOf(dates.End),
	}
}

// DaysIn counts the business days in r.
// Both instants are mapped back to local dates, so 23h and 25h DST days each count as one day.
func (c BusinessCalendar) DaysIn(r InstantRange) int {
	return c.DayOf(r.StartAt).DaysUntil(c.DayOf(r.EndAt))
}

func (c BusinessCalendar) String() string {
	return fmt.Sprintf("BusinessCalendar(%s)", c.Location())
}
