package reservation

import (
	"fmt"
	"regexp"
	"time"
)

const dayLayout = "2006-01-02"

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Day is a calendar date without a timezone.
// It is stored as midnight UTC so that day arithmetic never crosses a DST boundary.
// Use a BusinessCalendar to map a Day onto real instants.
type Day struct {
	t time.Time
}

// NewDay builds a Day from its components. Out-of-range components are normalized the way time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a bare YYYY-MM-DD string.
// Anything else, including impossible dates like 2025-02-30, fails with ErrInvalidDateFormat.
func ParseDay(s string) (Day, error) {
	if !dayPattern.MatchString(s) {
		return Day{}, Reject(ErrInvalidDateFormat, fmt.Sprintf("%q is not a YYYY-MM-DD date", s))
	}

	t, err := time.ParseInLocation(dayLayout, s, time.UTC)
	if err != nil {
		return Day{}, Reject(ErrInvalidDateFormat, fmt.Sprintf("%q is not a calendar date", s))
	}

	return Day{t: t}, nil
}

// MustParseDay is ParseDay for constants and tests. It panics on invalid input.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}

	return d
}

// String renders the day as YYYY-MM-DD.
func (d Day) String() string {
	return d.t.Format(dayLayout)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// Date returns the year, month and day of d.
func (d Day) Date() (int, time.Month, int) {
	return d.t.Date()
}

// AddDays returns the day n calendar days after d. n may be negative.
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

// Equal reports whether d and other are the same calendar date.
func (d Day) Equal(other Day) bool {
	return d.t.Equal(other.t)
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the number of calendar days from d to other, negative if other is earlier.
// Both days are UTC midnights, so the difference of their Unix seconds is an exact multiple of a day
// for any span, unlike time.Duration which saturates after about 292 years.
func (d Day) DaysUntil(other Day) int {
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// DateRange is a reservation's calendar dates as entered, both ends inclusive for cost purposes.
type DateRange struct {
	Start Day
	End   Day
}

// NewDateRange builds a DateRange without validating it.
func NewDateRange(start, end Day) DateRange {
	return DateRange{Start: start, End: end}
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// Equal reports whether both ranges have the same start and end dates.
func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// Covers reports whether day lies within the inclusive range.
func (r DateRange) Covers(day Day) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

// InstantRange is a half-open interval [StartAt, EndAt) of UTC instants.
type InstantRange struct {
	StartAt time.Time
	EndAt   time.Time
}

// Overlaps reports whether the half-open ranges a and b share at least one instant.
// Touching boundaries do not overlap.
func Overlaps(a, b InstantRange) bool {
	return a.StartAt.Before(b.EndAt) && a.EndAt.After(b.StartAt)
}
