package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the wire format of a calendar date.
const Layout = time.DateOnly

const day = 24 * time.Hour

var (
	ErrInvalidRange  = errors.New("daterange: checkout must be after checkin")
	ErrMalformedDate = errors.New("daterange: malformed date")
)

// DateRange represents a half-open interval [checkIn, checkOut) of calendar dates.
// Both ends are kept as UTC midnights.
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// New builds a validated range from two instants, dropping the time of day.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := FromDates(checkIn, checkOut)
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// FromDates normalizes both ends to calendar dates without validating order.
func FromDates(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
}

// Parse reads both ends in YYYY-MM-DD form. Order is not validated.
func Parse(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDay(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDay(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

// ParseDay accepts YYYY-MM-DD or an RFC3339 timestamp and returns its calendar date.
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedDate)
	}
	if t, err := time.Parse(Layout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, value)
	}
	return Day(t), nil
}

// Day truncates t to midnight UTC of the calendar date it names in its own location.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key formats a calendar date the way indexes and the wire format expect it.
func Key(t time.Time) string {
	return Day(t).Format(Layout)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns the number of whole days in the range. ok is false when the
// ends are not a whole number of days apart.
func (dr DateRange) Nights() (nights int, ok bool) {
	diff := dr.CheckOut.Sub(dr.CheckIn)
	if diff%day != 0 {
		return int(diff / day), false
	}
	return int(diff / day), true
}

// Dates lists every calendar date in [checkIn, checkOut), chronologically.
func (dr DateRange) Dates() []time.Time {
	start, end := Day(dr.CheckIn), Day(dr.CheckOut)
	if !end.After(start) {
		return nil
	}
	out := make([]time.Time, 0, int(end.Sub(start)/day))
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

// Clip returns the part of dr inside bounds, or false when they do not overlap.
func (dr DateRange) Clip(bounds DateRange) (DateRange, bool) {
	if !dr.Overlaps(bounds) {
		return DateRange{}, false
	}
	start := dr.CheckIn
	if bounds.CheckIn.After(start) {
		start = bounds.CheckIn
	}
	end := dr.CheckOut
	if bounds.CheckOut.Before(end) {
		end = bounds.CheckOut
	}
	return DateRange{CheckIn: start, CheckOut: end}, true
}

func (dr DateRange) String() string {
	return dr.CheckIn.Format(Layout) + ".." + dr.CheckOut.Format(Layout)
}
