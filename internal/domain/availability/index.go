package availability

import (
	"sort"
	"time"

	"propertyhub/internal/domain/shared/daterange"
)

// Index is a set of blocked calendar dates built from a snapshot of booked
// intervals. Lookups are O(1).
type Index struct {
	blocked map[string]BookedInterval
}

// IndexBookedDates expands each interval checkIn-inclusive, checkOut-exclusive.
// Overlapping or duplicate intervals block a date once; the first interval
// covering it is kept as its blocker. Empty or inverted intervals block nothing.
func IndexBookedDates(intervals []BookedInterval) *Index {
	idx := &Index{blocked: make(map[string]BookedInterval)}
	for _, interval := range intervals {
		idx.add(interval, nil)
	}
	return idx
}

// IndexWithin is IndexBookedDates restricted to the dates inside horizon, so a
// long-running booking does not expand beyond the calendar being shown.
func IndexWithin(intervals []BookedInterval, horizon daterange.DateRange) *Index {
	idx := &Index{blocked: make(map[string]BookedInterval)}
	for _, interval := range intervals {
		idx.add(interval, &horizon)
	}
	return idx
}

func (idx *Index) add(interval BookedInterval, bounds *daterange.DateRange) {
	r := daterange.FromDates(interval.Range.CheckIn, interval.Range.CheckOut)
	if bounds != nil {
		clipped, ok := r.Clip(*bounds)
		if !ok {
			return
		}
		r = clipped
	}
	for _, d := range r.Dates() {
		key := daterange.Key(d)
		if _, exists := idx.blocked[key]; exists {
			continue
		}
		idx.blocked[key] = interval
	}
}

// IsBlocked reports whether the calendar date of t is occupied.
func (idx *Index) IsBlocked(t time.Time) bool {
	_, ok := idx.BlockedBy(t)
	return ok
}

// BlockedBy returns the interval that blocks the calendar date of t.
func (idx *Index) BlockedBy(t time.Time) (BookedInterval, bool) {
	if idx == nil {
		return BookedInterval{}, false
	}
	interval, ok := idx.blocked[daterange.Key(t)]
	return interval, ok
}

// Len is the number of distinct blocked dates.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.blocked)
}

// Dates returns the blocked dates in YYYY-MM-DD form, sorted.
func (idx *Index) Dates() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, 0, len(idx.blocked))
	for key := range idx.blocked {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
