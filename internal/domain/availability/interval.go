package availability

import (
	"context"
	"errors"
	"time"

	"propertyhub/internal/domain/shared/daterange"
)

// DefaultHorizonDays is how far ahead booked dates are fetched when the caller
// does not say otherwise (three months of calendar).
const DefaultHorizonDays = 90

var ErrPropertyRequired = errors.New("availability: property id required")

type PropertyID string

// BookedInterval is an existing reservation that blocks the dates it covers.
// The engine never creates or mutates them.
type BookedInterval struct {
	ID    string
	Range daterange.DateRange
}

// Query selects which booked intervals to fetch before indexing.
type Query struct {
	PropertyID PropertyID
	Horizon    daterange.DateRange
}

// NewQuery builds a query covering [from, from+days).
func NewQuery(property PropertyID, from time.Time, days int) (Query, error) {
	if property == "" {
		return Query{}, ErrPropertyRequired
	}
	if days <= 0 {
		days = DefaultHorizonDays
	}
	start := daterange.Day(from)
	horizon, err := daterange.New(start, start.AddDate(0, 0, days))
	if err != nil {
		return Query{}, err
	}
	return Query{PropertyID: property, Horizon: horizon}, nil
}

// Covers reports whether every date of r lies inside the query horizon.
func (q Query) Covers(r daterange.DateRange) bool {
	return !r.CheckIn.Before(q.Horizon.CheckIn) && !r.CheckOut.After(q.Horizon.CheckOut)
}

// Source returns the booked intervals of a property within a horizon,
// already filtered to non-cancelled bookings.
type Source interface {
	BookedIntervals(ctx context.Context, q Query) ([]BookedInterval, error)
}
