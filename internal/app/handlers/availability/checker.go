package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"propertyhub/internal/app/policies"
	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

// ErrRangeRejected is matched by every RejectedError.
var ErrRangeRejected = errors.New("availability: range rejected")

// RejectedError reports a non-available advisory decision.
type RejectedError struct {
	Decision domainavailability.Decision
}

func (e *RejectedError) Error() string {
	d := e.Decision
	switch {
	case d.IsConflict():
		return fmt.Sprintf("%s: %s is already booked", ErrRangeRejected, daterange.Key(d.ConflictDate))
	case d.IsInvalid():
		return fmt.Sprintf("%s: %s", ErrRangeRejected, d.Reason)
	default:
		return ErrRangeRejected.Error()
	}
}

func (e *RejectedError) Unwrap() error { return ErrRangeRejected }

// Checker loads the booked intervals around a candidate range and runs the
// advisory validation against them.
type Checker struct {
	Source policies.IntervalSource
	Now    func() time.Time
	Logger *slog.Logger
}

// Check returns the decision for r. Errors are collaborator failures only;
// a rejected range is reported through the decision.
func (c *Checker) Check(ctx context.Context, property domainavailability.PropertyID, r daterange.DateRange) (domainavailability.Decision, error) {
	if property == "" {
		return domainavailability.Decision{}, domainavailability.ErrPropertyRequired
	}
	now := c.now()
	r = daterange.FromDates(r.CheckIn, r.CheckOut)

	// Past and inverted ranges are decided without a lookup.
	if pre := domainavailability.ValidateRange(r, nil, now); !pre.IsAvailable() {
		return pre, nil
	}
	idx, err := c.Index(ctx, domainavailability.Query{PropertyID: property, Horizon: r})
	if err != nil {
		return domainavailability.Decision{}, err
	}
	decision := domainavailability.ValidateRange(r, idx, now)
	if c.Logger != nil && decision.IsConflict() {
		c.Logger.DebugContext(ctx, "advisory conflict",
			"property_id", property, "range", r.String(),
			"conflict_date", daterange.Key(decision.ConflictDate), "blocking_id", decision.Interval.ID)
	}
	return decision, nil
}

// Index fetches and indexes the booked intervals of q.
func (c *Checker) Index(ctx context.Context, q domainavailability.Query) (*domainavailability.Index, error) {
	if c.Source == nil {
		return nil, fmt.Errorf("%w: no interval source configured", policies.ErrUpstreamUnavailable)
	}
	intervals, err := c.Source.BookedIntervals(ctx, q)
	if err != nil {
		if errors.Is(err, policies.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", policies.ErrUpstreamUnavailable, err)
	}
	return domainavailability.IndexWithin(intervals, q.Horizon), nil
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
