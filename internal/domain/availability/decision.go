package availability

import (
	"time"
)

type DecisionKind string

const (
	KindAvailable DecisionKind = "AVAILABLE"
	KindConflict  DecisionKind = "CONFLICT"
	KindInvalid   DecisionKind = "INVALID"
)

type InvalidReason string

const (
	ReasonCheckInInPast         InvalidReason = "checkin-in-past"
	ReasonCheckOutBeforeCheckIn InvalidReason = "checkout-before-checkin"
)

// Decision is the advisory outcome of validating a candidate range. Only the
// fields of its Kind are set.
type Decision struct {
	Kind DecisionKind

	// Conflict
	ConflictDate time.Time
	Interval     BookedInterval

	// Invalid
	Reason InvalidReason
}

func Available() Decision {
	return Decision{Kind: KindAvailable}
}

func Conflict(date time.Time, interval BookedInterval) Decision {
	return Decision{Kind: KindConflict, ConflictDate: date, Interval: interval}
}

func Invalid(reason InvalidReason) Decision {
	return Decision{Kind: KindInvalid, Reason: reason}
}

func (d Decision) IsAvailable() bool { return d.Kind == KindAvailable }
func (d Decision) IsConflict() bool  { return d.Kind == KindConflict }
func (d Decision) IsInvalid() bool   { return d.Kind == KindInvalid }
