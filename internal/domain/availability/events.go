package availability

import (
	"time"

	"propertyhub/internal/domain/shared/daterange"
)

// ConflictDetected is raised when a booking request is turned away because a
// night is already taken, either by the advisory check or by the booking service.
type ConflictDetected struct {
	PropertyID   string              `json:"property_id"`
	Range        daterange.DateRange `json:"range"`
	ConflictDate string              `json:"conflict_date,omitempty"`
	BlockingID   string              `json:"blocking_id,omitempty"`
	Remote       bool                `json:"remote"`
	At           time.Time           `json:"at"`
}

func (e ConflictDetected) EventName() string     { return "availability.conflict_detected" }
func (e ConflictDetected) AggregateID() string   { return e.PropertyID }
func (e ConflictDetected) OccurredAt() time.Time { return e.At }

// ConflictDetectedEvent builds the event from a decision. A remote rejection
// may carry no decision details, in which case only the range is reported.
func ConflictDetectedEvent(id PropertyID, r daterange.DateRange, d Decision, remote bool, at time.Time) ConflictDetected {
	ev := ConflictDetected{
		PropertyID: string(id),
		Range:      r,
		Remote:     remote,
		At:         at.UTC(),
	}
	if d.IsConflict() {
		ev.ConflictDate = daterange.Key(d.ConflictDate)
		ev.BlockingID = d.Interval.ID
	}
	return ev
}
