package availability

import (
	"time"

	"propertyhub/internal/domain/shared/daterange"
)

// ValidateRange decides whether candidate can be booked against index.
// Checks run in order: check-in not before the calendar date of now, checkout
// strictly after check-in, then every night in [checkIn, checkOut) free. The
// first blocked night, chronologically, is reported.
//
// The decision is advisory: the index is a snapshot, and the booking service
// must re-check atomically when it commits.
func ValidateRange(candidate daterange.DateRange, index *Index, now time.Time) Decision {
	checkIn := daterange.Day(candidate.CheckIn)
	checkOut := daterange.Day(candidate.CheckOut)

	if checkIn.Before(daterange.Day(now)) {
		return Invalid(ReasonCheckInInPast)
	}
	if !checkOut.After(checkIn) {
		return Invalid(ReasonCheckOutBeforeCheckIn)
	}
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		if interval, blocked := index.BlockedBy(d); blocked {
			return Conflict(d, interval)
		}
	}
	return Available()
}
