package policies

import (
	"context"
	"errors"

	domainavailability "propertyhub/internal/domain/availability"
	domainbooking "propertyhub/internal/domain/booking"
	domainrange "propertyhub/internal/domain/shared/daterange"
)

// ErrRemoteConflict is returned by a BookingCreator when the authoritative
// booking service refuses a range that overlaps an existing reservation.
var ErrRemoteConflict = errors.New("policies: booking service reported a date conflict")

// ErrUpstreamUnavailable wraps transport failures talking to the booking service.
var ErrUpstreamUnavailable = errors.New("policies: booking service unavailable")

// ConflictError carries the details the booking service sent back with a conflict.
type ConflictError struct {
	Range       domainrange.DateRange
	ConflictsOn []string
	Message     string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return ErrRemoteConflict.Error() + ": " + e.Message
	}
	return ErrRemoteConflict.Error()
}

func (e *ConflictError) Unwrap() error { return ErrRemoteConflict }

// BookingCreator forwards a validated request to the service that owns
// reservations. It is the only authority on conflicts.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req domainbooking.Request) (domainbooking.Confirmation, error)
}

// IntervalSource is the read side used to build the booked-dates index.
type IntervalSource = domainavailability.Source
