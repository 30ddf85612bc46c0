package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"propertyhub/internal/app/policies"
	domainavailability "propertyhub/internal/domain/availability"
	domainbooking "propertyhub/internal/domain/booking"
	"propertyhub/internal/domain/shared/daterange"
)

// ErrBookingNotFound is returned when a booking does not exist.
var ErrBookingNotFound = errors.New("memory: booking not found")

type storedBooking struct {
	interval domainavailability.BookedInterval
	property domainavailability.PropertyID
	status   domainbooking.Status
}

// BookingLedger is an in-process stand-in for the booking service. It serves
// booked intervals and creates bookings, refusing overlaps under one lock.
type BookingLedger struct {
	mu       sync.RWMutex
	bookings map[string]*storedBooking
	byProp   map[domainavailability.PropertyID][]string
	autoConf bool
}

// NewBookingLedger builds an empty ledger. With autoConfirm set, new
// bookings are confirmed immediately instead of staying pending.
func NewBookingLedger(autoConfirm bool) *BookingLedger {
	return &BookingLedger{
		bookings: make(map[string]*storedBooking),
		byProp:   make(map[domainavailability.PropertyID][]string),
		autoConf: autoConfirm,
	}
}

// Seed registers existing reservations, e.g. demo fixtures.
func (l *BookingLedger) Seed(property domainavailability.PropertyID, intervals ...domainavailability.BookedInterval) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, iv := range intervals {
		if iv.ID == "" {
			iv.ID = uuid.NewString()
		}
		l.insertLocked(property, iv, domainbooking.StatusConfirmed)
	}
}

func (l *BookingLedger) BookedIntervals(ctx context.Context, q domainavailability.Query) ([]domainavailability.BookedInterval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domainavailability.BookedInterval
	for _, id := range l.byProp[q.PropertyID] {
		b := l.bookings[id]
		if b.status == domainbooking.StatusCancelled {
			continue
		}
		if b.interval.Range.Overlaps(q.Horizon) {
			out = append(out, b.interval)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.CheckIn.Before(out[j].Range.CheckIn)
	})
	return out, nil
}

// CreateBooking stores req unless a live booking already covers one of its nights.
func (l *BookingLedger) CreateBooking(ctx context.Context, req domainbooking.Request) (domainbooking.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return domainbooking.Confirmation{}, err
	}
	dr := daterange.FromDates(req.Range.CheckIn, req.Range.CheckOut)
	if err := dr.Validate(); err != nil {
		return domainbooking.Confirmation{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var clash []string
	for _, id := range l.byProp[req.PropertyID] {
		b := l.bookings[id]
		if b.status == domainbooking.StatusCancelled {
			continue
		}
		if overlap, ok := b.interval.Range.Clip(dr); ok {
			for _, d := range overlap.Dates() {
				clash = append(clash, daterange.Key(d))
			}
		}
	}
	if len(clash) > 0 {
		sort.Strings(clash)
		return domainbooking.Confirmation{}, &policies.ConflictError{Range: dr, ConflictsOn: clash, Message: "dates already booked"}
	}

	status := domainbooking.StatusPending
	if l.autoConf {
		status = domainbooking.StatusConfirmed
	}
	iv := domainavailability.BookedInterval{ID: uuid.NewString(), Range: dr}
	l.insertLocked(req.PropertyID, iv, status)
	return domainbooking.Confirmation{BookingID: iv.ID, Status: status}, nil
}

// Cancel frees the nights of a booking.
func (l *BookingLedger) Cancel(id string) (domainavailability.PropertyID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok {
		return "", ErrBookingNotFound
	}
	b.status = domainbooking.StatusCancelled
	return b.property, nil
}

func (l *BookingLedger) insertLocked(property domainavailability.PropertyID, iv domainavailability.BookedInterval, status domainbooking.Status) {
	iv.Range = daterange.FromDates(iv.Range.CheckIn, iv.Range.CheckOut)
	l.bookings[iv.ID] = &storedBooking{interval: iv, property: property, status: status}
	l.byProp[property] = append(l.byProp[property], iv.ID)
}

var (
	_ domainavailability.Source = (*BookingLedger)(nil)
	_ policies.BookingCreator   = (*BookingLedger)(nil)
)
