package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/pricing"
	"propertyhub/internal/domain/shared/daterange"
	"propertyhub/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	index := availability.IndexBookedDates([]availability.BookedInterval{
		{ID: "b-1", Range: daterange.DateRange{CheckIn: day(2025, 3, 10), CheckOut: day(2025, 3, 12)}},
	})
	quote := func(r daterange.DateRange) (pricing.Result, error) {
		return pricing.Compute(pricing.Request{
			Range:        r,
			RatePerNight: decimal.NewFromInt(2000),
			Units:        1,
			TaxPercent:   decimal.NewFromInt(18),
			Currency:     money.INR,
		})
	}
	return NewSession("p-1", index, quote)
}

func TestSessionHappyPath(t *testing.T) {
	s := newTestSession(t)
	require.Equal(t, SelectingCheckIn, s.State)

	assert.Equal(t, SelectingCheckOut, s.Click(day(2025, 3, 3), now))
	assert.Equal(t, day(2025, 3, 3), s.CheckIn())

	assert.Equal(t, RangeProposed, s.Click(day(2025, 3, 6), now))
	assert.Equal(t, daterange.DateRange{CheckIn: day(2025, 3, 3), CheckOut: day(2025, 3, 6)}, s.Proposal())
	assert.Equal(t, 3, s.Price().Nights)
	assert.True(t, s.Price().Total.Amount.Equal(decimal.NewFromInt(7080)))
	assert.True(t, s.LastDecision().IsAvailable())

	require.NoError(t, s.Confirm(true))
	assert.Equal(t, Validated, s.State)
}

func TestSessionBackToBackCheckoutOnBookedCheckIn(t *testing.T) {
	s := newTestSession(t)
	s.Click(day(2025, 3, 8), now)
	assert.Equal(t, RangeProposed, s.Click(day(2025, 3, 10), now))

	s.Click(day(2025, 3, 12), now)
	assert.Equal(t, SelectingCheckOut, s.State, "checkout day of an existing booking is free")
}

func TestSessionConflictReturnsToCheckIn(t *testing.T) {
	s := newTestSession(t)
	s.Click(day(2025, 3, 8), now)
	state := s.Click(day(2025, 3, 14), now)

	assert.Equal(t, SelectingCheckIn, state)
	assert.True(t, s.LastDecision().IsConflict())
	assert.Equal(t, day(2025, 3, 10), s.LastDecision().ConflictDate)
	assert.True(t, s.CheckIn().IsZero())
	assert.Zero(t, s.Price().Nights)
}

func TestSessionRejectsPastAndBookedCheckIn(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, SelectingCheckIn, s.Click(day(2025, 2, 20), now))
	assert.Equal(t, availability.ReasonCheckInInPast, s.LastDecision().Reason)

	assert.Equal(t, SelectingCheckIn, s.Click(day(2025, 3, 11), now))
	assert.True(t, s.LastDecision().IsConflict())
}

func TestSessionEarlierClickRestartsCheckIn(t *testing.T) {
	s := newTestSession(t)
	s.Click(day(2025, 3, 6), now)
	assert.Equal(t, SelectingCheckOut, s.Click(day(2025, 3, 4), now))
	assert.Equal(t, day(2025, 3, 4), s.CheckIn())
}

func TestSessionClickAfterProposalStartsOver(t *testing.T) {
	s := newTestSession(t)
	s.Click(day(2025, 3, 3), now)
	s.Click(day(2025, 3, 5), now)
	require.Equal(t, RangeProposed, s.State)

	assert.Equal(t, SelectingCheckOut, s.Click(day(2025, 3, 20), now))
	assert.Equal(t, daterange.DateRange{}, s.Proposal())
}

func TestSessionQuoteFailure(t *testing.T) {
	s := NewSession("p-1", availability.IndexBookedDates(nil), func(daterange.DateRange) (pricing.Result, error) {
		return pricing.Result{}, pricing.ErrNegativeRate
	})
	s.Click(day(2025, 3, 3), now)
	assert.Equal(t, SelectingCheckIn, s.Click(day(2025, 3, 5), now))
	assert.True(t, errors.Is(s.LastError(), pricing.ErrComputation))
}

func TestSessionConfirmRequiresProposal(t *testing.T) {
	s := newTestSession(t)
	assert.ErrorIs(t, s.Confirm(true), ErrNoProposal)

	s.Click(day(2025, 3, 3), now)
	s.Click(day(2025, 3, 5), now)
	require.NoError(t, s.Confirm(false))
	assert.Equal(t, Rejected, s.State)

	s.Reset()
	assert.Equal(t, SelectingCheckIn, s.State)
	assert.True(t, s.CheckIn().IsZero())
}
