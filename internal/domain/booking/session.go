package booking

import (
	"errors"
	"time"

	"propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/pricing"
	"propertyhub/internal/domain/shared/daterange"
)

var ErrNoProposal = errors.New("booking: no range proposed")

type SessionState string

const (
	SelectingCheckIn  SessionState = "SELECTING_CHECK_IN"
	SelectingCheckOut SessionState = "SELECTING_CHECK_OUT"
	RangeProposed     SessionState = "RANGE_PROPOSED"
	Validated         SessionState = "VALIDATED"
	Rejected          SessionState = "REJECTED"
)

// Quoter prices a proposed range. The session supplies the range; the rest of
// the request comes from the listing.
type Quoter func(r daterange.DateRange) (pricing.Result, error)

// Session drives the calendar date-picking flow of one guest against one
// snapshot of booked dates. It is not safe for concurrent use.
//
// First click picks the check-in (and clears any check-out); the next click
// after it proposes the check-out and runs the advisory check. An available
// range is priced and moves to RangeProposed; a conflict or invalid range
// sends the session back to SelectingCheckIn with LastDecision set.
type Session struct {
	Property availability.PropertyID
	State    SessionState

	index *availability.Index
	quote Quoter

	checkIn      time.Time
	proposal     daterange.DateRange
	price        pricing.Result
	lastDecision availability.Decision
	lastErr      error
}

func NewSession(property availability.PropertyID, index *availability.Index, quote Quoter) *Session {
	return &Session{Property: property, State: SelectingCheckIn, index: index, quote: quote}
}

// Click handles a date selection made at now.
func (s *Session) Click(date time.Time, now time.Time) SessionState {
	date = daterange.Day(date)
	if s.State == SelectingCheckOut && date.After(s.checkIn) {
		s.propose(daterange.DateRange{CheckIn: s.checkIn, CheckOut: date}, now)
		return s.State
	}
	s.startOver(date, now)
	return s.State
}

func (s *Session) startOver(checkIn time.Time, now time.Time) {
	s.proposal = daterange.DateRange{}
	s.price = pricing.Result{}
	s.lastErr = nil
	if checkIn.Before(daterange.Day(now)) || s.index.IsBlocked(checkIn) {
		s.checkIn = time.Time{}
		s.lastDecision = availability.ValidateRange(daterange.DateRange{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 1)}, s.index, now)
		s.State = SelectingCheckIn
		return
	}
	s.checkIn = checkIn
	s.lastDecision = availability.Decision{}
	s.State = SelectingCheckOut
}

func (s *Session) propose(r daterange.DateRange, now time.Time) {
	decision := availability.ValidateRange(r, s.index, now)
	s.lastDecision = decision
	if !decision.IsAvailable() {
		s.checkIn = time.Time{}
		s.State = SelectingCheckIn
		return
	}
	if s.quote != nil {
		price, err := s.quote(r)
		if err != nil {
			s.lastErr = err
			s.checkIn = time.Time{}
			s.State = SelectingCheckIn
			return
		}
		s.price = price
	}
	s.proposal = r
	s.State = RangeProposed
}

// Confirm closes the proposal with the booking service's answer: accepted
// moves to Validated, anything else to Rejected.
func (s *Session) Confirm(accepted bool) error {
	if s.State != RangeProposed {
		return ErrNoProposal
	}
	if accepted {
		s.State = Validated
	} else {
		s.State = Rejected
	}
	return nil
}

// Reset returns to the first step keeping the snapshot.
func (s *Session) Reset() {
	*s = Session{Property: s.Property, State: SelectingCheckIn, index: s.index, quote: s.quote}
}

func (s *Session) CheckIn() time.Time {
	return s.checkIn
}

func (s *Session) Proposal() daterange.DateRange {
	return s.proposal
}

func (s *Session) Price() pricing.Result {
	return s.price
}

// LastDecision is the outcome of the most recent advisory check, zero when
// none ran since the last check-in pick.
func (s *Session) LastDecision() availability.Decision {
	return s.lastDecision
}

// LastError is set when pricing the proposal failed.
func (s *Session) LastError() error {
	return s.lastErr
}
