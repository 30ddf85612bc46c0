package availability

import (
	"context"
	"errors"
	"time"

	"propertyhub/internal/app/dto"
	"propertyhub/internal/app/queries"
	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

const getBookedDatesKey = "availability.booked_dates"

// MaxHorizonDays bounds a single booked-dates request.
const MaxHorizonDays = 366

var ErrHorizonTooLong = errors.New("availability: requested horizon is too long")

// GetBookedDatesQuery asks for the blocked dates of a property in [From, To).
// A zero From means today; a zero To means From plus the default horizon.
type GetBookedDatesQuery struct {
	PropertyID string
	From       time.Time
	To         time.Time
}

func (q GetBookedDatesQuery) Key() string { return getBookedDatesKey }

type GetBookedDatesHandler struct {
	Checker     *Checker
	HorizonDays int
}

func (h *GetBookedDatesHandler) Handle(ctx context.Context, q GetBookedDatesQuery) (dto.BookedDates, error) {
	from := q.From
	if from.IsZero() {
		from = h.Checker.now()
	}
	query, err := domainavailability.NewQuery(domainavailability.PropertyID(q.PropertyID), from, h.HorizonDays)
	if err != nil {
		return dto.BookedDates{}, err
	}
	if !q.To.IsZero() {
		horizon, err := daterange.New(query.Horizon.CheckIn, q.To)
		if err != nil {
			return dto.BookedDates{}, err
		}
		if nights, _ := horizon.Nights(); nights > MaxHorizonDays {
			return dto.BookedDates{}, ErrHorizonTooLong
		}
		query.Horizon = horizon
	}

	idx, err := h.Checker.Index(ctx, query)
	if err != nil {
		return dto.BookedDates{}, err
	}
	return dto.MapBookedDates(query.PropertyID, query.Horizon, idx), nil
}

var _ queries.Handler[GetBookedDatesQuery, dto.BookedDates] = (*GetBookedDatesHandler)(nil)
