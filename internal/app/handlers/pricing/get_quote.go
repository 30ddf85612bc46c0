package pricing

import (
	"context"

	"propertyhub/internal/app/dto"
	"propertyhub/internal/app/handlers/availability"
	"propertyhub/internal/app/queries"
	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

const getQuoteKey = "pricing.quote"

type GetQuoteQuery struct {
	PropertyID string
	Range      daterange.DateRange
	Terms      Terms
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

// GetQuoteHandler prices a range only after the advisory check accepts it.
type GetQuoteHandler struct {
	Checker *availability.Checker
	Pricer  Pricer
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	r := daterange.FromDates(q.Range.CheckIn, q.Range.CheckOut)
	decision, err := h.Checker.Check(ctx, domainavailability.PropertyID(q.PropertyID), r)
	if err != nil {
		return dto.Quote{}, err
	}
	if !decision.IsAvailable() {
		return dto.Quote{}, &availability.RejectedError{Decision: decision}
	}
	res, err := h.Pricer.Price(r, q.Terms)
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(r, res), nil
}

var _ queries.Handler[GetQuoteQuery, dto.Quote] = (*GetQuoteHandler)(nil)
