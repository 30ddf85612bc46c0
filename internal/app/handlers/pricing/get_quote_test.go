package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyhub/internal/app/handlers/availability"
	domainavailability "propertyhub/internal/domain/availability"
	domainpricing "propertyhub/internal/domain/pricing"
	"propertyhub/internal/domain/shared/daterange"
	"propertyhub/internal/domain/shared/money"
)

type fixedSource []domainavailability.BookedInterval

func (s fixedSource) BookedIntervals(context.Context, domainavailability.Query) ([]domainavailability.BookedInterval, error) {
	return s, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newQuoteHandler() *GetQuoteHandler {
	src := fixedSource{{ID: "b-1", Range: daterange.DateRange{CheckIn: day(2025, 4, 1), CheckOut: day(2025, 4, 5)}}}
	return &GetQuoteHandler{
		Checker: &availability.Checker{Source: src, Now: func() time.Time { return day(2025, 3, 1) }},
		Pricer:  Pricer{DefaultTaxPercent: decimal.NewFromInt(18), Currency: money.INR},
	}
}

func TestQuoteUsesPlatformTaxByDefault(t *testing.T) {
	h := newQuoteHandler()
	got, err := h.Handle(context.Background(), GetQuoteQuery{
		PropertyID: "villa-1",
		Range:      daterange.DateRange{CheckIn: day(2025, 3, 10), CheckOut: day(2025, 3, 13)},
		Terms:      Terms{RatePerNight: decimal.NewFromInt(2000)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Nights)
	assert.Equal(t, "6000", got.Subtotal.Amount.String())
	assert.Equal(t, "1080", got.TaxAmount.Amount.String())
	assert.Equal(t, "7080", got.Total.Amount.String())
	assert.Equal(t, "INR", got.Total.Currency)
	assert.Equal(t, "2025-03-10", got.CheckIn)
}

func TestQuoteHonoursExplicitTerms(t *testing.T) {
	h := newQuoteHandler()
	zero := decimal.Zero
	got, err := h.Handle(context.Background(), GetQuoteQuery{
		PropertyID: "villa-1",
		Range:      daterange.DateRange{CheckIn: day(2025, 3, 10), CheckOut: day(2025, 3, 12)},
		Terms: Terms{
			RatePerNight: decimal.NewFromInt(1000),
			Units:        2,
			TaxPercent:   &zero,
			Surcharges:   []domainpricing.Surcharge{{Name: "child", PerNight: decimal.NewFromInt(100), Quantity: 1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "4200", got.Total.Amount.String())
	assert.Len(t, got.Lines, 2)
}

func TestQuoteRefusesUnavailableRange(t *testing.T) {
	h := newQuoteHandler()
	_, err := h.Handle(context.Background(), GetQuoteQuery{
		PropertyID: "villa-1",
		Range:      daterange.DateRange{CheckIn: day(2025, 4, 3), CheckOut: day(2025, 4, 6)},
		Terms:      Terms{RatePerNight: decimal.NewFromInt(2000)},
	})
	var rejected *availability.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.True(t, rejected.Decision.IsConflict())
	assert.Equal(t, day(2025, 4, 3), rejected.Decision.ConflictDate)
}

func TestQuoteSurfacesComputationErrors(t *testing.T) {
	h := newQuoteHandler()
	_, err := h.Handle(context.Background(), GetQuoteQuery{
		PropertyID: "villa-1",
		Range:      daterange.DateRange{CheckIn: day(2025, 3, 10), CheckOut: day(2025, 3, 11)},
		Terms:      Terms{RatePerNight: decimal.NewFromInt(-1)},
	})
	assert.ErrorIs(t, err, domainpricing.ErrComputation)
}
