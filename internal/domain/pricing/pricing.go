package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"propertyhub/internal/domain/shared/daterange"
	"propertyhub/internal/domain/shared/money"
)

// ErrComputation marks caller contract violations. Every error returned by
// Compute matches it with errors.Is.
var ErrComputation = errors.New("pricing: computation error")

var (
	ErrNegativeRate      = fmt.Errorf("%w: rate per night must not be negative", ErrComputation)
	ErrInvalidUnits      = fmt.Errorf("%w: units must be at least 1", ErrComputation)
	ErrNegativeTax       = fmt.Errorf("%w: tax percent must not be negative", ErrComputation)
	ErrFractionalNights  = fmt.Errorf("%w: range is not a whole number of nights", ErrComputation)
	ErrNoNights          = fmt.Errorf("%w: range must cover at least one night", ErrComputation)
	ErrInvalidSurcharge  = fmt.Errorf("%w: surcharge needs a non-negative rate and quantity", ErrComputation)
	ErrCurrencyUndefined = fmt.Errorf("%w: currency must be defined", ErrComputation)
)

// Surcharge is an extra per-night charge, e.g. per additional adult or child.
type Surcharge struct {
	Name     string
	PerNight decimal.Decimal
	Quantity int
}

// Request holds everything needed to price a stay. Rate and tax come from the
// listing and platform configuration; nothing is looked up here.
type Request struct {
	Range        daterange.DateRange
	RatePerNight decimal.Decimal
	Units        int
	TaxPercent   decimal.Decimal
	Currency     money.Currency
	Surcharges   []Surcharge
}

// Line is one priced component of the subtotal.
type Line struct {
	Name   string
	Amount money.Money
}

// Result is the derived price of a stay.
type Result struct {
	Nights    int
	Lines     []Line
	Subtotal  money.Money
	TaxAmount money.Money
	Total     money.Money
}

var hundred = decimal.NewFromInt(100)

// Compute prices a validated range:
//
//	subtotal = nights × rate × units (+ nights × surcharge × quantity)
//	tax      = round_half_up(subtotal × taxPercent / 100)
//	total    = subtotal + tax
//
// Callers validate the range against availability first.
func Compute(req Request) (Result, error) {
	if req.Currency.Code == "" {
		return Result{}, ErrCurrencyUndefined
	}
	rate, err := money.New(req.RatePerNight, req.Currency.Code)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCurrencyUndefined, err)
	}
	if rate.IsNegative() {
		return Result{}, ErrNegativeRate
	}
	if req.Units < 1 {
		return Result{}, ErrInvalidUnits
	}
	if req.TaxPercent.IsNegative() {
		return Result{}, ErrNegativeTax
	}
	nights, whole := req.Range.Nights()
	if !whole {
		return Result{}, ErrFractionalNights
	}
	if nights < 1 {
		return Result{}, ErrNoNights
	}

	n := int64(nights)
	lines := make([]Line, 0, 1+len(req.Surcharges))

	stay := rate.Multiply(n).Multiply(int64(req.Units))
	lines = append(lines, Line{Name: "stay", Amount: stay})
	subtotal := stay

	for _, s := range req.Surcharges {
		if s.PerNight.IsNegative() || s.Quantity < 0 {
			return Result{}, fmt.Errorf("%w: %s", ErrInvalidSurcharge, s.Name)
		}
		if s.Quantity == 0 {
			continue
		}
		amount := money.Money{Amount: s.PerNight, Currency: rate.Currency}.Multiply(n).Multiply(int64(s.Quantity))
		lines = append(lines, Line{Name: s.Name, Amount: amount})
		if subtotal, err = subtotal.Add(amount); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrComputation, err)
		}
	}

	tax := money.Zero(rate.Currency)
	tax.Amount = req.Currency.Round(subtotal.Amount.Mul(req.TaxPercent).Div(hundred))
	total, err := subtotal.Add(tax)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrComputation, err)
	}

	return Result{
		Nights:    nights,
		Lines:     lines,
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     total,
	}, nil
}
