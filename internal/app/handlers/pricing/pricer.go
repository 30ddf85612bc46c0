package pricing

import (
	"github.com/shopspring/decimal"

	domainpricing "propertyhub/internal/domain/pricing"
	"propertyhub/internal/domain/shared/daterange"
	"propertyhub/internal/domain/shared/money"
)

// Pricer fills in platform defaults before calling the pricing engine.
type Pricer struct {
	DefaultTaxPercent decimal.Decimal
	Currency          money.Currency
}

// Terms are the caller-supplied inputs of a quote. A nil TaxPercent means the
// platform default applies.
type Terms struct {
	RatePerNight decimal.Decimal
	Units        int
	TaxPercent   *decimal.Decimal
	Surcharges   []domainpricing.Surcharge
}

func (p Pricer) Price(r daterange.DateRange, t Terms) (domainpricing.Result, error) {
	tax := p.DefaultTaxPercent
	if t.TaxPercent != nil {
		tax = *t.TaxPercent
	}
	units := t.Units
	if units == 0 {
		units = 1
	}
	return domainpricing.Compute(domainpricing.Request{
		Range:        r,
		RatePerNight: t.RatePerNight,
		Units:        units,
		TaxPercent:   tax,
		Currency:     p.Currency,
		Surcharges:   t.Surcharges,
	})
}
