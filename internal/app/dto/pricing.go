package dto

import (
	domainpricing "propertyhub/internal/domain/pricing"
	"propertyhub/internal/domain/shared/daterange"
)

type PriceLine struct {
	Name   string   `json:"name"`
	Amount MoneyDTO `json:"amount"`
}

type Quote struct {
	CheckIn   string      `json:"check_in"`
	CheckOut  string      `json:"check_out"`
	Nights    int         `json:"nights"`
	Lines     []PriceLine `json:"lines"`
	Subtotal  MoneyDTO    `json:"subtotal"`
	TaxAmount MoneyDTO    `json:"tax_amount"`
	Total     MoneyDTO    `json:"total"`
}

func MapQuote(r daterange.DateRange, res domainpricing.Result) Quote {
	lines := make([]PriceLine, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, PriceLine{Name: l.Name, Amount: MapMoney(l.Amount)})
	}
	return Quote{
		CheckIn:   daterange.Key(r.CheckIn),
		CheckOut:  daterange.Key(r.CheckOut),
		Nights:    res.Nights,
		Lines:     lines,
		Subtotal:  MapMoney(res.Subtotal),
		TaxAmount: MapMoney(res.TaxAmount),
		Total:     MapMoney(res.Total),
	}
}
