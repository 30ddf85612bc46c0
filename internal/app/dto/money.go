package dto

import (
	"github.com/shopspring/decimal"

	"propertyhub/internal/domain/shared/money"
)

// MoneyDTO renders amounts as decimal strings, e.g. {"amount":"7080","currency":"INR"}.
type MoneyDTO struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func MapMoney(m money.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency}
}
