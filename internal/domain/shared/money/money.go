package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Currency describes an ISO code and how many minor-unit digits it settles in.
type Currency struct {
	Code        string
	MinorDigits int32
}

// INR is the platform default: rupees with paise.
var INR = Currency{Code: "INR", MinorDigits: 2}

// NewCurrency validates the code and digit count.
func NewCurrency(code string, minorDigits int32) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 || minorDigits < 0 || minorDigits > 4 {
		return Currency{}, ErrInvalidCurrency
	}
	return Currency{Code: code, MinorDigits: minorDigits}, nil
}

// Round rounds an amount to the currency minor unit, half away from zero.
// Amounts handled by the pricing engine are non-negative, so this is half-up.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.MinorDigits)
}

// Money is an exact decimal amount in a currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// New constructs Money validating minimal invariants.
func New(amount decimal.Decimal, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Zero returns a zero amount in the currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: strings.ToUpper(currency)}
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Multiply multiplies the amount by an integer factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(times)), Currency: m.Currency}
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Equal compares amount and currency; 10 and 10.00 are equal.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String renders the amount with the currency code, e.g. "7080 INR".
func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
