// Package valueobject holds immutable values shared by several aggregates.
package valueobject

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency is an ISO 4217 code
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	CHF Currency = "CHF"
	GBP Currency = "GBP"
)

// DefaultCurrency prices offers that do not name a currency
const DefaultCurrency = EUR

// Money is an amount in one currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney rejects currency codes that are not ISO 4217
func NewMoney(amount decimal.Decimal, cur Currency) (Money, error) {
	unit, err := currency.ParseISO(string(cur))
	if err != nil {
		return Money{}, fmt.Errorf("currency %q: %w", cur, err)
	}
	return Money{amount: amount, currency: Currency(unit.String())}, nil
}

// NewMoneyFromString parses a decimal amount such as "1234.50"
func NewMoneyFromString(amount string, cur Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	return NewMoney(d, cur)
}

func NewMoneyEUR(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: EUR}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// WithRate adds rate to the amount, e.g. 0.19 for 19% VAT
func (m Money) WithRate(rate decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(1).Add(rate)), currency: m.currency}
}

// Round rounds half away from zero
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// String renders cents and the currency code, e.g. "119.00 EUR"
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.StringFixed(2), Currency: m.currency})
}

// UnmarshalJSON falls back to DefaultCurrency when the currency is missing
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
