package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyCode is one of the three currencies a payment can be denominated in.
type CurrencyCode string

const (
	CurrencyUSD  CurrencyCode = "USD"
	CurrencyARS  CurrencyCode = "ARS"
	CurrencyUSDT CurrencyCode = "USDT"
)

// LocalCurrency is the bookkeeping currency used for display amounts.
const LocalCurrency = CurrencyARS

// MoneyPlaces is the number of decimal places every stored amount carries.
const MoneyPlaces int32 = 2

// MoneyTolerance is the epsilon used when comparing USD amounts.
var MoneyTolerance = decimal.New(1, -MoneyPlaces)

// IsValid reports whether the currency is supported.
func (c CurrencyCode) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyARS, CurrencyUSDT:
		return true
	}
	return false
}

// Money is an amount tagged with its currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency CurrencyCode    `json:"currency"`
}

// NewMoney rounds the amount to MoneyPlaces.
func NewMoney(amount decimal.Decimal, currency CurrencyCode) Money {
	return Money{Amount: amount.Round(MoneyPlaces), Currency: currency}
}

// USD is shorthand for NewMoney(amount, CurrencyUSD).
func USD(amount decimal.Decimal) Money {
	return NewMoney(amount, CurrencyUSD)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(MoneyPlaces), m.Currency)
}
