// Package money renders minor-unit amounts for display. Nothing here feeds
// back into pricing; charge amounts stay integer minor units end to end.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// minorUnitExponent is the number of decimal places for each supported currency.
var minorUnitExponent = map[enums.Currency]int32{
	enums.CurrencyAUD: 2,
	enums.CurrencyNZD: 2,
	enums.CurrencyUSD: 2,
	enums.CurrencyEUR: 2,
	enums.CurrencyGBP: 2,
}

// Display is the JSON shape used for human-readable amounts.
type Display struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Format converts minor units to a fixed-point string such as "22.50".
func Format(minor int64, currency enums.Currency) string {
	exp, ok := minorUnitExponent[currency]
	if !ok {
		exp = 2
	}
	return decimal.NewFromInt(minor).Shift(-exp).StringFixed(exp)
}

// NewDisplay pairs a formatted amount with its currency code.
func NewDisplay(minor int64, currency enums.Currency) Display {
	return Display{Amount: Format(minor, currency), Currency: currency.String()}
}
