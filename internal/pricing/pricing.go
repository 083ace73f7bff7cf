// Package pricing computes the USD price of a product variant and converts
// it into the display currency shown to users.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/psfastpay/internal/catalog"
)

// Subscription duration multipliers, chosen by substring match on the
// variant label. The shortest duration pays the base price as is.
var (
	multShort = decimal.NewFromInt(1)
	multMid   = decimal.RequireFromString("2.8")
	multLong  = decimal.NewFromInt(10)

	displayRate = decimal.NewFromInt(100)
)

// Quote returns the USD price for the given product variant.
//
// Subscription products (non-nil, non-zero base price) apply a duration
// multiplier; fixed-denomination products parse the price straight from the
// numeric portion of the variant label ("$20" -> 20).
func Quote(p catalog.Product, variant string) (decimal.Decimal, error) {
	if p.BasePriceUSD != nil && !p.BasePriceUSD.IsZero() {
		mult := multShort
		switch {
		case strings.Contains(variant, "3"):
			mult = multMid
		case strings.Contains(variant, "12"):
			mult = multLong
		}
		return p.BasePriceUSD.Mul(mult), nil
	}

	denom := strings.TrimSpace(strings.ReplaceAll(variant, "$", ""))
	price, err := decimal.NewFromString(denom)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("variant %q has no parseable denomination: %w", variant, err)
	}
	return price, nil
}

// Converter turns a USD price into a display string and its currency label.
// The conversion rule is deliberately pluggable: the default below is a
// placeholder, not a live rate.
type Converter func(usd decimal.Decimal) (display string, currency string)

// PlaceholderRUB converts USD to the display currency with a fixed x100
// multiplier. The rate is a stand-in kept for compatibility with the
// existing price table; swap the Converter to change it.
func PlaceholderRUB(usd decimal.Decimal) (string, string) {
	return usd.Mul(displayRate).Round(2).String() + " RUB", "RUB"
}
