// internal/domain/pricing/resolver.go
package pricing

import (
	"github.com/shopspring/decimal"
)

// Candidates carries the optional price fields of one variant in one
// currency. Converted candidate sets are produced upstream by the FX
// pipeline; this package never performs rate math.
type Candidates struct {
	Currency      string
	BasePrice     *decimal.Decimal
	DiscountPrice *decimal.Decimal
	DealPrice     *decimal.Decimal
}

// Quote is the resolved display price for a variant in one currency.
type Quote struct {
	Currency      string           `json:"currency"`
	DisplayPrice  decimal.Decimal  `json:"display_price"`
	ComparePrice  *decimal.Decimal `json:"compare_price,omitempty"`
	HasActiveDeal bool             `json:"has_active_deal"`
}

// Resolve picks the display price for a variant in the requested
// currency with the precedence deal > discount > base. When a converted
// candidate set exists for the currency it is used, otherwise the
// native set. A variant with no usable price resolves to a zero display
// price; that is a legitimate "free or misconfigured" state, not an
// error.
func Resolve(native Candidates, converted []Candidates, currency string) Quote {
	chosen := native
	for _, c := range converted {
		if c.Currency == currency {
			chosen = c
			break
		}
	}

	quote := Quote{Currency: chosen.Currency}

	switch {
	case usable(chosen.DealPrice):
		quote.DisplayPrice = *chosen.DealPrice
		quote.HasActiveDeal = true
	case usable(chosen.DiscountPrice):
		quote.DisplayPrice = *chosen.DiscountPrice
	case usable(chosen.BasePrice):
		quote.DisplayPrice = *chosen.BasePrice
	default:
		quote.DisplayPrice = decimal.Zero
	}

	// A strikethrough compare price is shown only when a markdown is active.
	if usable(chosen.BasePrice) && quote.DisplayPrice.LessThan(*chosen.BasePrice) {
		base := *chosen.BasePrice
		quote.ComparePrice = &base
	}

	return quote
}

func usable(price *decimal.Decimal) bool {
	return price != nil && price.IsPositive()
}
