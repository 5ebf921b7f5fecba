// internal/domain/pricing/resolver_test.go
package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		candidates  Candidates
		wantDisplay string
		wantCompare string // empty means no compare price
		wantDeal    bool
	}{
		{
			name:        "base only",
			candidates:  Candidates{Currency: "INR", BasePrice: ptr("1000")},
			wantDisplay: "1000",
		},
		{
			name:        "discount beats base",
			candidates:  Candidates{Currency: "INR", BasePrice: ptr("1000"), DiscountPrice: ptr("800")},
			wantDisplay: "800",
			wantCompare: "1000",
		},
		{
			name:        "deal beats discount",
			candidates:  Candidates{Currency: "INR", BasePrice: ptr("1000"), DiscountPrice: ptr("800"), DealPrice: ptr("600")},
			wantDisplay: "600",
			wantCompare: "1000",
			wantDeal:    true,
		},
		{
			name:        "zero deal is not usable",
			candidates:  Candidates{Currency: "INR", BasePrice: ptr("1000"), DealPrice: ptr("0")},
			wantDisplay: "1000",
		},
		{
			name:        "negative discount is not usable",
			candidates:  Candidates{Currency: "INR", BasePrice: ptr("1000"), DiscountPrice: ptr("-5")},
			wantDisplay: "1000",
		},
		{
			name:        "nothing usable degrades to zero",
			candidates:  Candidates{Currency: "INR"},
			wantDisplay: "0",
		},
		{
			name:        "discount above base shows no compare price",
			candidates:  Candidates{Currency: "INR", BasePrice: ptr("1000"), DiscountPrice: ptr("1200")},
			wantDisplay: "1200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := Resolve(tt.candidates, nil, "INR")

			assert.True(t, quote.DisplayPrice.Equal(*ptr(tt.wantDisplay)),
				"display: got %s want %s", quote.DisplayPrice, tt.wantDisplay)
			assert.Equal(t, tt.wantDeal, quote.HasActiveDeal)

			if tt.wantCompare == "" {
				assert.Nil(t, quote.ComparePrice)
			} else {
				require.NotNil(t, quote.ComparePrice)
				assert.True(t, quote.ComparePrice.Equal(*ptr(tt.wantCompare)))
			}
		})
	}
}

func TestResolvePrefersConvertedCurrency(t *testing.T) {
	native := Candidates{Currency: "INR", BasePrice: ptr("999"), DiscountPrice: ptr("799")}
	converted := []Candidates{
		{Currency: "USD", BasePrice: ptr("12.99")},
		{Currency: "EUR", BasePrice: ptr("11.49")},
	}

	quote := Resolve(native, converted, "USD")
	assert.Equal(t, "USD", quote.Currency)
	assert.True(t, quote.DisplayPrice.Equal(*ptr("12.99")))

	// No converted set for the currency falls back to native
	fallback := Resolve(native, converted, "GBP")
	assert.Equal(t, "INR", fallback.Currency)
	assert.True(t, fallback.DisplayPrice.Equal(*ptr("799")))
}

func TestResolveConvertedSetFollowsOwnPrecedence(t *testing.T) {
	native := Candidates{Currency: "INR", BasePrice: ptr("999"), DealPrice: ptr("599")}
	converted := []Candidates{
		// Converted row carries no deal; it must not inherit the native one.
		{Currency: "USD", BasePrice: ptr("12.99")},
	}

	quote := Resolve(native, converted, "USD")
	assert.False(t, quote.HasActiveDeal)
	assert.True(t, quote.DisplayPrice.Equal(*ptr("12.99")))
}
