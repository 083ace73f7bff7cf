package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/psfastpay/internal/catalog"
)

func subscription(base float64) catalog.Product {
	d := decimal.NewFromFloat(base)
	return catalog.Product{
		ID:           "sub",
		Title:        "Subscription",
		Variants:     []string{"1 мес", "3 мес", "12 мес"},
		BasePriceUSD: &d,
	}
}

func giftCard() catalog.Product {
	return catalog.Product{
		ID:       "card",
		Title:    "Gift Card",
		Variants: []string{"$10", "$20", "$50"},
	}
}

func TestQuoteSubscriptionMultipliers(t *testing.T) {
	cases := []struct {
		variant string
		want    string
	}{
		{"1 мес", "5"},
		{"3 мес", "14"},
		{"12 мес", "50"},
	}
	p := subscription(5)
	for _, tc := range cases {
		got, err := Quote(p, tc.variant)
		if err != nil {
			t.Fatalf("Quote(%q): %v", tc.variant, err)
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Quote(%q) = %s, want %s", tc.variant, got, tc.want)
		}
	}
}

func TestQuoteMidMultiplierExact(t *testing.T) {
	// 5 * 2.8 must be exactly 14, not 14.000000000000002.
	got, err := Quote(subscription(5), "3 мес")
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "14" {
		t.Fatalf("got %s, want 14", got)
	}
}

func TestQuoteDenomination(t *testing.T) {
	got, err := Quote(giftCard(), "$20")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("got %s, want 20", got)
	}
}

func TestQuoteUnparseableDenomination(t *testing.T) {
	if _, err := Quote(giftCard(), "twenty"); err == nil {
		t.Fatal("expected error for unparseable variant")
	}
}

func TestPlaceholderRUB(t *testing.T) {
	display, currency := PlaceholderRUB(decimal.NewFromInt(14))
	if display != "1400 RUB" {
		t.Errorf("display = %q, want %q", display, "1400 RUB")
	}
	if currency != "RUB" {
		t.Errorf("currency = %q, want %q", currency, "RUB")
	}
}
