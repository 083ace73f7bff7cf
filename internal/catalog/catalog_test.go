package catalog

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/psfastpay/core/logger"
)

func TestMain(m *testing.M) {
	logger.SVCCatalog = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

const testCatalogYAML = `
products:
  - id: ps_plus_essential
    title: "PS Plus Essential"
    base_price_usd: 5
    variants: ["1 мес", "3 мес", "12 мес"]
  - id: psn_gift_card
    title: "PSN Gift Card"
    variants: ["$10", "$20", "$50"]

regions:
  - "Турция"
  - "Польша"
  - "США"
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeCatalog(t, testCatalogYAML))
	if err != nil {
		t.Fatal(err)
	}

	if got := len(c.Products()); got != 2 {
		t.Fatalf("products = %d, want 2", got)
	}

	p, ok := c.Find("ps_plus_essential")
	if !ok {
		t.Fatal("ps_plus_essential not found")
	}
	if p.BasePriceUSD == nil || !p.BasePriceUSD.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected base price: %v", p.BasePriceUSD)
	}
	if !p.HasVariant("3 мес") {
		t.Error("expected variant 3 мес")
	}
	if p.HasVariant("6 мес") {
		t.Error("unexpected variant 6 мес")
	}

	card, ok := c.Find("psn_gift_card")
	if !ok {
		t.Fatal("psn_gift_card not found")
	}
	if card.BasePriceUSD != nil {
		t.Error("gift card must not carry a base price")
	}

	if !c.HasRegion("Турция") {
		t.Error("expected region Турция")
	}
	if c.HasRegion("Франция") {
		t.Error("unexpected region Франция")
	}
}

func TestLoadRejectsDuplicateID(t *testing.T) {
	const dup = `
products:
  - id: a
    title: "A"
    variants: ["x"]
  - id: a
    title: "A again"
    variants: ["y"]
regions: ["Турция"]
`
	if _, err := Load(writeCatalog(t, dup)); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestLoadRejectsEmptyCatalog(t *testing.T) {
	if _, err := Load(writeCatalog(t, "products: []\nregions: []\n")); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestLoadRejectsIncompleteProduct(t *testing.T) {
	const incomplete = `
products:
  - id: a
    title: "A"
regions: ["Турция"]
`
	if _, err := Load(writeCatalog(t, incomplete)); err == nil {
		t.Fatal("expected error for product without variants")
	}
}
