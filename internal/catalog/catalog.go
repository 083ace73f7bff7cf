// Package catalog provides the static product and region data the bot sells
// from. The catalog is configuration, not state: it is loaded once at startup
// and never mutated.
package catalog

import (
	"fmt"
	"os"

	"log/slog"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/psfastpay/core/logger"
)

// Product describes a single sellable item.
// BasePriceUSD is nil for fixed-denomination products (gift cards), whose
// price is carried by the variant label instead.
type Product struct {
	ID           string
	Title        string
	Variants     []string
	BasePriceUSD *decimal.Decimal
}

// HasVariant reports whether the label is one of the product's declared variants.
func (p Product) HasVariant(label string) bool {
	for _, v := range p.Variants {
		if v == label {
			return true
		}
	}
	return false
}

// Catalog holds the full product list and the known region set.
type Catalog struct {
	products []Product
	index    map[string]int
	regions  []string
}

type rawProduct struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Variants     []string `yaml:"variants"`
	BasePriceUSD *float64 `yaml:"base_price_usd"`
}

type rawCatalog struct {
	Products []rawProduct `yaml:"products"`
	Regions  []string     `yaml:"regions"`
}

// Load reads catalog data from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	c, err := build(raw)
	if err != nil {
		return nil, err
	}
	logger.SVCCatalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.String("path", path),
		slog.Int("count", len(c.products)),
	)
	return c, nil
}

func build(raw rawCatalog) (*Catalog, error) {
	if len(raw.Products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}
	if len(raw.Regions) == 0 {
		return nil, fmt.Errorf("catalog has no regions")
	}

	c := &Catalog{
		index:   make(map[string]int, len(raw.Products)),
		regions: append([]string(nil), raw.Regions...),
	}
	for _, rp := range raw.Products {
		if rp.ID == "" || rp.Title == "" || len(rp.Variants) == 0 {
			return nil, fmt.Errorf("catalog product %q is incomplete", rp.ID)
		}
		if _, dup := c.index[rp.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog product id %q", rp.ID)
		}
		p := Product{
			ID:       rp.ID,
			Title:    rp.Title,
			Variants: append([]string(nil), rp.Variants...),
		}
		if rp.BasePriceUSD != nil {
			d := decimal.NewFromFloat(*rp.BasePriceUSD)
			p.BasePriceUSD = &d
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Find returns the product with the given id.
func (c *Catalog) Find(productID string) (Product, bool) {
	i, ok := c.index[productID]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns all products in declaration order.
func (c *Catalog) Products() []Product {
	return c.products
}

// Regions returns the known region set.
func (c *Catalog) Regions() []string {
	return c.regions
}

// HasRegion reports whether the region belongs to the known region set.
func (c *Catalog) HasRegion(region string) bool {
	for _, r := range c.regions {
		if r == region {
			return true
		}
	}
	return false
}
