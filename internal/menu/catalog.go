package menu

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.yaml.in/yaml/v3"

	"coffeeshop/internal/domain"
)

//go:embed menu.yaml
var menuFile []byte

var defaultCatalog = MustLoad(menuFile)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog
}

type catalogFile struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	Name       string           `yaml:"name"`
	BasePrice  string           `yaml:"basePrice"`
	Variations []variationEntry `yaml:"variations"`
}

type variationEntry struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

// Catalog is an immutable product list. It is safe for concurrent use.
type Catalog struct {
	products []domain.Product
	index    map[string]int
}

func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing menu: %w", err)
	}

	c := &Catalog{
		products: make([]domain.Product, 0, len(file.Products)),
		index:    make(map[string]int, len(file.Products)),
	}

	for _, entry := range file.Products {
		if entry.Name == "" {
			return nil, fmt.Errorf("menu product without name")
		}
		if _, dup := c.index[entry.Name]; dup {
			return nil, fmt.Errorf("duplicate menu product %q", entry.Name)
		}

		base, err := parsePrice(entry.BasePrice)
		if err != nil {
			return nil, fmt.Errorf("product %q base price: %w", entry.Name, err)
		}

		product := domain.Product{
			Name:       entry.Name,
			BasePrice:  base,
			Variations: make([]domain.Variation, 0, len(entry.Variations)),
		}

		seen := make(map[string]struct{}, len(entry.Variations))
		for _, v := range entry.Variations {
			if _, dup := seen[v.Name]; dup {
				return nil, fmt.Errorf("duplicate variation %q for product %q", v.Name, entry.Name)
			}
			seen[v.Name] = struct{}{}

			price, err := parsePrice(v.Price)
			if err != nil {
				return nil, fmt.Errorf("product %q variation %q price: %w", entry.Name, v.Name, err)
			}
			product.Variations = append(product.Variations, domain.Variation{Name: v.Name, Price: price})
		}

		c.index[entry.Name] = len(c.products)
		c.products = append(c.products, product)
	}

	return c, nil
}

func MustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	return c
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %s must be non-negative", raw)
	}
	return price, nil
}

func cloneProduct(p domain.Product) domain.Product {
	p.Variations = slices.Clone(p.Variations)
	return p
}

// Products returns a copy of the menu in declaration order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	for i, p := range c.products {
		out[i] = cloneProduct(p)
	}
	return out
}

// FindProduct returns a copy; edits to it never reach the catalog.
func (c *Catalog) FindProduct(name string) (domain.Product, bool) {
	i, ok := c.index[name]
	if !ok {
		return domain.Product{}, false
	}
	return cloneProduct(c.products[i]), true
}
