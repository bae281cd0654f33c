package domain

import "github.com/shopspring/decimal"

type Product struct {
	Name       string
	BasePrice  decimal.Decimal
	Variations []Variation
}

type Variation struct {
	Name  string
	Price decimal.Decimal
}

// FindVariation looks a variation up by exact name.
func (p Product) FindVariation(name string) (Variation, bool) {
	for _, v := range p.Variations {
		if v.Name == name {
			return v, true
		}
	}
	return Variation{}, false
}

// PriceWith is the product price for the given variation.
func (p Product) PriceWith(v Variation) decimal.Decimal {
	return p.BasePrice.Add(v.Price)
}
