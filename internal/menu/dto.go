package menu

import "github.com/shopspring/decimal"

type ProductDTO struct {
	Product    string          `json:"product"`
	BasePrice  decimal.Decimal `json:"basePrice"`
	Variations []VariationDTO  `json:"variation"`
}

type VariationDTO struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
