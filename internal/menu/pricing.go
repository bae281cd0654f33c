package menu

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "coffeeshop/internal/errors"
)

// ResolvePrice returns base price plus variation price. Names are matched
// exactly.
func (c *Catalog) ResolvePrice(productName, variationName string) (decimal.Decimal, error) {
	product, ok := c.FindProduct(productName)
	if !ok {
		return decimal.Zero, apperrors.NewNotFoundError(
			apperrors.ErrProductNotFound,
			fmt.Sprintf("product %q not found", productName),
		)
	}

	variation, ok := product.FindVariation(variationName)
	if !ok {
		return decimal.Zero, apperrors.NewNotFoundError(
			apperrors.ErrVariationNotFound,
			fmt.Sprintf("variation %q does not exist for product %q", variationName, productName),
		)
	}

	return product.PriceWith(variation), nil
}
