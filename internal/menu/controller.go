package menu

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"coffeeshop/internal/domain"
)

type Lister interface {
	Products() []domain.Product
}

type Controller struct {
	catalog Lister
	logger  *zap.Logger
}

func NewController(catalog Lister, logger *zap.Logger) *Controller {
	return &Controller{
		catalog: catalog,
		logger:  logger,
	}
}

func (c *Controller) HandleGetMenu(w http.ResponseWriter, r *http.Request) {
	products := c.catalog.Products()

	resp := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		variations := make([]VariationDTO, 0, len(p.Variations))
		for _, v := range p.Variations {
			variations = append(variations, VariationDTO{Name: v.Name, Price: v.Price})
		}
		resp = append(resp, ProductDTO{
			Product:    p.Name,
			BasePrice:  p.BasePrice,
			Variations: variations,
		})
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
