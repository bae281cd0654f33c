package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"coffeeshop/internal/domain"
)

type OrderDTO struct {
	ID         uint            `json:"id"`
	Product    string          `json:"product"`
	Variation  string          `json:"variation"`
	Price      decimal.Decimal `json:"price"`
	Status     string          `json:"status"`
	CustomerID uint            `json:"customerId"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func NewOrderDTO(order domain.Order) OrderDTO {
	return OrderDTO{
		ID:         order.ID,
		Product:    order.Product,
		Variation:  order.Variation,
		Price:      order.Price,
		Status:     order.Status.String(),
		CustomerID: order.CustomerID,
		CreatedAt:  order.CreatedAt.UTC(),
	}
}

type OrderResponse struct {
	TraceID   string    `json:"traceId"`
	Order     OrderDTO  `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

type OrdersResponse struct {
	TraceID   string     `json:"traceId"`
	Orders    []OrderDTO `json:"orders"`
	Timestamp time.Time  `json:"timestamp"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	OrderID   uint      `json:"orderId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
