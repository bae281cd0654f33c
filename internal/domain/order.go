package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "coffeeshop/internal/errors"
)

type Order struct {
	ID         uint
	Product    string
	Variation  string
	Price      decimal.Decimal
	Status     OrderStatus
	CustomerID uint
	CreatedAt  time.Time
}

// OrderStatus is the persisted status of an order. The forward pipeline is
// Waiting -> Preparation -> Ready -> Delivered; Canceled is reachable only
// from Waiting and absorbs.
type OrderStatus string

const (
	OrderStatusWaiting     OrderStatus = "Waiting"
	OrderStatusPreparation OrderStatus = "Preparation"
	OrderStatusReady       OrderStatus = "Ready"
	OrderStatusDelivered   OrderStatus = "Delivered"
	OrderStatusCanceled    OrderStatus = "Canceled"
)

// forward maps every non-final pipeline status to its single successor.
var forward = map[OrderStatus]OrderStatus{
	OrderStatusWaiting:     OrderStatusPreparation,
	OrderStatusPreparation: OrderStatusReady,
	OrderStatusReady:       OrderStatusDelivered,
}

// Pipeline returns the forward statuses in order.
func Pipeline() []OrderStatus {
	return []OrderStatus{
		OrderStatusWaiting,
		OrderStatusPreparation,
		OrderStatusReady,
		OrderStatusDelivered,
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

// Next returns the status that follows s. Delivered yields a terminal status
// error; anything outside the pipeline (Canceled, unknown values) yields an
// invalid status error.
func (s OrderStatus) Next() (OrderStatus, error) {
	if s == OrderStatusDelivered {
		return "", apperrors.NewConflictError(
			apperrors.ErrTerminalStatus,
			fmt.Sprintf("status %q is already the last one", s),
		)
	}

	next, ok := forward[s]
	if !ok {
		return "", apperrors.NewConflictError(
			apperrors.ErrInvalidStatus,
			fmt.Sprintf("status %q is not part of the order pipeline", s),
		)
	}

	return next, nil
}

func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusWaiting
}

// Cancel validates the cancellation of an order in status s.
func (s OrderStatus) Cancel() (OrderStatus, error) {
	if !s.CanCancel() {
		return "", apperrors.NewConflictError(
			apperrors.ErrInvalidCancellation,
			fmt.Sprintf("order in status %q cannot be canceled, only %q orders can", s, OrderStatusWaiting),
		)
	}
	return OrderStatusCanceled, nil
}
