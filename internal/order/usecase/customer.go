package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coffeeshop/internal/domain"
	apperrors "coffeeshop/internal/errors"
)

type OrderLifecycle interface {
	CheckCustomer(ctx context.Context, customerID uint) error
	CreateOrder(ctx context.Context, productName, variationName string, customerID uint) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID uint) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]domain.Order, error)
}

type MenuLister interface {
	Products() []domain.Product
}

// CustomerSessions hands out Customer views bound to an existing customer.
type CustomerSessions struct {
	lifecycle OrderLifecycle
	menu      MenuLister
	logger    *zap.Logger
}

func NewCustomerSessions(lifecycle OrderLifecycle, menu MenuLister, logger *zap.Logger) *CustomerSessions {
	return &CustomerSessions{
		lifecycle: lifecycle,
		menu:      menu,
		logger:    logger,
	}
}

// Open returns the Customer for customerID once its existence is confirmed.
func (s *CustomerSessions) Open(ctx context.Context, customerID uint) (*Customer, error) {
	if err := s.lifecycle.CheckCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return &Customer{
		id:        customerID,
		lifecycle: s.lifecycle,
		menu:      s.menu,
		logger:    s.logger.With(zap.Uint("customerId", customerID)),
	}, nil
}

// Customer is the order surface available to a single customer.
type Customer struct {
	id        uint
	lifecycle OrderLifecycle
	menu      MenuLister
	logger    *zap.Logger
}

func (c *Customer) ID() uint {
	return c.id
}

func (c *Customer) PlaceOrder(ctx context.Context, productName, variationName string) (*domain.Order, error) {
	c.logger.Info("placing order", zap.String("product", productName), zap.String("variation", variationName))
	return c.lifecycle.CreateOrder(ctx, productName, variationName, c.id)
}

// ViewOrderDetails lists the customer's orders oldest first.
func (c *Customer) ViewOrderDetails(ctx context.Context) ([]domain.Order, error) {
	return c.lifecycle.ListByCustomer(ctx, c.id)
}

func (c *Customer) CancelOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	order, err := c.lifecycle.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != c.id {
		c.logger.Warn("cancel attempt on foreign order", zap.Uint("orderId", orderID), zap.Uint("ownerId", order.CustomerID))
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("order %d does not belong to customer %d", orderID, c.id))
	}

	return c.lifecycle.CancelOrder(ctx, orderID)
}

func (c *Customer) Menu() []domain.Product {
	return c.menu.Products()
}
