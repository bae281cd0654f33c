package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coffeeshop/internal/domain"
	apperrors "coffeeshop/internal/errors"
	"coffeeshop/internal/notification"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id uint) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]domain.Order, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

type PriceResolver interface {
	ResolvePrice(productName, variationName string) (decimal.Decimal, error)
}

// Recorder receives lifecycle events for metrics.
type Recorder interface {
	StatusChanged(from, to domain.OrderStatus)
	NotificationSent(status domain.OrderStatus, latency time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) StatusChanged(domain.OrderStatus, domain.OrderStatus) {}
func (nopRecorder) NotificationSent(domain.OrderStatus, time.Duration, error) {}

type Config struct {
	StoreTimeout  time.Duration
	NotifyTimeout time.Duration
}

// LifecycleService owns order creation, status advancement and cancellation.
type LifecycleService struct {
	orders    OrderRepository
	customers CustomerRepository
	prices    PriceResolver
	notifier  notification.Sender
	recorder  Recorder
	cfg       Config
	logger    *zap.Logger
}

func NewLifecycleService(
	orders OrderRepository,
	customers CustomerRepository,
	prices PriceResolver,
	notifier notification.Sender,
	recorder Recorder,
	cfg Config,
	logger *zap.Logger,
) *LifecycleService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}
	return &LifecycleService{
		orders:    orders,
		customers: customers,
		prices:    prices,
		notifier:  notifier,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger,
	}
}

// CheckCustomer fails with a not found error unless the customer exists.
func (s *LifecycleService) CheckCustomer(ctx context.Context, customerID uint) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if _, err := s.customers.FindByID(storeCtx, customerID); err != nil {
		s.logger.Warn("customer lookup failed", zap.Uint("customerId", customerID), zap.Error(err))
		return err
	}
	return nil
}

func (s *LifecycleService) CreateOrder(ctx context.Context, productName, variationName string, customerID uint) (*domain.Order, error) {
	if err := s.CheckCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	price, err := s.prices.ResolvePrice(productName, variationName)
	if err != nil {
		s.logger.Warn("price resolution failed",
			zap.String("product", productName), zap.String("variation", variationName), zap.Error(err))
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	order, err := s.orders.Create(storeCtx, &domain.Order{
		Product:    productName,
		Variation:  variationName,
		Price:      price,
		Status:     domain.OrderStatusWaiting,
		CustomerID: customerID,
	})
	if err != nil {
		s.logger.Error("failed to create order", zap.Uint("customerId", customerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("orderId", order.ID), zap.Uint("customerId", customerID),
		zap.String("product", productName), zap.String("variation", variationName),
		zap.String("price", order.Price.StringFixed(2)))

	return order, nil
}

// AdvanceStatus moves the order exactly one step forward. The notification
// for the new status is sent while the write is in flight; its failure is
// logged and never returned.
func (s *LifecycleService) AdvanceStatus(ctx context.Context, orderID uint) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := order.Status.Next()
	if err != nil {
		s.logger.Warn("status advancement rejected",
			zap.Uint("orderId", orderID), zap.String("status", order.Status.String()), zap.Error(err))
		return nil, err
	}

	notifyCtx, cancelNotify := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancelNotify()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.notify(notifyCtx, orderID, next)
	}()

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	updated, err := s.orders.UpdateStatus(storeCtx, orderID, order.Status, next)
	if err != nil {
		// The notice would announce a change that did not happen.
		cancelNotify()
		<-done
		s.logger.Warn("failed to persist status",
			zap.Uint("orderId", orderID), zap.String("from", order.Status.String()),
			zap.String("to", next.String()), zap.Error(err))
		return nil, err
	}

	<-done

	s.recorder.StatusChanged(order.Status, next)
	s.logger.Info("order status advanced",
		zap.Uint("orderId", orderID), zap.Uint("customerId", updated.CustomerID),
		zap.String("from", order.Status.String()), zap.String("status", next.String()))

	return updated, nil
}

func (s *LifecycleService) notify(ctx context.Context, orderID uint, status domain.OrderStatus) {
	start := time.Now()
	receipt, err := s.notifier.Send(ctx, status)
	s.recorder.NotificationSent(status, time.Since(start), err)

	if err != nil {
		s.logger.Warn("notification failed",
			zap.Uint("orderId", orderID), zap.String("status", status.String()), zap.Error(err))
		return
	}

	s.logger.Info("notification sent",
		zap.Uint("orderId", orderID), zap.String("status", status.String()),
		zap.String("message", receipt.Message), zap.Duration("latency", receipt.Latency))
}

func (s *LifecycleService) CancelOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	canceled, err := order.Status.Cancel()
	if err != nil {
		s.logger.Warn("cancellation rejected",
			zap.Uint("orderId", orderID), zap.String("status", order.Status.String()))
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	updated, err := s.orders.UpdateStatus(storeCtx, orderID, order.Status, canceled)
	if errors.Is(err, apperrors.ErrStatusConflict) {
		s.logger.Warn("order left Waiting before cancellation", zap.Uint("orderId", orderID))
		return nil, apperrors.NewConflictError(
			apperrors.ErrInvalidCancellation,
			fmt.Sprintf("order %d is no longer %q and cannot be canceled", orderID, domain.OrderStatusWaiting),
		)
	}
	if err != nil {
		s.logger.Error("failed to cancel order", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	s.recorder.StatusChanged(order.Status, canceled)
	s.logger.Info("order canceled", zap.Uint("orderId", orderID), zap.Uint("customerId", updated.CustomerID))

	return updated, nil
}

func (s *LifecycleService) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	order, err := s.orders.FindByID(storeCtx, orderID)
	if err != nil {
		s.logger.Warn("order lookup failed", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}
	return order, nil
}

// ListByCustomer returns the customer's orders oldest first.
func (s *LifecycleService) ListByCustomer(ctx context.Context, customerID uint) ([]domain.Order, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	orders, err := s.orders.ListByCustomer(storeCtx, customerID)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Uint("customerId", customerID), zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// DeleteOrder removes an order outright. Only used for cleanup.
func (s *LifecycleService) DeleteOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	order, err := s.orders.Delete(storeCtx, orderID)
	if err != nil {
		s.logger.Warn("failed to delete order", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order deleted", zap.Uint("orderId", orderID))
	return order, nil
}
