package usecase

import (
	"context"

	"go.uber.org/zap"

	"coffeeshop/internal/domain"
)

type StatusAdvancer interface {
	AdvanceStatus(ctx context.Context, orderID uint) (*domain.Order, error)
}

// Manager moves orders through the preparation pipeline.
type Manager struct {
	lifecycle StatusAdvancer
	logger    *zap.Logger
}

func NewManager(lifecycle StatusAdvancer, logger *zap.Logger) *Manager {
	return &Manager{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

func (m *Manager) UpdateOrderStatus(ctx context.Context, orderID uint) (*domain.Order, error) {
	m.logger.Info("advancing order status", zap.Uint("orderId", orderID))
	return m.lifecycle.AdvanceStatus(ctx, orderID)
}
