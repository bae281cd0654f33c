package order

import (
	"database/sql"

	"go.uber.org/zap"

	"coffeeshop/internal/config"
	customerrepo "coffeeshop/internal/customer/repository"
	"coffeeshop/internal/menu"
	"coffeeshop/internal/metrics"
	"coffeeshop/internal/notification"
	"coffeeshop/internal/order/controller"
	orderrepo "coffeeshop/internal/order/repository"
	"coffeeshop/internal/order/service"
	"coffeeshop/internal/order/usecase"
)

func NewModule(db *sql.DB, cfg *config.Config, sender notification.Sender, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	customerRepo := customerrepo.NewMySQLCustomerRepository(db)
	catalog := menu.Default()

	lifecycle := service.NewLifecycleService(
		orderRepo,
		customerRepo,
		catalog,
		sender,
		metrics.NewOrderRecorder(),
		service.Config{
			StoreTimeout:  cfg.Order.StoreTimeout,
			NotifyTimeout: cfg.Notification.Timeout,
		},
		logger,
	)

	return controller.NewOrderController(
		usecase.NewCustomerSessions(lifecycle, catalog, logger),
		usecase.NewManager(lifecycle, logger),
		logger,
	)
}
