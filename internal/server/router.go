package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coffeeshop/internal/domain"
	"coffeeshop/internal/metrics"
)

type MenuHandler interface {
	HandleGetMenu(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	PlaceOrder(w http.ResponseWriter, r *http.Request)
	ListOrders(w http.ResponseWriter, r *http.Request)
	CancelOrder(w http.ResponseWriter, r *http.Request)
	UpdateOrderStatus(w http.ResponseWriter, r *http.Request)
}

func NewRouter(menuCtrl MenuHandler, orderCtrl OrderHandler, requestTimeout time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware(logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(Authorize(domain.UserTypeCustomer, domain.UserTypeManager))
			r.Get("/menu", menuCtrl.HandleGetMenu)
			r.Post("/order", orderCtrl.PlaceOrder)
			r.Get("/orders", orderCtrl.ListOrders)
			r.Post("/order/{orderId}/cancel", orderCtrl.CancelOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(Authorize(domain.UserTypeManager))
			r.Put("/order/status/{orderId}", orderCtrl.UpdateOrderStatus)
		})
	})

	return r
}
