package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"coffeeshop/internal/domain"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	OrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Total number of persisted order status changes",
		},
		[]string{"from", "to"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_notifications_total",
			Help: "Total number of order notifications by outcome",
		},
		[]string{"status", "outcome"},
	)

	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_notification_duration_seconds",
			Help:    "Time spent delivering order notifications",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
)

// OrderRecorder publishes order lifecycle events as Prometheus metrics.
type OrderRecorder struct{}

func NewOrderRecorder() *OrderRecorder {
	return &OrderRecorder{}
}

func (OrderRecorder) StatusChanged(from, to domain.OrderStatus) {
	OrderTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}

func (OrderRecorder) NotificationSent(status domain.OrderStatus, latency time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	NotificationsTotal.WithLabelValues(status.String(), outcome).Inc()
	NotificationDuration.WithLabelValues(status.String()).Observe(latency.Seconds())
}
