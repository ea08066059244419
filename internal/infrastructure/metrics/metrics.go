package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrderMetrics holds the settlement coordinator's Prometheus metrics.
type OrderMetrics struct {
	OrdersCreatedTotal       prometheus.CounterVec
	OrdersCreatedAmountTotal prometheus.CounterVec

	PaymentsCompletedTotal prometheus.CounterVec
	PaymentsFailedTotal    prometheus.CounterVec
	OrdersCanceledTotal    prometheus.Counter
	RefundRequestsTotal    prometheus.Counter

	CallbacksReceivedTotal prometheus.CounterVec

	GatewayRequestDuration prometheus.HistogramVec
}

func NewOrderMetrics() *OrderMetrics {
	return &OrderMetrics{
		OrdersCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Total number of orders created",
			},
			[]string{"payment_method"},
		),

		OrdersCreatedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_amount_total",
				Help: "Total amount of created orders",
			},
			[]string{"payment_method"},
		),

		PaymentsCompletedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_completed_total",
				Help: "Payments settled as completed, by transition origin",
			},
			[]string{"origin"},
		),

		PaymentsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_failed_total",
				Help: "Payments settled as failed, by transition origin",
			},
			[]string{"origin"},
		),

		OrdersCanceledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_canceled_total",
				Help: "Orders canceled while still pending",
			},
		),

		RefundRequestsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "refund_requests_total",
				Help: "Refund requests accepted on completed payments",
			},
		),

		CallbacksReceivedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_callbacks_received_total",
				Help: "Settlement callbacks received, by processing result",
			},
			[]string{"result"},
		),

		GatewayRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Duration of outbound payment-gateway requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}
