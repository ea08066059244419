package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/handlers"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/middleware"
	"github.com/sokohub/sokohub-order-service/internal/logger"
	"go.uber.org/zap"
)

// NewRouter wires the lifecycle API. The settlement webhook and the metrics
// endpoint are the only unauthenticated paths: the gateway cannot carry a
// bearer token.
func NewRouter(
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	jwtSecret string,
	log *zap.SugaredLogger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.Recoverer,
		logger.RequestLogger(log),
		middleware.Auth(jwtSecret, "/payments/callback", "/metrics"),
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/payments/callback", paymentHandler.HandleCallback)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.ListOrders)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", orderHandler.GetOrder)
			r.Post("/cancel", orderHandler.CancelOrder)
			r.Post("/refund-request", orderHandler.RequestRefund)
			r.Patch("/status", orderHandler.UpdateStatus)

			r.Route("/payments", func(r chi.Router) {
				r.Post("/initiate", paymentHandler.InitiatePayment)
				r.Get("/query", paymentHandler.QueryPayment)
				r.Post("/complete", paymentHandler.MarkComplete)
				r.Post("/fail", paymentHandler.MarkFailed)
			})
		})
	})

	return r
}
