package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/order-management/internal/handler"
)

// NewRouter wires the order API, health check and metrics scrape endpoint.
func NewRouter(h *handler.OrderHandler, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Post("/orders", h.PlaceOrder)
	r.Get("/orders/{id}", h.GetOrderByID)
	r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
	r.Get("/users/{userID}/orders", h.GetOrdersByUserID)

	return r
}
