package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/order-management/internal/order"
	"github.com/vasiliy-maslov/order-management/internal/remote"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

type placeOrderItem struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type placeOrderRequest struct {
	UserID string           `json:"user_id" validate:"required,uuid4"`
	Items  []placeOrderItem `json:"items" validate:"required,min=1,dive"`
}

// PlaceOrder handles POST /orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := uuid.FromString(req.UserID)
	if err != nil {
		http.Error(w, "invalid user_id", http.StatusBadRequest)
		return
	}
	items := make([]order.LineItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := uuid.FromString(it.ProductID)
		if err != nil {
			http.Error(w, "invalid product_id", http.StatusBadRequest)
			return
		}
		items = append(items, order.LineItemInput{ProductID: productID, Quantity: it.Quantity})
	}

	o, err := h.svc.PlaceOrder(r.Context(), userID, items)
	if err != nil {
		h.writePlaceOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) writePlaceOrderError(w http.ResponseWriter, err error) {
	var stageErr *order.StageError
	stage := ""
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
		w.Header().Set("X-Failed-Stage", stage)
	}

	switch {
	case errors.Is(err, order.ErrEmptyOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrInvalidReference):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, order.ErrInsufficientStock):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, order.ErrPaymentDeclined):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case remote.Transient(err):
		// Safe to retry from the caller's side; compensation already ran.
		w.Header().Set("Retry-After", "1")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Str("stage", stage).Msg("handler: order placement failed")
		http.Error(w, "failed to place order", http.StatusInternalServerError)
	}
}

// GetOrderByID handles GET /orders/{id}.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	o, err := h.svc.GetOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("handler: failed to get order by id")
		http.Error(w, "failed to get order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// GetOrdersByUserID handles GET /users/{userID}/orders.
func (h *OrderHandler) GetOrdersByUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	orders, err := h.svc.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list user orders")
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.svc.UpdateOrderStatus(r.Context(), id, order.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidStatusTransition):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, order.ErrStatusConflict):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			log.Error().Err(err).Msg("handler: failed to update order status")
			http.Error(w, "failed to update order status", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("handler: failed to encode response")
	}
}
