package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/order-management/internal/order"
	"github.com/vasiliy-maslov/order-management/internal/remote"
)

// newTestRouter registers the same order routes the transport package does,
// without importing it.
func newTestRouter(h *OrderHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/orders", h.PlaceOrder)
	r.Get("/orders/{id}", h.GetOrderByID)
	r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
	r.Get("/users/{userID}/orders", h.GetOrdersByUserID)
	return r
}

type mockOrderService struct {
	placeOrderFunc        func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error)
	getOrderByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	getOrdersByUserIDFunc func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	updateOrderStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
	return m.placeOrderFunc(ctx, userID, items)
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getOrderByIDFunc(ctx, id)
}

func (m *mockOrderService) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.getOrdersByUserIDFunc(ctx, userID)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error {
	return m.updateOrderStatusFunc(ctx, orderID, newStatus)
}

const (
	testUserID    = "123e4567-e89b-42d3-a456-426614174000"
	testProductID = "550e8400-e29b-41d4-a716-446655440000"
	testOrderID   = "9b2d7f62-47a1-4a8e-9f30-1c2a4d5e6f70"
)

func placeOrderBody() string {
	return fmt.Sprintf(`{"user_id": %q, "items": [{"product_id": %q, "quantity": 2}]}`, testUserID, testProductID)
}

func TestOrderHandler_PlaceOrder(t *testing.T) {
	fulfilled := &order.Order{
		ID:     uuid.FromStringOrNil(testOrderID),
		UserID: uuid.FromStringOrNil(testUserID),
		Status: order.StatusFulfilled,
	}

	tests := []struct {
		name           string
		body           string
		placeOrder     func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error)
		expectedStatus int
		expectedStage  string
		checkHeaders   func(t *testing.T, h http.Header)
	}{
		{
			name: "success",
			body: placeOrderBody(),
			placeOrder: func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
				assert.Equal(t, testUserID, userID.String())
				require.Len(t, items, 1)
				assert.Equal(t, testProductID, items[0].ProductID.String())
				assert.Equal(t, 2, items[0].Quantity)
				return fulfilled, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid_json",
			body:           `{invalid json}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_items",
			body:           fmt.Sprintf(`{"user_id": %q, "items": []}`, testUserID),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non_positive_quantity",
			body:           fmt.Sprintf(`{"user_id": %q, "items": [{"product_id": %q, "quantity": 0}]}`, testUserID, testProductID),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_product",
			body: placeOrderBody(),
			placeOrder: func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
				return nil, &order.StageError{Stage: order.StageValidate, Err: fmt.Errorf("%w: product %s", order.ErrInvalidReference, testProductID)}
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedStage:  "validate",
		},
		{
			name: "insufficient_stock",
			body: placeOrderBody(),
			placeOrder: func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
				return nil, &order.StageError{Stage: order.StageReserve, Err: order.ErrInsufficientStock}
			},
			expectedStatus: http.StatusConflict,
			expectedStage:  "reserve",
		},
		{
			name: "payment_declined",
			body: placeOrderBody(),
			placeOrder: func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
				return nil, &order.StageError{Stage: order.StagePayment, Err: order.ErrPaymentDeclined}
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedStage:  "payment",
		},
		{
			name: "payment_service_unreachable",
			body: placeOrderBody(),
			placeOrder: func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
				return nil, &order.StageError{Stage: order.StagePayment, Err: fmt.Errorf("payment capture failed: %w", remote.ErrUnreachable)}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedStage:  "payment",
			checkHeaders: func(t *testing.T, h http.Header) {
				assert.Equal(t, "1", h.Get("Retry-After"))
			},
		},
		{
			name: "call_rejected_by_open_circuit",
			body: placeOrderBody(),
			placeOrder: func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
				return nil, &order.StageError{Stage: order.StageValidate, Err: fmt.Errorf("user lookup: %w", remote.ErrRejected)}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedStage:  "validate",
		},
		{
			name: "internal_error",
			body: placeOrderBody(),
			placeOrder: func(ctx context.Context, userID uuid.UUID, items []order.LineItemInput) (*order.Order, error) {
				return nil, fmt.Errorf("something broke")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{placeOrderFunc: tt.placeOrder})

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.PlaceOrder(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStage != "" {
				assert.Equal(t, tt.expectedStage, rec.Header().Get("X-Failed-Stage"))
			}
			if tt.checkHeaders != nil {
				tt.checkHeaders(t, rec.Header())
			}
			if tt.expectedStatus == http.StatusCreated {
				assert.Contains(t, rec.Body.String(), testOrderID)
			}
		})
	}
}

func TestOrderHandler_GetOrderByID(t *testing.T) {
	tests := []struct {
		name           string
		orderID        string
		getOrder       func(ctx context.Context, id uuid.UUID) (*order.Order, error)
		expectedStatus int
	}{
		{
			name:    "success",
			orderID: testOrderID,
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return &order.Order{ID: id, Status: order.StatusPaid}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "not_found",
			orderID: testOrderID,
			getOrder: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid_id",
			orderID:        "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{getOrderByIDFunc: tt.getOrder})
			router := newTestRouter(h)

			req := httptest.NewRequest(http.MethodGet, "/orders/"+tt.orderID, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		updateStatus   func(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"status": "FULFILLED"}`,
			updateStatus: func(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error {
				assert.Equal(t, order.StatusFulfilled, newStatus)
				return nil
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "invalid_transition",
			body: `{"status": "CREATED"}`,
			updateStatus: func(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error {
				return fmt.Errorf("%w: FULFILLED -> CREATED", order.ErrInvalidStatusTransition)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "not_found",
			body: `{"status": "PAID"}`,
			updateStatus: func(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error {
				return order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "concurrent_conflict",
			body: `{"status": "PAID"}`,
			updateStatus: func(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus) error {
				return order.ErrStatusConflict
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing_status",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&mockOrderService{updateOrderStatusFunc: tt.updateStatus})
			router := newTestRouter(h)

			req := httptest.NewRequest(http.MethodPatch, "/orders/"+testOrderID+"/status", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestOrderHandler_GetOrdersByUserID(t *testing.T) {
	h := NewOrderHandler(&mockOrderService{
		getOrdersByUserIDFunc: func(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
			return []order.Order{
				{ID: uuid.FromStringOrNil(testOrderID), UserID: userID, Status: order.StatusCreated},
			}, nil
		},
	})
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/users/"+testUserID+"/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), testOrderID)

	req = httptest.NewRequest(http.MethodGet, "/users/not-a-uuid/orders", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
