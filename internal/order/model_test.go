package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/order-management/internal/order"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    order.OrderStatus
		to      order.OrderStatus
		allowed bool
	}{
		{order.StatusCreated, order.StatusPaid, true},
		{order.StatusCreated, order.StatusCancelled, true},
		{order.StatusCreated, order.StatusFulfilled, false},
		{order.StatusPaid, order.StatusFulfilled, true},
		{order.StatusPaid, order.StatusCancelled, true},
		{order.StatusPaid, order.StatusCreated, false},
		{order.StatusFulfilled, order.StatusCancelled, false},
		{order.StatusFulfilled, order.StatusPaid, false},
		{order.StatusCancelled, order.StatusCreated, false},
		{order.StatusCancelled, order.StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, order.StatusCreated.Valid())
	assert.True(t, order.StatusCancelled.Valid())
	assert.False(t, order.OrderStatus("SHIPPED").Valid())
	assert.False(t, order.OrderStatus("").Valid())
}
