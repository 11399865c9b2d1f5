package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusPaid      OrderStatus = "PAID"
	StatusFulfilled OrderStatus = "FULFILLED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (os OrderStatus) String() string {
	return string(os)
}

// Status transitions are monotonic: CREATED -> PAID -> FULFILLED, with
// CANCELLED reachable from CREATED or PAID only.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusCreated: {
		StatusPaid:      true,
		StatusCancelled: true,
	},
	StatusPaid: {
		StatusFulfilled: true,
		StatusCancelled: true,
	},
	StatusFulfilled: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the status machine allows moving to next.
func (os OrderStatus) CanTransitionTo(next OrderStatus) bool {
	transitions, ok := allowedTransitions[os]
	return ok && transitions[next]
}

// Valid reports whether the value is one of the known statuses.
func (os OrderStatus) Valid() bool {
	_, ok := allowedTransitions[os]
	return ok
}

type OrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	PricePerUnit float64   `json:"price_per_unit" db:"price_per_unit"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Order references its user by ID only; no user fields are embedded.
// Line items carry the product ID and the price captured at order time.
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Status      OrderStatus `json:"status" db:"status"`
	OrderItems  []OrderItem `json:"order_items" db:"-"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
