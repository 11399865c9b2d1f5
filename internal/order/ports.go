package order

import (
	"context"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/order-management/internal/product"
	"github.com/vasiliy-maslov/order-management/internal/user"
)

// Collaborator ports. Inside the order service's own boundary they can be
// satisfied by a local repository; across a service boundary they are
// satisfied by a resilience-gated remote client. The orchestrator does not
// care which.

// UserDirectory resolves user references.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Catalog resolves product references and owns inventory reservation.
// ReserveStock is atomic per call; the orchestrator never reads stock and
// writes it back.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error
	ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// PaymentResult is the business outcome of a capture call. Transport
// failures are errors, a decline is a result.
type PaymentResult string

const (
	PaymentAuthorized PaymentResult = "AUTHORIZED"
	PaymentDeclined   PaymentResult = "DECLINED"
)

// Payments captures payment for an order.
type Payments interface {
	Capture(ctx context.Context, orderID uuid.UUID, amount float64) (PaymentResult, error)
}

// ShipmentResult is the acknowledgement of a shipment notification.
type ShipmentResult string

const (
	ShipmentAccepted ShipmentResult = "ACCEPTED"
	ShipmentRejected ShipmentResult = "REJECTED"
)

// Shipments dispatches the fulfillment notification. Delivery beyond the
// acknowledgement is the messaging boundary's concern.
type Shipments interface {
	Notify(ctx context.Context, orderID uuid.UUID) (ShipmentResult, error)
}
