package remote

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/order-management/internal/order"
	"github.com/vasiliy-maslov/order-management/internal/resilience"
)

// ShipmentClient hands the fulfillment notification to the shipment
// channel. The channel guarantees at-least-once delivery once it accepts;
// this client only reports whether it was accepted.
type ShipmentClient struct {
	call *Client
	base string
	http *http.Client
}

func NewShipmentClient(baseURL string, policy *resilience.Policy) *ShipmentClient {
	return &ShipmentClient{
		call: NewClient(policy),
		base: baseURL,
		http: &http.Client{},
	}
}

type notifyRequest struct {
	OrderID uuid.UUID `json:"order_id"`
}

func (c *ShipmentClient) Notify(ctx context.Context, orderID uuid.UUID) (order.ShipmentResult, error) {
	var statusCode int
	err := c.call.Invoke(ctx, "notify", func(ctx context.Context) error {
		status, err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "shipments", "notify"), notifyRequest{OrderID: orderID}, nil)
		if err != nil {
			return err
		}
		statusCode = status
		return nil
	})
	if err != nil {
		return "", err
	}
	switch statusCode {
	case http.StatusOK, http.StatusAccepted:
		return order.ShipmentAccepted, nil
	case http.StatusConflict:
		return order.ShipmentRejected, nil
	default:
		return "", errUnexpectedStatus("notify", statusCode)
	}
}
