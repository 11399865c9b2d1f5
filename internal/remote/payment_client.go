package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/order-management/internal/order"
	"github.com/vasiliy-maslov/order-management/internal/resilience"
)

// PaymentClient captures payments through the payment service. A decline is
// a business result, not a failure: it does not count against the circuit.
type PaymentClient struct {
	call *Client
	base string
	http *http.Client
}

func NewPaymentClient(baseURL string, policy *resilience.Policy) *PaymentClient {
	return &PaymentClient{
		call: NewClient(policy),
		base: baseURL,
		http: &http.Client{},
	}
}

type captureRequest struct {
	OrderID uuid.UUID `json:"order_id"`
	Amount  float64   `json:"amount"`
}

type captureResponse struct {
	Result string `json:"result"`
}

func (c *PaymentClient) Capture(ctx context.Context, orderID uuid.UUID, amount float64) (order.PaymentResult, error) {
	var (
		resp       captureResponse
		statusCode int
	)
	err := c.call.Invoke(ctx, "capture", func(ctx context.Context) error {
		status, err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "payments", "capture"), captureRequest{OrderID: orderID, Amount: amount}, &resp)
		if err != nil {
			return err
		}
		statusCode = status
		return nil
	})
	if err != nil {
		return "", err
	}
	if statusCode != http.StatusOK {
		return "", errUnexpectedStatus("capture", statusCode)
	}

	switch order.PaymentResult(resp.Result) {
	case order.PaymentAuthorized:
		return order.PaymentAuthorized, nil
	case order.PaymentDeclined:
		return order.PaymentDeclined, nil
	default:
		return "", fmt.Errorf("remote: payment capture returned unknown result %q", resp.Result)
	}
}
