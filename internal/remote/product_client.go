package remote

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/order-management/internal/product"
	"github.com/vasiliy-maslov/order-management/internal/resilience"
)

// ProductClient reads catalog data and drives inventory reservation on the
// product service. It satisfies order.Catalog across the service boundary.
// The atomic compare-and-decrement happens at the product service's store;
// this client only carries the request.
type ProductClient struct {
	call *Client
	base string
	http *http.Client
}

func NewProductClient(baseURL string, policy *resilience.Policy) *ProductClient {
	return &ProductClient{
		call: NewClient(policy),
		base: baseURL,
		http: &http.Client{},
	}
}

func (c *ProductClient) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	var (
		fetched    product.Product
		statusCode int
	)
	err := c.call.Invoke(ctx, "get_product", func(ctx context.Context) error {
		status, err := doJSON(ctx, c.http, http.MethodGet, joinURL(c.base, "products", id.String()), nil, &fetched)
		if err != nil {
			return err
		}
		statusCode = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	switch statusCode {
	case http.StatusOK:
		return &fetched, nil
	case http.StatusNotFound:
		return nil, product.ErrProductNotFound
	default:
		return nil, errUnexpectedStatus("get_product", statusCode)
	}
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}

func (c *ProductClient) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error {
	var statusCode int
	err := c.call.Invoke(ctx, "reserve_stock", func(ctx context.Context) error {
		status, err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "products", id.String(), "reserve"), stockRequest{Quantity: quantity}, nil)
		if err != nil {
			return err
		}
		statusCode = status
		return nil
	})
	if err != nil {
		return err
	}
	switch statusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return product.ErrProductNotFound
	case http.StatusConflict:
		return product.ErrInsufficientStock
	default:
		return errUnexpectedStatus("reserve_stock", statusCode)
	}
}

func (c *ProductClient) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	var statusCode int
	err := c.call.Invoke(ctx, "release_stock", func(ctx context.Context) error {
		status, err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "products", id.String(), "release"), stockRequest{Quantity: quantity}, nil)
		if err != nil {
			return err
		}
		statusCode = status
		return nil
	})
	if err != nil {
		return err
	}
	switch statusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return product.ErrProductNotFound
	default:
		return errUnexpectedStatus("release_stock", statusCode)
	}
}
