package remote

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/order-management/internal/resilience"
	"github.com/vasiliy-maslov/order-management/internal/user"
)

// UserClient reads user data from the user service. It satisfies
// order.UserDirectory across the service boundary.
type UserClient struct {
	call *Client
	base string
	http *http.Client
}

func NewUserClient(baseURL string, policy *resilience.Policy) *UserClient {
	return &UserClient{
		call: NewClient(policy),
		base: baseURL,
		http: &http.Client{},
	}
}

func (c *UserClient) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var (
		fetched    user.User
		statusCode int
	)
	err := c.call.Invoke(ctx, "get_user", func(ctx context.Context) error {
		status, err := doJSON(ctx, c.http, http.MethodGet, joinURL(c.base, "users", id.String()), nil, &fetched)
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
		return nil, user.ErrUserNotFound
	default:
		return nil, errUnexpectedStatus("get_user", statusCode)
	}
}
