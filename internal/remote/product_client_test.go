package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/order-management/internal/product"
	"github.com/vasiliy-maslov/order-management/internal/remote"
	"github.com/vasiliy-maslov/order-management/internal/resilience"
)

func TestProductClient_GetProduct(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/"+productID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(product.Product{ID: productID, Name: "widget", Price: 9.99, Stock: 3})
	}))
	defer srv.Close()

	c := remote.NewProductClient(srv.URL, newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 1}))

	p, err := c.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, productID, p.ID)
	assert.Equal(t, "widget", p.Name)
	assert.Equal(t, 9.99, p.Price)
}

func TestProductClient_GetProductNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such product", http.StatusNotFound)
	}))
	defer srv.Close()

	policy := newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 1})
	c := remote.NewProductClient(srv.URL, policy)

	_, err := c.GetProduct(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	// A 404 is an answer, not a dependency failure.
	assert.Equal(t, resilience.StateClosed, policy.CircuitState())
}

func TestProductClient_ReserveStockConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		http.Error(w, "insufficient stock", http.StatusConflict)
	}))
	defer srv.Close()

	c := remote.NewProductClient(srv.URL, newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 1}))

	err := c.ReserveStock(context.Background(), uuid.Must(uuid.NewV4()), 2)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)
}

func TestProductClient_UnexpectedStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	policy := newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 1})
	c := remote.NewProductClient(srv.URL, policy)

	p, err := c.GetProduct(context.Background(), uuid.Must(uuid.NewV4()))
	require.Error(t, err, "a 400 answer must not produce a zero-value product")
	assert.Nil(t, p)

	// A reservation the service never confirmed must not look reserved.
	err = c.ReserveStock(context.Background(), uuid.Must(uuid.NewV4()), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, product.ErrInsufficientStock)
	assert.NotErrorIs(t, err, product.ErrProductNotFound)

	err = c.ReleaseStock(context.Background(), uuid.Must(uuid.NewV4()), 1)
	require.Error(t, err)

	// The dependency answered; the circuit is not charged.
	assert.Equal(t, resilience.StateClosed, policy.CircuitState())
}

func TestProductClient_ServerErrorsRetryAndSurfaceUnreachable(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := remote.NewProductClient(srv.URL, newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 3}))

	err := c.ReserveStock(context.Background(), uuid.Must(uuid.NewV4()), 1)
	assert.ErrorIs(t, err, remote.ErrUnreachable)
	assert.Equal(t, int64(3), hits.Load())
}
