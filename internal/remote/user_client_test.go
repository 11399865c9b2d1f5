package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/order-management/internal/remote"
	"github.com/vasiliy-maslov/order-management/internal/resilience"
	"github.com/vasiliy-maslov/order-management/internal/user"
)

func TestUserClient_GetUser(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/"+userID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user.User{ID: userID, Email: "a@b.c"})
	}))
	defer srv.Close()

	c := remote.NewUserClient(srv.URL, newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 1}))

	u, err := c.GetUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)
}

func TestUserClient_GetUserNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	defer srv.Close()

	c := remote.NewUserClient(srv.URL, newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 1}))

	_, err := c.GetUser(context.Background(), uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserClient_UnexpectedStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	policy := newTestPolicy(t, resilience.PolicyConfig{Timeout: time.Second, MaxAttempts: 1})
	c := remote.NewUserClient(srv.URL, policy)

	u, err := c.GetUser(context.Background(), uuid.Must(uuid.NewV4()))
	require.Error(t, err, "a 403 answer must not produce a zero-value user")
	assert.Nil(t, u)
	assert.NotErrorIs(t, err, user.ErrUserNotFound)
	assert.Equal(t, resilience.StateClosed, policy.CircuitState())
}
