package order

import (
	"context"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/order-management/internal/product"
	"github.com/vasiliy-maslov/order-management/internal/user"
)

// Local adapters satisfy the collaborator ports from the service's own
// store, for entities that have not been split into their own service yet.

// LocalUserDirectory serves user lookups from a local repository.
type LocalUserDirectory struct {
	Repo user.Repository
}

func (d LocalUserDirectory) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return d.Repo.GetByID(ctx, id)
}

// LocalCatalog serves product lookups and stock reservation from a local
// repository. The atomic compare-and-decrement lives in the repository.
type LocalCatalog struct {
	Repo product.Repository
}

func (c LocalCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return c.Repo.GetByID(ctx, id)
}

func (c LocalCatalog) ReserveStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return c.Repo.ReserveStock(ctx, id, quantity)
}

func (c LocalCatalog) ReleaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return c.Repo.ReleaseStock(ctx, id, quantity)
}
