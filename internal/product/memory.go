package product

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// MemoryRepository is an in-memory Repository. Reservation performs the
// compare-and-decrement under the repository lock, giving the same
// no-oversell guarantee as the SQL conditional UPDATE.
type MemoryRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*Product
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{products: make(map[uuid.UUID]*Product)}
}

func (r *MemoryRepository) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		p.ID = id
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	stored := *p
	r.products[p.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *MemoryRepository) ReserveStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) ReleaseStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}
