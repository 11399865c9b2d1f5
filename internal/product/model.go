package product

import (
	"time"

	"github.com/gofrs/uuid"
)

// Product is owned by the product service. Orders reference it by ID only;
// Stock is the number of units available for reservation.
type Product struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
