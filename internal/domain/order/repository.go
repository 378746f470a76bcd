package order

import (
	"context"
)

// Repository defines the interface for delivery order lookups. The booking
// system owns these records; the billing engine only reads them.
type Repository interface {
	// Create stores a new delivery order
	Create(ctx context.Context, order *DeliveryOrder) error

	// Get retrieves a delivery order by ID
	Get(ctx context.Context, id string) (*DeliveryOrder, error)

	// GetByIDs retrieves delivery orders preserving the requested order
	GetByIDs(ctx context.Context, ids []string) ([]*DeliveryOrder, error)

	// List retrieves all delivery orders
	List(ctx context.Context) ([]*DeliveryOrder, error)
}
