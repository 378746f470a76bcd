package testutil

import (
	"context"

	"github.com/skipbin/skipbin/internal/domain/order"
	ierr "github.com/skipbin/skipbin/internal/errors"
)

// InMemoryOrderStore implements order.Repository
type InMemoryOrderStore struct {
	*InMemoryStore[*order.DeliveryOrder]
}

// NewInMemoryOrderStore creates a new in-memory delivery order store
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore[*order.DeliveryOrder](),
	}
}

func (s *InMemoryOrderStore) Create(ctx context.Context, o *order.DeliveryOrder) error {
	if o == nil {
		return ierr.NewError("delivery order cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, o.ID, o)
}

func (s *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.DeliveryOrder, error) {
	return s.InMemoryStore.Get(ctx, id)
}

// GetByIDs returns the orders that exist, preserving the requested order.
// Missing ids are simply absent from the result.
func (s *InMemoryOrderStore) GetByIDs(ctx context.Context, ids []string) ([]*order.DeliveryOrder, error) {
	result := make([]*order.DeliveryOrder, 0, len(ids))
	for _, id := range ids {
		o, err := s.InMemoryStore.Get(ctx, id)
		if err != nil {
			if ierr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

func (s *InMemoryOrderStore) List(ctx context.Context) ([]*order.DeliveryOrder, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(i, j *order.DeliveryOrder) bool {
		return i.ID < j.ID
	})
}
