package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/skipbin/skipbin/internal/domain/invoice"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository. It stores and returns
// deep copies so committed state can never be mutated through aliases.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, inv.ID, inv.Clone())
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return inv.Clone(), nil
}

func (s *InMemoryInvoiceStore) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.InvoiceNumber == invoiceNumber
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHintf("No invoice with number %s", invoiceNumber).
			Mark(ierr.ErrNotFound)
	}
	return invoices[0].Clone(), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, inv.ID, inv.Clone())
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return inv.Clone()
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, inv.InvoiceStatus) {
		return false
	}
	if f.CustomerName != "" && inv.CustomerName != f.CustomerName {
		return false
	}
	if f.DueBefore != nil && !inv.DueDate.Before(*f.DueBefore) {
		return false
	}
	if f.DueAfter != nil && !inv.DueDate.After(*f.DueAfter) {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if !i.CreatedAt.Equal(j.CreatedAt) {
		return i.CreatedAt.Before(j.CreatedAt)
	}
	return i.ID < j.ID
}
