package invoice

import (
	"context"

	"github.com/skipbin/skipbin/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// Implementations must serialize commits per invoice id so balance-affecting
// operations never interleave.
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByInvoiceNumber retrieves an invoice by its human-facing number
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// Update commits a mutated invoice, replacing the stored version
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
