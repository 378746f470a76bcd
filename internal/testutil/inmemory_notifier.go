package testutil

import (
	"context"
	"sync"

	"github.com/skipbin/skipbin/internal/notifier"
)

// InMemoryNotifier captures hand-offs from the billing engine so tests can
// assert what was requested without any real delivery.
type InMemoryNotifier struct {
	mu        sync.Mutex
	invoices  []notifier.InvoiceRequest
	reminders []notifier.ReminderRequest
}

func NewInMemoryNotifier() *InMemoryNotifier {
	return &InMemoryNotifier{}
}

func (n *InMemoryNotifier) SendInvoice(ctx context.Context, req notifier.InvoiceRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invoices = append(n.invoices, req)
	return nil
}

func (n *InMemoryNotifier) SendReminder(ctx context.Context, req notifier.ReminderRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, req)
	return nil
}

// InvoiceRequests returns the captured invoice hand-offs
func (n *InMemoryNotifier) InvoiceRequests() []notifier.InvoiceRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifier.InvoiceRequest(nil), n.invoices...)
}

// ReminderRequests returns the captured reminder hand-offs
func (n *InMemoryNotifier) ReminderRequests() []notifier.ReminderRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifier.ReminderRequest(nil), n.reminders...)
}

// Clear discards all captured requests
func (n *InMemoryNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invoices = nil
	n.reminders = nil
}
