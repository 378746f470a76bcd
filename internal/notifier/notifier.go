package notifier

import (
	"context"

	"github.com/skipbin/skipbin/internal/types"
)

// Channel identifies the delivery mechanism requested from the notifier
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// InvoiceRequest asks the notifier to deliver an invoice to the customer
type InvoiceRequest struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerName  string  `json:"customer_name"`
	Channel       Channel `json:"channel"`
}

// ReminderRequest asks the notifier to deliver a payment reminder
type ReminderRequest struct {
	InvoiceID     string                      `json:"invoice_id"`
	InvoiceNumber string                      `json:"invoice_number"`
	Channel       Channel                     `json:"channel"`
	Entry         types.ReminderScheduleEntry `json:"entry"`
	Message       string                      `json:"message,omitempty"`
}

// Notifier is the external delivery collaborator. The billing engine hands
// off requests fire-and-forget and only records counts and timestamps of
// what it requested; it never awaits delivery confirmation.
type Notifier interface {
	SendInvoice(ctx context.Context, req InvoiceRequest) error
	SendReminder(ctx context.Context, req ReminderRequest) error
}

// NoopNotifier discards all requests. Used when no delivery integration is
// wired in.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) SendInvoice(ctx context.Context, req InvoiceRequest) error {
	return nil
}

func (n *NoopNotifier) SendReminder(ctx context.Context, req ReminderRequest) error {
	return nil
}
