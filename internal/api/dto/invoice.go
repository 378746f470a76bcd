package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skipbin/skipbin/internal/domain/invoice"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/notifier"
	"github.com/skipbin/skipbin/internal/types"
	"github.com/skipbin/skipbin/internal/validator"
)

// CreateInvoiceRequest represents the request payload for creating a new invoice
type CreateInvoiceRequest struct {
	// mode selects auto generation from delivery orders or manual operator input
	Mode types.InvoiceCreationMode `json:"mode" validate:"required"`

	// order_ids reference the delivery orders this invoice bills; required in auto mode
	OrderIDs []string `json:"order_ids,omitempty"`

	// invoice_number is the operator-supplied number; required in manual mode
	InvoiceNumber *string `json:"invoice_number,omitempty"`

	// customer_name is the billed party; required in manual mode, derived from
	// orders in auto mode
	CustomerName string `json:"customer_name,omitempty"`

	// customer_type categorizes the billed party; defaults to corporate
	CustomerType types.CustomerType `json:"customer_type,omitempty"`

	// subtotal is the pre-tax amount in the base currency; required in manual mode
	Subtotal *decimal.Decimal `json:"subtotal,omitempty"`

	// service_category is reserved for future tax rate differentiation
	ServiceCategory string `json:"service_category,omitempty"`

	// currency is the currency the invoice is stated in
	Currency string `json:"currency" validate:"required"`

	// tax_region selects the tax rate applied to the subtotal
	TaxRegion string `json:"tax_region" validate:"required"`

	// payment_terms is the textual terms stamped on the invoice, e.g. "Net 30"
	PaymentTerms string `json:"payment_terms,omitempty"`

	// due_date overrides the due date derived from payment terms
	DueDate *time.Time `json:"due_date,omitempty"`

	// auto_reminders schedules payment reminders at creation time
	AutoReminders bool `json:"auto_reminders,omitempty"`

	// metadata contains additional custom key-value pairs
	Metadata types.Metadata `json:"metadata,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := r.Mode.Validate(); err != nil {
		return err
	}

	if r.CustomerType != "" {
		if err := r.CustomerType.Validate(); err != nil {
			return err
		}
	}

	missing := make([]string, 0)
	switch r.Mode {
	case types.InvoiceCreationModeAuto:
		if len(r.OrderIDs) == 0 {
			missing = append(missing, "order_ids")
		}
	case types.InvoiceCreationModeManual:
		if strings.TrimSpace(r.CustomerName) == "" {
			missing = append(missing, "customer_name")
		}
		if r.Subtotal == nil {
			missing = append(missing, "subtotal")
		}
		if r.InvoiceNumber == nil || strings.TrimSpace(*r.InvoiceNumber) == "" {
			missing = append(missing, "invoice_number")
		}
	}

	if len(missing) > 0 {
		return ierr.NewError("missing required fields").
			WithHintf("The following fields are required: %s", strings.Join(missing, ", ")).
			WithReportableDetails(map[string]any{
				"missing_fields": missing,
				"mode":           r.Mode,
			}).
			Mark(ierr.ErrValidation)
	}

	if r.DueDate != nil && r.DueDate.Before(time.Now().UTC()) {
		return ierr.NewError("due_date cannot be in the past").
			WithHint("The due date must be on or after the issue date").
			WithReportableDetails(map[string]any{
				"due_date": r.DueDate,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// GetCustomerType returns the requested customer type or the default
func (r *CreateInvoiceRequest) GetCustomerType() types.CustomerType {
	if r.CustomerType == "" {
		return types.CustomerTypeCorporate
	}
	return r.CustomerType
}

// RecordPaymentRequest represents the request payload for recording a payment
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Date      time.Time       `json:"date" validate:"required"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CreateNoteRequest represents the request payload for a credit or debit note
type CreateNoteRequest struct {
	Reason      types.NoteReason `json:"reason" validate:"required"`
	Amount      decimal.Decimal  `json:"amount" validate:"required"`
	Description string           `json:"description,omitempty"`
}

func (r *CreateNoteRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Reason.Validate()
}

// SendReminderRequest represents the request payload for a manual reminder
type SendReminderRequest struct {
	Type    types.ReminderType `json:"type" validate:"required"`
	Message string             `json:"message,omitempty"`
	Channel notifier.Channel   `json:"channel,omitempty"`
}

func (r *SendReminderRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Type.Validate()
}

// GetChannel returns the requested channel or the default
func (r *SendReminderRequest) GetChannel() notifier.Channel {
	if r.Channel == "" {
		return notifier.ChannelEmail
	}
	return r.Channel
}

// InvoiceResponse represents the invoice response payload
type InvoiceResponse struct {
	*invoice.Invoice
}

// NewInvoiceResponse creates a new invoice response from an invoice
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}
