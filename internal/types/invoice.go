package types

import (
	"time"

	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusDraft indicates the invoice has been created but not yet sent to the customer
	InvoiceStatusDraft InvoiceStatus = "draft"
	// InvoiceStatusSent indicates the invoice has been handed to the notifier and awaits payment
	InvoiceStatusSent InvoiceStatus = "sent"
	// InvoiceStatusPaid indicates the invoice balance has been settled in full
	InvoiceStatusPaid InvoiceStatus = "paid"
	// InvoiceStatusOverdue indicates a sent invoice whose due date has passed with balance outstanding
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	// InvoiceStatusCancelled indicates the invoice has been cancelled; this state is terminal
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no further lifecycle transitions are possible
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusCancelled
}

// CustomerType categorizes the billed party
type CustomerType string

const (
	CustomerTypeCorporate  CustomerType = "corporate"
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeGovernment CustomerType = "government"
)

func (t CustomerType) String() string {
	return string(t)
}

func (t CustomerType) Validate() error {
	allowed := []CustomerType{
		CustomerTypeCorporate,
		CustomerTypeIndividual,
		CustomerTypeGovernment,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid customer type").
			WithHint("Please provide a valid customer type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceCreationMode controls how an invoice's identifiers and amounts are sourced
type InvoiceCreationMode string

const (
	// InvoiceCreationModeAuto derives the invoice from referenced delivery orders
	// and generates identifiers automatically
	InvoiceCreationModeAuto InvoiceCreationMode = "auto"
	// InvoiceCreationModeManual takes amounts and identifiers from operator input
	InvoiceCreationModeManual InvoiceCreationMode = "manual"
)

func (m InvoiceCreationMode) String() string {
	return string(m)
}

func (m InvoiceCreationMode) Validate() error {
	allowed := []InvoiceCreationMode{
		InvoiceCreationModeAuto,
		InvoiceCreationModeManual,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid invoice creation mode").
			WithHint("Please provide a valid invoice creation mode").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

const (
	// InvoiceDefaultDueDays is the number of days after the issue date an
	// invoice falls due when no payment terms are supplied
	InvoiceDefaultDueDays = 30
)

// InvoiceFilter defines the filter criteria for listing invoices
type InvoiceFilter struct {
	InvoiceIDs   []string        `json:"invoice_ids,omitempty"`
	Statuses     []InvoiceStatus `json:"statuses,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	DueBefore    *time.Time      `json:"due_before,omitempty"`
	DueAfter     *time.Time      `json:"due_after,omitempty"`
}

func (f *InvoiceFilter) Validate() error {
	for _, s := range f.Statuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
