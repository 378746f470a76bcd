package invoice

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/types"
)

// Invoice represents the invoice domain model. All monetary fields are stated
// in Currency; when the invoice was converted from the business base currency
// at creation time, ExchangeRate and OriginalCurrency record the snapshot.
type Invoice struct {
	ID            string              `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerType  types.CustomerType  `json:"customer_type"`
	OrderIDs      []string            `json:"order_ids,omitempty"`

	Currency         string           `json:"currency"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	TaxAmount        decimal.Decimal  `json:"tax_amount"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	PaidAmount       decimal.Decimal  `json:"paid_amount"`
	BalanceAmount    decimal.Decimal  `json:"balance_amount"`
	ExchangeRate     *decimal.Decimal `json:"exchange_rate,omitempty"`
	OriginalCurrency *string          `json:"original_currency,omitempty"`

	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`
	IssueDate     time.Time           `json:"issue_date"`
	DueDate       time.Time           `json:"due_date"`
	PaymentTerms  string              `json:"payment_terms,omitempty"`

	EmailSent        bool       `json:"email_sent"`
	ReadReceipt      bool       `json:"read_receipt"`
	RemindersSent    int        `json:"reminders_sent"`
	LastReminderDate *time.Time `json:"last_reminder_date,omitempty"`

	CreditNotes      []*Note                       `json:"credit_notes,omitempty"`
	DebitNotes       []*Note                       `json:"debit_notes,omitempty"`
	Payments         []*Payment                    `json:"payments,omitempty"`
	ReminderSchedule []types.ReminderScheduleEntry `json:"reminder_schedule,omitempty"`

	Metadata types.Metadata `json:"metadata,omitempty"`
	Version  int            `json:"version"`
	types.BaseModel
}

// CreditNoteTotal returns the sum of all credit note amounts
func (i *Invoice) CreditNoteTotal() decimal.Decimal {
	return lo.Reduce(i.CreditNotes, func(acc decimal.Decimal, n *Note, _ int) decimal.Decimal {
		return acc.Add(n.Amount)
	}, decimal.Zero)
}

// DebitNoteTotal returns the sum of all debit note amounts
func (i *Invoice) DebitNoteTotal() decimal.Decimal {
	return lo.Reduce(i.DebitNotes, func(acc decimal.Decimal, n *Note, _ int) decimal.Decimal {
		return acc.Add(n.Amount)
	}, decimal.Zero)
}

// PaymentTotal returns the sum of all recorded payments
func (i *Invoice) PaymentTotal() decimal.Decimal {
	return lo.Reduce(i.Payments, func(acc decimal.Decimal, p *Payment, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)
}

// IsOverdue reports whether a sent invoice has passed its due date with
// balance outstanding. Draft, paid and cancelled invoices are never overdue.
func (i *Invoice) IsOverdue(now time.Time) bool {
	switch i.InvoiceStatus {
	case types.InvoiceStatusSent, types.InvoiceStatusOverdue:
		return now.After(i.DueDate) && i.BalanceAmount.GreaterThan(decimal.Zero)
	default:
		return false
	}
}

// RecomputeDerived restores the derived monetary fields and payment status
// from their source fields. Callers mutate subtotal, notes or payments and
// then call this before validating.
func (i *Invoice) RecomputeDerived() {
	i.TotalAmount = i.Subtotal.
		Add(i.TaxAmount).
		Add(i.DebitNoteTotal()).
		Sub(i.CreditNoteTotal())
	i.BalanceAmount = i.TotalAmount.Sub(i.PaidAmount)

	if i.InvoiceStatus == types.InvoiceStatusCancelled {
		return
	}
	if i.BalanceAmount.LessThanOrEqual(decimal.Zero) {
		i.InvoiceStatus = types.InvoiceStatusPaid
	} else if i.InvoiceStatus == types.InvoiceStatusPaid {
		// a debit note on a settled invoice reopens it
		i.InvoiceStatus = types.InvoiceStatusSent
	}
}

// Validate checks the balance invariants. It is called after every mutating
// operation; a failure aborts the commit leaving the stored entity unchanged.
func (i *Invoice) Validate() error {
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}

	if i.Subtotal.IsNegative() {
		return ierr.NewError("subtotal must be non negative").
			Mark(ierr.ErrInvalidAmount)
	}

	if i.PaidAmount.IsNegative() {
		return ierr.NewError("paid_amount must be non negative").
			Mark(ierr.ErrInvalidAmount)
	}

	expectedTotal := i.Subtotal.
		Add(i.TaxAmount).
		Add(i.DebitNoteTotal()).
		Sub(i.CreditNoteTotal())
	if !i.TotalAmount.Equal(expectedTotal) {
		return ierr.NewError("total_amount must equal subtotal + tax + debit notes - credit notes").
			WithReportableDetails(map[string]any{
				"total_amount": i.TotalAmount,
				"expected":     expectedTotal,
			}).
			Mark(ierr.ErrValidation)
	}

	if !i.BalanceAmount.Equal(i.TotalAmount.Sub(i.PaidAmount)) {
		return ierr.NewError("balance_amount must equal total_amount - paid_amount").
			WithReportableDetails(map[string]any{
				"balance_amount": i.BalanceAmount,
				"total_amount":   i.TotalAmount,
				"paid_amount":    i.PaidAmount,
			}).
			Mark(ierr.ErrValidation)
	}

	if !i.PaymentTotal().Equal(i.PaidAmount) {
		return ierr.NewError("paid_amount must equal the sum of recorded payments").
			Mark(ierr.ErrValidation)
	}

	if i.InvoiceStatus != types.InvoiceStatusCancelled {
		settled := i.BalanceAmount.LessThanOrEqual(decimal.Zero)
		if settled && i.InvoiceStatus != types.InvoiceStatusPaid {
			return ierr.NewError("settled invoice must have paid status").
				Mark(ierr.ErrValidation)
		}
		if !settled && i.InvoiceStatus == types.InvoiceStatusPaid {
			return ierr.NewError("paid invoice must have no outstanding balance").
				Mark(ierr.ErrValidation)
		}
	}

	if i.DueDate.Before(i.IssueDate) {
		return ierr.NewError("due_date must not be before issue_date").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Clone returns a deep copy of the invoice. Repositories store and return
// clones so callers can never mutate committed state in place.
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}

	out := *i

	out.OrderIDs = append([]string(nil), i.OrderIDs...)
	out.ReminderSchedule = append([]types.ReminderScheduleEntry(nil), i.ReminderSchedule...)
	out.Metadata = i.Metadata.Copy()

	if i.ExchangeRate != nil {
		rate := *i.ExchangeRate
		out.ExchangeRate = &rate
	}
	if i.OriginalCurrency != nil {
		cur := *i.OriginalCurrency
		out.OriginalCurrency = &cur
	}
	if i.LastReminderDate != nil {
		t := *i.LastReminderDate
		out.LastReminderDate = &t
	}

	if i.CreditNotes != nil {
		out.CreditNotes = make([]*Note, len(i.CreditNotes))
		for idx, n := range i.CreditNotes {
			cp := *n
			out.CreditNotes[idx] = &cp
		}
	}
	if i.DebitNotes != nil {
		out.DebitNotes = make([]*Note, len(i.DebitNotes))
		for idx, n := range i.DebitNotes {
			cp := *n
			out.DebitNotes[idx] = &cp
		}
	}
	if i.Payments != nil {
		out.Payments = make([]*Payment, len(i.Payments))
		for idx, p := range i.Payments {
			cp := *p
			out.Payments[idx] = &cp
		}
	}

	return &out
}
