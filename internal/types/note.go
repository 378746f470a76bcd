package types

import (
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/samber/lo"
)

// NoteType distinguishes balance adjustments on an invoice
type NoteType string

const (
	// NoteTypeCredit reduces the invoice total and outstanding balance
	NoteTypeCredit NoteType = "credit"
	// NoteTypeDebit increases the invoice total and outstanding balance
	NoteTypeDebit NoteType = "debit"
)

func (t NoteType) String() string {
	return string(t)
}

func (t NoteType) Validate() error {
	allowed := []NoteType{
		NoteTypeCredit,
		NoteTypeDebit,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid note type").
			WithHint("Please provide a valid note type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NoteReason captures why an adjustment note was raised
type NoteReason string

const (
	NoteReasonBillingError    NoteReason = "billing_error"
	NoteReasonOrderChange     NoteReason = "order_change"
	NoteReasonDamagedBin      NoteReason = "damaged_bin"
	NoteReasonExtendedRental  NoteReason = "extended_rental"
	NoteReasonServiceIssue    NoteReason = "service_issue"
	NoteReasonGoodwill        NoteReason = "goodwill"
	NoteReasonAdditionalWaste NoteReason = "additional_waste"
)

func (r NoteReason) String() string {
	return string(r)
}

func (r NoteReason) Validate() error {
	allowed := []NoteReason{
		NoteReasonBillingError,
		NoteReasonOrderChange,
		NoteReasonDamagedBin,
		NoteReasonExtendedRental,
		NoteReasonServiceIssue,
		NoteReasonGoodwill,
		NoteReasonAdditionalWaste,
	}
	if !lo.Contains(allowed, r) {
		return ierr.NewError("invalid note reason").
			WithHint("Please provide a valid note reason").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
