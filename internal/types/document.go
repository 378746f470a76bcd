package types

import (
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/samber/lo"
)

// DocumentType scopes a numbering sequence. Counters and issued-number sets
// are tracked per type; a number used for one type never blocks another.
type DocumentType string

const (
	DocumentTypeInvoice       DocumentType = "invoice"
	DocumentTypeDeliveryOrder DocumentType = "delivery_order"
	DocumentTypeDOBook        DocumentType = "do_book"
	DocumentTypeBinSerial     DocumentType = "bin_serial"
)

func (t DocumentType) String() string {
	return string(t)
}

func (t DocumentType) Validate() error {
	allowed := []DocumentType{
		DocumentTypeInvoice,
		DocumentTypeDeliveryOrder,
		DocumentTypeDOBook,
		DocumentTypeBinSerial,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid document type").
			WithHint("Please provide a valid document type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
