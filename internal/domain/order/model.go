package order

import (
	"github.com/shopspring/decimal"
	"github.com/skipbin/skipbin/internal/types"
)

// commissionRate is the introducer commission applied on the order amount
var commissionRate = decimal.NewFromFloat(0.10)

// DeliveryOrder represents a bin delivery/collection job supplied by the
// booking system. The billing engine treats these as read-only inputs when
// deriving invoice amounts.
type DeliveryOrder struct {
	ID                 string          `json:"id"`
	DONumber           string          `json:"do_number"`
	CustomerName       string          `json:"customer_name"`
	CustomerType       types.CustomerType `json:"customer_type"`
	BinSize            string          `json:"bin_size"`
	ServiceDescription string          `json:"service_description"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	IntroducerID       *string         `json:"introducer_id,omitempty"`
	Metadata           types.Metadata  `json:"metadata,omitempty"`
	types.BaseModel
}

// Commission returns the introducer commission for this order, zero when no
// introducer is attached. Derived for display only; it never feeds invoice
// balance math.
func (o *DeliveryOrder) Commission() decimal.Decimal {
	if o.IntroducerID == nil || *o.IntroducerID == "" {
		return decimal.Zero
	}
	return o.Amount.Mul(commissionRate).Round(2)
}
