package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/skipbin/skipbin/internal/types"
)

// Note is a single credit or debit adjustment applied to an invoice
type Note struct {
	ID          string           `json:"id"`
	Type        types.NoteType   `json:"type"`
	Reason      types.NoteReason `json:"reason"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	CreatedBy   string           `json:"created_by,omitempty"`
}

// Payment is a single payment recorded against an invoice
type Payment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
}
