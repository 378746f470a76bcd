package docnumber

import (
	"fmt"
	"strings"
	"sync"
	"time"

	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/config"
	"github.com/skipbin/skipbin/internal/types"
)

// Generator issues unique document numbers per document type. Automatic mode
// increments a per-type counter; manual mode reserves operator-supplied
// numbers. Both paths go through one mutex so a number can never be issued
// twice, even under concurrent invoice creation. Gaps are allowed.
type Generator struct {
	mu       sync.Mutex
	cfg      config.NumberingConfig
	nowFn    func() time.Time
	counters map[types.DocumentType]int64
	issued   map[types.DocumentType]map[string]struct{}
}

// NewGenerator creates a Generator with empty sequences
func NewGenerator(cfg config.NumberingConfig) *Generator {
	return &Generator{
		cfg:      cfg,
		nowFn:    time.Now,
		counters: make(map[types.DocumentType]int64),
		issued:   make(map[types.DocumentType]map[string]struct{}),
	}
}

// WithClock overrides the clock used for year-scoped numbers. Used in tests.
func (g *Generator) WithClock(nowFn func() time.Time) *Generator {
	g.nowFn = nowFn
	return g
}

// NextInvoiceNumber returns the next automatic invoice number, e.g. INV-2026-001
func (g *Generator) NextInvoiceNumber() string {
	return g.next(types.DocumentTypeInvoice, g.cfg.InvoicePrefix, true, g.cfg.InvoiceSeqWidth)
}

// NextDONumber returns the next automatic delivery order number, e.g. DO-2026-0001
func (g *Generator) NextDONumber() string {
	return g.next(types.DocumentTypeDeliveryOrder, g.cfg.DOPrefix, true, g.cfg.DOSeqWidth)
}

// NextDOBookNumber returns the next automatic DO book number, e.g. DOB-2026-01
func (g *Generator) NextDOBookNumber() string {
	return g.next(types.DocumentTypeDOBook, g.cfg.DOBookPrefix, true, g.cfg.DOBookSeqWidth)
}

// NextBinSerial returns the next automatic bin serial, e.g. BIN-SN-001
func (g *Generator) NextBinSerial() string {
	return g.next(types.DocumentTypeBinSerial, g.cfg.BinSerialPrefix, false, g.cfg.BinSerialSeqWidth)
}

// Reserve records an operator-supplied number for the given document type.
// It fails when the number is blank or already issued for that type.
func (g *Generator) Reserve(docType types.DocumentType, number string) error {
	if err := docType.Validate(); err != nil {
		return err
	}

	number = strings.TrimSpace(number)
	if number == "" {
		return ierr.NewError("document number is required in manual mode").
			WithHint("Provide a document number or switch to automatic numbering").
			WithReportableDetails(map[string]any{
				"document_type": docType,
			}).
			Mark(ierr.ErrValidation)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isIssued(docType, number) {
		return ierr.NewError("document number already issued").
			WithHintf("Number %s is already in use", number).
			WithReportableDetails(map[string]any{
				"document_type": docType,
				"number":        number,
			}).
			Mark(ierr.ErrDuplicateDocumentNumber)
	}

	g.record(docType, number)
	return nil
}

// IsIssued reports whether a number has been handed out for the given type
func (g *Generator) IsIssued(docType types.DocumentType, number string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isIssued(docType, number)
}

func (g *Generator) next(docType types.DocumentType, prefix string, withYear bool, width int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		g.counters[docType]++
		seq := g.counters[docType]

		var number string
		if withYear {
			number = fmt.Sprintf("%s-%d-%0*d", prefix, g.nowFn().Year(), width, seq)
		} else {
			number = fmt.Sprintf("%s-%0*d", prefix, width, seq)
		}

		// skip over any manually reserved number occupying this slot
		if g.isIssued(docType, number) {
			continue
		}

		g.record(docType, number)
		return number
	}
}

func (g *Generator) isIssued(docType types.DocumentType, number string) bool {
	set, ok := g.issued[docType]
	if !ok {
		return false
	}
	_, exists := set[number]
	return exists
}

func (g *Generator) record(docType types.DocumentType, number string) {
	set, ok := g.issued[docType]
	if !ok {
		set = make(map[string]struct{})
		g.issued[docType] = set
	}
	set[number] = struct{}{}
}
