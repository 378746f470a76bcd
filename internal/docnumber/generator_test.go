package docnumber

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/skipbin/skipbin/internal/config"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/types"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *Generator {
	g := NewGenerator(config.GetDefaultConfig().Numbering)
	return g.WithClock(func() time.Time {
		return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	})
}

func TestAutomaticFormats(t *testing.T) {
	g := newTestGenerator()

	assert.Equal(t, "INV-2026-001", g.NextInvoiceNumber())
	assert.Equal(t, "INV-2026-002", g.NextInvoiceNumber())
	assert.Equal(t, "DO-2026-0001", g.NextDONumber())
	assert.Equal(t, "DOB-2026-01", g.NextDOBookNumber())
	assert.Equal(t, "BIN-SN-001", g.NextBinSerial())
	assert.Equal(t, "BIN-SN-002", g.NextBinSerial())
}

func TestSequencesAreScopedPerType(t *testing.T) {
	g := newTestGenerator()

	g.NextInvoiceNumber()
	g.NextInvoiceNumber()

	// the DO sequence is independent of the invoice sequence
	assert.Equal(t, "DO-2026-0001", g.NextDONumber())
}

func TestReserveManualNumber(t *testing.T) {
	g := newTestGenerator()

	require.NoError(t, g.Reserve(types.DocumentTypeInvoice, "DO-0001"))
	assert.True(t, g.IsIssued(types.DocumentTypeInvoice, "DO-0001"))

	err := g.Reserve(types.DocumentTypeInvoice, "DO-0001")
	require.Error(t, err)
	assert.True(t, ierr.IsDuplicateDocumentNumber(err))

	// the same value is free under a different document type
	require.NoError(t, g.Reserve(types.DocumentTypeDeliveryOrder, "DO-0001"))
}

func TestReserveBlankNumber(t *testing.T) {
	g := newTestGenerator()

	err := g.Reserve(types.DocumentTypeInvoice, "   ")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestAutoSkipsManuallyReservedSlot(t *testing.T) {
	g := newTestGenerator()

	require.NoError(t, g.Reserve(types.DocumentTypeInvoice, "INV-2026-001"))

	// gap is fine, a duplicate is not
	assert.Equal(t, "INV-2026-002", g.NextInvoiceNumber())
}

func TestConcurrentGenerationYieldsDistinctNumbers(t *testing.T) {
	g := newTestGenerator()

	const n = 1000
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)

	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		wg.Go(func() {
			number := g.NextInvoiceNumber()
			mu.Lock()
			seen[number] = struct{}{}
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	g := newTestGenerator()

	const n = 50
	var mu sync.Mutex
	var successes int

	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		wg.Go(func() {
			if err := g.Reserve(types.DocumentTypeInvoice, "INV-MANUAL-7"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestMixedManualAndAutoStayUnique(t *testing.T) {
	g := newTestGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			number := fmt.Sprintf("INV-MAN-%02d", i)
			require.NoError(t, g.Reserve(types.DocumentTypeInvoice, number))
			seen[number] = struct{}{}
			continue
		}
		number := g.NextInvoiceNumber()
		_, dup := seen[number]
		require.False(t, dup, "duplicate number %s", number)
		seen[number] = struct{}{}
	}
}
