package tax

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/skipbin/skipbin/internal/config"
	ierr "github.com/skipbin/skipbin/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Calculator computes tax amounts from a region rate table. The service
// category parameter is accepted for future rate differentiation; in the
// baseline policy all categories within a region share one rate.
type Calculator struct {
	mu      sync.RWMutex
	regions map[string]decimal.Decimal
}

// NewCalculator builds a calculator from the configured region table
func NewCalculator(cfg config.TaxConfig) *Calculator {
	c := &Calculator{
		regions: make(map[string]decimal.Decimal, len(cfg.Regions)),
	}
	for region, pct := range cfg.Regions {
		c.regions[normalizeRegion(region)] = decimal.NewFromFloat(pct)
	}
	return c
}

// CalculateTax returns the tax amount for a subtotal in the given region,
// rounded to two decimal places.
func (c *Calculator) CalculateTax(subtotal decimal.Decimal, serviceCategory, region string) (decimal.Decimal, error) {
	rate, err := c.Rate(region)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Mul(rate).Div(hundred).Round(2), nil
}

// Rate returns the percentage rate for a region
func (c *Calculator) Rate(region string) (decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rate, ok := c.regions[normalizeRegion(region)]
	if !ok {
		return decimal.Zero, ierr.NewError("tax region not in rate table").
			WithHintf("Region %s is not configured", region).
			WithReportableDetails(map[string]any{
				"region": region,
			}).
			Mark(ierr.ErrUnknownRegion)
	}
	return rate, nil
}

// UpdateRegions replaces the region table wholesale
func (c *Calculator) UpdateRegions(newRegions map[string]float64) {
	normalized := make(map[string]decimal.Decimal, len(newRegions))
	for region, pct := range newRegions {
		normalized[normalizeRegion(region)] = decimal.NewFromFloat(pct)
	}

	c.mu.Lock()
	c.regions = normalized
	c.mu.Unlock()
}

func normalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}
