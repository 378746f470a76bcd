package currency

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/skipbin/skipbin/internal/config"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/types"
)

// Amounts is the monetary breakdown converted as one unit
type Amounts struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Conversion is the result of converting Amounts between currencies.
// Amounts carry full precision; callers round via Rounded when stamping
// them onto documents. ExchangeRate and OriginalCurrency are set only when
// the currencies differ.
type Conversion struct {
	Amounts
	ExchangeRate     *decimal.Decimal `json:"exchange_rate,omitempty"`
	OriginalCurrency *string          `json:"original_currency,omitempty"`
}

// Rounded returns the converted amounts rounded to two decimal places. The
// total is recomputed from the rounded components so the breakdown always
// sums.
func (c Conversion) Rounded() Amounts {
	subtotal := c.Subtotal.Round(2)
	taxAmount := c.TaxAmount.Round(2)
	return Amounts{
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		TotalAmount: subtotal.Add(taxAmount),
	}
}

// Converter holds a snapshot of exchange rates quoted against the base
// currency. Conversions applied to invoices are snapshots at creation time;
// replacing the rate table never alters stored amounts.
type Converter struct {
	mu    sync.RWMutex
	base  string
	rates map[string]decimal.Decimal
}

// NewConverter builds a converter from the configured rate table
func NewConverter(cfg config.CurrencyConfig, baseCurrency string) *Converter {
	c := &Converter{
		base:  types.NormalizeCurrencyCode(baseCurrency),
		rates: make(map[string]decimal.Decimal, len(cfg.Rates)),
	}
	for code, rate := range cfg.Rates {
		c.rates[types.NormalizeCurrencyCode(code)] = decimal.NewFromFloat(rate)
	}
	return c
}

// BaseCurrency returns the currency all rates are quoted against
func (c *Converter) BaseCurrency() string {
	return c.base
}

// Rate returns the multiplier from the base currency to the given currency
func (c *Converter) Rate(code string) (decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate(code)
}

// Convert converts the amounts from one currency to another at full
// precision, so converting back recovers the input. Converting between the
// same currency returns the amounts untouched with no conversion provenance.
func (c *Converter) Convert(amounts Amounts, fromCurrency, toCurrency string) (Conversion, error) {
	from := types.NormalizeCurrencyCode(fromCurrency)
	to := types.NormalizeCurrencyCode(toCurrency)

	if from == to {
		// still fail on unknown codes so configuration gaps surface early
		c.mu.RLock()
		_, err := c.rate(from)
		c.mu.RUnlock()
		if err != nil {
			return Conversion{}, err
		}
		return Conversion{Amounts: amounts}, nil
	}

	c.mu.RLock()
	fromRate, err := c.rate(from)
	if err != nil {
		c.mu.RUnlock()
		return Conversion{}, err
	}
	toRate, err := c.rate(to)
	c.mu.RUnlock()
	if err != nil {
		return Conversion{}, err
	}

	multiplier := toRate.Div(fromRate)

	converted := Amounts{
		Subtotal:    amounts.Subtotal.Mul(multiplier),
		TaxAmount:   amounts.TaxAmount.Mul(multiplier),
		TotalAmount: amounts.TotalAmount.Mul(multiplier),
	}

	original := from
	return Conversion{
		Amounts:          converted,
		ExchangeRate:     &multiplier,
		OriginalCurrency: &original,
	}, nil
}

// UpdateRates replaces the rate table wholesale. The base currency must be
// present and map to 1.
func (c *Converter) UpdateRates(newRates map[string]float64) error {
	normalized := make(map[string]decimal.Decimal, len(newRates))
	for code, rate := range newRates {
		normalized[types.NormalizeCurrencyCode(code)] = decimal.NewFromFloat(rate)
	}

	baseRate, ok := normalized[c.base]
	if !ok || !baseRate.Equal(decimal.NewFromInt(1)) {
		return ierr.NewError("base currency must map to rate 1").
			WithReportableDetails(map[string]any{
				"base_currency": c.base,
			}).
			Mark(ierr.ErrValidation)
	}

	c.mu.Lock()
	c.rates = normalized
	c.mu.Unlock()
	return nil
}

// rate must be called with the lock held
func (c *Converter) rate(code string) (decimal.Decimal, error) {
	rate, ok := c.rates[code]
	if !ok {
		return decimal.Zero, ierr.NewError("currency code not in rate table").
			WithHintf("Currency %s is not configured", code).
			WithReportableDetails(map[string]any{
				"currency": code,
			}).
			Mark(ierr.ErrUnknownCurrency)
	}
	return rate, nil
}
