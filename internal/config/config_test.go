package config

import (
	"testing"

	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "myr", cfg.Billing.BaseCurrency)
	assert.Equal(t, types.InvoiceDefaultDueDays, cfg.Billing.DefaultDueDays)
	assert.Equal(t, 1.0, cfg.Currency.Rates["myr"])
	assert.Equal(t, 6.0, cfg.Tax.Regions["MY"])
	assert.Len(t, cfg.Reminder.Offsets, 4)
}

func TestValidateRequiresBaseRateOfOne(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Currency.Rates["myr"] = 0.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	cfg = GetDefaultConfig()
	delete(cfg.Currency.Rates, "myr")

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestValidateRejectsMissingSections(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Tax.Regions = nil

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
