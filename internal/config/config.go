package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Logging   LoggingConfig   `validate:"required"`
	Billing   BillingConfig   `validate:"required"`
	Currency  CurrencyConfig  `validate:"required"`
	Tax       TaxConfig       `validate:"required"`
	Numbering NumberingConfig `validate:"required"`
	Reminder  ReminderConfig  `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type BillingConfig struct {
	// BaseCurrency is the currency all exchange rates are quoted against
	BaseCurrency string `validate:"required"`
	// DefaultDueDays applies when an invoice is created without payment terms
	DefaultDueDays int `mapstructure:"default_due_days" validate:"gte=0"`
	// DefaultPaymentTerms is the textual terms stamped on invoices by default
	DefaultPaymentTerms string `mapstructure:"default_payment_terms"`
}

type CurrencyConfig struct {
	// Rates maps a currency code to its multiplier from the base currency.
	// The base currency must map to 1.
	Rates map[string]float64 `validate:"required"`
}

type TaxConfig struct {
	// Regions maps a tax region code to its percentage rate, e.g. MY -> 6
	Regions map[string]float64 `validate:"required"`
}

type NumberingConfig struct {
	InvoicePrefix     string `mapstructure:"invoice_prefix"`
	InvoiceSeqWidth   int    `mapstructure:"invoice_seq_width"`
	DOPrefix          string `mapstructure:"do_prefix"`
	DOSeqWidth        int    `mapstructure:"do_seq_width"`
	DOBookPrefix      string `mapstructure:"do_book_prefix"`
	DOBookSeqWidth    int    `mapstructure:"do_book_seq_width"`
	BinSerialPrefix   string `mapstructure:"bin_serial_prefix"`
	BinSerialSeqWidth int    `mapstructure:"bin_serial_seq_width"`
}

type ReminderConfig struct {
	// Offsets define the reminder cadence in days relative to the due date.
	// Negative values fall before the due date.
	Offsets []ReminderOffset `validate:"dive"`
}

type ReminderOffset struct {
	Days int                `json:"days"`
	Type types.ReminderType `json:"type" validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/skipbin")

	v.SetEnvPrefix("SKIPBIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !ierr.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse configuration").
			Mark(ierr.ErrSystem)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("billing.basecurrency", "myr")
	v.SetDefault("billing.default_due_days", types.InvoiceDefaultDueDays)
	v.SetDefault("billing.default_payment_terms", "Net 30")
	v.SetDefault("currency.rates", map[string]float64{
		"myr": 1.0,
		"sgd": 0.31,
		"usd": 0.22,
		"gbp": 0.17,
	})
	v.SetDefault("tax.regions", map[string]float64{
		"MY": 6,
		"SG": 7,
		"UK": 20,
	})
	v.SetDefault("numbering.invoice_prefix", "INV")
	v.SetDefault("numbering.invoice_seq_width", 3)
	v.SetDefault("numbering.do_prefix", "DO")
	v.SetDefault("numbering.do_seq_width", 4)
	v.SetDefault("numbering.do_book_prefix", "DOB")
	v.SetDefault("numbering.do_book_seq_width", 2)
	v.SetDefault("numbering.bin_serial_prefix", "BIN-SN")
	v.SetDefault("numbering.bin_serial_seq_width", 3)
	v.SetDefault("reminder.offsets", []map[string]any{
		{"days": -7, "type": string(types.ReminderTypeGentle)},
		{"days": 0, "type": string(types.ReminderTypeDueToday)},
		{"days": 7, "type": string(types.ReminderTypeFirm)},
		{"days": 21, "type": string(types.ReminderTypeFinal)},
	})
}

func (c Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return ierr.WithError(err).
			WithHint("Configuration validation failed").
			Mark(ierr.ErrValidation)
	}

	base := types.NormalizeCurrencyCode(c.Billing.BaseCurrency)
	if rate, ok := c.Currency.Rates[base]; !ok || rate != 1 {
		return ierr.NewError("base currency must be present in the rate table with rate 1").
			WithHint("Check billing.basecurrency and currency.rates").
			WithReportableDetails(map[string]any{
				"base_currency": base,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// GetDefaultConfig returns a configuration suitable for tests and local
// development without a config file.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: types.LogLevelInfo},
		Billing: BillingConfig{
			BaseCurrency:        "myr",
			DefaultDueDays:      types.InvoiceDefaultDueDays,
			DefaultPaymentTerms: "Net 30",
		},
		Currency: CurrencyConfig{
			Rates: map[string]float64{
				"myr": 1.0,
				"sgd": 0.31,
				"usd": 0.22,
				"gbp": 0.17,
			},
		},
		Tax: TaxConfig{
			Regions: map[string]float64{
				"MY": 6,
				"SG": 7,
				"UK": 20,
			},
		},
		Numbering: NumberingConfig{
			InvoicePrefix:     "INV",
			InvoiceSeqWidth:   3,
			DOPrefix:          "DO",
			DOSeqWidth:        4,
			DOBookPrefix:      "DOB",
			DOBookSeqWidth:    2,
			BinSerialPrefix:   "BIN-SN",
			BinSerialSeqWidth: 3,
		},
		Reminder: ReminderConfig{
			Offsets: []ReminderOffset{
				{Days: -7, Type: types.ReminderTypeGentle},
				{Days: 0, Type: types.ReminderTypeDueToday},
				{Days: 7, Type: types.ReminderTypeFirm},
				{Days: 21, Type: types.ReminderTypeFinal},
			},
		},
	}
}
