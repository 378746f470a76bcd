package testutil

import (
	"context"
	"time"

	"github.com/skipbin/skipbin/internal/config"
	"github.com/skipbin/skipbin/internal/currency"
	"github.com/skipbin/skipbin/internal/docnumber"
	"github.com/skipbin/skipbin/internal/domain/invoice"
	"github.com/skipbin/skipbin/internal/domain/order"
	"github.com/skipbin/skipbin/internal/logger"
	"github.com/skipbin/skipbin/internal/reminder"
	"github.com/skipbin/skipbin/internal/tax"
	"github.com/skipbin/skipbin/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	InvoiceRepo invoice.Repository
	OrderRepo   order.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	logger     *logger.Logger
	config     *config.Configuration
	docNumbers *docnumber.Generator
	converter  *currency.Converter
	taxCalc    *tax.Calculator
	reminders  *reminder.Scheduler
	notifier   *InMemoryNotifier
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		InvoiceRepo: NewInMemoryInvoiceStore(),
		OrderRepo:   NewInMemoryOrderStore(),
	}
	s.docNumbers = docnumber.NewGenerator(s.config.Numbering)
	s.converter = currency.NewConverter(s.config.Currency, s.config.Billing.BaseCurrency)
	s.taxCalc = tax.NewCalculator(s.config.Tax)
	s.reminders = reminder.NewScheduler(s.config.Reminder)
	s.notifier = NewInMemoryNotifier()
}

// ClearStores resets all stores and captured notifications
func (s *BaseServiceTestSuite) ClearStores() {
	if store, ok := s.stores.InvoiceRepo.(*InMemoryInvoiceStore); ok {
		store.Clear()
	}
	if store, ok := s.stores.OrderRepo.(*InMemoryOrderStore); ok {
		store.Clear()
	}
	if s.notifier != nil {
		s.notifier.Clear()
	}
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetDocNumbers() *docnumber.Generator {
	return s.docNumbers
}

func (s *BaseServiceTestSuite) GetConverter() *currency.Converter {
	return s.converter
}

func (s *BaseServiceTestSuite) GetTaxCalculator() *tax.Calculator {
	return s.taxCalc
}

func (s *BaseServiceTestSuite) GetReminderScheduler() *reminder.Scheduler {
	return s.reminders
}

func (s *BaseServiceTestSuite) GetNotifier() *InMemoryNotifier {
	return s.notifier
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
