package service

import (
	"github.com/skipbin/skipbin/internal/config"
	"github.com/skipbin/skipbin/internal/currency"
	"github.com/skipbin/skipbin/internal/docnumber"
	"github.com/skipbin/skipbin/internal/domain/invoice"
	"github.com/skipbin/skipbin/internal/domain/order"
	"github.com/skipbin/skipbin/internal/logger"
	"github.com/skipbin/skipbin/internal/notifier"
	"github.com/skipbin/skipbin/internal/reminder"
	"github.com/skipbin/skipbin/internal/tax"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	InvoiceRepo invoice.Repository
	OrderRepo   order.Repository

	// Billing components
	DocNumbers *docnumber.Generator
	Converter  *currency.Converter
	TaxCalc    *tax.Calculator
	Reminders  *reminder.Scheduler

	// External collaborators
	Notifier notifier.Notifier
}
