package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/skipbin/skipbin/internal/api/dto"
	"github.com/skipbin/skipbin/internal/domain/order"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/testutil"
	"github.com/skipbin/skipbin/internal/types"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     InvoiceService
	invoiceRepo *testutil.InMemoryInvoiceStore
	orderRepo   *testutil.InMemoryOrderStore
	testData    struct {
		orders struct {
			delivery   *order.DeliveryOrder
			collection *order.DeliveryOrder
			other      *order.DeliveryOrder
		}
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *InvoiceServiceSuite) setupService() {
	s.invoiceRepo = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	s.orderRepo = s.GetStores().OrderRepo.(*testutil.InMemoryOrderStore)

	s.service = NewInvoiceService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		InvoiceRepo: s.invoiceRepo,
		OrderRepo:   s.orderRepo,
		DocNumbers:  s.GetDocNumbers(),
		Converter:   s.GetConverter(),
		TaxCalc:     s.GetTaxCalculator(),
		Reminders:   s.GetReminderScheduler(),
		Notifier:    s.GetNotifier(),
	})
}

func (s *InvoiceServiceSuite) setupTestData() {
	s.testData.orders.delivery = &order.DeliveryOrder{
		ID:                 "do_1",
		DONumber:           "DO-2026-0001",
		CustomerName:       "Acme Construction",
		CustomerType:       types.CustomerTypeCorporate,
		BinSize:            "10yd",
		ServiceDescription: "Bin delivery",
		Amount:             decimal.RequireFromString("200.00"),
		Currency:           "myr",
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.orderRepo.Create(s.GetContext(), s.testData.orders.delivery))

	s.testData.orders.collection = &order.DeliveryOrder{
		ID:                 "do_2",
		DONumber:           "DO-2026-0002",
		CustomerName:       "Acme Construction",
		CustomerType:       types.CustomerTypeCorporate,
		BinSize:            "10yd",
		ServiceDescription: "Bin collection",
		Amount:             decimal.RequireFromString("120.00"),
		Currency:           "myr",
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.orderRepo.Create(s.GetContext(), s.testData.orders.collection))

	s.testData.orders.other = &order.DeliveryOrder{
		ID:           "do_3",
		DONumber:     "DO-2026-0003",
		CustomerName: "Tan Residence",
		CustomerType: types.CustomerTypeIndividual,
		BinSize:      "4yd",
		Amount:       decimal.RequireFromString("80.00"),
		Currency:     "myr",
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.orderRepo.Create(s.GetContext(), s.testData.orders.other))
}

// createFromOrders creates a draft invoice billing do_1 and do_2 (subtotal 320.00 MYR)
func (s *InvoiceServiceSuite) createFromOrders() *dto.InvoiceResponse {
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:      types.InvoiceCreationModeAuto,
		OrderIDs:  []string{"do_1", "do_2"},
		Currency:  "myr",
		TaxRegion: "MY",
	})
	s.NoError(err)
	s.NotNil(resp)
	return resp
}

// createSent creates an invoice and sends it
func (s *InvoiceServiceSuite) createSent() *dto.InvoiceResponse {
	resp := s.createFromOrders()
	s.NoError(s.service.SendInvoice(s.GetContext(), resp.ID))
	sent, err := s.service.GetInvoice(s.GetContext(), resp.ID)
	s.NoError(err)
	return sent
}

func (s *InvoiceServiceSuite) dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceFromOrders() {
	resp := s.createFromOrders()

	s.Equal("INV-"+time.Now().UTC().Format("2006")+"-001", resp.InvoiceNumber)
	s.Equal("Acme Construction", resp.CustomerName)
	s.Equal([]string{"do_1", "do_2"}, resp.OrderIDs)
	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.True(resp.Subtotal.Equal(s.dec("320.00")))
	s.True(resp.TaxAmount.Equal(s.dec("19.20")))
	s.True(resp.TotalAmount.Equal(s.dec("339.20")))
	s.True(resp.PaidAmount.IsZero())
	s.True(resp.BalanceAmount.Equal(s.dec("339.20")))
	s.Nil(resp.ExchangeRate)
	s.Nil(resp.OriginalCurrency)
	s.False(resp.EmailSent)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceCurrencyConversion() {
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:      types.InvoiceCreationModeAuto,
		OrderIDs:  []string{"do_1", "do_2"},
		Currency:  "sgd",
		TaxRegion: "MY",
	})
	s.NoError(err)

	s.Equal("sgd", resp.Currency)
	s.Require().NotNil(resp.ExchangeRate)
	s.Require().NotNil(resp.OriginalCurrency)
	s.Equal("myr", *resp.OriginalCurrency)
	s.True(resp.Subtotal.Equal(s.dec("99.20")), "got %s", resp.Subtotal)
	s.True(resp.TaxAmount.Equal(s.dec("5.95")), "got %s", resp.TaxAmount)
	s.True(resp.BalanceAmount.Equal(resp.TotalAmount))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceValidation() {
	// auto mode without order ids
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:      types.InvoiceCreationModeAuto,
		Currency:  "myr",
		TaxRegion: "MY",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// manual mode without subtotal, customer and number
	_, err = s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:      types.InvoiceCreationModeManual,
		Currency:  "myr",
		TaxRegion: "MY",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// nothing was persisted
	count, err := s.invoiceRepo.Count(s.GetContext(), nil)
	s.NoError(err)
	s.Zero(count)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceNonPositiveSubtotal() {
	subtotal := s.dec("0.00")
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:          types.InvoiceCreationModeManual,
		CustomerName:  "Acme Construction",
		InvoiceNumber: lo.ToPtr("INV-MAN-1"),
		Subtotal:      &subtotal,
		Currency:      "myr",
		TaxRegion:     "MY",
	})
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceUnknownRegion() {
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:      types.InvoiceCreationModeAuto,
		OrderIDs:  []string{"do_1"},
		Currency:  "myr",
		TaxRegion: "FR",
	})
	s.Error(err)
	s.True(ierr.IsConfiguration(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceMissingOrders() {
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:      types.InvoiceCreationModeAuto,
		OrderIDs:  []string{"do_1", "do_missing"},
		Currency:  "myr",
		TaxRegion: "MY",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceMixedCustomersRejected() {
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:      types.InvoiceCreationModeAuto,
		OrderIDs:  []string{"do_1", "do_3"},
		Currency:  "myr",
		TaxRegion: "MY",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceManualDuplicateNumber() {
	subtotal := s.dec("150.00")

	first, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:          types.InvoiceCreationModeManual,
		CustomerName:  "Acme Construction",
		InvoiceNumber: lo.ToPtr("DO-0001"),
		Subtotal:      &subtotal,
		Currency:      "myr",
		TaxRegion:     "MY",
	})
	s.NoError(err)
	s.Equal("DO-0001", first.InvoiceNumber)

	_, err = s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:          types.InvoiceCreationModeManual,
		CustomerName:  "Tan Residence",
		InvoiceNumber: lo.ToPtr("DO-0001"),
		Subtotal:      &subtotal,
		Currency:      "myr",
		TaxRegion:     "MY",
	})
	s.Error(err)
	s.True(ierr.IsDuplicateDocumentNumber(err))
}

func (s *InvoiceServiceSuite) TestManualNumberSurvivesRejectedRequest() {
	subtotal := s.dec("150.00")
	pastDue := time.Now().UTC().AddDate(0, 0, -3)

	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:          types.InvoiceCreationModeManual,
		CustomerName:  "Acme Construction",
		InvoiceNumber: lo.ToPtr("INV-MAN-7"),
		Subtotal:      &subtotal,
		Currency:      "myr",
		TaxRegion:     "MY",
		DueDate:       &pastDue,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// the rejected request left no state behind
	count, err := s.invoiceRepo.Count(s.GetContext(), nil)
	s.NoError(err)
	s.Zero(count)
	s.False(s.GetDocNumbers().IsIssued(types.DocumentTypeInvoice, "INV-MAN-7"))

	// resubmitting corrected input with the same number succeeds
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:          types.InvoiceCreationModeManual,
		CustomerName:  "Acme Construction",
		InvoiceNumber: lo.ToPtr("INV-MAN-7"),
		Subtotal:      &subtotal,
		Currency:      "myr",
		TaxRegion:     "MY",
	})
	s.NoError(err)
	s.Equal("INV-MAN-7", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceAutoReminders() {
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		Mode:          types.InvoiceCreationModeAuto,
		OrderIDs:      []string{"do_1"},
		Currency:      "myr",
		TaxRegion:     "MY",
		AutoReminders: true,
	})
	s.NoError(err)

	s.Require().NotEmpty(resp.ReminderSchedule)
	for i := 1; i < len(resp.ReminderSchedule); i++ {
		s.True(resp.ReminderSchedule[i].Date.After(resp.ReminderSchedule[i-1].Date))
	}
	for _, entry := range resp.ReminderSchedule {
		s.False(entry.Date.Before(resp.IssueDate))
	}
}

func (s *InvoiceServiceSuite) TestSendInvoiceIdempotent() {
	resp := s.createFromOrders()

	s.NoError(s.service.SendInvoice(s.GetContext(), resp.ID))
	s.NoError(s.service.SendInvoice(s.GetContext(), resp.ID))

	got, err := s.service.GetInvoice(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusSent, got.InvoiceStatus)
	s.True(got.EmailSent)
	s.Zero(got.RemindersSent)
	s.True(got.PaidAmount.IsZero())
	s.True(got.BalanceAmount.Equal(got.TotalAmount))

	// both sends were handed to the notifier
	s.Len(s.GetNotifier().InvoiceRequests(), 2)
}

func (s *InvoiceServiceSuite) TestSendCancelledInvoice() {
	resp := s.createFromOrders()
	s.NoError(s.service.CancelInvoice(s.GetContext(), resp.ID))

	err := s.service.SendInvoice(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *InvoiceServiceSuite) TestFullLifecycle() {
	resp := s.createFromOrders()
	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.True(resp.TotalAmount.Equal(s.dec("339.20")))

	s.NoError(s.service.SendInvoice(s.GetContext(), resp.ID))

	got, err := s.service.GetInvoice(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusSent, got.InvoiceStatus)

	s.NoError(s.service.RecordPayment(s.GetContext(), resp.ID, dto.RecordPaymentRequest{
		Amount: s.dec("339.20"),
		Date:   s.GetNow(),
		Method: "bank_transfer",
	}))

	got, err = s.service.GetInvoice(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, got.InvoiceStatus)
	s.True(got.BalanceAmount.IsZero())
	s.True(got.PaidAmount.Equal(s.dec("339.20")))
	s.Len(got.Payments, 1)
}

func (s *InvoiceServiceSuite) TestRecordPartialPayment() {
	sent := s.createSent()

	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("100.00"),
		Date:   s.GetNow(),
	}))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusSent, got.InvoiceStatus)
	s.True(got.PaidAmount.Equal(s.dec("100.00")))
	s.True(got.BalanceAmount.Equal(s.dec("239.20")))
}

func (s *InvoiceServiceSuite) TestRecordPaymentOverpaymentRejected() {
	sent := s.createSent()

	err := s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: sent.BalanceAmount.Add(s.dec("0.01")),
		Date:   s.GetNow(),
	})
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))

	// stored entity unchanged
	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.True(got.PaidAmount.IsZero())
	s.True(got.BalanceAmount.Equal(sent.BalanceAmount))
	s.Empty(got.Payments)
}

func (s *InvoiceServiceSuite) TestRecordPaymentInvalidStates() {
	draft := s.createFromOrders()

	err := s.service.RecordPayment(s.GetContext(), draft.ID, dto.RecordPaymentRequest{
		Amount: s.dec("10.00"),
		Date:   s.GetNow(),
	})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))

	s.NoError(s.service.CancelInvoice(s.GetContext(), draft.ID))
	err = s.service.RecordPayment(s.GetContext(), draft.ID, dto.RecordPaymentRequest{
		Amount: s.dec("10.00"),
		Date:   s.GetNow(),
	})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *InvoiceServiceSuite) TestRecordPaymentNonPositive() {
	sent := s.createSent()

	err := s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("-5.00"),
		Date:   s.GetNow(),
	})
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))
}

func (s *InvoiceServiceSuite) TestCreateCreditNote() {
	sent := s.createSent()

	s.NoError(s.service.CreateCreditNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason:      types.NoteReasonBillingError,
		Amount:      s.dec("39.20"),
		Description: "overcharged collection fee",
	}))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.True(got.TotalAmount.Equal(s.dec("300.00")))
	s.True(got.BalanceAmount.Equal(s.dec("300.00")))
	s.Equal(types.InvoiceStatusSent, got.InvoiceStatus)
	s.Require().Len(got.CreditNotes, 1)
	s.Equal(types.NoteTypeCredit, got.CreditNotes[0].Type)
}

func (s *InvoiceServiceSuite) TestCreditNoteExceedingBalanceRejected() {
	sent := s.createSent()

	err := s.service.CreateCreditNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason: types.NoteReasonBillingError,
		Amount: sent.BalanceAmount.Add(s.dec("0.01")),
	})
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Empty(got.CreditNotes)
	s.True(got.TotalAmount.Equal(sent.TotalAmount))
}

func (s *InvoiceServiceSuite) TestCreditNoteSettlesInvoice() {
	sent := s.createSent()

	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("300.00"),
		Date:   s.GetNow(),
	}))

	// crediting the remaining balance settles the invoice
	s.NoError(s.service.CreateCreditNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason: types.NoteReasonGoodwill,
		Amount: s.dec("39.20"),
	}))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, got.InvoiceStatus)
	s.True(got.BalanceAmount.IsZero())
	s.True(got.TotalAmount.Equal(s.dec("300.00")))
}

func (s *InvoiceServiceSuite) TestCreditNoteOnDraftRejected() {
	draft := s.createFromOrders()

	err := s.service.CreateCreditNote(s.GetContext(), draft.ID, dto.CreateNoteRequest{
		Reason: types.NoteReasonBillingError,
		Amount: s.dec("10.00"),
	})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *InvoiceServiceSuite) TestDebitNoteReopensPaidInvoice() {
	sent := s.createSent()
	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("339.20"),
		Date:   s.GetNow(),
	}))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, got.InvoiceStatus)

	s.NoError(s.service.CreateDebitNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason:      types.NoteReasonAdditionalWaste,
		Amount:      s.dec("50.00"),
		Description: "contaminated load surcharge",
	}))

	got, err = s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusSent, got.InvoiceStatus)
	s.True(got.TotalAmount.Equal(s.dec("389.20")))
	s.True(got.BalanceAmount.Equal(s.dec("50.00")))
	s.Require().Len(got.DebitNotes, 1)
}

func (s *InvoiceServiceSuite) TestDebitNoteNonPositiveRejected() {
	sent := s.createSent()

	err := s.service.CreateDebitNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason: types.NoteReasonAdditionalWaste,
		Amount: s.dec("0.00"),
	})
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))
}

func (s *InvoiceServiceSuite) TestSendReminder() {
	sent := s.createSent()

	s.NoError(s.service.SendReminder(s.GetContext(), sent.ID, dto.SendReminderRequest{
		Type:    types.ReminderTypeGentle,
		Message: "friendly nudge",
	}))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(1, got.RemindersSent)
	s.Require().NotNil(got.LastReminderDate)
	s.Equal(types.InvoiceStatusSent, got.InvoiceStatus)

	reminders := s.GetNotifier().ReminderRequests()
	s.Require().Len(reminders, 1)
	s.Equal(sent.ID, reminders[0].InvoiceID)
	s.Equal(types.ReminderTypeGentle, reminders[0].Entry.Type)
}

func (s *InvoiceServiceSuite) TestSendReminderInvalidStates() {
	sent := s.createSent()
	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("339.20"),
		Date:   s.GetNow(),
	}))

	err := s.service.SendReminder(s.GetContext(), sent.ID, dto.SendReminderRequest{
		Type: types.ReminderTypeFirm,
	})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))

	cancelled := s.createFromOrders()
	s.NoError(s.service.CancelInvoice(s.GetContext(), cancelled.ID))
	err = s.service.SendReminder(s.GetContext(), cancelled.ID, dto.SendReminderRequest{
		Type: types.ReminderTypeFirm,
	})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *InvoiceServiceSuite) TestCancelInvoice() {
	sent := s.createSent()

	s.NoError(s.service.CancelInvoice(s.GetContext(), sent.ID))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusCancelled, got.InvoiceStatus)

	// cancellation is terminal
	err = s.service.CancelInvoice(s.GetContext(), sent.ID)
	s.Error(err)
	s.True(ierr.IsInvalidState(err))

	// balance-affecting operations are frozen
	err = s.service.CreateDebitNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason: types.NoteReasonAdditionalWaste,
		Amount: s.dec("10.00"),
	})
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *InvoiceServiceSuite) TestCancelPaidInvoiceRejected() {
	sent := s.createSent()
	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("339.20"),
		Date:   s.GetNow(),
	}))

	err := s.service.CancelInvoice(s.GetContext(), sent.ID)
	s.Error(err)
	s.True(ierr.IsInvalidState(err))
}

func (s *InvoiceServiceSuite) TestOverdueClassification() {
	sent := s.createSent()

	// age the invoice past its due date directly in the store
	stored, err := s.invoiceRepo.Get(s.GetContext(), sent.ID)
	s.NoError(err)
	stored.IssueDate = stored.IssueDate.AddDate(0, -2, 0)
	stored.DueDate = time.Now().UTC().AddDate(0, 0, -5)
	s.NoError(s.invoiceRepo.Update(s.GetContext(), stored))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, got.InvoiceStatus)

	// the lazy refresh persisted the classification
	stored, err = s.invoiceRepo.Get(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, stored.InvoiceStatus)

	// an overdue invoice can still be settled
	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("339.20"),
		Date:   s.GetNow(),
	}))
	got, err = s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, got.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestOverdueNeverOverridesDraftOrPaid() {
	draft := s.createFromOrders()

	stored, err := s.invoiceRepo.Get(s.GetContext(), draft.ID)
	s.NoError(err)
	stored.IssueDate = stored.IssueDate.AddDate(0, -2, 0)
	stored.DueDate = time.Now().UTC().AddDate(0, 0, -5)
	s.NoError(s.invoiceRepo.Update(s.GetContext(), stored))

	got, err := s.service.GetInvoice(s.GetContext(), draft.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusDraft, got.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestListInvoicesReportsDerivedOverdue() {
	sent := s.createSent()

	stored, err := s.invoiceRepo.Get(s.GetContext(), sent.ID)
	s.NoError(err)
	stored.IssueDate = stored.IssueDate.AddDate(0, -2, 0)
	stored.DueDate = time.Now().UTC().AddDate(0, 0, -5)
	s.NoError(s.invoiceRepo.Update(s.GetContext(), stored))

	list, err := s.service.ListInvoices(s.GetContext(), &types.InvoiceFilter{})
	s.NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal(types.InvoiceStatusOverdue, list.Items[0].InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestListInvoicesStatusFilterUsesDerivedStatus() {
	sent := s.createSent()

	stored, err := s.invoiceRepo.Get(s.GetContext(), sent.ID)
	s.NoError(err)
	stored.IssueDate = stored.IssueDate.AddDate(0, -2, 0)
	stored.DueDate = time.Now().UTC().AddDate(0, 0, -5)
	s.NoError(s.invoiceRepo.Update(s.GetContext(), stored))

	// stored status is still sent, but the overdue filter must match it
	list, err := s.service.ListInvoices(s.GetContext(), &types.InvoiceFilter{
		Statuses: []types.InvoiceStatus{types.InvoiceStatusOverdue},
	})
	s.NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal(1, list.Total)
	s.Equal(types.InvoiceStatusOverdue, list.Items[0].InvoiceStatus)

	// and the sent filter must not
	list, err = s.service.ListInvoices(s.GetContext(), &types.InvoiceFilter{
		Statuses: []types.InvoiceStatus{types.InvoiceStatusSent},
	})
	s.NoError(err)
	s.Empty(list.Items)
	s.Zero(list.Total)
}

func (s *InvoiceServiceSuite) TestMarkRead() {
	sent := s.createSent()

	s.NoError(s.service.MarkRead(s.GetContext(), sent.ID))
	s.NoError(s.service.MarkRead(s.GetContext(), sent.ID))

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.True(got.ReadReceipt)
}

func (s *InvoiceServiceSuite) TestGetInvoiceSnapshotIsolation() {
	sent := s.createSent()

	snap, err := s.service.GetInvoiceSnapshot(s.GetContext(), sent.ID)
	s.NoError(err)

	snap.PaidAmount = s.dec("999.00")
	snap.CustomerName = "tampered"

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.True(got.PaidAmount.IsZero())
	s.Equal("Acme Construction", got.CustomerName)
}

// TestInvariantsAcrossOperationSequence drives an invoice through a mixed
// sequence of operations and checks the balance identities after every step.
func (s *InvoiceServiceSuite) TestInvariantsAcrossOperationSequence() {
	sent := s.createSent()

	check := func() {
		got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
		s.NoError(err)

		expectedTotal := got.Subtotal.
			Add(got.TaxAmount).
			Add(got.DebitNoteTotal()).
			Sub(got.CreditNoteTotal())
		s.True(got.TotalAmount.Equal(expectedTotal))
		s.True(got.BalanceAmount.Equal(got.TotalAmount.Sub(got.PaidAmount)))
		s.True(got.PaymentTotal().Equal(got.PaidAmount))
	}

	check()

	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("100.00"), Date: s.GetNow(),
	}))
	check()

	s.NoError(s.service.CreateDebitNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason: types.NoteReasonExtendedRental, Amount: s.dec("25.50"),
	}))
	check()

	s.NoError(s.service.CreateCreditNote(s.GetContext(), sent.ID, dto.CreateNoteRequest{
		Reason: types.NoteReasonGoodwill, Amount: s.dec("60.00"),
	}))
	check()

	// rejected operations leave the invariants intact
	s.Error(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("10000.00"), Date: s.GetNow(),
	}))
	check()

	s.NoError(s.service.RecordPayment(s.GetContext(), sent.ID, dto.RecordPaymentRequest{
		Amount: s.dec("204.70"), Date: s.GetNow(),
	}))
	check()

	got, err := s.service.GetInvoice(s.GetContext(), sent.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, got.InvoiceStatus)
	s.True(got.BalanceAmount.IsZero())
}
