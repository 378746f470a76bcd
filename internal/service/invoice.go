package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/skipbin/skipbin/internal/api/dto"
	"github.com/skipbin/skipbin/internal/currency"
	"github.com/skipbin/skipbin/internal/domain/invoice"
	"github.com/skipbin/skipbin/internal/domain/order"
	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/skipbin/skipbin/internal/notifier"
	"github.com/skipbin/skipbin/internal/types"
)

// InvoiceService owns the invoice lifecycle: creation, sending, payments,
// adjustment notes, reminders and cancellation. Every mutating operation is
// serialized per invoice so balance invariants can never be violated by
// interleaved read-modify-write cycles.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoiceSnapshot(ctx context.Context, id string) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	SendInvoice(ctx context.Context, id string) error
	RecordPayment(ctx context.Context, id string, req dto.RecordPaymentRequest) error
	CreateCreditNote(ctx context.Context, id string, req dto.CreateNoteRequest) error
	CreateDebitNote(ctx context.Context, id string, req dto.CreateNoteRequest) error
	SendReminder(ctx context.Context, id string, req dto.SendReminderRequest) error
	MarkRead(ctx context.Context, id string) error
	CancelInvoice(ctx context.Context, id string) error
}

type invoiceService struct {
	ServiceParams
	locks sync.Map // invoice id -> *sync.Mutex
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subtotal, customerName, orderIDs, err := s.resolveBasis(ctx, req)
	if err != nil {
		return nil, err
	}

	if subtotal.LessThanOrEqual(decimal.Zero) {
		return nil, ierr.NewError("subtotal must be positive").
			WithHint("An invoice cannot be created for a zero or negative amount").
			WithReportableDetails(map[string]any{
				"subtotal": subtotal,
			}).
			Mark(ierr.ErrInvalidAmount)
	}

	taxAmount, err := s.TaxCalc.CalculateTax(subtotal, req.ServiceCategory, req.TaxRegion)
	if err != nil {
		s.Logger.Errorw("tax region lookup failed",
			"region", req.TaxRegion,
			"error", err)
		return nil, err
	}

	amounts := currency.Amounts{
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		TotalAmount: subtotal.Add(taxAmount),
	}
	conv, err := s.Converter.Convert(amounts, s.Converter.BaseCurrency(), req.Currency)
	if err != nil {
		s.Logger.Errorw("currency conversion failed",
			"currency", req.Currency,
			"error", err)
		return nil, err
	}
	stamped := conv.Rounded()

	now := time.Now().UTC()
	dueDate := now.AddDate(0, 0, s.Config.Billing.DefaultDueDays)
	if req.DueDate != nil {
		dueDate = req.DueDate.UTC()
	}

	paymentTerms := req.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = s.Config.Billing.DefaultPaymentTerms
	}

	inv := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		CustomerName:     customerName,
		CustomerType:     req.GetCustomerType(),
		OrderIDs:         orderIDs,
		Currency:         types.NormalizeCurrencyCode(req.Currency),
		Subtotal:         stamped.Subtotal,
		TaxAmount:        stamped.TaxAmount,
		TotalAmount:      stamped.TotalAmount,
		PaidAmount:       decimal.Zero,
		BalanceAmount:    stamped.TotalAmount,
		ExchangeRate:     conv.ExchangeRate,
		OriginalCurrency: conv.OriginalCurrency,
		InvoiceStatus:    types.InvoiceStatusDraft,
		IssueDate:        now,
		DueDate:          dueDate,
		PaymentTerms:     paymentTerms,
		Metadata:         req.Metadata,
		Version:          1,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}

	if req.AutoReminders {
		inv.ReminderSchedule = s.Reminders.Schedule(inv.IssueDate, inv.DueDate)
	}

	// a manual number is validated with the invoice but only reserved once
	// the invoice is known to be committable, so a rejected request never
	// burns it and the caller can resubmit with the same number
	if req.Mode == types.InvoiceCreationModeManual {
		inv.InvoiceNumber = strings.TrimSpace(*req.InvoiceNumber)
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	switch req.Mode {
	case types.InvoiceCreationModeManual:
		if err := s.DocNumbers.Reserve(types.DocumentTypeInvoice, inv.InvoiceNumber); err != nil {
			return nil, err
		}
	default:
		inv.InvoiceNumber = s.DocNumbers.NextInvoiceNumber()
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		s.Logger.Errorw("failed to create invoice",
			"invoice_number", inv.InvoiceNumber,
			"error", err)
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"customer", inv.CustomerName,
		"total", inv.TotalAmount,
		"currency", inv.Currency)

	return dto.NewInvoiceResponse(inv), nil
}

// resolveBasis computes the subtotal, customer and order provenance for the
// requested creation mode. Amounts are stated in the base currency.
func (s *invoiceService) resolveBasis(ctx context.Context, req dto.CreateInvoiceRequest) (decimal.Decimal, string, []string, error) {
	if req.Mode == types.InvoiceCreationModeManual {
		return *req.Subtotal, req.CustomerName, nil, nil
	}

	orders, err := s.OrderRepo.GetByIDs(ctx, req.OrderIDs)
	if err != nil {
		return decimal.Zero, "", nil, err
	}

	if len(orders) != len(req.OrderIDs) {
		found := lo.Map(orders, func(o *order.DeliveryOrder, _ int) string { return o.ID })
		missing, _ := lo.Difference(req.OrderIDs, found)
		return decimal.Zero, "", nil, ierr.NewError("delivery orders not found").
			WithHint("One or more referenced delivery orders do not exist").
			WithReportableDetails(map[string]any{
				"missing_order_ids": missing,
			}).
			Mark(ierr.ErrNotFound)
	}

	customerNames := lo.Uniq(lo.Map(orders, func(o *order.DeliveryOrder, _ int) string { return o.CustomerName }))
	if len(customerNames) > 1 {
		return decimal.Zero, "", nil, ierr.NewError("delivery orders belong to different customers").
			WithHint("All delivery orders on one invoice must share a customer").
			WithReportableDetails(map[string]any{
				"customers": customerNames,
			}).
			Mark(ierr.ErrValidation)
	}

	subtotal := lo.Reduce(orders, func(acc decimal.Decimal, o *order.DeliveryOrder, _ int) decimal.Decimal {
		return acc.Add(o.Amount)
	}, decimal.Zero)

	return subtotal, customerNames[0], req.OrderIDs, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	// the lazy overdue refresh writes, so reads take the per-invoice lock too
	var inv *invoice.Invoice
	err := s.withInvoiceLock(id, func() error {
		var err error
		inv, err = s.getWithOverdueRefresh(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

// GetInvoiceSnapshot returns a deep copy of the invoice for document export.
// Mutating the snapshot never affects stored state.
func (s *invoiceService) GetInvoiceSnapshot(ctx context.Context, id string) (*invoice.Invoice, error) {
	var inv *invoice.Invoice
	err := s.withInvoiceLock(id, func() error {
		var err error
		inv, err = s.getWithOverdueRefresh(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv.Clone(), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}

	// the overdue classification is derived at read time, so a status filter
	// naming sent or overdue must match the derived status, not the stored
	// one. Widen the repository query and re-filter after classification.
	requested := []types.InvoiceStatus{}
	queryFilter := filter
	if filter != nil && len(filter.Statuses) > 0 {
		requested = filter.Statuses
		if lo.Contains(requested, types.InvoiceStatusSent) || lo.Contains(requested, types.InvoiceStatusOverdue) {
			widened := *filter
			widened.Statuses = lo.Uniq(append(
				append([]types.InvoiceStatus{}, requested...),
				types.InvoiceStatusSent,
				types.InvoiceStatusOverdue,
			))
			queryFilter = &widened
		}
	}

	invoices, err := s.InvoiceRepo.List(ctx, queryFilter)
	if err != nil {
		return nil, err
	}

	// report the derived overdue classification without a write per row;
	// stored status catches up on the next per-invoice read or write
	now := time.Now().UTC()
	items := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		if inv.InvoiceStatus == types.InvoiceStatusSent && inv.IsOverdue(now) {
			inv = inv.Clone()
			inv.InvoiceStatus = types.InvoiceStatusOverdue
		}
		if len(requested) > 0 && !lo.Contains(requested, inv.InvoiceStatus) {
			continue
		}
		items = append(items, dto.NewInvoiceResponse(inv))
	}

	total := len(items)
	if len(requested) == 0 {
		total, err = s.InvoiceRepo.Count(ctx, filter)
		if err != nil {
			return nil, err
		}
	}

	return &dto.ListInvoicesResponse{
		Items: items,
		Total: total,
	}, nil
}

func (s *invoiceService) SendInvoice(ctx context.Context, id string) error {
	return s.withInvoiceLock(id, func() error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if inv.InvoiceStatus == types.InvoiceStatusCancelled {
			return s.invalidStateError(inv, "send")
		}

		updated := inv.Clone()
		updated.EmailSent = true
		if updated.InvoiceStatus == types.InvoiceStatusDraft {
			updated.InvoiceStatus = types.InvoiceStatusSent
		}
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		updated.UpdatedBy = types.GetUserID(ctx)

		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
			return err
		}

		// hand-off is fire-and-forget; delivery failures are the notifier's
		// problem and never roll back the send
		if err := s.Notifier.SendInvoice(ctx, notifier.InvoiceRequest{
			InvoiceID:     updated.ID,
			InvoiceNumber: updated.InvoiceNumber,
			CustomerName:  updated.CustomerName,
			Channel:       notifier.ChannelEmail,
		}); err != nil {
			s.Logger.Errorw("invoice hand-off to notifier failed",
				"invoice_id", updated.ID,
				"error", err)
		}

		s.Logger.Infow("sent invoice",
			"invoice_id", updated.ID,
			"invoice_number", updated.InvoiceNumber)
		return nil
	})
}

func (s *invoiceService) RecordPayment(ctx context.Context, id string, req dto.RecordPaymentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.withInvoiceLock(id, func() error {
		inv, err := s.getWithOverdueRefresh(ctx, id)
		if err != nil {
			return err
		}

		switch inv.InvoiceStatus {
		case types.InvoiceStatusDraft, types.InvoiceStatusCancelled:
			return s.invalidStateError(inv, "record_payment")
		}

		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return ierr.NewError("payment amount must be positive").
				Mark(ierr.ErrInvalidAmount)
		}
		if req.Amount.GreaterThan(inv.BalanceAmount) {
			return ierr.NewError("payment exceeds outstanding balance").
				WithHintf("Payment of %s exceeds the outstanding balance of %s",
					req.Amount.StringFixed(2), inv.BalanceAmount.StringFixed(2)).
				WithReportableDetails(map[string]any{
					"amount":  req.Amount,
					"balance": inv.BalanceAmount,
				}).
				Mark(ierr.ErrInvalidAmount)
		}

		updated := inv.Clone()
		updated.Payments = append(updated.Payments, &invoice.Payment{
			ID:        types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_PAYMENT),
			Amount:    req.Amount,
			Date:      req.Date.UTC(),
			Method:    req.Method,
			Reference: req.Reference,
		})
		updated.PaidAmount = updated.PaidAmount.Add(req.Amount)
		updated.RecomputeDerived()
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		updated.UpdatedBy = types.GetUserID(ctx)

		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
			return err
		}

		s.Logger.Infow("recorded payment",
			"invoice_id", updated.ID,
			"amount", req.Amount,
			"balance", updated.BalanceAmount,
			"status", updated.InvoiceStatus)
		return nil
	})
}

func (s *invoiceService) CreateCreditNote(ctx context.Context, id string, req dto.CreateNoteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.withInvoiceLock(id, func() error {
		inv, err := s.getWithOverdueRefresh(ctx, id)
		if err != nil {
			return err
		}

		if !s.noteAllowed(inv.InvoiceStatus) {
			return s.invalidStateError(inv, "create_credit_note")
		}

		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return ierr.NewError("credit note amount must be positive").
				Mark(ierr.ErrInvalidAmount)
		}
		if req.Amount.GreaterThan(inv.BalanceAmount) {
			return ierr.NewError("credit note exceeds outstanding balance").
				WithHintf("Credit of %s exceeds the outstanding balance of %s",
					req.Amount.StringFixed(2), inv.BalanceAmount.StringFixed(2)).
				WithReportableDetails(map[string]any{
					"amount":  req.Amount,
					"balance": inv.BalanceAmount,
				}).
				Mark(ierr.ErrInvalidAmount)
		}

		updated := inv.Clone()
		updated.CreditNotes = append(updated.CreditNotes, &invoice.Note{
			ID:          types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_CREDIT_NOTE),
			Type:        types.NoteTypeCredit,
			Reason:      req.Reason,
			Amount:      req.Amount,
			Description: req.Description,
			CreatedAt:   time.Now().UTC(),
			CreatedBy:   types.GetUserID(ctx),
		})
		updated.RecomputeDerived()
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		updated.UpdatedBy = types.GetUserID(ctx)

		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
			return err
		}

		s.Logger.Infow("created credit note",
			"invoice_id", updated.ID,
			"amount", req.Amount,
			"reason", req.Reason,
			"total", updated.TotalAmount,
			"balance", updated.BalanceAmount)
		return nil
	})
}

func (s *invoiceService) CreateDebitNote(ctx context.Context, id string, req dto.CreateNoteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.withInvoiceLock(id, func() error {
		inv, err := s.getWithOverdueRefresh(ctx, id)
		if err != nil {
			return err
		}

		if !s.noteAllowed(inv.InvoiceStatus) {
			return s.invalidStateError(inv, "create_debit_note")
		}

		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return ierr.NewError("debit note amount must be positive").
				Mark(ierr.ErrInvalidAmount)
		}

		updated := inv.Clone()
		updated.DebitNotes = append(updated.DebitNotes, &invoice.Note{
			ID:          types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_DEBIT_NOTE),
			Type:        types.NoteTypeDebit,
			Reason:      req.Reason,
			Amount:      req.Amount,
			Description: req.Description,
			CreatedAt:   time.Now().UTC(),
			CreatedBy:   types.GetUserID(ctx),
		})
		updated.RecomputeDerived()
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		updated.UpdatedBy = types.GetUserID(ctx)

		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
			return err
		}

		s.Logger.Infow("created debit note",
			"invoice_id", updated.ID,
			"amount", req.Amount,
			"reason", req.Reason,
			"total", updated.TotalAmount,
			"balance", updated.BalanceAmount,
			"status", updated.InvoiceStatus)
		return nil
	})
}

func (s *invoiceService) SendReminder(ctx context.Context, id string, req dto.SendReminderRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.withInvoiceLock(id, func() error {
		inv, err := s.getWithOverdueRefresh(ctx, id)
		if err != nil {
			return err
		}

		switch inv.InvoiceStatus {
		case types.InvoiceStatusPaid, types.InvoiceStatusCancelled:
			return s.invalidStateError(inv, "send_reminder")
		}

		now := time.Now().UTC()
		updated := inv.Clone()
		updated.RemindersSent++
		updated.LastReminderDate = &now
		updated.Version++
		updated.UpdatedAt = now
		updated.UpdatedBy = types.GetUserID(ctx)

		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
			return err
		}

		if err := s.Notifier.SendReminder(ctx, notifier.ReminderRequest{
			InvoiceID:     updated.ID,
			InvoiceNumber: updated.InvoiceNumber,
			Channel:       req.GetChannel(),
			Entry:         types.ReminderScheduleEntry{Date: now, Type: req.Type},
			Message:       req.Message,
		}); err != nil {
			s.Logger.Errorw("reminder hand-off to notifier failed",
				"invoice_id", updated.ID,
				"error", err)
		}

		s.Logger.Infow("sent payment reminder",
			"invoice_id", updated.ID,
			"type", req.Type,
			"reminders_sent", updated.RemindersSent)
		return nil
	})
}

// MarkRead records the customer's read receipt reported by the notifier
func (s *invoiceService) MarkRead(ctx context.Context, id string) error {
	return s.withInvoiceLock(id, func() error {
		inv, err := s.InvoiceRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if inv.ReadReceipt {
			return nil
		}

		updated := inv.Clone()
		updated.ReadReceipt = true
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()

		return s.InvoiceRepo.Update(ctx, updated)
	})
}

func (s *invoiceService) CancelInvoice(ctx context.Context, id string) error {
	return s.withInvoiceLock(id, func() error {
		inv, err := s.getWithOverdueRefresh(ctx, id)
		if err != nil {
			return err
		}

		allowed := []types.InvoiceStatus{
			types.InvoiceStatusDraft,
			types.InvoiceStatusSent,
			types.InvoiceStatusOverdue,
		}
		if !lo.Contains(allowed, inv.InvoiceStatus) {
			return s.invalidStateError(inv, "cancel")
		}

		updated := inv.Clone()
		updated.InvoiceStatus = types.InvoiceStatusCancelled
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		updated.UpdatedBy = types.GetUserID(ctx)

		if err := updated.Validate(); err != nil {
			return err
		}
		if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
			return err
		}

		s.Logger.Infow("cancelled invoice",
			"invoice_id", updated.ID,
			"invoice_number", updated.InvoiceNumber)
		return nil
	})
}

// getWithOverdueRefresh retrieves an invoice, lazily persisting the overdue
// classification for sent invoices past their due date with balance
// outstanding. Draft, paid and cancelled statuses are never overridden.
func (s *invoiceService) getWithOverdueRefresh(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus == types.InvoiceStatusSent && inv.IsOverdue(time.Now().UTC()) {
		updated := inv.Clone()
		updated.InvoiceStatus = types.InvoiceStatusOverdue
		updated.Version++
		updated.UpdatedAt = time.Now().UTC()
		if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
			return nil, err
		}
		s.Logger.Infow("invoice classified overdue",
			"invoice_id", updated.ID,
			"due_date", updated.DueDate)
		return updated, nil
	}

	return inv, nil
}

func (s *invoiceService) noteAllowed(status types.InvoiceStatus) bool {
	allowed := []types.InvoiceStatus{
		types.InvoiceStatusSent,
		types.InvoiceStatusOverdue,
		types.InvoiceStatusPaid,
	}
	return lo.Contains(allowed, status)
}

func (s *invoiceService) invalidStateError(inv *invoice.Invoice, operation string) error {
	return ierr.NewError("operation not permitted in current invoice status").
		WithHintf("Cannot %s an invoice in status %s", operation, inv.InvoiceStatus).
		WithReportableDetails(map[string]any{
			"invoice_id": inv.ID,
			"status":     inv.InvoiceStatus,
			"operation":  operation,
		}).
		Mark(ierr.ErrInvalidState)
}

// withInvoiceLock serializes mutating operations per invoice id
func (s *invoiceService) withInvoiceLock(id string, fn func() error) error {
	muIface, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}
