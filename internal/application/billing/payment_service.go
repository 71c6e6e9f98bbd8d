package billing

import (
	"context"
	"fmt"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService records, edits and removes payments. Every mutation is
// followed by a reconciliation of the parent invoice inside the same
// transaction, so the invoice's derived fields never drift from its ledger.
type PaymentService struct {
	scope     TransactionScope
	reconcile *ReconcileService
	clock     shared.Clock
	logger    *zap.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(scope TransactionScope, reconcile *ReconcileService, clock shared.Clock, logger *zap.Logger) *PaymentService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &PaymentService{scope: scope, reconcile: reconcile, clock: clock, logger: logger}
}

// GetPayment returns one payment.
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = loadPayment(ctx, repos, id)
		return err
	})
	return payment, err
}

// ListPayments returns a page of payments matching the filter.
func (s *PaymentService) ListPayments(ctx context.Context, filter billing.PaymentFilter) (shared.Paginated[billing.Payment], error) {
	var page shared.Paginated[billing.Payment]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payments, err := repos.PaymentRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.PaymentRepo().Count(ctx, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
		return nil
	})
	return page, err
}

// RecordPayment records a payment against an invoice and reconciles the
// invoice in the same transaction. The invoice must be able to receive
// payments and the amount must not exceed its outstanding balance.
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*billing.Payment, *billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		"invoice_id", input.InvoiceID.String(),
		"amount", input.Amount.String())

	var payment *billing.Payment
	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = loadInvoice(ctx, repos, input.InvoiceID, shared.ExcludeDeleted)
		if err != nil {
			return err
		}
		if !invoice.CanReceivePayment() {
			return &billing.PaymentRejectedError{
				Reason: fmt.Sprintf("invoice %s in status %s cannot receive payments", invoice.InvoiceNo, invoice.Status),
			}
		}
		// The outstanding balance is computed from the recorded payments
		// inside this transaction, not from the stored balance column, so a
		// not-yet-reconciled invoice cannot admit an overpayment.
		recorded, err := repos.PaymentRepo().SumByInvoice(ctx, input.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to sum payments: %w", err)
		}
		outstanding := invoice.Total.Sub(recorded).Round(2)
		if input.Amount.GreaterThan(outstanding) {
			return &billing.PaymentRejectedError{
				Reason: fmt.Sprintf("amount %s exceeds outstanding balance %s",
					input.Amount.StringFixed(2), outstanding.StringFixed(2)),
			}
		}

		payment, err = billing.NewPayment(input.InvoiceID, input.PaymentDate, input.Amount, input.Method, input.ReferenceNo, input.Note, input.ActorID)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		if err := s.auditPayment(ctx, repos, input.ActorID, billing.AuditActionCreated, payment, nil); err != nil {
			return err
		}

		invoice, err = s.reconcile.ReconcileInScope(ctx, repos, input.InvoiceID, input.ActorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.String("amount", payment.Amount.String()),
		zap.String("invoice_status", invoice.Status.String()))
	return payment, invoice, nil
}

// UpdatePayment applies an edit to a payment and reconciles its invoice in
// the same transaction. The expected version, when given, must match the
// stored version; an unchanged payment is saved nowhere and keeps its
// version.
func (s *PaymentService) UpdatePayment(ctx context.Context, id uuid.UUID, input UpdatePaymentInput) (*billing.Payment, *billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "update")
	defer span.End()
	telemetry.SetAttribute(span, "payment_id", id.String())

	var payment *billing.Payment
	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = loadPayment(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := shared.CheckVersion("payment", payment, input.ExpectedVersion); err != nil {
			return err
		}

		before := billing.PaymentSnapshot(payment)
		changed, err := payment.Apply(billing.PaymentUpdate{
			PaymentDate: input.PaymentDate,
			Amount:      input.Amount,
			Method:      input.Method,
			ReferenceNo: input.ReferenceNo,
			Note:        input.Note,
		}, s.clock())
		if err != nil {
			return err
		}
		if !changed {
			invoice, err = loadInvoice(ctx, repos, payment.InvoiceID, shared.ExcludeDeleted)
			return err
		}

		if err := repos.PaymentRepo().SaveWithLock(ctx, payment); err != nil {
			return err
		}
		if err := s.auditPayment(ctx, repos, input.ActorID, billing.AuditActionUpdated, payment, before); err != nil {
			return err
		}

		invoice, err = s.reconcile.ReconcileInScope(ctx, repos, payment.InvoiceID, input.ActorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}
	return payment, invoice, nil
}

// DeletePayment removes a payment and reconciles its invoice in the same
// transaction. Payments are hard-deleted; the audit entry keeps the trace.
func (s *PaymentService) DeletePayment(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()
	telemetry.SetAttribute(span, "payment_id", id.String())

	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := loadPayment(ctx, repos, id)
		if err != nil {
			return err
		}

		before := billing.PaymentSnapshot(payment)
		if err := repos.PaymentRepo().Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		entry, err := billing.NewAuditLog(actorID, billing.AuditActionDeleted, "payment", payment.ID, before, nil, s.clock())
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return err
		}

		invoice, err = s.reconcile.ReconcileInScope(ctx, repos, payment.InvoiceID, actorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment deleted",
		zap.String("payment_id", id.String()),
		zap.String("invoice_no", invoice.InvoiceNo))
	return invoice, nil
}

func (s *PaymentService) auditPayment(ctx context.Context, repos TransactionalRepositories, actorID uuid.UUID, action billing.AuditAction, payment *billing.Payment, before billing.Snapshot) error {
	after := billing.PaymentSnapshot(payment)
	if before != nil {
		before, after = before.Diff(after)
	}
	entry, err := billing.NewAuditLog(actorID, action, "payment", payment.ID, before, after, s.clock())
	if err != nil {
		return err
	}
	return repos.AuditRepo().Append(ctx, entry)
}

func loadPayment(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*billing.Payment, error) {
	payment, err := repos.PaymentRepo().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}
