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

// ReconcileService recomputes an invoice's paid amount, outstanding balance
// and payment status from its recorded payments. It is the only writer of
// those fields: payment mutations call it in their own transaction, and the
// overdue sweep calls it for every open invoice.
type ReconcileService struct {
	scope  TransactionScope
	clock  shared.Clock
	logger *zap.Logger
}

// NewReconcileService creates a ReconcileService.
func NewReconcileService(scope TransactionScope, clock shared.Clock, logger *zap.Logger) *ReconcileService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &ReconcileService{scope: scope, clock: clock, logger: logger}
}

// Reconcile recomputes one invoice in its own transaction and returns the
// updated invoice.
func (s *ReconcileService) Reconcile(ctx context.Context, invoiceID uuid.UUID, actorID uuid.UUID) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "reconcile")
	defer span.End()
	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = s.ReconcileInScope(ctx, repos, invoiceID, actorID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return invoice, nil
}

// ReconcileInScope recomputes one invoice inside an already open
// transaction. The caller's payment writes are visible to the payment sum
// because they share the transaction.
func (s *ReconcileService) ReconcileInScope(ctx context.Context, repos TransactionalRepositories, invoiceID uuid.UUID, actorID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := loadInvoice(ctx, repos, invoiceID, shared.ExcludeDeleted)
	if err != nil {
		return nil, err
	}

	payments, err := repos.PaymentRepo().FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	now := s.clock()
	before := billing.InvoiceSnapshot(invoice)
	state := billing.DeriveLedgerState(invoice.Total, invoice.Status, invoice.DueDate, payments, now)
	if !invoice.ApplyLedgerState(state, now) {
		return invoice, nil
	}

	if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	beforeDiff, afterDiff := before.Diff(billing.InvoiceSnapshot(invoice))
	entry, err := billing.NewAuditLog(actorID, billing.AuditActionReconciled, "invoice", invoice.ID, beforeDiff, afterDiff, now)
	if err != nil {
		return nil, err
	}
	if err := repos.AuditRepo().Append(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("invoice reconciled",
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.String("paid_amount", invoice.PaidAmount.String()),
		zap.String("balance_due", invoice.BalanceDue.String()),
		zap.String("status", invoice.Status.String()))
	return invoice, nil
}

// SweepOverdue reconciles every open invoice so that due dates crossed
// since the last sweep mark their invoices overdue. Open means issued,
// partially paid or overdue; each invoice gets its own transaction so one
// conflict does not roll back the sweep. Returns the number of invoices
// whose state changed.
func (s *ReconcileService) SweepOverdue(ctx context.Context, actorID uuid.UUID) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "sweep_overdue")
	defer span.End()

	var candidates []billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		candidates, err = s.openInvoices(ctx, repos)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	changed := 0
	for i := range candidates {
		id := candidates[i].ID
		versionBefore := candidates[i].Version
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			invoice, err := s.ReconcileInScope(ctx, repos, id, actorID)
			if err != nil {
				return err
			}
			if invoice.Version != versionBefore {
				changed++
			}
			return nil
		})
		if err != nil {
			// A conflicting writer already moved this invoice; its own
			// reconciliation is authoritative.
			s.logger.Warn("overdue sweep skipped invoice",
				zap.String("invoice_id", id.String()),
				zap.Error(err))
		}
	}

	telemetry.SetAttribute(span, "invoices_changed", changed)
	return changed, nil
}

func (s *ReconcileService) openInvoices(ctx context.Context, repos TransactionalRepositories) ([]billing.Invoice, error) {
	open := make([]billing.Invoice, 0)
	for _, status := range []billing.InvoiceStatus{
		billing.InvoiceStatusIssued,
		billing.InvoiceStatusPartialPaid,
		billing.InvoiceStatusOverdue,
	} {
		st := status
		invoices, err := repos.InvoiceRepo().FindAll(ctx, billing.InvoiceFilter{Status: &st})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s invoices: %w", st, err)
		}
		open = append(open, invoices...)
	}
	return open, nil
}
