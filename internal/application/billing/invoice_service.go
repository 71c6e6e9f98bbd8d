package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService implements the invoice lifecycle: creation with a generated
// number, draft editing, explicit status transitions, conversion from an
// approved quotation, and soft deletion.
type InvoiceService struct {
	scope     TransactionScope
	numbering *NumberingService
	clock     shared.Clock
	logger    *zap.Logger
}

// NewInvoiceService creates an InvoiceService.
func NewInvoiceService(scope TransactionScope, numbering *NumberingService, clock shared.Clock, logger *zap.Logger) *InvoiceService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &InvoiceService{scope: scope, numbering: numbering, clock: clock, logger: logger}
}

// GetInvoice returns the invoice with its items.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = loadInvoice(ctx, repos, id, shared.ExcludeDeleted)
		return err
	})
	return invoice, err
}

// ListInvoices returns a page of invoices matching the filter.
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) (shared.Paginated[billing.Invoice], error) {
	var page shared.Paginated[billing.Invoice]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.InvoiceRepo().Count(ctx, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
		return nil
	})
	return page, err
}

// CreateInvoice generates the next invoice number and creates a draft
// invoice in a single transaction. An unset due date defaults to the issue
// date plus the client's payment terms.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	telemetry.SetAttribute(span, "client_id", input.ClientID.String())

	items, err := buildItems(input.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var invoice *billing.Invoice
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := repos.ClientRepo().FindByID(ctx, input.ClientID, shared.ExcludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}

		dueDate := input.DueDate
		if dueDate.IsZero() {
			dueDate = input.IssueDate.AddDate(0, 0, client.PaymentTermsDays)
		}

		number, err := s.numbering.NextInvoiceNumber(ctx, repos)
		if err != nil {
			return err
		}

		invoice, err = billing.NewInvoice(number, input.ClientID, nil, input.IssueDate, dueDate, items, input.Notes, input.ActorID)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Create(ctx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return s.audit(ctx, repos, input.ActorID, billing.AuditActionCreated, invoice, nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.String("total", invoice.Total.String()))
	telemetry.SetAttribute(span, "invoice_no", invoice.InvoiceNo)
	return invoice, nil
}

// UpdateInvoice rewrites the editable fields of a draft invoice. The
// expected version, when given, must match the stored version.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update")
	defer span.End()
	telemetry.SetAttribute(span, "invoice_id", id.String())

	items, err := buildItems(input.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var invoice *billing.Invoice
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err = loadInvoice(ctx, repos, id, shared.ExcludeDeleted)
		if err != nil {
			return err
		}
		if err := shared.CheckVersion("invoice", invoice, input.ExpectedVersion); err != nil {
			return err
		}

		before := billing.InvoiceSnapshot(invoice)
		if err := invoice.UpdateDraft(input.IssueDate, input.DueDate, input.Notes, items, s.clock()); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().ReplaceItems(ctx, invoice.ID, items); err != nil {
			return fmt.Errorf("failed to replace invoice items: %w", err)
		}
		return s.audit(ctx, repos, input.ActorID, billing.AuditActionUpdated, invoice, before)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return invoice, nil
}

// IssueInvoice moves a draft invoice to issued, stamping its sent time.
func (s *InvoiceService) IssueInvoice(ctx context.Context, id uuid.UUID, expectedVersion *int, actorID uuid.UUID) (*billing.Invoice, error) {
	return s.transition(ctx, id, billing.InvoiceStatusIssued, expectedVersion, actorID)
}

// CancelInvoice cancels a draft or issued invoice.
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID, expectedVersion *int, actorID uuid.UUID) (*billing.Invoice, error) {
	return s.transition(ctx, id, billing.InvoiceStatusCanceled, expectedVersion, actorID)
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, target billing.InvoiceStatus, expectedVersion *int, actorID uuid.UUID) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "transition")
	defer span.End()
	telemetry.SetAttributes(span,
		"invoice_id", id.String(),
		"target_status", target.String())

	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = loadInvoice(ctx, repos, id, shared.ExcludeDeleted)
		if err != nil {
			return err
		}
		if err := shared.CheckVersion("invoice", invoice, expectedVersion); err != nil {
			return err
		}

		before := billing.InvoiceSnapshot(invoice)
		if err := invoice.TransitionTo(target, s.clock()); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
			return err
		}
		return s.audit(ctx, repos, actorID, billing.AuditActionStatusChanged, invoice, before)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("invoice status changed",
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.String("status", invoice.Status.String()))
	return invoice, nil
}

// ConvertQuotation creates a draft invoice from an approved quotation,
// copying its client, items and notes. A quotation converts at most once;
// a second attempt fails on the existing linked invoice. The quotation's
// number stays with the quotation, the invoice draws a fresh one.
func (s *InvoiceService) ConvertQuotation(ctx context.Context, quotationID uuid.UUID, input ConvertQuotationInput) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "convert_quotation")
	defer span.End()
	telemetry.SetAttribute(span, "quotation_id", quotationID.String())

	var invoice *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		quotation, err := repos.QuotationRepo().FindByID(ctx, quotationID, shared.ExcludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to load quotation: %w", err)
		}
		if quotation == nil {
			return shared.NewDomainError("QUOTATION_NOT_FOUND", "Quotation not found")
		}
		if !quotation.CanConvertToInvoice() {
			return shared.NewDomainError("QUOTATION_NOT_CONVERTIBLE",
				"Only approved quotations can be converted to an invoice")
		}

		converted, err := repos.InvoiceRepo().ExistsForQuotation(ctx, quotationID)
		if err != nil {
			return fmt.Errorf("failed to check existing conversion: %w", err)
		}
		if converted {
			return shared.NewDomainError("QUOTATION_ALREADY_CONVERTED",
				"Quotation has already been converted to an invoice")
		}

		client, err := repos.ClientRepo().FindByID(ctx, quotation.ClientID, shared.ExcludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}

		issueDate := input.IssueDate
		if issueDate.IsZero() {
			issueDate = truncateToDay(s.clock())
		}
		dueDate := input.DueDate
		if dueDate.IsZero() {
			dueDate = issueDate.AddDate(0, 0, client.PaymentTermsDays)
		}
		notes := input.Notes
		if notes == "" {
			notes = quotation.Notes
		}

		number, err := s.numbering.NextInvoiceNumber(ctx, repos)
		if err != nil {
			return err
		}

		invoice, err = billing.NewInvoice(number, quotation.ClientID, &quotation.ID, issueDate, dueDate, quotation.Items, notes, input.ActorID)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Create(ctx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return s.audit(ctx, repos, input.ActorID, billing.AuditActionConverted, invoice, nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("quotation converted to invoice",
		zap.String("quotation_id", quotationID.String()),
		zap.String("invoice_no", invoice.InvoiceNo))
	return invoice, nil
}

// DeleteInvoice tombstones an invoice. Invoices with recorded payments
// cannot be deleted; their payments must be removed first. The number is
// not freed: the tombstoned row still participates in numbering scans.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer span.End()
	telemetry.SetAttribute(span, "invoice_id", id.String())

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := loadInvoice(ctx, repos, id, shared.ExcludeDeleted)
		if err != nil {
			return err
		}

		hasPayments, err := repos.PaymentRepo().ExistsForInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check payments: %w", err)
		}
		if hasPayments {
			return shared.NewDomainError("INVOICE_HAS_PAYMENTS",
				"Invoices with recorded payments cannot be deleted")
		}

		before := billing.InvoiceSnapshot(invoice)
		now := s.clock()
		invoice.MarkDeleted(now)
		if err := repos.InvoiceRepo().SoftDelete(ctx, invoice, now); err != nil {
			return err
		}
		return s.audit(ctx, repos, actorID, billing.AuditActionDeleted, invoice, before)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

func (s *InvoiceService) audit(ctx context.Context, repos TransactionalRepositories, actorID uuid.UUID, action billing.AuditAction, invoice *billing.Invoice, before billing.Snapshot) error {
	after := billing.InvoiceSnapshot(invoice)
	if before != nil {
		before, after = before.Diff(after)
	}
	entry, err := billing.NewAuditLog(actorID, action, "invoice", invoice.ID, before, after, s.clock())
	if err != nil {
		return err
	}
	return repos.AuditRepo().Append(ctx, entry)
}

func loadInvoice(ctx context.Context, repos TransactionalRepositories, id uuid.UUID, visibility shared.Visibility) (*billing.Invoice, error) {
	invoice, err := repos.InvoiceRepo().FindByID(ctx, id, visibility)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	return invoice, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
