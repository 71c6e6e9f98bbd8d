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

// QuotationService implements the quotation lifecycle: creation with a
// generated number, draft editing, the send/approve/reject transitions, and
// soft deletion.
type QuotationService struct {
	scope     TransactionScope
	numbering *NumberingService
	clock     shared.Clock
	logger    *zap.Logger
}

// NewQuotationService creates a QuotationService.
func NewQuotationService(scope TransactionScope, numbering *NumberingService, clock shared.Clock, logger *zap.Logger) *QuotationService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &QuotationService{scope: scope, numbering: numbering, clock: clock, logger: logger}
}

// GetQuotation returns the quotation with its items.
func (s *QuotationService) GetQuotation(ctx context.Context, id uuid.UUID) (*billing.Quotation, error) {
	var quotation *billing.Quotation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		quotation, err = loadQuotation(ctx, repos, id, shared.ExcludeDeleted)
		return err
	})
	return quotation, err
}

// ListQuotations returns a page of quotations matching the filter.
func (s *QuotationService) ListQuotations(ctx context.Context, filter billing.QuotationFilter) (shared.Paginated[billing.Quotation], error) {
	var page shared.Paginated[billing.Quotation]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		quotations, err := repos.QuotationRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.QuotationRepo().Count(ctx, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(quotations, total, filter.Page, filter.PageSize)
		return nil
	})
	return page, err
}

// CreateQuotation generates the next quotation number and creates a draft
// quotation in a single transaction.
func (s *QuotationService) CreateQuotation(ctx context.Context, input CreateQuotationInput) (*billing.Quotation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "create")
	defer span.End()
	telemetry.SetAttribute(span, "client_id", input.ClientID.String())

	items, err := buildItems(input.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var quotation *billing.Quotation
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := repos.ClientRepo().FindByID(ctx, input.ClientID, shared.ExcludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}

		number, err := s.numbering.NextQuotationNumber(ctx, repos)
		if err != nil {
			return err
		}

		quotation, err = billing.NewQuotation(number, input.ClientID, input.IssueDate, input.ValidUntil, items, input.Notes, input.ActorID)
		if err != nil {
			return err
		}
		if err := repos.QuotationRepo().Create(ctx, quotation); err != nil {
			return fmt.Errorf("failed to create quotation: %w", err)
		}
		return s.audit(ctx, repos, input.ActorID, billing.AuditActionCreated, quotation, nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("quotation created",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("quotation_no", quotation.QuotationNo),
		zap.String("total", quotation.Total.String()))
	telemetry.SetAttribute(span, "quotation_no", quotation.QuotationNo)
	return quotation, nil
}

// UpdateQuotation rewrites the editable fields of a draft quotation.
func (s *QuotationService) UpdateQuotation(ctx context.Context, id uuid.UUID, input UpdateQuotationInput) (*billing.Quotation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "update")
	defer span.End()
	telemetry.SetAttribute(span, "quotation_id", id.String())

	items, err := buildItems(input.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var quotation *billing.Quotation
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		quotation, err = loadQuotation(ctx, repos, id, shared.ExcludeDeleted)
		if err != nil {
			return err
		}
		if err := shared.CheckVersion("quotation", quotation, input.ExpectedVersion); err != nil {
			return err
		}

		before := billing.QuotationSnapshot(quotation)
		if err := quotation.UpdateDraft(input.IssueDate, input.ValidUntil, input.Notes, items, s.clock()); err != nil {
			return err
		}
		if err := repos.QuotationRepo().SaveWithLock(ctx, quotation); err != nil {
			return err
		}
		if err := repos.QuotationRepo().ReplaceItems(ctx, quotation.ID, items); err != nil {
			return fmt.Errorf("failed to replace quotation items: %w", err)
		}
		return s.audit(ctx, repos, input.ActorID, billing.AuditActionUpdated, quotation, before)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return quotation, nil
}

// SendQuotation marks a draft quotation as sent to the client.
func (s *QuotationService) SendQuotation(ctx context.Context, id uuid.UUID, expectedVersion *int, actorID uuid.UUID) (*billing.Quotation, error) {
	return s.transition(ctx, id, billing.QuotationStatusSent, expectedVersion, actorID)
}

// ApproveQuotation marks a draft or sent quotation as approved.
func (s *QuotationService) ApproveQuotation(ctx context.Context, id uuid.UUID, expectedVersion *int, actorID uuid.UUID) (*billing.Quotation, error) {
	return s.transition(ctx, id, billing.QuotationStatusApproved, expectedVersion, actorID)
}

// RejectQuotation marks a draft or sent quotation as rejected.
func (s *QuotationService) RejectQuotation(ctx context.Context, id uuid.UUID, expectedVersion *int, actorID uuid.UUID) (*billing.Quotation, error) {
	return s.transition(ctx, id, billing.QuotationStatusRejected, expectedVersion, actorID)
}

func (s *QuotationService) transition(ctx context.Context, id uuid.UUID, target billing.QuotationStatus, expectedVersion *int, actorID uuid.UUID) (*billing.Quotation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "transition")
	defer span.End()
	telemetry.SetAttributes(span,
		"quotation_id", id.String(),
		"target_status", target.String())

	var quotation *billing.Quotation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		quotation, err = loadQuotation(ctx, repos, id, shared.ExcludeDeleted)
		if err != nil {
			return err
		}
		if err := shared.CheckVersion("quotation", quotation, expectedVersion); err != nil {
			return err
		}

		before := billing.QuotationSnapshot(quotation)
		if err := quotation.TransitionTo(target, s.clock()); err != nil {
			return err
		}
		if err := repos.QuotationRepo().SaveWithLock(ctx, quotation); err != nil {
			return err
		}
		return s.audit(ctx, repos, actorID, billing.AuditActionStatusChanged, quotation, before)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("quotation status changed",
		zap.String("quotation_no", quotation.QuotationNo),
		zap.String("status", quotation.Status.String()))
	return quotation, nil
}

// DeleteQuotation tombstones a quotation. Quotations that were already
// converted into an invoice cannot be deleted.
func (s *QuotationService) DeleteQuotation(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "delete")
	defer span.End()
	telemetry.SetAttribute(span, "quotation_id", id.String())

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		quotation, err := loadQuotation(ctx, repos, id, shared.ExcludeDeleted)
		if err != nil {
			return err
		}

		converted, err := repos.InvoiceRepo().ExistsForQuotation(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check existing conversion: %w", err)
		}
		if converted {
			return shared.NewDomainError("QUOTATION_CONVERTED",
				"Quotations converted to an invoice cannot be deleted")
		}

		before := billing.QuotationSnapshot(quotation)
		now := s.clock()
		quotation.MarkDeleted(now)
		if err := repos.QuotationRepo().SoftDelete(ctx, quotation, now); err != nil {
			return err
		}
		return s.audit(ctx, repos, actorID, billing.AuditActionDeleted, quotation, before)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

func (s *QuotationService) audit(ctx context.Context, repos TransactionalRepositories, actorID uuid.UUID, action billing.AuditAction, quotation *billing.Quotation, before billing.Snapshot) error {
	after := billing.QuotationSnapshot(quotation)
	if before != nil {
		before, after = before.Diff(after)
	}
	entry, err := billing.NewAuditLog(actorID, action, "quotation", quotation.ID, before, after, s.clock())
	if err != nil {
		return err
	}
	return repos.AuditRepo().Append(ctx, entry)
}

func loadQuotation(ctx context.Context, repos TransactionalRepositories, id uuid.UUID, visibility shared.Visibility) (*billing.Quotation, error) {
	quotation, err := repos.QuotationRepo().FindByID(ctx, id, visibility)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}
	if quotation == nil {
		return nil, shared.NewDomainError("QUOTATION_NOT_FOUND", "Quotation not found")
	}
	return quotation, nil
}
