package billing

import (
	"context"
	"fmt"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// numberSource is the slice of a document repository that number generation
// needs. Both the invoice and the quotation repositories satisfy it.
type numberSource interface {
	LockNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
	NumberExists(ctx context.Context, number string) (bool, error)
}

// NumberingService allocates year-scoped document numbers.
//
// The sequence for a year is derived from the stored rows, tombstoned ones
// included, so a number is never reissued after its document is deleted.
// Generation must run in the same transaction as the insert that consumes
// the number: the row locks taken by the prefix scan are what serializes
// concurrent generators, and they only help while they are held.
type NumberingService struct {
	scope  TransactionScope
	clock  shared.Clock
	logger *zap.Logger
}

// NewNumberingService creates a NumberingService.
func NewNumberingService(scope TransactionScope, clock shared.Clock, logger *zap.Logger) *NumberingService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &NumberingService{scope: scope, clock: clock, logger: logger}
}

// Generate allocates the next number for the given document kind in its own
// transaction. A zero year targets the current year; a non-zero year scopes
// the sequence to that year, e.g. for back-dated documents. Callers that
// insert a document should prefer the in-scope variant so the number and
// the insert commit together.
func (s *NumberingService) Generate(ctx context.Context, kind billing.DocumentKind, year int) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "numbering", "generate")
	defer span.End()

	var number string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var genErr error
		number, genErr = s.nextInScope(ctx, repos, kind, year)
		return genErr
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}
	telemetry.SetAttribute(span, "document_number", number)
	return number, nil
}

// NextInvoiceNumber allocates the next invoice number within an already open
// transaction.
func (s *NumberingService) NextInvoiceNumber(ctx context.Context, repos TransactionalRepositories) (string, error) {
	return s.nextInScope(ctx, repos, billing.KindInvoice, 0)
}

// NextQuotationNumber allocates the next quotation number within an already
// open transaction.
func (s *NumberingService) NextQuotationNumber(ctx context.Context, repos TransactionalRepositories) (string, error) {
	return s.nextInScope(ctx, repos, billing.KindQuotation, 0)
}

func (s *NumberingService) nextInScope(ctx context.Context, repos TransactionalRepositories, kind billing.DocumentKind, year int) (string, error) {
	if !kind.IsValid() {
		return "", shared.NewDomainError("INVALID_DOCUMENT_KIND",
			fmt.Sprintf("Unknown document kind: %s", kind))
	}

	var source numberSource
	switch kind {
	case billing.KindInvoice:
		source = repos.InvoiceRepo()
	case billing.KindQuotation:
		source = repos.QuotationRepo()
	}

	if year == 0 {
		year = s.clock().Year()
	}
	prefix := billing.NumberPrefix(kind, year)

	// Lock every row of the prefix, tombstoned included. Concurrent
	// generators for the same year serialize on these locks until the
	// surrounding transaction commits.
	numbers, err := source.LockNumbersByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s numbers: %w", kind, err)
	}

	sequence := billing.MaxSequence(numbers) + 1
	for attempt := 0; attempt < billing.MaxGenerationAttempts; attempt++ {
		candidate := billing.FormatNumber(kind, year, sequence+attempt)
		exists, err := source.NumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe %s number %s: %w", kind, candidate, err)
		}
		if !exists {
			if attempt > 0 {
				s.logger.Warn("document number collision, advanced sequence",
					zap.String("prefix", prefix),
					zap.Int("attempts", attempt+1),
					zap.String("number", candidate))
			}
			return candidate, nil
		}
	}

	err = &billing.NumberGenerationError{Kind: kind, Prefix: prefix, Attempts: billing.MaxGenerationAttempts}
	s.logger.Error("document number generation exhausted",
		zap.String("prefix", prefix),
		zap.Int("max_attempts", billing.MaxGenerationAttempts),
		zap.Error(err))
	return "", err
}
