package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExportRow is one invoice joined with its client, ready for an accounting
// CSV renderer. Draft and canceled invoices never appear in an export.
type ExportRow struct {
	InvoiceNo  string
	ClientCode string
	ClientName string
	IssueDate  time.Time
	DueDate    time.Time
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	Total      decimal.Decimal
	PaidAmount decimal.Decimal
	BalanceDue decimal.Decimal
	Status     billing.InvoiceStatus
}

// ExportService collects invoice rows for the accounting exports.
type ExportService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(scope TransactionScope, logger *zap.Logger) *ExportService {
	return &ExportService{scope: scope, logger: logger}
}

// CollectRows returns the export rows for invoices issued in the given
// period, ordered by invoice number. Tombstoned clients still resolve so
// past bookings keep their client names.
func (s *ExportService) CollectRows(ctx context.Context, from, to time.Time) ([]ExportRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "export", "collect_rows")
	defer span.End()

	var rows []ExportRow
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindAll(ctx, billing.InvoiceFilter{
			IssueFrom: &from,
			IssueTo:   &to,
			OrderBy:   "invoice_no",
			OrderDir:  "asc",
		})
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		clients := make(map[uuid.UUID]*billing.Client)
		for i := range invoices {
			inv := &invoices[i]
			switch inv.Status {
			case billing.InvoiceStatusDraft, billing.InvoiceStatusCanceled:
				continue
			}
			client, ok := clients[inv.ClientID]
			if !ok {
				client, err = repos.ClientRepo().FindByID(ctx, inv.ClientID, shared.IncludeDeleted)
				if err != nil {
					return fmt.Errorf("failed to load client: %w", err)
				}
				clients[inv.ClientID] = client
			}
			row := ExportRow{
				InvoiceNo:  inv.InvoiceNo,
				IssueDate:  inv.IssueDate,
				DueDate:    inv.DueDate,
				Subtotal:   inv.Subtotal,
				TaxTotal:   inv.TaxTotal,
				Total:      inv.Total,
				PaidAmount: inv.PaidAmount,
				BalanceDue: inv.BalanceDue,
				Status:     inv.Status,
			}
			if client != nil {
				row.ClientCode = client.Code
				row.ClientName = client.CompanyName
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "rows", len(rows))
	return rows, nil
}
