package billing

import (
	"context"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter represents filter options for invoice queries
type InvoiceFilter struct {
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
	Search    string
	ClientID  *uuid.UUID
	Status    *InvoiceStatus
	IssueFrom *time.Time
	IssueTo   *time.Time
	DueFrom   *time.Time
	DueTo     *time.Time
	Overdue   *bool
}

// QuotationFilter represents filter options for quotation queries
type QuotationFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	ClientID *uuid.UUID
	Status   *QuotationStatus
}

// PaymentFilter represents filter options for payment queries
type PaymentFilter struct {
	Page      int
	PageSize  int
	InvoiceID *uuid.UUID
	Method    *PaymentMethod
	Search    string
	From      *time.Time
	To        *time.Time
}

// InvoiceRepository persists the Invoice aggregate (header plus items).
// Tombstone visibility is an explicit parameter on every read; there is no
// implicit soft-delete filter that numbering could forget to bypass.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNo string, visibility shared.Visibility) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// LockNumbersByPrefix returns the document numbers of every invoice row
	// whose number matches prefix, tombstoned rows included, holding an
	// exclusive row lock on them until the surrounding transaction ends.
	// Two concurrent generators for the same prefix serialize here.
	LockNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
	// NumberExists reports whether any row, tombstoned included, carries
	// the number.
	NumberExists(ctx context.Context, invoiceNo string) (bool, error)
	// ExistsForQuotation reports whether any live invoice references the
	// quotation (the convert-at-most-once guard).
	ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error)

	Create(ctx context.Context, invoice *Invoice) error
	// SaveWithLock updates the invoice header conditionally on the stored
	// version being exactly one less than the in-memory version. Zero rows
	// affected surfaces as a StaleWriteError.
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// ReplaceItems deletes all items of the invoice and inserts the given
	// set, the only way items change.
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []LineItem) error
	SoftDelete(ctx context.Context, invoice *Invoice, at time.Time) error
}

// QuotationRepository persists the Quotation aggregate.
type QuotationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*Quotation, error)
	FindByNumber(ctx context.Context, quotationNo string, visibility shared.Visibility) (*Quotation, error)
	FindAll(ctx context.Context, filter QuotationFilter) ([]Quotation, error)
	Count(ctx context.Context, filter QuotationFilter) (int64, error)

	// LockNumbersByPrefix and NumberExists mirror the invoice repository;
	// see there for locking semantics.
	LockNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
	NumberExists(ctx context.Context, quotationNo string) (bool, error)

	Create(ctx context.Context, quotation *Quotation) error
	SaveWithLock(ctx context.Context, quotation *Quotation) error
	ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []LineItem) error
	SoftDelete(ctx context.Context, quotation *Quotation, at time.Time) error
}

// PaymentRepository persists payments. Payments are hard-deleted; the audit
// log keeps the trace.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)
	Count(ctx context.Context, filter PaymentFilter) (int64, error)
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	ExistsForInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error)

	Create(ctx context.Context, payment *Payment) error
	SaveWithLock(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReminderRepository persists the append-only reminder history.
type ReminderRepository interface {
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Reminder, error)
	// FindLatestByInvoice returns the most recently sent reminder of any
	// type, or nil when the invoice has never been reminded.
	FindLatestByInvoice(ctx context.Context, invoiceID uuid.UUID) (*Reminder, error)
	Create(ctx context.Context, reminder *Reminder) error
}

// ClientRepository persists clients.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*Client, error)
	FindByCode(ctx context.Context, code string, visibility shared.Visibility) (*Client, error)
	FindActive(ctx context.Context) ([]Client, error)
	Create(ctx context.Context, client *Client) error
	Save(ctx context.Context, client *Client) error
	SoftDelete(ctx context.Context, client *Client, at time.Time) error
}

// AuditLogRepository appends audit entries. Entries are never updated or
// deleted.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *AuditLog) error
	FindByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]AuditLog, error)
}
