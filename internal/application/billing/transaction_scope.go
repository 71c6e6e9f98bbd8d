package billing

import (
	"context"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
//
// Every write path in this package runs inside a scope: number generation
// holds its row locks until the insert commits, and a payment write and the
// reconciliation of its parent invoice land together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all billing repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// QuotationRepo returns the quotation repository scoped to the current transaction
	QuotationRepo() billing.QuotationRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
	// ReminderRepo returns the reminder repository scoped to the current transaction
	ReminderRepo() billing.ReminderRepository
	// ClientRepo returns the client repository scoped to the current transaction
	ClientRepo() billing.ClientRepository
	// AuditRepo returns the audit log repository scoped to the current transaction
	AuditRepo() billing.AuditLogRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	invoiceRepo   billing.InvoiceRepository
	quotationRepo billing.QuotationRepository
	paymentRepo   billing.PaymentRepository
	reminderRepo  billing.ReminderRepository
	clientRepo    billing.ClientRepository
	auditRepo     billing.AuditLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	quotationRepo billing.QuotationRepository,
	paymentRepo billing.PaymentRepository,
	reminderRepo billing.ReminderRepository,
	clientRepo billing.ClientRepository,
	auditRepo billing.AuditLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:   invoiceRepo,
		quotationRepo: quotationRepo,
		paymentRepo:   paymentRepo,
		reminderRepo:  reminderRepo,
		clientRepo:    clientRepo,
		auditRepo:     auditRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// QuotationRepo returns the quotation repository.
func (s *NoOpTransactionScope) QuotationRepo() billing.QuotationRepository {
	return s.quotationRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// ReminderRepo returns the reminder repository.
func (s *NoOpTransactionScope) ReminderRepo() billing.ReminderRepository {
	return s.reminderRepo
}

// ClientRepo returns the client repository.
func (s *NoOpTransactionScope) ClientRepo() billing.ClientRepository {
	return s.clientRepo
}

// AuditRepo returns the audit log repository.
func (s *NoOpTransactionScope) AuditRepo() billing.AuditLogRepository {
	return s.auditRepo
}
