package persistence

import (
	"context"

	"gorm.io/gorm"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
)

// GormTransactionScope implements the application TransactionScope over a
// GORM transaction. All repositories handed to the callback share the same
// tx, so row locks taken by one are held for all until commit or rollback.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a transaction scope over the database.
func NewGormTransactionScope(database *Database) *GormTransactionScope {
	return &GormTransactionScope{db: database.DB}
}

// Execute runs fn inside a database transaction. An error from fn rolls the
// transaction back; nil commits it.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepositories(tx))
	})
}

// txRepositories bundles repositories bound to one transaction.
type txRepositories struct {
	invoices   *GormInvoiceRepository
	quotations *GormQuotationRepository
	payments   *GormPaymentRepository
	reminders  *GormReminderRepository
	clients    *GormClientRepository
	audits     *GormAuditLogRepository
}

func newTxRepositories(tx *gorm.DB) *txRepositories {
	return &txRepositories{
		invoices:   NewGormInvoiceRepository(tx),
		quotations: NewGormQuotationRepository(tx),
		payments:   NewGormPaymentRepository(tx),
		reminders:  NewGormReminderRepository(tx),
		clients:    NewGormClientRepository(tx),
		audits:     NewGormAuditLogRepository(tx),
	}
}

func (r *txRepositories) InvoiceRepo() billing.InvoiceRepository {
	return r.invoices
}

func (r *txRepositories) QuotationRepo() billing.QuotationRepository {
	return r.quotations
}

func (r *txRepositories) PaymentRepo() billing.PaymentRepository {
	return r.payments
}

func (r *txRepositories) ReminderRepo() billing.ReminderRepository {
	return r.reminders
}

func (r *txRepositories) ClientRepo() billing.ClientRepository {
	return r.clients
}

func (r *txRepositories) AuditRepo() billing.AuditLogRepository {
	return r.audits
}
