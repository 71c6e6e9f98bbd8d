package billing

import (
	"context"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*billing.Invoice, error) {
	args := m.Called(ctx, id, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNo string, visibility shared.Visibility) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNo, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) LockNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) NumberExists(ctx context.Context, invoiceNo string) (bool, error) {
	args := m.Called(ctx, invoiceNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, quotationID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []billing.LineItem) error {
	args := m.Called(ctx, invoiceID, items)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SoftDelete(ctx context.Context, invoice *billing.Invoice, at time.Time) error {
	args := m.Called(ctx, invoice, at)
	return args.Error(0)
}

type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*billing.Quotation, error) {
	args := m.Called(ctx, id, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindByNumber(ctx context.Context, quotationNo string, visibility shared.Visibility) (*billing.Quotation, error) {
	args := m.Called(ctx, quotationNo, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindAll(ctx context.Context, filter billing.QuotationFilter) ([]billing.Quotation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) Count(ctx context.Context, filter billing.QuotationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuotationRepository) LockNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQuotationRepository) NumberExists(ctx context.Context, quotationNo string) (bool, error) {
	args := m.Called(ctx, quotationNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotationRepository) Create(ctx context.Context, quotation *billing.Quotation) error {
	args := m.Called(ctx, quotation)
	return args.Error(0)
}

func (m *MockQuotationRepository) SaveWithLock(ctx context.Context, quotation *billing.Quotation) error {
	args := m.Called(ctx, quotation)
	return args.Error(0)
}

func (m *MockQuotationRepository) ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []billing.LineItem) error {
	args := m.Called(ctx, quotationID, items)
	return args.Error(0)
}

func (m *MockQuotationRepository) SoftDelete(ctx context.Context, quotation *billing.Quotation, at time.Time) error {
	args := m.Called(ctx, quotation, at)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Count(ctx context.Context, filter billing.PaymentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) ExistsForInvoice(ctx context.Context, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Reminder, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindLatestByInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Reminder, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Reminder), args.Error(1)
}

func (m *MockReminderRepository) Create(ctx context.Context, reminder *billing.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID, visibility shared.Visibility) (*billing.Client, error) {
	args := m.Called(ctx, id, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Client), args.Error(1)
}

func (m *MockClientRepository) FindByCode(ctx context.Context, code string, visibility shared.Visibility) (*billing.Client, error) {
	args := m.Called(ctx, code, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Client), args.Error(1)
}

func (m *MockClientRepository) FindActive(ctx context.Context) ([]billing.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Client), args.Error(1)
}

func (m *MockClientRepository) Create(ctx context.Context, client *billing.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Save(ctx context.Context, client *billing.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) SoftDelete(ctx context.Context, client *billing.Client, at time.Time) error {
	args := m.Called(ctx, client, at)
	return args.Error(0)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *billing.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]billing.AuditLog, error) {
	args := m.Called(ctx, targetType, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.AuditLog), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// =============================================================================
// Test fixture
// =============================================================================

// testRepos bundles the mock repositories behind a NoOpTransactionScope so a
// service under test runs against them without a database.
type testRepos struct {
	invoices   *MockInvoiceRepository
	quotations *MockQuotationRepository
	payments   *MockPaymentRepository
	reminders  *MockReminderRepository
	clients    *MockClientRepository
	audits     *MockAuditLogRepository
	scope      *NoOpTransactionScope
}

func newTestRepos() *testRepos {
	r := &testRepos{
		invoices:   new(MockInvoiceRepository),
		quotations: new(MockQuotationRepository),
		payments:   new(MockPaymentRepository),
		reminders:  new(MockReminderRepository),
		clients:    new(MockClientRepository),
		audits:     new(MockAuditLogRepository),
	}
	r.scope = NewNoOpTransactionScope(r.invoices, r.quotations, r.payments, r.reminders, r.clients, r.audits)
	return r
}

func (r *testRepos) assertExpectations(t mock.TestingT) {
	r.invoices.AssertExpectations(t)
	r.quotations.AssertExpectations(t)
	r.payments.AssertExpectations(t)
	r.reminders.AssertExpectations(t)
	r.clients.AssertExpectations(t)
	r.audits.AssertExpectations(t)
}

// fixedClock returns a Clock stuck at the given instant.
func fixedClock(at time.Time) shared.Clock {
	return func() time.Time { return at }
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
