package billing

import (
	"context"
	"testing"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPaymentService(r *testRepos) *PaymentService {
	reconcile := NewReconcileService(r.scope, fixedClock(testNow), testLogger())
	return NewPaymentService(r.scope, reconcile, fixedClock(testNow), testLogger())
}

// issuedInvoice returns an invoice of 11000.00 that can receive payments.
func issuedInvoice(t *testing.T) *billing.Invoice {
	t.Helper()
	invoice := makeDraftInvoice(t)
	require.NoError(t, invoice.TransitionTo(billing.InvoiceStatusIssued, testNow))
	return invoice
}

func paymentOf(t *testing.T, invoiceID uuid.UUID, amount string) *billing.Payment {
	t.Helper()
	p, err := billing.NewPayment(invoiceID, testNow, decimal.RequireFromString(amount),
		billing.PaymentMethodBankTransfer, "", "", uuid.New())
	require.NoError(t, err)
	return p
}

func TestPaymentService_RecordPartialPayment(t *testing.T) {
	r := newTestRepos()
	invoice := issuedInvoice(t)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)
	r.payments.On("SumByInvoice", mock.Anything, invoice.ID).Return(decimal.Zero, nil)
	r.payments.On("Create", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
	r.payments.On("FindByInvoice", mock.Anything, invoice.ID).
		Return([]billing.Payment{*paymentOf(t, invoice.ID, "4000.00")}, nil)
	r.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)
	r.audits.On("Append", mock.Anything, mock.AnythingOfType("*billing.AuditLog")).Return(nil)

	payment, updated, err := newPaymentService(r).RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:   invoice.ID,
		PaymentDate: testNow,
		Amount:      decimal.RequireFromString("4000.00"),
		Method:      billing.PaymentMethodBankTransfer,
		ActorID:     uuid.New(),
	})

	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("4000.00")))
	assert.Equal(t, billing.InvoiceStatusPartialPaid, updated.Status)
	assert.True(t, updated.PaidAmount.Equal(decimal.RequireFromString("4000.00")))
	assert.True(t, updated.BalanceDue.Equal(decimal.RequireFromString("7000.00")))
	// One mutation, one version bump on the invoice.
	assert.Equal(t, 3, updated.Version)
}

func TestPaymentService_RecordFullPaymentMarksPaid(t *testing.T) {
	r := newTestRepos()
	invoice := issuedInvoice(t)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)
	r.payments.On("SumByInvoice", mock.Anything, invoice.ID).Return(decimal.Zero, nil)
	r.payments.On("Create", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
	r.payments.On("FindByInvoice", mock.Anything, invoice.ID).
		Return([]billing.Payment{*paymentOf(t, invoice.ID, "11000.00")}, nil)
	r.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)
	r.audits.On("Append", mock.Anything, mock.AnythingOfType("*billing.AuditLog")).Return(nil)

	_, updated, err := newPaymentService(r).RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:   invoice.ID,
		PaymentDate: testNow,
		Amount:      decimal.RequireFromString("11000.00"),
		Method:      billing.PaymentMethodBankTransfer,
	})

	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, updated.Status)
	assert.True(t, updated.BalanceDue.IsZero())
}

func TestPaymentService_RejectsOverpayment(t *testing.T) {
	r := newTestRepos()
	invoice := issuedInvoice(t)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)
	r.payments.On("SumByInvoice", mock.Anything, invoice.ID).Return(decimal.Zero, nil)

	_, _, err := newPaymentService(r).RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:   invoice.ID,
		PaymentDate: testNow,
		Amount:      decimal.RequireFromString("11000.01"),
		Method:      billing.PaymentMethodBankTransfer,
	})

	var rejected *billing.PaymentRejectedError
	require.ErrorAs(t, err, &rejected)
	r.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_OverpaymentGuardUsesRecordedPayments(t *testing.T) {
	r := newTestRepos()
	// The invoice's balance column still shows the full total, but a
	// payment of 4000.00 is already on record. The guard must measure
	// against total minus the recorded sum, not the stored column.
	invoice := issuedInvoice(t)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)
	r.payments.On("SumByInvoice", mock.Anything, invoice.ID).
		Return(decimal.RequireFromString("4000.00"), nil)

	_, _, err := newPaymentService(r).RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:   invoice.ID,
		PaymentDate: testNow,
		Amount:      decimal.RequireFromString("8000.00"),
		Method:      billing.PaymentMethodBankTransfer,
	})

	var rejected *billing.PaymentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Reason, "7000.00")
	r.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_RejectsDraftInvoice(t *testing.T) {
	r := newTestRepos()
	invoice := makeDraftInvoice(t)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)

	_, _, err := newPaymentService(r).RecordPayment(context.Background(), RecordPaymentInput{
		InvoiceID:   invoice.ID,
		PaymentDate: testNow,
		Amount:      decimal.RequireFromString("100.00"),
		Method:      billing.PaymentMethodCash,
	})

	var rejected *billing.PaymentRejectedError
	require.ErrorAs(t, err, &rejected)
}

func TestPaymentService_UpdatePaymentReconciles(t *testing.T) {
	r := newTestRepos()
	invoice := issuedInvoice(t)
	payment := paymentOf(t, invoice.ID, "4000.00")
	r.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	r.payments.On("SaveWithLock", mock.Anything, payment).Return(nil)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)
	r.payments.On("FindByInvoice", mock.Anything, invoice.ID).
		Return([]billing.Payment{*paymentOf(t, invoice.ID, "5000.00")}, nil)
	r.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)
	r.audits.On("Append", mock.Anything, mock.AnythingOfType("*billing.AuditLog")).Return(nil)

	updated, parent, err := newPaymentService(r).UpdatePayment(context.Background(), payment.ID, UpdatePaymentInput{
		PaymentDate: testNow,
		Amount:      decimal.RequireFromString("5000.00"),
		Method:      billing.PaymentMethodBankTransfer,
	})

	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.RequireFromString("5000.00")))
	assert.Equal(t, 2, updated.Version)
	assert.True(t, parent.PaidAmount.Equal(decimal.RequireFromString("5000.00")))
}

func TestPaymentService_UpdatePaymentNoChangeSkipsSave(t *testing.T) {
	r := newTestRepos()
	invoice := issuedInvoice(t)
	payment := paymentOf(t, invoice.ID, "4000.00")
	r.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)

	updated, _, err := newPaymentService(r).UpdatePayment(context.Background(), payment.ID, UpdatePaymentInput{
		PaymentDate: payment.PaymentDate,
		Amount:      payment.Amount,
		Method:      payment.Method,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	r.payments.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestPaymentService_UpdatePaymentStaleVersion(t *testing.T) {
	r := newTestRepos()
	invoice := issuedInvoice(t)
	payment := paymentOf(t, invoice.ID, "4000.00")
	r.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)

	expected := 3
	_, _, err := newPaymentService(r).UpdatePayment(context.Background(), payment.ID, UpdatePaymentInput{
		PaymentDate:     testNow,
		Amount:          decimal.RequireFromString("5000.00"),
		Method:          billing.PaymentMethodBankTransfer,
		ExpectedVersion: &expected,
	})

	var stale *shared.StaleWriteError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "payment", stale.Entity)
}

func TestPaymentService_DeletePaymentReconciles(t *testing.T) {
	r := newTestRepos()
	invoice := issuedInvoice(t)
	// Simulate a previously reconciled partial payment.
	require.True(t, invoice.ApplyLedgerState(billing.DeriveLedgerState(
		invoice.Total, invoice.Status, invoice.DueDate,
		[]billing.Payment{*paymentOf(t, invoice.ID, "4000.00")}, testNow), testNow))
	payment := paymentOf(t, invoice.ID, "4000.00")

	r.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	r.payments.On("Delete", mock.Anything, payment.ID).Return(nil)
	r.invoices.On("FindByID", mock.Anything, invoice.ID, shared.ExcludeDeleted).Return(invoice, nil)
	r.payments.On("FindByInvoice", mock.Anything, invoice.ID).Return([]billing.Payment{}, nil)
	r.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)
	r.audits.On("Append", mock.Anything, mock.AnythingOfType("*billing.AuditLog")).Return(nil)

	parent, err := newPaymentService(r).DeletePayment(context.Background(), payment.ID, uuid.New())

	require.NoError(t, err)
	assert.True(t, parent.PaidAmount.IsZero())
	assert.True(t, parent.BalanceDue.Equal(parent.Total))
	// Zero paid and not past due lands back on issued.
	assert.Equal(t, billing.InvoiceStatusIssued, parent.Status)
}
