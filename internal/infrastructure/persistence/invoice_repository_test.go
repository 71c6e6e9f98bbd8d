package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gdb, mock
}

func invoiceColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version", "deleted_at",
		"invoice_no", "client_id", "quotation_id", "issue_date", "due_date",
		"subtotal", "tax_total", "total", "paid_amount", "balance_due",
		"status", "sent_at", "notes", "created_by",
	}
}

func invoiceRow(id uuid.UUID, invoiceNo string, version int) []driverValue {
	now := time.Now()
	return []driverValue{
		id, now, now, version, nil,
		invoiceNo, uuid.New(), nil, now, now.Add(30 * 24 * time.Hour),
		"100.00", "10.00", "110.00", "0.00", "110.00",
		"draft", nil, "", uuid.New(),
	}
}

type driverValue = interface{}

func TestInvoiceFindByIDNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	mock.ExpectQuery(`SELECT .* FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()))

	inv, err := repo.FindByID(context.Background(), uuid.New(), shared.ExcludeDeleted)
	require.NoError(t, err)
	assert.Nil(t, inv)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceFindByIDExcludesDeleted(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "invoices" WHERE deleted_at IS NULL AND id = .*`).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()).AddRow(invoiceRow(id, "I-2024-00001", 1)...))
	mock.ExpectQuery(`SELECT .* FROM "invoice_items"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "invoice_id", "description", "quantity", "unit_price", "tax_rate", "line_total", "sort_order",
		}).AddRow(uuid.New(), id, "Consulting", "1.00", "100.00", "10.00", "100.00", 0))

	inv, err := repo.FindByID(context.Background(), id, shared.ExcludeDeleted)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "I-2024-00001", inv.InvoiceNo)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Consulting", inv.Items[0].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceFindByIDIncludeDeletedSkipsFilter(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)
	id := uuid.New()

	// No deleted_at predicate when tombstones are visible
	mock.ExpectQuery(`SELECT .* FROM "invoices" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()).AddRow(invoiceRow(id, "I-2024-00002", 1)...))
	mock.ExpectQuery(`SELECT .* FROM "invoice_items"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "invoice_id", "description", "quantity", "unit_price", "tax_rate", "line_total", "sort_order",
		}))

	inv, err := repo.FindByID(context.Background(), id, shared.IncludeDeleted)
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceLockNumbersByPrefix(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	mock.ExpectQuery(`SELECT "invoice_no" FROM "invoices" WHERE invoice_no LIKE .* ORDER BY invoice_no ASC FOR UPDATE`).
		WithArgs("I-2024-%").
		WillReturnRows(sqlmock.NewRows([]string{"invoice_no"}).
			AddRow("I-2024-00001").
			AddRow("I-2024-00002"))

	numbers, err := repo.LockNumbersByPrefix(context.Background(), "I-2024-")
	require.NoError(t, err)
	assert.Equal(t, []string{"I-2024-00001", "I-2024-00002"}, numbers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceNumberExists(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE invoice_no = .*`).
		WithArgs("I-2024-00007").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.NumberExists(context.Background(), "I-2024-00007")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInvoiceSaveWithLock(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	inv := &billing.Invoice{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	inv.Version = 2

	mock.ExpectExec(`UPDATE "invoices" SET .* WHERE id = .* AND version = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveWithLock(context.Background(), inv))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceSaveWithLockStale(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	inv := &billing.Invoice{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	inv.Version = 2

	mock.ExpectExec(`UPDATE "invoices" SET .* WHERE id = .* AND version = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "version" FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))

	err := repo.SaveWithLock(context.Background(), inv)
	var stale *shared.StaleWriteError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, "invoice", stale.Entity)
	assert.Equal(t, 1, stale.ExpectedVersion)
	assert.Equal(t, 3, stale.CurrentVersion)
}

func TestInvoiceSoftDelete(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	inv := &billing.Invoice{BaseAggregateRoot: shared.NewBaseAggregateRoot()}

	mock.ExpectExec(`UPDATE "invoices" SET .* WHERE id = .* AND deleted_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), inv, time.Now()))
}

func TestInvoiceSoftDeleteMissing(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	inv := &billing.Invoice{BaseAggregateRoot: shared.NewBaseAggregateRoot()}

	mock.ExpectExec(`UPDATE "invoices" SET .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), inv, time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceFindAllUnpaginated(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	// PageSize 0 must not emit LIMIT/OFFSET: the overdue sweep and the
	// export read the full result set.
	mock.ExpectQuery(`SELECT .* FROM "invoices" WHERE deleted_at IS NULL AND status = .* ORDER BY created_at DESC$`).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()).
			AddRow(invoiceRow(uuid.New(), "I-2024-00001", 1)...).
			AddRow(invoiceRow(uuid.New(), "I-2024-00002", 1)...))

	status := billing.InvoiceStatusDraft
	invoices, err := repo.FindAll(context.Background(), billing.InvoiceFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, invoices, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceFindAllPaginated(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	mock.ExpectQuery(`SELECT .* FROM "invoices" WHERE deleted_at IS NULL ORDER BY invoice_no ASC LIMIT .*`).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()))

	_, err := repo.FindAll(context.Background(), billing.InvoiceFilter{
		Page:     2,
		PageSize: 20,
		OrderBy:  "invoice_no",
		OrderDir: "asc",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceFindAllRejectsUnknownSortField(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)

	// Unknown sort input must fall back to the whitelist default
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(invoiceColumns()))

	_, err := repo.FindAll(context.Background(), billing.InvoiceFilter{
		OrderBy: "invoice_no; DROP TABLE invoices",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceExistsForQuotation(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormInvoiceRepository(gdb)
	quotationID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE quotation_id = .* AND deleted_at IS NULL`).
		WithArgs(quotationID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ExistsForQuotation(context.Background(), quotationID)
	require.NoError(t, err)
	assert.False(t, exists)
}
