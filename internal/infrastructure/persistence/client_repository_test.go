package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

func clientColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version", "deleted_at",
		"code", "company_name", "contact_name", "email", "payment_terms_days", "note",
	}
}

func clientRow(id uuid.UUID, code string, deletedAt *time.Time) []driverValue {
	now := time.Now()
	return []driverValue{
		id, now, now, 1, deletedAt,
		code, "Acme Corp", "Jordan", "ap@acme.example", 30, "",
	}
}

func TestClientFindByCode(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormClientRepository(gdb)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "clients" WHERE deleted_at IS NULL AND code = .*`).
		WillReturnRows(sqlmock.NewRows(clientColumns()).AddRow(clientRow(id, "ACME", nil)...))

	client, err := repo.FindByCode(context.Background(), "ACME", shared.ExcludeDeleted)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "Acme Corp", client.CompanyName)
	assert.Equal(t, 30, client.PaymentTermsDays)
}

func TestClientFindByCodeNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormClientRepository(gdb)

	mock.ExpectQuery(`SELECT .* FROM "clients"`).
		WillReturnRows(sqlmock.NewRows(clientColumns()))

	client, err := repo.FindByCode(context.Background(), "NOPE", shared.ExcludeDeleted)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestClientFindByIDIncludeDeleted(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormClientRepository(gdb)
	id := uuid.New()
	deletedAt := time.Now()

	// Documents of a deleted client still resolve the client row
	mock.ExpectQuery(`SELECT .* FROM "clients" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows(clientColumns()).AddRow(clientRow(id, "GONE", &deletedAt)...))

	client, err := repo.FindByID(context.Background(), id, shared.IncludeDeleted)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.True(t, client.IsDeleted())
}

func TestClientFindActive(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormClientRepository(gdb)

	mock.ExpectQuery(`SELECT .* FROM "clients" WHERE deleted_at IS NULL ORDER BY code ASC`).
		WillReturnRows(sqlmock.NewRows(clientColumns()).
			AddRow(clientRow(uuid.New(), "ACME", nil)...).
			AddRow(clientRow(uuid.New(), "BETA", nil)...))

	clients, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}
