package billing

import (
	"context"
	"testing"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExportService_CollectRows(t *testing.T) {
	r := newTestRepos()
	client := makeClient(t)

	issued := issuedInvoice(t)
	issued.ClientID = client.ID
	draft := makeDraftInvoice(t)
	draft.ClientID = client.ID
	canceled := issuedInvoice(t)
	canceled.ClientID = client.ID
	require.NoError(t, canceled.TransitionTo(billing.InvoiceStatusCanceled, testNow))

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	r.invoices.On("FindAll", mock.Anything, mock.AnythingOfType("billing.InvoiceFilter")).
		Return([]billing.Invoice{*issued, *draft, *canceled}, nil)
	r.clients.On("FindByID", mock.Anything, client.ID, shared.IncludeDeleted).Return(client, nil)

	svc := NewExportService(r.scope, testLogger())
	rows, err := svc.CollectRows(context.Background(), from, to)

	require.NoError(t, err)
	// Draft and canceled invoices never reach the accounting export.
	require.Len(t, rows, 1)
	assert.Equal(t, issued.InvoiceNo, rows[0].InvoiceNo)
	assert.Equal(t, client.Code, rows[0].ClientCode)
	assert.Equal(t, client.CompanyName, rows[0].ClientName)
	assert.True(t, rows[0].Total.Equal(issued.Total))
	// The client is resolved once and reused for all its invoices.
	r.clients.AssertNumberOfCalls(t, "FindByID", 1)
}
