package billing

import (
	"context"
	"testing"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeClientCache is an in-memory ClientCache recording invalidations.
type fakeClientCache struct {
	clients      []billing.Client
	populated    bool
	invalidated  int
	setCallCount int
}

func (c *fakeClientCache) GetActive(_ context.Context) ([]billing.Client, bool) {
	if !c.populated {
		return nil, false
	}
	return c.clients, true
}

func (c *fakeClientCache) SetActive(_ context.Context, clients []billing.Client) {
	c.clients = clients
	c.populated = true
	c.setCallCount++
}

func (c *fakeClientCache) Invalidate(_ context.Context) {
	c.populated = false
	c.invalidated++
}

func TestClientService_ListActiveClientsCaches(t *testing.T) {
	r := newTestRepos()
	cache := &fakeClientCache{}
	client := makeClient(t)
	r.clients.On("FindActive", mock.Anything).Return([]billing.Client{*client}, nil).Once()

	svc := NewClientService(r.scope, cache, fixedClock(testNow), testLogger())

	first, err := svc.ListActiveClients(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Second call is served from the cache; the repository is not hit again.
	second, err := svc.ListActiveClients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.setCallCount)
	r.clients.AssertNumberOfCalls(t, "FindActive", 1)
}

func TestClientService_CreateClientInvalidatesCache(t *testing.T) {
	r := newTestRepos()
	cache := &fakeClientCache{populated: true}
	r.clients.On("FindByCode", mock.Anything, "ACME", shared.ExcludeDeleted).Return(nil, nil)
	r.clients.On("Create", mock.Anything, mock.AnythingOfType("*billing.Client")).Return(nil)
	r.audits.On("Append", mock.Anything, mock.AnythingOfType("*billing.AuditLog")).Return(nil)

	svc := NewClientService(r.scope, cache, fixedClock(testNow), testLogger())
	client, err := svc.CreateClient(context.Background(), CreateClientInput{
		Code:             "ACME",
		CompanyName:      "Acme Corp",
		Email:            "billing@acme.example",
		PaymentTermsDays: 30,
		ActorID:          uuid.New(),
	})

	require.NoError(t, err)
	assert.Equal(t, "ACME", client.Code)
	assert.Equal(t, 1, cache.invalidated)
}

func TestClientService_CreateClientDuplicateCode(t *testing.T) {
	r := newTestRepos()
	existing := makeClient(t)
	r.clients.On("FindByCode", mock.Anything, "ACME", shared.ExcludeDeleted).Return(existing, nil)

	svc := NewClientService(r.scope, nil, fixedClock(testNow), testLogger())
	_, err := svc.CreateClient(context.Background(), CreateClientInput{
		Code:        "ACME",
		CompanyName: "Another Acme",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CLIENT_CODE_TAKEN", domainErr.Code)
	r.clients.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClientService_UpdateClientNoChangeSkipsSave(t *testing.T) {
	r := newTestRepos()
	cache := &fakeClientCache{populated: true}
	client := makeClient(t)
	r.clients.On("FindByID", mock.Anything, client.ID, shared.ExcludeDeleted).Return(client, nil)

	svc := NewClientService(r.scope, cache, fixedClock(testNow), testLogger())
	updated, err := svc.UpdateClient(context.Background(), client.ID, UpdateClientInput{
		CompanyName:      client.CompanyName,
		ContactName:      client.ContactName,
		Email:            client.Email,
		PaymentTermsDays: client.PaymentTermsDays,
		Note:             client.Note,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	assert.Equal(t, 0, cache.invalidated)
	r.clients.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClientService_RestoreClient(t *testing.T) {
	r := newTestRepos()
	cache := &fakeClientCache{populated: true}
	client := makeClient(t)
	client.MarkDeleted(testNow.AddDate(0, 0, -1))
	r.clients.On("FindByID", mock.Anything, client.ID, shared.IncludeDeleted).Return(client, nil)
	r.clients.On("FindByCode", mock.Anything, client.Code, shared.ExcludeDeleted).Return(nil, nil)
	r.clients.On("Save", mock.Anything, client).Return(nil)
	r.audits.On("Append", mock.Anything, mock.MatchedBy(func(entry *billing.AuditLog) bool {
		return entry.Action == billing.AuditActionRestored
	})).Return(nil)

	svc := NewClientService(r.scope, cache, fixedClock(testNow), testLogger())
	restored, err := svc.RestoreClient(context.Background(), client.ID, uuid.New())

	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
	assert.Equal(t, 2, restored.Version)
	assert.Equal(t, 1, cache.invalidated)
}

func TestClientService_RestoreClientNotDeleted(t *testing.T) {
	r := newTestRepos()
	client := makeClient(t)
	r.clients.On("FindByID", mock.Anything, client.ID, shared.IncludeDeleted).Return(client, nil)

	svc := NewClientService(r.scope, nil, fixedClock(testNow), testLogger())
	_, err := svc.RestoreClient(context.Background(), client.ID, uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CLIENT_NOT_DELETED", domainErr.Code)
	r.clients.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClientService_RestoreClientCodeRetaken(t *testing.T) {
	r := newTestRepos()
	client := makeClient(t)
	client.MarkDeleted(testNow.AddDate(0, 0, -1))
	successor := makeClient(t)
	r.clients.On("FindByID", mock.Anything, client.ID, shared.IncludeDeleted).Return(client, nil)
	r.clients.On("FindByCode", mock.Anything, client.Code, shared.ExcludeDeleted).Return(successor, nil)

	svc := NewClientService(r.scope, nil, fixedClock(testNow), testLogger())
	_, err := svc.RestoreClient(context.Background(), client.ID, uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CLIENT_CODE_TAKEN", domainErr.Code)
	r.clients.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestClientService_DeleteClient(t *testing.T) {
	r := newTestRepos()
	cache := &fakeClientCache{populated: true}
	client := makeClient(t)
	r.clients.On("FindByID", mock.Anything, client.ID, shared.ExcludeDeleted).Return(client, nil)
	r.clients.On("SoftDelete", mock.Anything, client, testNow).Return(nil)
	r.audits.On("Append", mock.Anything, mock.AnythingOfType("*billing.AuditLog")).Return(nil)

	svc := NewClientService(r.scope, cache, fixedClock(testNow), testLogger())
	err := svc.DeleteClient(context.Background(), client.ID, uuid.New())

	require.NoError(t, err)
	assert.True(t, client.IsDeleted())
	assert.Equal(t, 1, cache.invalidated)
}
