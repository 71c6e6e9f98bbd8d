package billing

import (
	"context"
	"fmt"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientCache caches the active-client listing that every document form
// needs. Misses and cache errors fall through to the repository; writes
// invalidate.
type ClientCache interface {
	GetActive(ctx context.Context) ([]billing.Client, bool)
	SetActive(ctx context.Context, clients []billing.Client)
	Invalidate(ctx context.Context)
}

// ClientService manages the billed parties.
type ClientService struct {
	scope  TransactionScope
	cache  ClientCache
	clock  shared.Clock
	logger *zap.Logger
}

// NewClientService creates a ClientService. The cache may be nil.
func NewClientService(scope TransactionScope, cache ClientCache, clock shared.Clock, logger *zap.Logger) *ClientService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &ClientService{scope: scope, cache: cache, clock: clock, logger: logger}
}

// GetClient returns one client.
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*billing.Client, error) {
	var client *billing.Client
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		client, err = loadClient(ctx, repos, id)
		return err
	})
	return client, err
}

// ListActiveClients returns all live clients, serving from the cache when
// it holds a fresh copy.
func (s *ClientService) ListActiveClients(ctx context.Context) ([]billing.Client, error) {
	if s.cache != nil {
		if clients, ok := s.cache.GetActive(ctx); ok {
			return clients, nil
		}
	}

	var clients []billing.Client
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		clients, err = repos.ClientRepo().FindActive(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetActive(ctx, clients)
	}
	return clients, nil
}

// CreateClient registers a client. Codes are unique among live clients.
func (s *ClientService) CreateClient(ctx context.Context, input CreateClientInput) (*billing.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create")
	defer span.End()
	telemetry.SetAttribute(span, "client_code", input.Code)

	var client *billing.Client
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.ClientRepo().FindByCode(ctx, input.Code, shared.ExcludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to check client code: %w", err)
		}
		if existing != nil {
			return shared.NewDomainError("CLIENT_CODE_TAKEN",
				fmt.Sprintf("Client code %s is already in use", input.Code))
		}

		client, err = billing.NewClient(input.Code, input.CompanyName, input.ContactName, input.Email, input.PaymentTermsDays)
		if err != nil {
			return err
		}
		client.Note = input.Note
		if err := repos.ClientRepo().Create(ctx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		entry, err := billing.NewAuditLog(input.ActorID, billing.AuditActionCreated, "client", client.ID, nil, billing.Snapshot{
			"code":         client.Code,
			"company_name": client.CompanyName,
		}, s.clock())
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.logger.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("code", client.Code))
	return client, nil
}

// UpdateClient applies a profile update; an unchanged profile is not
// written.
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*billing.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "update")
	defer span.End()
	telemetry.SetAttribute(span, "client_id", id.String())

	var client *billing.Client
	var changed bool
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		client, err = loadClient(ctx, repos, id)
		if err != nil {
			return err
		}
		changed = client.Update(input.CompanyName, input.ContactName, input.Email, input.PaymentTermsDays, input.Note, s.clock())
		if !changed {
			return nil
		}
		return repos.ClientRepo().Save(ctx, client)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if changed && s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return client, nil
}

// DeleteClient tombstones a client. Clients with live invoices or
// quotations keep their documents; the tombstoned client stays readable
// through them.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "delete")
	defer span.End()
	telemetry.SetAttribute(span, "client_id", id.String())

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		client, err := loadClient(ctx, repos, id)
		if err != nil {
			return err
		}
		now := s.clock()
		client.MarkDeleted(now)
		if err := repos.ClientRepo().SoftDelete(ctx, client, now); err != nil {
			return err
		}
		entry, err := billing.NewAuditLog(actorID, billing.AuditActionDeleted, "client", client.ID, billing.Snapshot{
			"code":         client.Code,
			"company_name": client.CompanyName,
		}, nil, now)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// RestoreClient lifts the tombstone from a deleted client. The code must
// not have been taken by a live client in the meantime.
func (s *ClientService) RestoreClient(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*billing.Client, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "restore")
	defer span.End()
	telemetry.SetAttribute(span, "client_id", id.String())

	var client *billing.Client
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		client, err = repos.ClientRepo().FindByID(ctx, id, shared.IncludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		if !client.IsDeleted() {
			return shared.NewDomainError("CLIENT_NOT_DELETED", "Client is not deleted")
		}

		live, err := repos.ClientRepo().FindByCode(ctx, client.Code, shared.ExcludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to check client code: %w", err)
		}
		if live != nil {
			return shared.NewDomainError("CLIENT_CODE_TAKEN",
				fmt.Sprintf("Client code %s is already in use", client.Code))
		}

		now := s.clock()
		client.Restore(now)
		if err := repos.ClientRepo().Save(ctx, client); err != nil {
			return err
		}
		entry, err := billing.NewAuditLog(actorID, billing.AuditActionRestored, "client", client.ID, nil, billing.Snapshot{
			"code":         client.Code,
			"company_name": client.CompanyName,
		}, now)
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.logger.Info("client restored",
		zap.String("client_id", client.ID.String()),
		zap.String("code", client.Code))
	return client, nil
}

func loadClient(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*billing.Client, error) {
	client, err := repos.ClientRepo().FindByID(ctx, id, shared.ExcludeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
	}
	return client, nil
}
