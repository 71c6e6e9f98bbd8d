package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mailer delivers a rendered reminder to the client. Implementations live
// in infrastructure; tests substitute a mock.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ReminderService sends payment reminders for outstanding invoices. An
// invoice is eligible while it is issued, partially paid or overdue with an
// outstanding balance, and at most one reminder goes out per cooldown
// window, whatever its type.
type ReminderService struct {
	scope  TransactionScope
	mailer Mailer
	clock  shared.Clock
	logger *zap.Logger
}

// NewReminderService creates a ReminderService.
func NewReminderService(scope TransactionScope, mailer Mailer, clock shared.Clock, logger *zap.Logger) *ReminderService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &ReminderService{scope: scope, mailer: mailer, clock: clock, logger: logger}
}

// ListReminders returns the reminder history of an invoice, newest first.
func (s *ReminderService) ListReminders(ctx context.Context, invoiceID uuid.UUID) ([]billing.Reminder, error) {
	var reminders []billing.Reminder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		reminders, err = repos.ReminderRepo().FindByInvoice(ctx, invoiceID)
		return err
	})
	return reminders, err
}

// SendReminder renders and delivers a reminder for the invoice, recording
// it in the history. Delivery runs inside the transaction: a failed send
// rolls the record back, so the cooldown never counts a mail that was not
// sent.
func (s *ReminderService) SendReminder(ctx context.Context, invoiceID uuid.UUID, reminderType billing.ReminderType, actorID uuid.UUID) (*billing.Reminder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reminder", "send")
	defer span.End()
	telemetry.SetAttributes(span,
		"invoice_id", invoiceID.String(),
		"reminder_type", string(reminderType))

	if !reminderType.IsValid() {
		err := shared.NewDomainError("INVALID_REMINDER_TYPE",
			fmt.Sprintf("Unknown reminder type: %s", reminderType))
		telemetry.RecordError(span, err)
		return nil, err
	}

	var reminder *billing.Reminder
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := loadInvoice(ctx, repos, invoiceID, shared.ExcludeDeleted)
		if err != nil {
			return err
		}
		if !invoice.CanSendReminder() {
			return billing.ErrReminderNotEligible
		}

		latest, err := repos.ReminderRepo().FindLatestByInvoice(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to load reminder history: %w", err)
		}
		var lastSentAt *time.Time
		if latest != nil {
			lastSentAt = &latest.SentAt
		}
		now := s.clock()
		if err := billing.CheckReminderCooldown(lastSentAt, now); err != nil {
			return err
		}

		client, err := repos.ClientRepo().FindByID(ctx, invoice.ClientID, shared.IncludeDeleted)
		if err != nil {
			return fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		if client.Email == "" {
			return shared.NewDomainError("CLIENT_HAS_NO_EMAIL",
				"Client has no email address to send a reminder to")
		}

		subject, body := billing.RenderReminder(reminderType, invoice, client.CompanyName)
		reminder, err = billing.NewReminder(invoiceID, reminderType, client.Email, subject, body, now, actorID)
		if err != nil {
			return err
		}
		if err := repos.ReminderRepo().Create(ctx, reminder); err != nil {
			return fmt.Errorf("failed to record reminder: %w", err)
		}

		entry, err := billing.NewAuditLog(actorID, billing.AuditActionReminderSent, "invoice", invoiceID, nil, billing.Snapshot{
			"reminder_type": string(reminderType),
			"sent_to":       client.Email,
			"balance_due":   invoice.BalanceDue.StringFixed(2),
		}, now)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return err
		}

		return s.mailer.Send(ctx, client.Email, subject, body)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("reminder sent",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("reminder_type", string(reminderType)),
		zap.String("sent_to", reminder.SentTo))
	return reminder, nil
}
