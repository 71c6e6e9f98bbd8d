package billing

import (
	"strings"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
)

// ReminderType represents the escalation level of a payment reminder
type ReminderType string

const (
	ReminderTypeSoft   ReminderType = "soft"
	ReminderTypeNormal ReminderType = "normal"
	ReminderTypeFinal  ReminderType = "final"
)

// IsValid checks if the reminder type is valid
func (t ReminderType) IsValid() bool {
	return t == ReminderTypeSoft || t == ReminderTypeNormal || t == ReminderTypeFinal
}

// ReminderCooldown is the minimum spacing between reminders to one invoice,
// regardless of type. The boundary is inclusive: a reminder sent exactly
// this long ago still blocks a new one.
const ReminderCooldown = 7 * 24 * time.Hour

// Reminder is an append-only record of a payment reminder sent for an
// invoice. It is never mutated after creation.
type Reminder struct {
	shared.BaseEntity
	InvoiceID    uuid.UUID    `json:"invoice_id"`
	ReminderType ReminderType `json:"reminder_type"`
	SentTo       string       `json:"sent_to"`
	Subject      string       `json:"subject"`
	Body         string       `json:"body"`
	SentAt       time.Time    `json:"sent_at"`
	SentBy       uuid.UUID    `json:"sent_by"`
}

// NewReminder creates a reminder record
func NewReminder(invoiceID uuid.UUID, reminderType ReminderType, sentTo, subject, body string, sentAt time.Time, sentBy uuid.UUID) (*Reminder, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !reminderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REMINDER_TYPE", "Reminder type is not valid")
	}
	if sentTo == "" {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Reminder recipient cannot be empty")
	}
	return &Reminder{
		BaseEntity:   shared.NewBaseEntity(),
		InvoiceID:    invoiceID,
		ReminderType: reminderType,
		SentTo:       sentTo,
		Subject:      subject,
		Body:         body,
		SentAt:       sentAt,
		SentBy:       sentBy,
	}, nil
}

// CheckReminderCooldown rejects a new reminder when the most recent one was
// sent within ReminderCooldown of now, boundary inclusive. lastSentAt is nil
// when the invoice has never been reminded.
func CheckReminderCooldown(lastSentAt *time.Time, now time.Time) error {
	if lastSentAt == nil {
		return nil
	}
	if now.Sub(*lastSentAt) <= ReminderCooldown {
		return &ReminderCooldownError{LastSentAt: *lastSentAt}
	}
	return nil
}

// reminderTemplates are the per-type subject/body templates with
// substitution placeholders.
var reminderTemplates = map[ReminderType]struct {
	Subject string
	Body    string
}{
	ReminderTypeSoft: {
		Subject: "Friendly Payment Reminder - Invoice {invoice_no}",
		Body:    "Dear {client_name}, this is a friendly reminder that invoice {invoice_no} for {total} is due on {due_date}. Balance due: {balance_due}.",
	},
	ReminderTypeNormal: {
		Subject: "Payment Reminder - Invoice {invoice_no}",
		Body:    "Dear {client_name}, invoice {invoice_no} for {total} was due on {due_date}. Please arrange payment as soon as possible. Balance due: {balance_due}.",
	},
	ReminderTypeFinal: {
		Subject: "FINAL NOTICE - Invoice {invoice_no}",
		Body:    "Dear {client_name}, this is a FINAL NOTICE for invoice {invoice_no}. The payment of {balance_due} is now overdue. Immediate action is required.",
	},
}

// RenderReminder fills the template for the given type from the invoice and
// client name.
func RenderReminder(reminderType ReminderType, inv *Invoice, clientName string) (subject, body string) {
	tpl := reminderTemplates[reminderType]
	r := strings.NewReplacer(
		"{invoice_no}", inv.InvoiceNo,
		"{client_name}", clientName,
		"{total}", inv.Total.StringFixed(2),
		"{due_date}", inv.DueDate.Format("2006-01-02"),
		"{balance_due}", inv.BalanceDue.StringFixed(2),
	)
	return r.Replace(tpl.Subject), r.Replace(tpl.Body)
}
