package billing

import (
	"fmt"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

// InvalidTransitionError is returned when a requested status change is not in
// the allowed-target set of the current status, or the current status is not
// a recognized state. It is a caller error and not retryable as-is.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition %s from %s to %s", e.Entity, e.From, e.To)
}

// PaymentRejectedError is a domain validation failure on recording a payment:
// the amount exceeds the outstanding balance or the invoice is not in a
// payment-receptive status. The reason is shown to the user verbatim.
type PaymentRejectedError struct {
	Reason string
}

func (e *PaymentRejectedError) Error() string {
	return e.Reason
}

// ReminderCooldownError is returned when a reminder of any type was sent to
// the invoice within the preceding seven days (boundary inclusive). It
// carries the most recent send time for user display.
type ReminderCooldownError struct {
	LastSentAt time.Time
}

func (e *ReminderCooldownError) Error() string {
	return fmt.Sprintf("a reminder was already sent on %s; wait at least %d days before sending another",
		e.LastSentAt.Format("2006-01-02 15:04:05"), int(ReminderCooldown.Hours()/24))
}

// ErrReminderNotEligible is returned when the invoice status or balance does
// not permit reminders at all.
var ErrReminderNotEligible = shared.NewDomainError("REMINDER_NOT_ELIGIBLE",
	"Reminders can only be sent for issued, partially paid or overdue invoices with an outstanding balance")
