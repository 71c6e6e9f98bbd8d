package billing

import (
	"encoding/json"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditAction is the kind of change an audit entry records
type AuditAction string

const (
	AuditActionCreated       AuditAction = "created"
	AuditActionUpdated       AuditAction = "updated"
	AuditActionDeleted       AuditAction = "deleted"
	AuditActionRestored      AuditAction = "restored"
	AuditActionStatusChanged AuditAction = "status_changed"
	AuditActionConverted     AuditAction = "converted"
	AuditActionReconciled    AuditAction = "reconciled"
	AuditActionReminderSent  AuditAction = "reminder_sent"
)

// AuditLog is an append-only before/after record of a financial mutation.
// The core emits these; persistence is a collaborator.
type AuditLog struct {
	shared.BaseEntity
	ActorID    uuid.UUID       `json:"actor_id"`
	Action     AuditAction     `json:"action"`
	TargetType string          `json:"target_type"`
	TargetID   uuid.UUID       `json:"target_id"`
	Before     json.RawMessage `json:"before"`
	After      json.RawMessage `json:"after"`
}

// Snapshot is an immutable field map taken from an entity before and after a
// mutation. Diffing two snapshots is what decides whether anything changed,
// instead of relying on ORM dirty tracking.
type Snapshot map[string]interface{}

// Diff returns the before/after values of fields that differ between the two
// snapshots, compared through their JSON encoding. Timestamps-only changes
// are not audit-worthy, so callers take snapshots without UpdatedAt.
func (s Snapshot) Diff(after Snapshot) (before, changed Snapshot) {
	before = Snapshot{}
	changed = Snapshot{}
	for key, afterVal := range after {
		beforeVal, existed := s[key]
		if !existed || !jsonEqual(beforeVal, afterVal) {
			if existed {
				before[key] = beforeVal
			}
			changed[key] = afterVal
		}
	}
	return before, changed
}

func jsonEqual(a, b interface{}) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}

// NewAuditLog builds an audit entry from snapshots. Nil snapshots are legal:
// created entries have no before, deleted entries no after.
func NewAuditLog(actorID uuid.UUID, action AuditAction, targetType string, targetID uuid.UUID, before, after Snapshot, at time.Time) (*AuditLog, error) {
	entry := &AuditLog{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: at, UpdatedAt: at},
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if before != nil {
		raw, err := json.Marshal(before)
		if err != nil {
			return nil, err
		}
		entry.Before = raw
	}
	if after != nil {
		raw, err := json.Marshal(after)
		if err != nil {
			return nil, err
		}
		entry.After = raw
	}
	return entry, nil
}

// InvoiceSnapshot captures the audit-relevant fields of an invoice.
func InvoiceSnapshot(inv *Invoice) Snapshot {
	return Snapshot{
		"invoice_no":  inv.InvoiceNo,
		"client_id":   inv.ClientID,
		"issue_date":  inv.IssueDate.Format("2006-01-02"),
		"due_date":    inv.DueDate.Format("2006-01-02"),
		"subtotal":    inv.Subtotal.StringFixed(2),
		"tax_total":   inv.TaxTotal.StringFixed(2),
		"total":       inv.Total.StringFixed(2),
		"paid_amount": inv.PaidAmount.StringFixed(2),
		"balance_due": inv.BalanceDue.StringFixed(2),
		"status":      inv.Status,
		"version":     inv.Version,
	}
}

// PaymentSnapshot captures the audit-relevant fields of a payment.
func PaymentSnapshot(p *Payment) Snapshot {
	return Snapshot{
		"invoice_id":   p.InvoiceID,
		"payment_date": p.PaymentDate.Format("2006-01-02"),
		"amount":       p.Amount.StringFixed(2),
		"method":       p.Method,
		"reference_no": p.ReferenceNo,
		"note":         p.Note,
		"version":      p.Version,
	}
}

// QuotationSnapshot captures the audit-relevant fields of a quotation.
func QuotationSnapshot(q *Quotation) Snapshot {
	return Snapshot{
		"quotation_no": q.QuotationNo,
		"client_id":    q.ClientID,
		"issue_date":   q.IssueDate.Format("2006-01-02"),
		"subtotal":     q.Subtotal.StringFixed(2),
		"tax_total":    q.TaxTotal.StringFixed(2),
		"total":        q.Total.StringFixed(2),
		"status":       q.Status,
		"version":      q.Version,
	}
}
