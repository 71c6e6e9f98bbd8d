package billing

import (
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft       InvoiceStatus = "draft"
	InvoiceStatusIssued      InvoiceStatus = "issued"
	InvoiceStatusPartialPaid InvoiceStatus = "partial_paid"
	InvoiceStatusPaid        InvoiceStatus = "paid"
	InvoiceStatusOverdue     InvoiceStatus = "overdue"
	InvoiceStatusCanceled    InvoiceStatus = "canceled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartialPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCanceled
}

// invoiceTransitions covers explicit transitions only. paid, partial_paid and
// overdue are also derived by ledger reconciliation, which bypasses this
// machine because it looks at money and dates rather than a requested target.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:       {InvoiceStatusIssued, InvoiceStatusCanceled},
	InvoiceStatusIssued:      {InvoiceStatusPartialPaid, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCanceled},
	InvoiceStatusPartialPaid: {InvoiceStatusPaid, InvoiceStatusOverdue},
	InvoiceStatusOverdue:     {InvoiceStatusPartialPaid, InvoiceStatusPaid},
	InvoiceStatusPaid:        {},
	InvoiceStatusCanceled:    {},
}

// CanTransitionTo reports whether target is a legal explicit transition.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	allowed, ok := invoiceTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// Invoice is the aggregate root of the payment ledger. PaidAmount and
// BalanceDue are derived from the attached payments by reconciliation and
// never written directly.
type Invoice struct {
	shared.BaseAggregateRoot
	shared.Tombstone
	InvoiceNo   string          `json:"invoice_no"`
	ClientID    uuid.UUID       `json:"client_id"`
	QuotationID *uuid.UUID      `json:"quotation_id"`
	IssueDate   time.Time       `json:"issue_date"`
	DueDate     time.Time       `json:"due_date"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxTotal    decimal.Decimal `json:"tax_total"`
	Total       decimal.Decimal `json:"total"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	BalanceDue  decimal.Decimal `json:"balance_due"`
	Status      InvoiceStatus   `json:"status"`
	SentAt      *time.Time      `json:"sent_at"`
	Notes       string          `json:"notes"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	Items       []LineItem      `json:"items"`
}

// NewInvoice creates a new invoice in draft with the given items. The full
// total starts outstanding.
func NewInvoice(invoiceNo string, clientID uuid.UUID, quotationID *uuid.UUID, issueDate, dueDate time.Time, items []LineItem, notes string, createdBy uuid.UUID) (*Invoice, error) {
	if invoiceNo == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	totals := ComputeTotals(items)
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNo:         invoiceNo,
		ClientID:          clientID,
		QuotationID:       quotationID,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Subtotal:          totals.Subtotal,
		TaxTotal:          totals.TaxTotal,
		Total:             totals.Total,
		PaidAmount:        decimal.Zero,
		BalanceDue:        totals.Total,
		Status:            InvoiceStatusDraft,
		Notes:             notes,
		CreatedBy:         createdBy,
		Items:             items,
	}, nil
}

// IsEditable returns true while items and header fields may still change.
func (inv *Invoice) IsEditable() bool {
	return inv.Status == InvoiceStatusDraft
}

// CanReceivePayment reports whether a payment may be recorded: the invoice
// must not be draft, paid or canceled, and must have an outstanding balance.
func (inv *Invoice) CanReceivePayment() bool {
	switch inv.Status {
	case InvoiceStatusDraft, InvoiceStatusPaid, InvoiceStatusCanceled:
		return false
	}
	return inv.BalanceDue.GreaterThan(decimal.Zero)
}

// CanSendReminder reports whether the invoice is in a reminder-eligible
// status with an outstanding balance.
func (inv *Invoice) CanSendReminder() bool {
	switch inv.Status {
	case InvoiceStatusIssued, InvoiceStatusPartialPaid, InvoiceStatusOverdue:
		return inv.BalanceDue.GreaterThan(decimal.Zero)
	}
	return false
}

// TransitionTo applies an explicit status change through the machine.
// Entering issued for the first time stamps SentAt.
func (inv *Invoice) TransitionTo(target InvoiceStatus, now time.Time) error {
	if !inv.Status.IsValid() || !target.IsValid() || !inv.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{Entity: "invoice", From: inv.Status.String(), To: target.String()}
	}
	inv.Status = target
	if target == InvoiceStatusIssued && inv.SentAt == nil {
		sentAt := now
		inv.SentAt = &sentAt
	}
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// ReplaceItems swaps the full item set and recomputes totals. Replacing
// items forces the balance back to the new total minus payments on the next
// reconciliation; draft invoices have no payments so the balance follows the
// total directly.
func (inv *Invoice) ReplaceItems(items []LineItem, now time.Time) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE",
			"Only draft invoices can be edited")
	}
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}
	totals := ComputeTotals(items)
	inv.Items = items
	inv.Subtotal = totals.Subtotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	inv.BalanceDue = totals.Total.Sub(inv.PaidAmount)
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// UpdateDraft rewrites the editable fields of a draft invoice in one
// mutation: header fields, the full item set, and the recomputed totals.
// The version is bumped once regardless of how many fields changed.
func (inv *Invoice) UpdateDraft(issueDate, dueDate time.Time, notes string, items []LineItem, now time.Time) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE",
			"Only draft invoices can be edited")
	}
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}
	if dueDate.Before(issueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	totals := ComputeTotals(items)
	inv.IssueDate = issueDate
	inv.DueDate = dueDate
	inv.Notes = notes
	inv.Items = items
	inv.Subtotal = totals.Subtotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	inv.BalanceDue = totals.Total.Sub(inv.PaidAmount)
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// ApplyLedgerState writes a reconciliation result onto the invoice. Amount
// fields are always taken; the derived status is taken only when
// reconciliation decided one (draft and canceled invoices keep their
// status). The version is bumped only when a field actually changed, which
// is what makes repeated reconciliation idempotent. Returns whether any
// field changed.
func (inv *Invoice) ApplyLedgerState(state LedgerState, now time.Time) bool {
	changed := !inv.PaidAmount.Equal(state.PaidAmount) || !inv.BalanceDue.Equal(state.BalanceDue)
	inv.PaidAmount = state.PaidAmount
	inv.BalanceDue = state.BalanceDue
	if state.StatusChanged && inv.Status != state.Status {
		inv.Status = state.Status
		changed = true
	}
	if changed {
		inv.UpdatedAt = now
		inv.IncrementVersion()
	}
	return changed
}
