package billing

import (
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationStatus represents the status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusApproved QuotationStatus = "approved"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// IsValid checks if the status is a valid QuotationStatus
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusApproved,
		QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of QuotationStatus
func (s QuotationStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the quotation is in a terminal state
func (s QuotationStatus) IsTerminal() bool {
	return s == QuotationStatusApproved || s == QuotationStatusRejected || s == QuotationStatusExpired
}

// quotationTransitions is the explicit status machine. Expiry is a
// time-based transition triggered externally and is not part of it.
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:    {QuotationStatusApproved, QuotationStatusRejected, QuotationStatusSent},
	QuotationStatusSent:     {QuotationStatusApproved, QuotationStatusRejected},
	QuotationStatusApproved: {},
	QuotationStatusRejected: {},
	QuotationStatusExpired:  {},
}

// CanTransitionTo reports whether target is a legal explicit transition.
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	allowed, ok := quotationTransitions[s]
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

// Quotation is a priced offer to a client. Once it leaves draft it becomes
// immutable except for its status; an approved quotation may be converted
// into an invoice at most once.
type Quotation struct {
	shared.BaseAggregateRoot
	shared.Tombstone
	QuotationNo string          `json:"quotation_no"`
	ClientID    uuid.UUID       `json:"client_id"`
	IssueDate   time.Time       `json:"issue_date"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxTotal    decimal.Decimal `json:"tax_total"`
	Total       decimal.Decimal `json:"total"`
	Status      QuotationStatus `json:"status"`
	Notes       string          `json:"notes"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	Items       []LineItem      `json:"items"`
}

// NewQuotation creates a new quotation in draft with the given items.
func NewQuotation(quotationNo string, clientID uuid.UUID, issueDate time.Time, validUntil *time.Time, items []LineItem, notes string, createdBy uuid.UUID) (*Quotation, error) {
	if quotationNo == "" {
		return nil, shared.NewDomainError("INVALID_QUOTATION_NUMBER", "Quotation number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Quotation must have at least one item")
	}

	totals := ComputeTotals(items)
	return &Quotation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		QuotationNo:       quotationNo,
		ClientID:          clientID,
		IssueDate:         issueDate,
		ValidUntil:        validUntil,
		Subtotal:          totals.Subtotal,
		TaxTotal:          totals.TaxTotal,
		Total:             totals.Total,
		Status:            QuotationStatusDraft,
		Notes:             notes,
		CreatedBy:         createdBy,
		Items:             items,
	}, nil
}

// IsEditable returns true while items and header fields may still change.
func (q *Quotation) IsEditable() bool {
	return q.Status == QuotationStatusDraft
}

// ReplaceItems swaps the full item set and recomputes totals. Items are
// replaced wholesale, never patched row by row.
func (q *Quotation) ReplaceItems(items []LineItem, now time.Time) error {
	if !q.IsEditable() {
		return shared.NewDomainError("QUOTATION_NOT_EDITABLE",
			"Only draft quotations can be edited")
	}
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Quotation must have at least one item")
	}
	totals := ComputeTotals(items)
	q.Items = items
	q.Subtotal = totals.Subtotal
	q.TaxTotal = totals.TaxTotal
	q.Total = totals.Total
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

// UpdateDraft rewrites the editable fields of a draft quotation in one
// mutation. The version is bumped once regardless of how many fields
// changed.
func (q *Quotation) UpdateDraft(issueDate time.Time, validUntil *time.Time, notes string, items []LineItem, now time.Time) error {
	if !q.IsEditable() {
		return shared.NewDomainError("QUOTATION_NOT_EDITABLE",
			"Only draft quotations can be edited")
	}
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Quotation must have at least one item")
	}
	totals := ComputeTotals(items)
	q.IssueDate = issueDate
	q.ValidUntil = validUntil
	q.Notes = notes
	q.Items = items
	q.Subtotal = totals.Subtotal
	q.TaxTotal = totals.TaxTotal
	q.Total = totals.Total
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

// TransitionTo applies an explicit status change through the machine.
func (q *Quotation) TransitionTo(target QuotationStatus, now time.Time) error {
	if !q.Status.IsValid() || !target.IsValid() || !q.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{Entity: "quotation", From: q.Status.String(), To: target.String()}
	}
	q.Status = target
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

// CanConvertToInvoice reports whether this quotation may become an invoice:
// approved, not tombstoned, and carrying items. The at-most-once rule is
// enforced by the conversion service against existing linked invoices.
func (q *Quotation) CanConvertToInvoice() bool {
	return q.Status == QuotationStatusApproved && !q.IsDeleted() && len(q.Items) > 0
}
