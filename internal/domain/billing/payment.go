package billing

import (
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCreditCard,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is one entry of an invoice's ledger. It is owned exclusively by
// its invoice; every create, update or delete is followed by reconciliation
// of the parent in the same transaction.
type Payment struct {
	shared.BaseAggregateRoot
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	PaymentDate time.Time       `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	ReferenceNo string          `json:"reference_no"`
	Note        string          `json:"note"`
	RecordedBy  uuid.UUID       `json:"recorded_by"`
}

// NewPayment creates a payment entry. Overpayment and receptiveness checks
// are the PaymentService's responsibility; this only validates the entry
// itself.
func NewPayment(invoiceID uuid.UUID, paymentDate time.Time, amount decimal.Decimal, method PaymentMethod, referenceNo, note string, recordedBy uuid.UUID) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceID:         invoiceID,
		PaymentDate:       paymentDate,
		Amount:            amount.Round(2),
		Method:            method,
		ReferenceNo:       referenceNo,
		Note:              note,
		RecordedBy:        recordedBy,
	}, nil
}

// PaymentUpdate is the proposed after-state of a payment edit. The update is
// applied as an explicit diff against the loaded payment so the version bump
// is a function of actual changes, not ORM dirty tracking.
type PaymentUpdate struct {
	PaymentDate time.Time
	Amount      decimal.Decimal
	Method      PaymentMethod
	ReferenceNo string
	Note        string
}

// Apply diffs the update against the payment and mutates it when at least
// one field differs. Returns whether a change was applied.
func (p *Payment) Apply(u PaymentUpdate, now time.Time) (bool, error) {
	if u.Amount.LessThanOrEqual(decimal.Zero) {
		return false, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !u.Method.IsValid() {
		return false, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	amount := u.Amount.Round(2)
	changed := !p.PaymentDate.Equal(u.PaymentDate) ||
		!p.Amount.Equal(amount) ||
		p.Method != u.Method ||
		p.ReferenceNo != u.ReferenceNo ||
		p.Note != u.Note
	if !changed {
		return false, nil
	}
	p.PaymentDate = u.PaymentDate
	p.Amount = amount
	p.Method = u.Method
	p.ReferenceNo = u.ReferenceNo
	p.Note = u.Note
	p.UpdatedAt = now
	p.IncrementVersion()
	return true, nil
}
