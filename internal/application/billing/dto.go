package billing

import (
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemInput is one line of a document create/update request.
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// buildItems converts inputs into validated line items, assigning sort
// order by position.
func buildItems(inputs []LineItemInput) ([]billing.LineItem, error) {
	items := make([]billing.LineItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := billing.NewLineItem(in.Description, in.Quantity, in.UnitPrice, in.TaxRate, i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CreateInvoiceInput carries a request to create a draft invoice.
type CreateInvoiceInput struct {
	ClientID  uuid.UUID
	IssueDate time.Time
	// DueDate defaults to the issue date plus the client's payment terms
	// when zero.
	DueDate time.Time
	Items   []LineItemInput
	Notes   string
	ActorID uuid.UUID
}

// UpdateInvoiceInput carries a full rewrite of a draft invoice's editable
// fields. ExpectedVersion enables the optimistic concurrency check; nil
// skips it.
type UpdateInvoiceInput struct {
	IssueDate       time.Time
	DueDate         time.Time
	Notes           string
	Items           []LineItemInput
	ExpectedVersion *int
	ActorID         uuid.UUID
}

// CreateQuotationInput carries a request to create a draft quotation.
type CreateQuotationInput struct {
	ClientID   uuid.UUID
	IssueDate  time.Time
	ValidUntil *time.Time
	Items      []LineItemInput
	Notes      string
	ActorID    uuid.UUID
}

// UpdateQuotationInput carries a full rewrite of a draft quotation's
// editable fields.
type UpdateQuotationInput struct {
	IssueDate       time.Time
	ValidUntil      *time.Time
	Notes           string
	Items           []LineItemInput
	ExpectedVersion *int
	ActorID         uuid.UUID
}

// ConvertQuotationInput carries a request to convert an approved quotation
// into a draft invoice.
type ConvertQuotationInput struct {
	// IssueDate defaults to today when zero.
	IssueDate time.Time
	// DueDate defaults to the issue date plus the client's payment terms
	// when zero.
	DueDate time.Time
	Notes   string
	ActorID uuid.UUID
}

// RecordPaymentInput carries a request to record a payment against an
// invoice.
type RecordPaymentInput struct {
	InvoiceID   uuid.UUID
	PaymentDate time.Time
	Amount      decimal.Decimal
	Method      billing.PaymentMethod
	ReferenceNo string
	Note        string
	ActorID     uuid.UUID
}

// UpdatePaymentInput carries the proposed after-state of a payment edit.
type UpdatePaymentInput struct {
	PaymentDate     time.Time
	Amount          decimal.Decimal
	Method          billing.PaymentMethod
	ReferenceNo     string
	Note            string
	ExpectedVersion *int
	ActorID         uuid.UUID
}

// CreateClientInput carries a request to register a client.
type CreateClientInput struct {
	Code             string
	CompanyName      string
	ContactName      string
	Email            string
	PaymentTermsDays int
	Note             string
	ActorID          uuid.UUID
}

// UpdateClientInput carries a client profile update.
type UpdateClientInput struct {
	CompanyName      string
	ContactName      string
	Email            string
	PaymentTermsDays int
	Note             string
	ActorID          uuid.UUID
}
