package billing

import (
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one row of a quotation or invoice. LineTotal is always
// quantity x unit price rounded to two fraction digits; TaxRate is a percent
// in [0, 100].
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
	SortOrder   int             `json:"sort_order"`
}

// NewLineItem creates a line item and computes its line total.
func NewLineItem(description string, quantity, unitPrice, taxRate decimal.Decimal, sortOrder int) (LineItem, error) {
	if description == "" {
		return LineItem{}, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return LineItem{}, shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return LineItem{}, shared.NewDomainError("INVALID_ITEM", "Item tax rate must be between 0 and 100")
	}
	return LineItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		LineTotal:   quantity.Mul(unitPrice).Round(2),
		SortOrder:   sortOrder,
	}, nil
}

// DocumentTotals holds the derived amount fields of a quotation or invoice.
type DocumentTotals struct {
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives subtotal, tax total and total from line items.
// Subtotal is the sum of line totals; tax is accrued per line from its
// percent rate; total = subtotal + tax. All at two fraction digits.
func ComputeTotals(items []LineItem) DocumentTotals {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	hundred := decimal.NewFromInt(100)
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal)
		taxTotal = taxTotal.Add(it.LineTotal.Mul(it.TaxRate).Div(hundred))
	}
	taxTotal = taxTotal.Round(2)
	return DocumentTotals{
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    subtotal.Add(taxTotal),
	}
}
