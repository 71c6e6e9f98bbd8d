// Package billing provides the domain model for quotations, invoices and
// their payment ledger.
//
// This package implements the billing bounded context, which is responsible
// for:
//   - Year-scoped, gapless document numbering for invoices and quotations
//   - Invoice and quotation lifecycle state machines
//   - Deriving paid amount, outstanding balance and payment status from the
//     recorded payments (ledger reconciliation)
//   - Payment reminder eligibility and rendering
//
// Key Aggregates:
//   - Invoice: A bill issued to a client, with line items and a payment ledger
//   - Quotation: A priced offer that can be converted into an invoice
//   - Payment: One ledger entry against an invoice
//   - Client: The billed party
//
// Monetary amounts use decimal arithmetic at two fractional digits
// throughout; no float comparison decides a status.
package billing
