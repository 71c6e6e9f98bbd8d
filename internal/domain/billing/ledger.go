package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerState is the outcome of deriving an invoice's financial state from
// its payment history. StatusChanged is false for draft and canceled
// invoices, whose status reconciliation never touches.
type LedgerState struct {
	PaidAmount    decimal.Decimal
	BalanceDue    decimal.Decimal
	Status        InvoiceStatus
	StatusChanged bool
}

// SumPayments totals the amounts of the given payments.
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// DeriveLedgerState recomputes paid amount, balance due and the derived
// status of an invoice from its full payment set and due date. All
// comparisons use exact decimal arithmetic at two fraction digits.
//
// The branches are evaluated strictly in order and the first match wins:
//
//  1. balance <= 0                      -> paid
//  2. 0 < paid < total                  -> partial_paid
//  3. paid == 0                         -> overdue if past due, else issued
//  4. past due and balance > 0          -> overdue
//  5. overdue but no longer past due    -> issued (due date was extended)
//  6. otherwise                         -> status unchanged
func DeriveLedgerState(total decimal.Decimal, status InvoiceStatus, dueDate time.Time, payments []Payment, now time.Time) LedgerState {
	totalPaid := SumPayments(payments).Round(2)
	balanceDue := total.Sub(totalPaid).Round(2)

	state := LedgerState{
		PaidAmount: totalPaid,
		BalanceDue: balanceDue,
		Status:     status,
	}

	// Reconciliation only adjusts amounts for draft and canceled invoices.
	if status == InvoiceStatusDraft || status == InvoiceStatusCanceled {
		return state
	}

	pastDue := dueDate.Before(now)

	switch {
	case balanceDue.LessThanOrEqual(decimal.Zero):
		state.Status = InvoiceStatusPaid
	case totalPaid.GreaterThan(decimal.Zero) && totalPaid.LessThan(total):
		state.Status = InvoiceStatusPartialPaid
	case totalPaid.IsZero():
		if pastDue {
			state.Status = InvoiceStatusOverdue
		} else {
			state.Status = InvoiceStatusIssued
		}
	case pastDue && balanceDue.GreaterThan(decimal.Zero):
		state.Status = InvoiceStatusOverdue
	case status == InvoiceStatusOverdue && !pastDue:
		state.Status = InvoiceStatusIssued
	}

	state.StatusChanged = true
	return state
}
