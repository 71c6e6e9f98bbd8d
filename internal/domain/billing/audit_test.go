package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Diff(t *testing.T) {
	t.Run("reports only changed fields", func(t *testing.T) {
		before := Snapshot{"status": "issued", "paid_amount": "0.00", "balance_due": "100.00"}
		after := Snapshot{"status": "partial_paid", "paid_amount": "40.00", "balance_due": "60.00"}

		beforeDiff, changed := before.Diff(after)

		assert.Equal(t, Snapshot{"status": "issued", "paid_amount": "0.00", "balance_due": "100.00"}, beforeDiff)
		assert.Equal(t, Snapshot{"status": "partial_paid", "paid_amount": "40.00", "balance_due": "60.00"}, changed)
	})

	t.Run("identical snapshots yield empty diff", func(t *testing.T) {
		s := Snapshot{"status": "paid"}
		beforeDiff, changed := s.Diff(Snapshot{"status": "paid"})

		assert.Empty(t, beforeDiff)
		assert.Empty(t, changed)
	})

	t.Run("new fields have no before value", func(t *testing.T) {
		beforeDiff, changed := Snapshot{}.Diff(Snapshot{"note": "x"})

		assert.Empty(t, beforeDiff)
		assert.Equal(t, Snapshot{"note": "x"}, changed)
	})
}

func TestNewAuditLog(t *testing.T) {
	now := time.Now()
	actor := uuid.New()
	target := uuid.New()

	t.Run("created entry has after only", func(t *testing.T) {
		entry, err := NewAuditLog(actor, AuditActionCreated, "invoice", target, nil, Snapshot{"status": "draft"}, now)
		require.NoError(t, err)

		assert.Nil(t, entry.Before)
		assert.JSONEq(t, `{"status":"draft"}`, string(entry.After))
	})

	t.Run("deleted entry has before only", func(t *testing.T) {
		entry, err := NewAuditLog(actor, AuditActionDeleted, "payment", target, Snapshot{"amount": "10.00"}, nil, now)
		require.NoError(t, err)

		assert.JSONEq(t, `{"amount":"10.00"}`, string(entry.Before))
		assert.Nil(t, entry.After)
	})
}

func TestInvoiceSnapshot(t *testing.T) {
	inv := newTestInvoice(t, "5000.00", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))
	snap := InvoiceSnapshot(inv)

	assert.Equal(t, "I-2026-00001", snap["invoice_no"])
	assert.Equal(t, "5000.00", snap["total"])
	assert.Equal(t, InvoiceStatusDraft, snap["status"])
	assert.Equal(t, 1, snap["version"])
	assert.NotContains(t, snap, "updated_at")
}
