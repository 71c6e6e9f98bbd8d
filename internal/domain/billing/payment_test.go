package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	invoiceID := uuid.New()
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates payment at version 1", func(t *testing.T) {
		p, err := NewPayment(invoiceID, date, dec("3000.00"), PaymentMethodBankTransfer, "TRX-1", "first installment", uuid.New())
		require.NoError(t, err)

		assert.Equal(t, invoiceID, p.InvoiceID)
		assert.Equal(t, 1, p.Version)
		assert.True(t, dec("3000.00").Equal(p.Amount))
	})

	t.Run("rounds amount to two digits", func(t *testing.T) {
		p, err := NewPayment(invoiceID, date, dec("3000.005"), PaymentMethodCash, "", "", uuid.New())
		require.NoError(t, err)
		assert.True(t, dec("3000.01").Equal(p.Amount))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayment(invoiceID, date, dec("0"), PaymentMethodCash, "", "", uuid.New())
		assert.Error(t, err)
		_, err = NewPayment(invoiceID, date, dec("-5.00"), PaymentMethodCash, "", "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewPayment(invoiceID, date, dec("1.00"), PaymentMethod("barter"), "", "", uuid.New())
		assert.Error(t, err)
	})
}

func TestPayment_Apply(t *testing.T) {
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	now := date.AddDate(0, 0, 1)

	newPayment := func(t *testing.T) *Payment {
		p, err := NewPayment(uuid.New(), date, dec("1000.00"), PaymentMethodBankTransfer, "REF", "note", uuid.New())
		require.NoError(t, err)
		return p
	}

	t.Run("changed fields bump version once", func(t *testing.T) {
		p := newPayment(t)

		changed, err := p.Apply(PaymentUpdate{
			PaymentDate: date,
			Amount:      dec("1200.00"),
			Method:      PaymentMethodBankTransfer,
			ReferenceNo: "REF",
			Note:        "note",
		}, now)
		require.NoError(t, err)

		assert.True(t, changed)
		assert.True(t, dec("1200.00").Equal(p.Amount))
		assert.Equal(t, 2, p.Version)
	})

	t.Run("identical values do not bump the version", func(t *testing.T) {
		p := newPayment(t)

		changed, err := p.Apply(PaymentUpdate{
			PaymentDate: date,
			Amount:      dec("1000.00"),
			Method:      PaymentMethodBankTransfer,
			ReferenceNo: "REF",
			Note:        "note",
		}, now)
		require.NoError(t, err)

		assert.False(t, changed)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("invalid amount leaves the payment untouched", func(t *testing.T) {
		p := newPayment(t)

		_, err := p.Apply(PaymentUpdate{
			PaymentDate: date,
			Amount:      dec("0"),
			Method:      PaymentMethodBankTransfer,
		}, now)

		assert.Error(t, err)
		assert.True(t, dec("1000.00").Equal(p.Amount))
		assert.Equal(t, 1, p.Version)
	})
}
