package billing

import (
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

// Client is a company the back office bills. It is referenced by quotations
// and invoices and is soft-deletable; it carries no concurrency-sensitive
// state of its own.
type Client struct {
	shared.BaseAggregateRoot
	shared.Tombstone
	Code             string `json:"code"`
	CompanyName      string `json:"company_name"`
	ContactName      string `json:"contact_name"`
	Email            string `json:"email"`
	PaymentTermsDays int    `json:"payment_terms_days"`
	Note             string `json:"note"`
}

// NewClient creates a new client
func NewClient(code, companyName, contactName, email string, paymentTermsDays int) (*Client, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_CODE", "Client code cannot be empty")
	}
	if companyName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Company name cannot be empty")
	}
	if paymentTermsDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms days cannot be negative")
	}
	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		CompanyName:       companyName,
		ContactName:       contactName,
		Email:             email,
		PaymentTermsDays:  paymentTermsDays,
	}, nil
}

// Restore lifts the tombstone and bumps the version so the write goes
// through the optimistic guard like any other mutation. Returns false when
// the client is not deleted.
func (c *Client) Restore(now time.Time) bool {
	if !c.IsDeleted() {
		return false
	}
	c.Tombstone.Restore()
	c.UpdatedAt = now
	c.IncrementVersion()
	return true
}

// Update applies new contact fields and bumps the version when anything
// actually changed. Returns true when a change was applied.
func (c *Client) Update(companyName, contactName, email string, paymentTermsDays int, note string, now time.Time) bool {
	changed := c.CompanyName != companyName ||
		c.ContactName != contactName ||
		c.Email != email ||
		c.PaymentTermsDays != paymentTermsDays ||
		c.Note != note
	if !changed {
		return false
	}
	c.CompanyName = companyName
	c.ContactName = contactName
	c.Email = email
	c.PaymentTermsDays = paymentTermsDays
	c.Note = note
	c.UpdatedAt = now
	c.IncrementVersion()
	return true
}
