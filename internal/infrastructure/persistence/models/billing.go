package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
)

// ClientModel maps the Client aggregate to the clients table.
type ClientModel struct {
	AggregateModel
	TombstoneModel
	Code             string `gorm:"size:32;not null;uniqueIndex"`
	CompanyName      string `gorm:"size:255;not null"`
	ContactName      string `gorm:"size:255"`
	Email            string `gorm:"size:255"`
	PaymentTermsDays int    `gorm:"not null;default:30"`
	Note             string `gorm:"type:text"`
}

// TableName specifies the table name for ClientModel
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts ClientModel to domain Client
func (m *ClientModel) ToDomain() *billing.Client {
	return &billing.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Tombstone:         m.ToDomainTombstone(),
		Code:              m.Code,
		CompanyName:       m.CompanyName,
		ContactName:       m.ContactName,
		Email:             m.Email,
		PaymentTermsDays:  m.PaymentTermsDays,
		Note:              m.Note,
	}
}

// ClientModelFromDomain converts domain Client to ClientModel
func ClientModelFromDomain(c *billing.Client) *ClientModel {
	m := &ClientModel{
		Code:             c.Code,
		CompanyName:      c.CompanyName,
		ContactName:      c.ContactName,
		Email:            c.Email,
		PaymentTermsDays: c.PaymentTermsDays,
		Note:             c.Note,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FromDomainTombstone(c.Tombstone)
	return m
}

// QuotationModel maps the Quotation aggregate header to the quotations table.
type QuotationModel struct {
	AggregateModel
	TombstoneModel
	QuotationNo string               `gorm:"size:32;not null;uniqueIndex"`
	ClientID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	IssueDate   time.Time            `gorm:"not null"`
	ValidUntil  *time.Time
	Subtotal    decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	TaxTotal    decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Total       decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Status      string               `gorm:"size:20;not null;index"`
	Notes       string               `gorm:"type:text"`
	CreatedBy   uuid.UUID            `gorm:"type:uuid;not null"`
	Items       []QuotationItemModel `gorm:"foreignKey:QuotationID"`
}

// TableName specifies the table name for QuotationModel
func (QuotationModel) TableName() string {
	return "quotations"
}

// QuotationItemModel maps a quotation line item.
type QuotationItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	QuotationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"size:500;not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName specifies the table name for QuotationItemModel
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}

// ToDomain converts QuotationModel to domain Quotation
func (m *QuotationModel) ToDomain() *billing.Quotation {
	items := make([]billing.LineItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = billing.LineItem{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			LineTotal:   item.LineTotal,
			SortOrder:   item.SortOrder,
		}
	}
	return &billing.Quotation{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Tombstone:         m.ToDomainTombstone(),
		QuotationNo:       m.QuotationNo,
		ClientID:          m.ClientID,
		IssueDate:         m.IssueDate,
		ValidUntil:        m.ValidUntil,
		Subtotal:          m.Subtotal,
		TaxTotal:          m.TaxTotal,
		Total:             m.Total,
		Status:            billing.QuotationStatus(m.Status),
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		Items:             items,
	}
}

// QuotationModelFromDomain converts domain Quotation to QuotationModel.
// Items are not populated; they are replaced through ReplaceItems.
func QuotationModelFromDomain(q *billing.Quotation) *QuotationModel {
	m := &QuotationModel{
		QuotationNo: q.QuotationNo,
		ClientID:    q.ClientID,
		IssueDate:   q.IssueDate,
		ValidUntil:  q.ValidUntil,
		Subtotal:    q.Subtotal,
		TaxTotal:    q.TaxTotal,
		Total:       q.Total,
		Status:      q.Status.String(),
		Notes:       q.Notes,
		CreatedBy:   q.CreatedBy,
	}
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.FromDomainTombstone(q.Tombstone)
	return m
}

// QuotationItemModelFromDomain converts a domain line item.
func QuotationItemModelFromDomain(quotationID uuid.UUID, item billing.LineItem) QuotationItemModel {
	return QuotationItemModel{
		ID:          item.ID,
		QuotationID: quotationID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TaxRate:     item.TaxRate,
		LineTotal:   item.LineTotal,
		SortOrder:   item.SortOrder,
	}
}

// InvoiceModel maps the Invoice aggregate header to the invoices table.
type InvoiceModel struct {
	AggregateModel
	TombstoneModel
	InvoiceNo   string             `gorm:"size:32;not null;uniqueIndex"`
	ClientID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	QuotationID *uuid.UUID         `gorm:"type:uuid;index"`
	IssueDate   time.Time          `gorm:"not null"`
	DueDate     time.Time          `gorm:"not null;index"`
	Subtotal    decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	TaxTotal    decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Total       decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	PaidAmount  decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	BalanceDue  decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Status      string             `gorm:"size:20;not null;index"`
	SentAt      *time.Time
	Notes       string             `gorm:"type:text"`
	CreatedBy   uuid.UUID          `gorm:"type:uuid;not null"`
	Items       []InvoiceItemModel `gorm:"foreignKey:InvoiceID"`
}

// TableName specifies the table name for InvoiceModel
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel maps an invoice line item.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"size:500;not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName specifies the table name for InvoiceItemModel
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts InvoiceModel to domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	items := make([]billing.LineItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = billing.LineItem{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			LineTotal:   item.LineTotal,
			SortOrder:   item.SortOrder,
		}
	}
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Tombstone:         m.ToDomainTombstone(),
		InvoiceNo:         m.InvoiceNo,
		ClientID:          m.ClientID,
		QuotationID:       m.QuotationID,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		Subtotal:          m.Subtotal,
		TaxTotal:          m.TaxTotal,
		Total:             m.Total,
		PaidAmount:        m.PaidAmount,
		BalanceDue:        m.BalanceDue,
		Status:            billing.InvoiceStatus(m.Status),
		SentAt:            m.SentAt,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		Items:             items,
	}
}

// InvoiceModelFromDomain converts domain Invoice to InvoiceModel.
// Items are not populated; they are replaced through ReplaceItems.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNo:   inv.InvoiceNo,
		ClientID:    inv.ClientID,
		QuotationID: inv.QuotationID,
		IssueDate:   inv.IssueDate,
		DueDate:     inv.DueDate,
		Subtotal:    inv.Subtotal,
		TaxTotal:    inv.TaxTotal,
		Total:       inv.Total,
		PaidAmount:  inv.PaidAmount,
		BalanceDue:  inv.BalanceDue,
		Status:      inv.Status.String(),
		SentAt:      inv.SentAt,
		Notes:       inv.Notes,
		CreatedBy:   inv.CreatedBy,
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.FromDomainTombstone(inv.Tombstone)
	return m
}

// InvoiceItemModelFromDomain converts a domain line item.
func InvoiceItemModelFromDomain(invoiceID uuid.UUID, item billing.LineItem) InvoiceItemModel {
	return InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   invoiceID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TaxRate:     item.TaxRate,
		LineTotal:   item.LineTotal,
		SortOrder:   item.SortOrder,
	}
}

// PaymentModel maps the Payment aggregate to the payments table.
type PaymentModel struct {
	AggregateModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentDate time.Time       `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Method      string          `gorm:"size:20;not null"`
	ReferenceNo string          `gorm:"size:100"`
	Note        string          `gorm:"type:text"`
	RecordedBy  uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName specifies the table name for PaymentModel
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts PaymentModel to domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceID:         m.InvoiceID,
		PaymentDate:       m.PaymentDate,
		Amount:            m.Amount,
		Method:            billing.PaymentMethod(m.Method),
		ReferenceNo:       m.ReferenceNo,
		Note:              m.Note,
		RecordedBy:        m.RecordedBy,
	}
}

// PaymentModelFromDomain converts domain Payment to PaymentModel
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:   p.InvoiceID,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Method:      string(p.Method),
		ReferenceNo: p.ReferenceNo,
		Note:        p.Note,
		RecordedBy:  p.RecordedBy,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// ReminderModel maps the Reminder entity to the reminders table.
type ReminderModel struct {
	BaseModel
	InvoiceID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ReminderType string    `gorm:"size:20;not null"`
	SentTo       string    `gorm:"size:255;not null"`
	Subject      string    `gorm:"size:500;not null"`
	Body         string    `gorm:"type:text;not null"`
	SentAt       time.Time `gorm:"not null;index"`
	SentBy       uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName specifies the table name for ReminderModel
func (ReminderModel) TableName() string {
	return "reminders"
}

// ToDomain converts ReminderModel to domain Reminder
func (m *ReminderModel) ToDomain() *billing.Reminder {
	return &billing.Reminder{
		BaseEntity:   m.BaseModel.ToDomain(),
		InvoiceID:    m.InvoiceID,
		ReminderType: billing.ReminderType(m.ReminderType),
		SentTo:       m.SentTo,
		Subject:      m.Subject,
		Body:         m.Body,
		SentAt:       m.SentAt,
		SentBy:       m.SentBy,
	}
}

// ReminderModelFromDomain converts domain Reminder to ReminderModel
func ReminderModelFromDomain(r *billing.Reminder) *ReminderModel {
	m := &ReminderModel{
		InvoiceID:    r.InvoiceID,
		ReminderType: string(r.ReminderType),
		SentTo:       r.SentTo,
		Subject:      r.Subject,
		Body:         r.Body,
		SentAt:       r.SentAt,
		SentBy:       r.SentBy,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// AuditLogModel maps the AuditLog entity to the audit_logs table.
type AuditLogModel struct {
	BaseModel
	ActorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Action     string          `gorm:"size:30;not null"`
	TargetType string          `gorm:"size:30;not null;index:idx_audit_target"`
	TargetID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_target"`
	Before     json.RawMessage `gorm:"type:jsonb"`
	After      json.RawMessage `gorm:"type:jsonb"`
}

// TableName specifies the table name for AuditLogModel
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts AuditLogModel to domain AuditLog
func (m *AuditLogModel) ToDomain() *billing.AuditLog {
	return &billing.AuditLog{
		BaseEntity: m.BaseModel.ToDomain(),
		ActorID:    m.ActorID,
		Action:     billing.AuditAction(m.Action),
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		Before:     m.Before,
		After:      m.After,
	}
}

// AuditLogModelFromDomain converts domain AuditLog to AuditLogModel
func AuditLogModelFromDomain(e *billing.AuditLog) *AuditLogModel {
	m := &AuditLogModel{
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Before:     e.Before,
		After:      e.After,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
