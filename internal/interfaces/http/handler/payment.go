package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/interfaces/http/dto"
)

// PaymentHandler handles payment ledger requests. Every mutation returns
// the reconciled parent invoice alongside the payment so callers see the
// derived balance without a second round trip.
type PaymentHandler struct {
	BaseHandler
	service *appbilling.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *appbilling.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RecordPaymentRequest is the body of POST /payments.
type RecordPaymentRequest struct {
	InvoiceID   string  `json:"invoice_id" binding:"required,uuid"`
	PaymentDate string  `json:"payment_date" binding:"required,datetime=2006-01-02"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Method      string  `json:"method" binding:"required,oneof=bank_transfer cash credit_card check other"`
	ReferenceNo string  `json:"reference_no"`
	Note        string  `json:"note"`
}

// UpdatePaymentRequest is the body of PUT /payments/:id.
type UpdatePaymentRequest struct {
	PaymentDate     string  `json:"payment_date" binding:"required,datetime=2006-01-02"`
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Method          string  `json:"method" binding:"required,oneof=bank_transfer cash credit_card check other"`
	ReferenceNo     string  `json:"reference_no"`
	Note            string  `json:"note"`
	ExpectedVersion *int    `json:"expected_version" binding:"omitempty,gte=1"`
}

// ListPaymentsRequest is the query of GET /payments.
type ListPaymentsRequest struct {
	dto.ListRequest
	InvoiceID string `form:"invoice_id" binding:"omitempty,uuid"`
	Method    string `form:"method" binding:"omitempty,oneof=bank_transfer cash credit_card check other"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// paymentResult pairs a payment with its reconciled invoice.
type paymentResult struct {
	Payment *billing.Payment `json:"payment"`
	Invoice *billing.Invoice `json:"invoice"`
}

// RegisterRoutes registers all payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.POST("", h.Record)
		payments.PUT("/:id", h.Update)
		payments.DELETE("/:id", h.Delete)
	}
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()
	filter := billing.PaymentFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		From:     parseDatePtr(req.From),
		To:       parseDatePtr(req.To),
	}
	if req.InvoiceID != "" {
		id, err := uuid.Parse(req.InvoiceID)
		if err != nil {
			h.BadRequest(c, "invalid invoice id")
			return
		}
		filter.InvoiceID = &id
	}
	if req.Method != "" {
		method := billing.PaymentMethod(req.Method)
		filter.Method = &method
	}
	page, err := h.service.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid payment id")
		return
	}
	payment, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoiceID, _ := uuid.Parse(req.InvoiceID)
	payment, invoice, err := h.service.RecordPayment(c.Request.Context(), appbilling.RecordPaymentInput{
		InvoiceID:   invoiceID,
		PaymentDate: parseDate(req.PaymentDate),
		Amount:      decimal.NewFromFloat(req.Amount),
		Method:      billing.PaymentMethod(req.Method),
		ReferenceNo: req.ReferenceNo,
		Note:        req.Note,
		ActorID:     actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, paymentResult{Payment: payment, Invoice: invoice})
}

// Update handles PUT /payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid payment id")
		return
	}
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	payment, invoice, err := h.service.UpdatePayment(c.Request.Context(), id, appbilling.UpdatePaymentInput{
		PaymentDate:     parseDate(req.PaymentDate),
		Amount:          decimal.NewFromFloat(req.Amount),
		Method:          billing.PaymentMethod(req.Method),
		ReferenceNo:     req.ReferenceNo,
		Note:            req.Note,
		ExpectedVersion: req.ExpectedVersion,
		ActorID:         actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, paymentResult{Payment: payment, Invoice: invoice})
}

// Delete handles DELETE /payments/:id. The response carries the invoice
// reconciled without the removed payment.
func (h *PaymentHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid payment id")
		return
	}
	invoice, err := h.service.DeletePayment(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"invoice": invoice})
}
