package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice lifecycle requests.
type InvoiceHandler struct {
	BaseHandler
	service   *appbilling.InvoiceService
	reconcile *appbilling.ReconcileService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(service *appbilling.InvoiceService, reconcile *appbilling.ReconcileService) *InvoiceHandler {
	return &InvoiceHandler{service: service, reconcile: reconcile}
}

// CreateInvoiceRequest is the body of POST /invoices.
type CreateInvoiceRequest struct {
	ClientID  string            `json:"client_id" binding:"required,uuid"`
	IssueDate string            `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate   string            `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Items     []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes     string            `json:"notes"`
}

// UpdateInvoiceRequest is the body of PUT /invoices/:id. It rewrites every
// editable field of a draft, items included.
type UpdateInvoiceRequest struct {
	IssueDate       string            `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate         string            `json:"due_date" binding:"required,datetime=2006-01-02"`
	Items           []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes           string            `json:"notes"`
	ExpectedVersion *int              `json:"expected_version" binding:"omitempty,gte=1"`
}

// ListInvoicesRequest is the query of GET /invoices.
type ListInvoicesRequest struct {
	dto.ListRequest
	ClientID  string `form:"client_id" binding:"omitempty,uuid"`
	Status    string `form:"status"`
	IssueFrom string `form:"issue_from" binding:"omitempty,datetime=2006-01-02"`
	IssueTo   string `form:"issue_to" binding:"omitempty,datetime=2006-01-02"`
	DueFrom   string `form:"due_from" binding:"omitempty,datetime=2006-01-02"`
	DueTo     string `form:"due_to" binding:"omitempty,datetime=2006-01-02"`
	Overdue   *bool  `form:"overdue"`
}

func (r *ListInvoicesRequest) toFilter() (billing.InvoiceFilter, error) {
	r.Normalize()
	filter := billing.InvoiceFilter{
		Page:      r.Page,
		PageSize:  r.PageSize,
		OrderBy:   r.OrderBy,
		OrderDir:  r.OrderDir,
		Search:    r.Search,
		IssueFrom: parseDatePtr(r.IssueFrom),
		IssueTo:   parseDatePtr(r.IssueTo),
		DueFrom:   parseDatePtr(r.DueFrom),
		DueTo:     parseDatePtr(r.DueTo),
		Overdue:   r.Overdue,
	}
	if r.ClientID != "" {
		id, err := uuid.Parse(r.ClientID)
		if err != nil {
			return filter, err
		}
		filter.ClientID = &id
	}
	if r.Status != "" {
		status := billing.InvoiceStatus(r.Status)
		if !status.IsValid() {
			return filter, errors.New("invalid status filter: " + r.Status)
		}
		filter.Status = &status
	}
	return filter, nil
}

// RegisterRoutes registers all invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.POST("", h.Create)
		invoices.PUT("/:id", h.Update)
		invoices.DELETE("/:id", h.Delete)
		invoices.POST("/:id/issue", h.Issue)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.POST("/:id/reconcile", h.Reconcile)
		invoices.POST("/sweep-overdue", h.SweepOverdue)
	}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	page, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}
	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	clientID, _ := uuid.Parse(req.ClientID)
	invoice, err := h.service.CreateInvoice(c.Request.Context(), appbilling.CreateInvoiceInput{
		ClientID:  clientID,
		IssueDate: parseDate(req.IssueDate),
		DueDate:   parseDate(req.DueDate),
		Items:     toItemInputs(req.Items),
		Notes:     req.Notes,
		ActorID:   actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}
	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoice, err := h.service.UpdateInvoice(c.Request.Context(), id, appbilling.UpdateInvoiceInput{
		IssueDate:       parseDate(req.IssueDate),
		DueDate:         parseDate(req.DueDate),
		Notes:           req.Notes,
		Items:           toItemInputs(req.Items),
		ExpectedVersion: req.ExpectedVersion,
		ActorID:         actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Issue handles POST /invoices/:id/issue
func (h *InvoiceHandler) Issue(c *gin.Context) {
	h.transition(c, h.service.IssueInvoice)
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.CancelInvoice)
}

// transition runs one status-change operation with the shared parsing of
// actor, id and optional expected version.
func (h *InvoiceHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID, expectedVersion *int, actorID uuid.UUID) (*billing.Invoice, error)) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}
	expectedVersion, err := bindVersion(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	invoice, err := op(c.Request.Context(), id, expectedVersion, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Reconcile handles POST /invoices/:id/reconcile. It re-derives the paid
// amount, balance and payment status from the ledger.
func (h *InvoiceHandler) Reconcile(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}
	invoice, err := h.reconcile.Reconcile(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// SweepOverdue handles POST /invoices/sweep-overdue. It flips every open
// invoice past its due date to overdue and reports how many changed.
func (h *InvoiceHandler) SweepOverdue(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	swept, err := h.reconcile.SweepOverdue(c.Request.Context(), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"swept": swept})
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}
	if err := h.service.DeleteInvoice(c.Request.Context(), id, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
