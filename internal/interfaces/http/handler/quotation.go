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

// QuotationHandler handles quotation lifecycle requests, including the
// conversion of an approved quotation into a draft invoice.
type QuotationHandler struct {
	BaseHandler
	service  *appbilling.QuotationService
	invoices *appbilling.InvoiceService
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(service *appbilling.QuotationService, invoices *appbilling.InvoiceService) *QuotationHandler {
	return &QuotationHandler{service: service, invoices: invoices}
}

// CreateQuotationRequest is the body of POST /quotations.
type CreateQuotationRequest struct {
	ClientID   string            `json:"client_id" binding:"required,uuid"`
	IssueDate  string            `json:"issue_date" binding:"required,datetime=2006-01-02"`
	ValidUntil string            `json:"valid_until" binding:"omitempty,datetime=2006-01-02"`
	Items      []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes      string            `json:"notes"`
}

// UpdateQuotationRequest is the body of PUT /quotations/:id.
type UpdateQuotationRequest struct {
	IssueDate       string            `json:"issue_date" binding:"required,datetime=2006-01-02"`
	ValidUntil      string            `json:"valid_until" binding:"omitempty,datetime=2006-01-02"`
	Items           []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes           string            `json:"notes"`
	ExpectedVersion *int              `json:"expected_version" binding:"omitempty,gte=1"`
}

// ConvertQuotationRequest is the body of POST /quotations/:id/convert.
// Dates default from today and the client's payment terms when omitted.
type ConvertQuotationRequest struct {
	IssueDate string `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate   string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Notes     string `json:"notes"`
}

// ListQuotationsRequest is the query of GET /quotations.
type ListQuotationsRequest struct {
	dto.ListRequest
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Status   string `form:"status"`
}

func (r *ListQuotationsRequest) toFilter() (billing.QuotationFilter, error) {
	r.Normalize()
	filter := billing.QuotationFilter{
		Page:     r.Page,
		PageSize: r.PageSize,
		OrderBy:  r.OrderBy,
		OrderDir: r.OrderDir,
		Search:   r.Search,
	}
	if r.ClientID != "" {
		id, err := uuid.Parse(r.ClientID)
		if err != nil {
			return filter, err
		}
		filter.ClientID = &id
	}
	if r.Status != "" {
		status := billing.QuotationStatus(r.Status)
		if !status.IsValid() {
			return filter, errors.New("invalid status filter: " + r.Status)
		}
		filter.Status = &status
	}
	return filter, nil
}

// RegisterRoutes registers all quotation routes
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotations := rg.Group("/quotations")
	{
		quotations.GET("", h.List)
		quotations.GET("/:id", h.Get)
		quotations.POST("", h.Create)
		quotations.PUT("/:id", h.Update)
		quotations.DELETE("/:id", h.Delete)
		quotations.POST("/:id/send", h.Send)
		quotations.POST("/:id/approve", h.Approve)
		quotations.POST("/:id/reject", h.Reject)
		quotations.POST("/:id/convert", h.Convert)
	}
}

// List handles GET /quotations
func (h *QuotationHandler) List(c *gin.Context) {
	var req ListQuotationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	page, err := h.service.ListQuotations(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /quotations/:id
func (h *QuotationHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid quotation id")
		return
	}
	quotation, err := h.service.GetQuotation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// Create handles POST /quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	clientID, _ := uuid.Parse(req.ClientID)
	quotation, err := h.service.CreateQuotation(c.Request.Context(), appbilling.CreateQuotationInput{
		ClientID:   clientID,
		IssueDate:  parseDate(req.IssueDate),
		ValidUntil: parseDatePtr(req.ValidUntil),
		Items:      toItemInputs(req.Items),
		Notes:      req.Notes,
		ActorID:    actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quotation)
}

// Update handles PUT /quotations/:id
func (h *QuotationHandler) Update(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid quotation id")
		return
	}
	var req UpdateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quotation, err := h.service.UpdateQuotation(c.Request.Context(), id, appbilling.UpdateQuotationInput{
		IssueDate:       parseDate(req.IssueDate),
		ValidUntil:      parseDatePtr(req.ValidUntil),
		Notes:           req.Notes,
		Items:           toItemInputs(req.Items),
		ExpectedVersion: req.ExpectedVersion,
		ActorID:         actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// Send handles POST /quotations/:id/send
func (h *QuotationHandler) Send(c *gin.Context) {
	h.transition(c, h.service.SendQuotation)
}

// Approve handles POST /quotations/:id/approve
func (h *QuotationHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.ApproveQuotation)
}

// Reject handles POST /quotations/:id/reject
func (h *QuotationHandler) Reject(c *gin.Context) {
	h.transition(c, h.service.RejectQuotation)
}

func (h *QuotationHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID, expectedVersion *int, actorID uuid.UUID) (*billing.Quotation, error)) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid quotation id")
		return
	}
	expectedVersion, err := bindVersion(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quotation, err := op(c.Request.Context(), id, expectedVersion, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// Convert handles POST /quotations/:id/convert
func (h *QuotationHandler) Convert(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid quotation id")
		return
	}
	var req ConvertQuotationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}
	invoice, err := h.invoices.ConvertQuotation(c.Request.Context(), id, appbilling.ConvertQuotationInput{
		IssueDate: parseDate(req.IssueDate),
		DueDate:   parseDate(req.DueDate),
		Notes:     req.Notes,
		ActorID:   actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Delete handles DELETE /quotations/:id
func (h *QuotationHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid quotation id")
		return
	}
	if err := h.service.DeleteQuotation(c.Request.Context(), id, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
