package handler

import (
	"github.com/gin-gonic/gin"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
)

// ReminderHandler handles payment reminder requests.
type ReminderHandler struct {
	BaseHandler
	service *appbilling.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(service *appbilling.ReminderService) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// SendReminderRequest is the body of POST /invoices/:id/reminders.
type SendReminderRequest struct {
	Type string `json:"type" binding:"required,oneof=soft normal final"`
}

// RegisterRoutes registers all reminder routes
func (h *ReminderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reminders := rg.Group("/invoices/:id/reminders")
	{
		reminders.GET("", h.List)
		reminders.POST("", h.Send)
	}
}

// List handles GET /invoices/:id/reminders
func (h *ReminderHandler) List(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}
	reminders, err := h.service.ListReminders(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reminders)
}

// Send handles POST /invoices/:id/reminders
func (h *ReminderHandler) Send(c *gin.Context) {
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
	var req SendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	reminder, err := h.service.SendReminder(c.Request.Context(), id, billing.ReminderType(req.Type), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reminder)
}
