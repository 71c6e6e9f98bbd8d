package handler

import (
	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client management requests.
type ClientHandler struct {
	BaseHandler
	service *appbilling.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(service *appbilling.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// CreateClientRequest is the body of POST /clients.
type CreateClientRequest struct {
	Code             string `json:"code" binding:"required,max=32"`
	CompanyName      string `json:"company_name" binding:"required,max=255"`
	ContactName      string `json:"contact_name" binding:"max=255"`
	Email            string `json:"email" binding:"omitempty,email"`
	PaymentTermsDays int    `json:"payment_terms_days" binding:"omitempty,gte=0,lte=365"`
	Note             string `json:"note"`
}

// UpdateClientRequest is the body of PUT /clients/:id. The code is fixed
// at registration and cannot be changed.
type UpdateClientRequest struct {
	CompanyName      string `json:"company_name" binding:"required,max=255"`
	ContactName      string `json:"contact_name" binding:"max=255"`
	Email            string `json:"email" binding:"omitempty,email"`
	PaymentTermsDays int    `json:"payment_terms_days" binding:"omitempty,gte=0,lte=365"`
	Note             string `json:"note"`
}

// RegisterRoutes registers all client routes
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clients := rg.Group("/clients")
	{
		clients.GET("", h.List)
		clients.GET("/:id", h.Get)
		clients.POST("", h.Create)
		clients.PUT("/:id", h.Update)
		clients.DELETE("/:id", h.Delete)
		clients.POST("/:id/restore", h.Restore)
	}
}

// List handles GET /clients
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.service.ListActiveClients(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clients)
}

// Get handles GET /clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid client id")
		return
	}
	client, err := h.service.GetClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	client, err := h.service.CreateClient(c.Request.Context(), appbilling.CreateClientInput{
		Code:             req.Code,
		CompanyName:      req.CompanyName,
		ContactName:      req.ContactName,
		Email:            req.Email,
		PaymentTermsDays: req.PaymentTermsDays,
		Note:             req.Note,
		ActorID:          actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// Update handles PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid client id")
		return
	}
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	client, err := h.service.UpdateClient(c.Request.Context(), id, appbilling.UpdateClientInput{
		CompanyName:      req.CompanyName,
		ContactName:      req.ContactName,
		Email:            req.Email,
		PaymentTermsDays: req.PaymentTermsDays,
		Note:             req.Note,
		ActorID:          actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Restore handles POST /clients/:id/restore
func (h *ClientHandler) Restore(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid client id")
		return
	}
	client, err := h.service.RestoreClient(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete handles DELETE /clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid client id")
		return
	}
	if err := h.service.DeleteClient(c.Request.Context(), id, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
