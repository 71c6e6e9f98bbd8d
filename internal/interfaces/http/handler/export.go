package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/export"
)

// ExportHandler serves accounting CSV downloads.
type ExportHandler struct {
	BaseHandler
	service *appbilling.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(service *appbilling.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ExportRequest is the query of GET /exports/accounting. The range is
// inclusive on both ends and filters on issue date.
type ExportRequest struct {
	Format string `form:"format" binding:"required,oneof=freee moneyforward"`
	From   string `form:"from" binding:"required,datetime=2006-01-02"`
	To     string `form:"to" binding:"required,datetime=2006-01-02"`
}

// RegisterRoutes registers all export routes
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	exports := rg.Group("/exports")
	{
		exports.GET("/accounting", h.Accounting)
	}
}

// Accounting handles GET /exports/accounting
func (h *ExportHandler) Accounting(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	from := parseDate(req.From)
	to := parseDate(req.To)
	if to.Before(from) {
		h.BadRequest(c, "to must not be before from")
		return
	}
	renderer, err := export.ForFormat(req.Format)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	rows, err := h.service.CollectRows(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, rows); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.csv", renderer.Name(), req.From, req.To)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
