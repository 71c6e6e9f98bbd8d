// Package handler contains the gin handlers of the billing API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/interfaces/http/dto"
)

// actorHeader carries the acting user's ID. Authentication is terminated
// upstream; this service trusts the header set by the gateway.
const actorHeader = "X-Actor-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// getActorID extracts the acting user from the request headers.
func getActorID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(actorHeader)
	if raw == "" {
		return uuid.Nil, errors.New("missing " + actorHeader + " header")
	}
	return uuid.Parse(raw)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, message, getRequestID(c)))
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, message, getRequestID(c)))
}

// HandleError converts domain errors to HTTP responses.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var stale *shared.StaleWriteError
	if errors.As(err, &stale) {
		c.JSON(http.StatusConflict, dto.NewErrorResponse(dto.ErrCodeStaleWrite, stale.Error(), requestID))
		return
	}

	var transition *billing.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("INVALID_TRANSITION", transition.Error(), requestID))
		return
	}

	var rejected *billing.PaymentRejectedError
	if errors.As(err, &rejected) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("PAYMENT_REJECTED", rejected.Error(), requestID))
		return
	}

	var cooldown *billing.ReminderCooldownError
	if errors.As(err, &cooldown) {
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse("REMINDER_COOLDOWN", cooldown.Error(), requestID))
		return
	}

	var generation *billing.NumberGenerationError
	if errors.As(err, &generation) {
		// The prefix is contended beyond the probe budget; the client may retry
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("NUMBER_GENERATION_FAILED", generation.Error(), requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code), dto.NewErrorResponse(domainErr.Code, domainErr.Message, requestID))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
