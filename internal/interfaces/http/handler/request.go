package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
)

// dateLayout is the wire format of all date fields. Times of day are never
// part of the billing API.
const dateLayout = "2006-01-02"

// LineItemRequest is one document line in a create or update body.
type LineItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
	TaxRate     float64 `json:"tax_rate" binding:"gte=0,lte=100"`
}

func toItemInputs(items []LineItemRequest) []appbilling.LineItemInput {
	inputs := make([]appbilling.LineItemInput, 0, len(items))
	for _, it := range items {
		inputs = append(inputs, appbilling.LineItemInput{
			Description: it.Description,
			Quantity:    decimal.NewFromFloat(it.Quantity),
			UnitPrice:   decimal.NewFromFloat(it.UnitPrice),
			TaxRate:     decimal.NewFromFloat(it.TaxRate),
		})
	}
	return inputs
}

// parseDate converts a validated `datetime=2006-01-02` field. An empty
// string maps to the zero time so services can apply their defaults.
func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, _ := time.Parse(dateLayout, raw)
	return t
}

func parseDatePtr(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t := parseDate(raw)
	return &t
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// VersionedRequest is the optional body of status-change endpoints. A nil
// expected version skips the concurrency check.
type VersionedRequest struct {
	ExpectedVersion *int `json:"expected_version" binding:"omitempty,gte=1"`
}

// bindVersion reads an optional VersionedRequest body. An empty body is
// fine; a malformed one is not.
func bindVersion(c *gin.Context) (*int, error) {
	if c.Request.ContentLength == 0 {
		return nil, nil
	}
	var req VersionedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return req.ExpectedVersion, nil
}
