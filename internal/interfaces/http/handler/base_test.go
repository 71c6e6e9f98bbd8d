package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestGetActorID(t *testing.T) {
	actorID := uuid.New()

	c, _ := newTestContext(t)
	c.Request.Header.Set(actorHeader, actorID.String())
	got, err := getActorID(c)
	require.NoError(t, err)
	assert.Equal(t, actorID, got)

	c, _ = newTestContext(t)
	_, err = getActorID(c)
	assert.Error(t, err)

	c, _ = newTestContext(t)
	c.Request.Header.Set(actorHeader, "not-a-uuid")
	_, err = getActorID(c)
	assert.Error(t, err)
}

func TestHandleErrorStaleWrite(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.HandleError(c, &shared.StaleWriteError{Entity: "invoice", ExpectedVersion: 2, CurrentVersion: 4})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeStaleWrite, decodeError(t, w).Code)
}

func TestHandleErrorInvalidTransition(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.HandleError(c, &billing.InvalidTransitionError{
		Entity: "invoice",
		From:   string(billing.InvoiceStatusPaid),
		To:     string(billing.InvoiceStatusDraft),
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, w).Code)
}

func TestHandleErrorReminderCooldown(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.HandleError(c, &billing.ReminderCooldownError{
		LastSentAt: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "REMINDER_COOLDOWN", decodeError(t, w).Code)
}

func TestHandleErrorNumberGeneration(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.HandleError(c, &billing.NumberGenerationError{Kind: billing.KindInvoice, Prefix: "I-2024-", Attempts: 10})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "NUMBER_GENERATION_FAILED", decodeError(t, w).Code)
}

func TestHandleErrorDomainErrorStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{"INVOICE_NOT_FOUND", http.StatusNotFound},
		{"INVALID_ITEMS", http.StatusBadRequest},
		{"CLIENT_CODE_TAKEN", http.StatusConflict},
		{"INVOICE_NOT_EDITABLE", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(t)

			h.HandleError(c, shared.NewDomainError(tt.code, "boom"))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestHandleErrorUnknownIs500(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.HandleError(c, errors.New("driver: bad connection"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrCodeInternal, decodeError(t, w).Code)
}

func TestParseDate(t *testing.T) {
	assert.True(t, parseDate("").IsZero())
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), parseDate("2024-06-15"))

	assert.Nil(t, parseDatePtr(""))
	require.NotNil(t, parseDatePtr("2024-06-15"))
}
