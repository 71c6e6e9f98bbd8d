package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// countingEngine mounts a POST handler behind the idempotency middleware and
// counts how often the handler actually runs.
func countingEngine(ttl time.Duration, status int) (*gin.Engine, *atomic.Int32) {
	var calls atomic.Int32
	engine := gin.New()
	engine.Use(Idempotency(cache.NewInMemoryIdempotencyStore(nil), ttl, zap.NewNop()))
	engine.POST("/invoices", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(status, gin.H{"call": n})
	})
	engine.GET("/invoices", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{})
	})
	return engine, &calls
}

func doRequest(engine *gin.Engine, method string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/invoices", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysSecondRequest(t *testing.T) {
	engine, calls := countingEngine(time.Hour, http.StatusCreated)
	headers := map[string]string{IdempotencyKeyHeader: "key-1", "X-Actor-ID": "actor-a"}

	first := doRequest(engine, http.MethodPost, headers)
	second := doRequest(engine, http.MethodPost, headers)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Empty(t, first.Header().Get(ReplayHeader))
	assert.Equal(t, "true", second.Header().Get(ReplayHeader))
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_KeysAreScopedPerActor(t *testing.T) {
	engine, calls := countingEngine(time.Hour, http.StatusCreated)

	first := doRequest(engine, http.MethodPost,
		map[string]string{IdempotencyKeyHeader: "key-1", "X-Actor-ID": "actor-a"})
	second := doRequest(engine, http.MethodPost,
		map[string]string{IdempotencyKeyHeader: "key-1", "X-Actor-ID": "actor-b"})

	assert.Empty(t, first.Header().Get(ReplayHeader))
	assert.Empty(t, second.Header().Get(ReplayHeader))
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_WithoutKeyEveryRequestExecutes(t *testing.T) {
	engine, calls := countingEngine(time.Hour, http.StatusCreated)

	doRequest(engine, http.MethodPost, nil)
	doRequest(engine, http.MethodPost, nil)

	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_IgnoresReads(t *testing.T) {
	engine, calls := countingEngine(time.Hour, http.StatusOK)
	headers := map[string]string{IdempotencyKeyHeader: "key-1"}

	doRequest(engine, http.MethodGet, headers)
	got := doRequest(engine, http.MethodGet, headers)

	assert.Empty(t, got.Header().Get(ReplayHeader))
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_ErrorResponsesAreNotCached(t *testing.T) {
	engine, calls := countingEngine(time.Hour, http.StatusUnprocessableEntity)
	headers := map[string]string{IdempotencyKeyHeader: "key-1", "X-Actor-ID": "actor-a"}

	doRequest(engine, http.MethodPost, headers)
	got := doRequest(engine, http.MethodPost, headers)

	assert.Empty(t, got.Header().Get(ReplayHeader))
	assert.Equal(t, int32(2), calls.Load())
}
