// Package middleware holds gin middleware for the HTTP boundary.
package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

// IdempotencyKeyHeader carries the client-chosen key that makes a mutation
// safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayHeader marks a response served from the idempotency store.
const ReplayHeader = "X-Idempotency-Replay"

const actorHeader = "X-Actor-ID"

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(p []byte) (int, error) {
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency dedupes mutating requests that carry an Idempotency-Key
// header. The first 2xx/3xx response under a key is stored for the TTL;
// retries with the same key and actor replay it without executing the
// mutation again. Store failures are logged, never returned: a broken store
// degrades to non-idempotent behavior instead of rejecting requests.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		// Keys are scoped per actor so two actors reusing the same key
		// cannot replay each other's responses.
		storageKey := c.GetHeader(actorHeader) + ":" + key

		stored, err := store.Get(c.Request.Context(), storageKey)
		if err != nil {
			logger.Warn("idempotency lookup failed", zap.Error(err))
		}
		if stored != nil {
			c.Header(ReplayHeader, "true")
			c.Data(stored.Status, "application/json", stored.Body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		// Only successful and redirect responses are replayable; a failed
		// mutation may legitimately be retried.
		status := recorder.Status()
		if status < 200 || status >= 400 {
			return
		}
		if err := store.Put(c.Request.Context(), storageKey, shared.StoredResponse{
			Status: status,
			Body:   recorder.body.Bytes(),
		}, ttl); err != nil {
			logger.Warn("failed to store idempotency key",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}
