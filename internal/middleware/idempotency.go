package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"gift-tracker/internal/cache"

	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	IdempotencyTTL       = 24 * time.Hour
)

type cachedResponse struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the cached response of a mutating request that carried
// the same Idempotency-Key. Requests without the header, and reads, pass
// through; so does everything when redis is unavailable.
func Idempotency(redisClient *cache.Redis) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		cacheKey := "idempotency:" + key
		if cached, err := redisClient.Get(cacheKey); err == nil && cached != "" {
			var resp cachedResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				c.Header("X-Idempotency-Replayed", "true")
				c.Data(resp.StatusCode, "application/json", []byte(resp.Body))
				c.Abort()
				return
			}
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder
		c.Next()

		if recorder.Status() >= http.StatusInternalServerError {
			return
		}
		resp := cachedResponse{
			StatusCode: recorder.Status(),
			Body:       recorder.body.String(),
		}
		if respJSON, err := json.Marshal(resp); err == nil {
			redisClient.Set(cacheKey, string(respJSON), IdempotencyTTL)
		}
	}
}
