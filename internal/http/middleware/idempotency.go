package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carrental/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyProcessing = "PROCESSING"
	idempotencyLockTTL    = 30 * time.Second
)

type storedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func idempotencyKey(userID int64, key string) string {
	return fmt.Sprintf("idempotency:%d:%s", userID, key)
}

// requestFingerprint hashes the method, path and body a key was first used with.
func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency replays the stored response of a request that already ran with the same
// Idempotency-Key for the same user. A nil client or a Redis failure lets the request through.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if rdb == nil || key == "" {
			c.Next()
			return
		}

		userID, _ := CurrentUserID(c)
		redisKey := idempotencyKey(userID, key)
		ctx := c.Request.Context()
		rid := GetRequestID(c)

		var body []byte
		if c.Request.Body != nil {
			b, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success":    false,
					"message":    "Invalid request body",
					"request_id": rid,
				})
				return
			}
			body = b
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		fingerprint := requestFingerprint(c.Request.Method, c.Request.URL.Path, body)

		val, err := rdb.Get(ctx, redisKey).Result()
		switch {
		case err == nil:
			replayStored(c, val, fingerprint)
			return
		case !errors.Is(err, redis.Nil):
			utils.LogError(rid, "idempotency", "get", err)
			c.Next()
			return
		}

		acquired, err := rdb.SetNX(ctx, redisKey, idempotencyProcessing, idempotencyLockTTL).Result()
		if err != nil {
			utils.LogError(rid, "idempotency", "lock", err)
			c.Next()
			return
		}
		if !acquired {
			abortInFlight(c)
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			// let the client retry after a server-side failure
			if err := rdb.Del(ctx, redisKey).Err(); err != nil {
				utils.LogError(rid, "idempotency", "release", err)
			}
			return
		}

		payload, err := json.Marshal(storedResponse{
			Fingerprint: fingerprint,
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.String(),
		})
		if err != nil {
			utils.LogError(rid, "idempotency", "encode", err)
			return
		}
		if err := rdb.Set(ctx, redisKey, string(payload), ttl).Err(); err != nil {
			utils.LogError(rid, "idempotency", "store", err)
		}
	}
}

func replayStored(c *gin.Context, val, fingerprint string) {
	if val == idempotencyProcessing {
		abortInFlight(c)
		return
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil || stored.Status == 0 {
		abortInFlight(c)
		return
	}
	if stored.Fingerprint != fingerprint {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"success":    false,
			"message":    "Idempotency-Key was already used for a different request",
			"code":       "IdempotencyKeyReused",
			"request_id": GetRequestID(c),
		})
		return
	}
	contentType := stored.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Header("X-Idempotency-Hit", "true")
	c.Data(stored.Status, contentType, []byte(stored.Body))
	c.Abort()
}

func abortInFlight(c *gin.Context) {
	c.Header("X-Idempotency-Hit", "true")
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{
		"success":    false,
		"message":    "A request with this Idempotency-Key is already being processed",
		"request_id": GetRequestID(c),
	})
}
