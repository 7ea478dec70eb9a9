package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carrental/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]int64

func (f fakeTokens) Parse(raw string) (domain.RequestContext, error) {
	id, ok := f[raw]
	if !ok {
		return domain.RequestContext{}, domain.AuthError{Code: domain.CodeUnauthorized}
	}
	return domain.RequestContext{UserID: domain.ID(id)}, nil
}

func authedEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", RequireAuth(fakeTokens{"good": 7}), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			authedEngine().ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, true, body["clearAuth"])
				assert.NotEmpty(t, body["message"])
			} else {
				assert.Equal(t, float64(7), body["id"])
			}
		})
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
}

func idempotentEngine(h gin.HandlerFunc, mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.POST("/bookings", mw, h)
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	return postBodyWithKey(r, key, `{}`)
}

func postBodyWithKey(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyStoresAndReplays(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := idempotencyKey(0, "abc")
	payload, err := json.Marshal(storedResponse{
		Fingerprint: requestFingerprint(http.MethodPost, "/bookings", []byte(`{}`)),
		Status:      http.StatusCreated,
		ContentType: "application/json; charset=utf-8",
		Body:        `{"bookingId":1}`,
	})
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key, idempotencyProcessing, idempotencyLockTTL).SetVal(true)
	mock.ExpectSet(key, string(payload), time.Hour).SetVal("OK")
	mock.ExpectGet(key).SetVal(string(payload))

	calls := 0
	r := idempotentEngine(func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"bookingId": 1})
	}, Idempotency(rdb, time.Hour))

	first := postWithKey(r, "abc")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Hit"))

	second := postWithKey(r, "abc")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRejectsKeyReusedWithDifferentBody(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := idempotencyKey(0, "abc")
	payload, err := json.Marshal(storedResponse{
		Fingerprint: requestFingerprint(http.MethodPost, "/bookings", []byte(`{"carId":5}`)),
		Status:      http.StatusCreated,
		ContentType: "application/json; charset=utf-8",
		Body:        `{"bookingId":1}`,
	})
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal(string(payload))

	r := idempotentEngine(func(c *gin.Context) {
		t.Fatal("handler must not run for a reused key")
	}, Idempotency(rdb, time.Hour))

	w := postBodyWithKey(r, "abc", `{"carId":6}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, w.Body.String(), "bookingId")
	assert.Empty(t, w.Header().Get("X-Idempotency-Hit"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyHandlerStillReadsBody(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := idempotencyKey(0, "abc")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key, idempotencyProcessing, idempotencyLockTTL).SetVal(true)
	mock.Regexp().ExpectSet(key, `.*`, time.Hour).SetVal("OK")

	var got map[string]int
	r := idempotentEngine(func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&got))
		c.Status(http.StatusCreated)
	}, Idempotency(rdb, time.Hour))

	assert.Equal(t, http.StatusCreated, postBodyWithKey(r, "abc", `{"carId":5}`).Code)
	assert.Equal(t, 5, got["carId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := idempotencyKey(0, "abc")
	mock.ExpectGet(key).SetVal(idempotencyProcessing)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key, idempotencyProcessing, idempotencyLockTTL).SetVal(false)

	r := idempotentEngine(func(c *gin.Context) {
		t.Fatal("handler must not run for a duplicate")
	}, Idempotency(rdb, time.Hour))

	assert.Equal(t, http.StatusConflict, postWithKey(r, "abc").Code)
	assert.Equal(t, http.StatusConflict, postWithKey(r, "abc").Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := idempotencyKey(0, "abc")
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key, idempotencyProcessing, idempotencyLockTTL).SetVal(true)
	mock.ExpectDel(key).SetVal(1)

	r := idempotentEngine(func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
	}, Idempotency(rdb, time.Hour))

	assert.Equal(t, http.StatusInternalServerError, postWithKey(r, "abc").Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyPassesThroughWhenRedisFails(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(idempotencyKey(0, "abc")).SetErr(errors.New("connection refused"))

	calls := 0
	r := idempotentEngine(func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	}, Idempotency(rdb, time.Hour))

	assert.Equal(t, http.StatusCreated, postWithKey(r, "abc").Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyWithoutKeyOrClient(t *testing.T) {
	calls := 0
	h := func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	}
	r := idempotentEngine(h, Idempotency(nil, time.Hour))
	postWithKey(r, "abc")

	rdb, mock := redismock.NewClientMock()
	r = idempotentEngine(h, Idempotency(rdb, time.Hour))
	postWithKey(r, "")

	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
