package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	intconfig "carrental/internal/config"
	"carrental/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tenantID = int64(1)
	hostID   = int64(2)
)

var bookingCols = []string{
	"id", "pickup_at", "pickup_time", "return_at", "return_time",
	"total_price", "insurance_option", "additional_drivers", "special_requests",
	"agree_to_terms", "status", "car_id", "tenant_id", "host_id", "created_at", "updated_at",
}

func bookingRow(id int64, status string) *sqlmock.Rows {
	pickup := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	return sqlmock.NewRows(bookingCols).AddRow(
		id, pickup, "10:00", pickup.AddDate(0, 0, 4), "10:00",
		"250.00", "basic", int64(0), "",
		true, status, int64(5), tenantID, hostID, pickup, pickup,
	)
}

var testEnv = intconfig.Env{
	JWTSecret:             "router-test-secret",
	JWTTTL:                time.Hour,
	CardFingerprintSecret: "router-test-cards",
	IdempotencyTTL:        time.Hour,
}

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRouter(testEnv, Deps{DB: db}), mock
}

func tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	raw, _, err := services.TokenService{Secret: []byte(testEnv.JWTSecret), TTL: time.Hour}.Issue(userID, "")
	require.NoError(t, err)
	return raw
}

func do(r *gin.Engine, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

const createBody = `{
	"pickupDate": "2024-06-01", "pickupTime": "10:00",
	"returnDate": "2024-06-05", "returnTime": "10:00",
	"insuranceOption": "basic", "additionalDrivers": 0, "specialRequests": "",
	"agreeToTerms": true, "carId": 5, "totalCost": 250,
	"payment": {"cardNumber": "4111111111111111", "cardName": "A Tenant", "expiryDate": "12/27", "cvv": "123", "saveCard": false}
}`

func TestBookingRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/bookings/my-bookings"},
		{http.MethodGet, "/api/bookings/1"},
		{http.MethodPatch, "/api/bookings/1/status"},
		{http.MethodDelete, "/api/bookings/1"},
	} {
		w, body := do(r, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, true, body["clearAuth"])
	}

	w, body := do(r, http.MethodGet, "/api/bookings/my-bookings", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, true, body["clearAuth"])
}

func TestCreateBookingRoute(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectQuery("SELECT host_id FROM cars").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"host_id"}).AddRow(hostID))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectCommit()

	w, body := do(r, http.MethodPost, "/api/bookings", tokenFor(t, tenantID), createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(10), data["bookingId"])
	assert.Equal(t, "PENDING", data["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRouteValidationEnvelope(t *testing.T) {
	r, mock := newTestRouter(t)
	bad := strings.Replace(createBody, `"agreeToTerms": true`, `"agreeToTerms": false`, 1)

	w, body := do(r, http.MethodPost, "/api/bookings", tokenFor(t, tenantID), bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "TermsNotAccepted", body["code"])
	assert.NotEmpty(t, body["message"])
	assert.Nil(t, body["clearAuth"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRouteOwnCar(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectQuery("SELECT host_id FROM cars").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"host_id"}).AddRow(hostID))

	w, body := do(r, http.MethodPost, "/api/bookings", tokenFor(t, hostID), createBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SelfBookingDenied", body["code"])
}

func TestCreateBookingRouteStorageFailure(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectQuery("SELECT host_id FROM cars").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"host_id"}).AddRow(hostID))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	w, body := do(r, http.MethodPost, "/api/bookings", tokenFor(t, tenantID), createBody)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to create booking", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMalformedJSONIsRejected(t *testing.T) {
	r, _ := newTestRouter(t)
	w, body := do(r, http.MethodPost, "/api/bookings", tokenFor(t, tenantID), `{"carId": "five"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidPayload", body["code"])
}

func TestUpdateStatusRouteTenantConfirmForbidden(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).WillReturnRows(bookingRow(7, "PENDING"))
	mock.ExpectRollback()

	w, body := do(r, http.MethodPatch, "/api/bookings/7/status", tokenFor(t, tenantID), `{"status":"CONFIRMED"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ForbiddenHostOnly", body["code"])
}

func TestUpdateStatusRouteHostConfirm(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).WillReturnRows(bookingRow(7, "PENDING"))
	mock.ExpectExec("UPDATE bookings SET status").WithArgs("CONFIRMED", int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE payments SET status").WithArgs("COMPLETED", int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w, body := do(r, http.MethodPatch, "/api/bookings/7/status", tokenFor(t, hostID), `{"status":"CONFIRMED"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Booking status updated to CONFIRMED", body["message"])
}

func TestUpdateStatusRouteInvalidStatus(t *testing.T) {
	r, mock := newTestRouter(t)
	w, body := do(r, http.MethodPatch, "/api/bookings/7/status", tokenFor(t, hostID), `{"status":"SHIPPED"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidStatus", body["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRouteCompletedBooking(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).WillReturnRows(bookingRow(7, "COMPLETED"))
	mock.ExpectRollback()

	w, body := do(r, http.MethodDelete, "/api/bookings/7", tokenFor(t, tenantID), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "AlreadyCompleted", body["code"])
}

func TestGetBookingRouteNotParty(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectQuery("JOIN users host").WithArgs(int64(7), int64(99), int64(99)).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	w, body := do(r, http.MethodGet, "/api/bookings/7", tokenFor(t, 99), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFoundOrForbidden", body["code"])
}

func TestGetBookingRouteBadID(t *testing.T) {
	r, _ := newTestRouter(t)
	w, body := do(r, http.MethodGet, "/api/bookings/abc", tokenFor(t, tenantID), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "InvalidID", body["code"])
}

func TestMyBookingsRoute(t *testing.T) {
	r, mock := newTestRouter(t)
	cols := append(append([]string{}, bookingCols...), "make", "model", "year", "image_url")
	pickup := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)
	mock.ExpectQuery("WHERE b.tenant_id = \\? OR b.host_id = \\?").WithArgs(tenantID, tenantID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(7), pickup, "10:00", pickup.AddDate(0, 0, 4), "10:00",
			"250.00", "basic", int64(0), "",
			true, "PENDING", int64(5), tenantID, hostID, pickup, pickup,
			"Toyota", "Corolla", int64(2020), "",
		))

	w, body := do(r, http.MethodGet, "/api/bookings/my-bookings", tokenFor(t, tenantID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestSystemRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := do(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/api/db-check", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "carrental_http_requests_total")

	w, body := do(r, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}
