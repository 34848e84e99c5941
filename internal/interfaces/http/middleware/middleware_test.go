package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/royale/pos/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) }
	r.GET("/api/v1/products/:id", ok)
	r.POST("/echo", func(c *gin.Context) {
		var body struct {
			Name  string `json:"name" binding:"required,max=5"`
			Count int    `json:"count" binding:"gt=0"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.String(http.StatusOK, body.Name)
	})
	return r
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", MaxRequestIDLength+10))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(RequestIDHeader), MaxRequestIDLength)
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://till.local"}
	r := newEngine(CORSWithConfig(cfg))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
		req.Header.Set("Origin", "http://till.local")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "http://till.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/products/1", nil)
		req.Header.Set("Origin", "http://till.local")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})
}

func TestBodyLimit(t *testing.T) {
	r := newEngine(BodyLimit(16))

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{"name":"abcdefghijklmnopqrstuvwxyz"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	r := newEngine(RequestID())

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{"name":"too long","count":0}`))
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "name", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be at most 5 characters", resp.Error.Details[0].Message)
	assert.Equal(t, "count", resp.Error.Details[1].Field)
	assert.Equal(t, "Must be greater than 0", resp.Error.Details[1].Message)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{`)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error.Details)
}

func TestSecureHeaders(t *testing.T) {
	r := newEngine(Secure())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestPrometheusMetrics(t *testing.T) {
	pm := NewPrometheusMetrics("royale")
	r := newEngine(pm.Middleware())
	r.GET("/metrics", pm.Handler())

	for range 2 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `royale_http_requests_total{method="GET",route="/api/v1/products/:id",status="200"} 2`)
	assert.Contains(t, body, "royale_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestResourceOf(t *testing.T) {
	tests := map[string]string{
		"/api/v1/products/:id":            "products",
		"/api/v2/inventory/reconciliation": "inventory",
		"/health":                         "health",
		"/api/v1":                         "",
		"/:id":                            "",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceOf(route), route)
	}
}

func TestProfilingDisabledPassesThrough(t *testing.T) {
	r := newEngine(Profiling(false))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfilingEnabledServesRequest(t *testing.T) {
	r := newEngine(Profiling(true, "/health"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
