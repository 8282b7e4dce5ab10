package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crowdfund-api/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetLogger(NewLogger(io.Discard, "error", "json"))
}

func newRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestLoggerMiddleware(), MetricsMiddleware(), CORS(), ErrorHandler())
	router.GET("/test", handler)
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_MapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperror.Field("title", "This field is required."), http.StatusBadRequest, "validation_error"},
		{"authorization", apperror.Authorization("Incorrect password"), http.StatusBadRequest, "authorization_error"},
		{"authentication", apperror.Authentication("no token"), http.StatusUnauthorized, "authentication_error"},
		{"not found", apperror.NotFound("project"), http.StatusNotFound, "not_found"},
		{"internal", apperror.Internal(errors.New("db is down")), http.StatusInternalServerError, "internal_error"},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
			require.Equal(t, tt.status, w.Code)

			var body struct {
				Code    string            `json:"code"`
				Message string            `json:"message"`
				Errors  map[string]string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Message)
				assert.NotContains(t, w.Body.String(), "db is down")
			}
		})
	}
}

func TestErrorHandler_FieldErrors(t *testing.T) {
	router := newRouter(func(c *gin.Context) {
		_ = c.Error(apperror.Field("mobile", "Invalid Egyptian mobile number"))
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"validation_error","message":"invalid input","errors":{"mobile":"Invalid Egyptian mobile number"}}`, w.Body.String())
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	router := newRouter(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		_ = c.Error(errors.New("late"))
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRequestLogger_RequestID(t *testing.T) {
	var seen string
	router := newRouter(func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "client-supplied")
	w = serve(router, req)
	assert.Equal(t, "client-supplied", w.Header().Get(HeaderRequestID))
}

func TestRequestLogger_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, "info", "json"))
	t.Cleanup(func() {
		SetLogger(NewLogger(io.Discard, "error", "json"))
	})

	router := newRouter(func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})
	serve(router, httptest.NewRequest(http.MethodGet, "/test?x=1", nil))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record), buf.String())
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "/test?x=1", record["url"])
	assert.Equal(t, float64(http.StatusTeapot), record["status"])
	assert.NotEmpty(t, record["request_id"])
}

func TestCORS_Preflight(t *testing.T) {
	router := newRouter(func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.OPTIONS("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, httptest.NewRequest(http.MethodOptions, "/test", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestMetricsHandler_ExposesRequestCounter(t *testing.T) {
	router := newRouter(func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", MetricsHandler())

	serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `crowdfund_http_requests_total{method="GET",route="/test",status="200"}`))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperror.KindValidation))
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperror.KindAuthorization))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(apperror.KindAuthentication))
	assert.Equal(t, http.StatusNotFound, StatusFor(apperror.KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperror.KindInternal))
}
