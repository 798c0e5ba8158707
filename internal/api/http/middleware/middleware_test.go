package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/realestate-cinematic/cinematic-backend/internal/logging"
	"github.com/realestate-cinematic/cinematic-backend/internal/metrics"
)

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		seen = logging.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("generated", func(t *testing.T) {
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "  abc-123 ")
		rr := serve(r, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	})
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "rid-ok")
	serve(r, req)
	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "rid-ok", entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("rejects past burst", func(t *testing.T) {
		r := gin.New()
		r.POST("/render", RateLimit(rate.Limit(0.001), 2), func(c *gin.Context) { c.Status(http.StatusOK) })

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			codes = append(codes, serve(r, httptest.NewRequest(http.MethodPost, "/render", nil)).Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("disabled", func(t *testing.T) {
		r := gin.New()
		r.POST("/render", RateLimit(0, 0), func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 20; i++ {
			assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/render", nil)).Code)
		}
	})
}

func TestStoreRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, available := range []bool{true, false} {
		r := gin.New()
		r.GET("/api/projects", StoreRequired(available), func(c *gin.Context) { c.Status(http.StatusOK) })

		rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
		if available {
			assert.Equal(t, http.StatusOK, rr.Code)
			continue
		}
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"detail": "database not initialized"}`, rr.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/api/projects/a", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/api/projects/b", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	count, err := testutil.GatherAndCount(m.Registry(), "cinematic_http_requests_total")
	require.NoError(t, err)
	// one series per route template plus the unmatched bucket
	assert.Equal(t, 2, count)
}
