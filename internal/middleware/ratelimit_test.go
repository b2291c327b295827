package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setupLimitedRouter(t *testing.T, r rate.Limit, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	require.NoError(t, router.SetTrustedProxies(nil))
	router.Use(RateLimit(r, burst))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimitRejectsPastBurst(t *testing.T) {
	router := setupLimitedRouter(t, 1, 1)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRateLimitIgnoresForwardedForRotation(t *testing.T) {
	router := setupLimitedRouter(t, 1, 1)

	// Same remote address, rotating forwarded headers. Without a trusted
	// proxy the header must not open a fresh bucket.
	forged := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
	codes := make([]int, 0, len(forged))
	for _, ip := range forged {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	require.Equal(t, http.StatusOK, codes[0])
	require.Equal(t, http.StatusTooManyRequests, codes[1])
	require.Equal(t, http.StatusTooManyRequests, codes[2])
}
