package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedRouter(r rate.Limit, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	eng := gin.New()
	eng.Use(RateLimit(r, burst))
	eng.GET("/points", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func hitFrom(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/points", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	// Refill is effectively zero within the test, so the burst is the
	// whole budget.
	r := limitedRouter(rate.Limit(0.001), 3)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hitFrom(r, "203.0.113.9"), "poll %d within burst", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "203.0.113.9"))
}

func TestRateLimitBucketsAreIndependentPerIP(t *testing.T) {
	r := limitedRouter(rate.Limit(0.001), 1)

	assert.Equal(t, http.StatusOK, hitFrom(r, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "203.0.113.1"),
		"first client spent its budget")
	assert.Equal(t, http.StatusOK, hitFrom(r, "203.0.113.2"),
		"second client still has its own")
}

func TestRateLimitGenerousBudgetNeverRejects(t *testing.T) {
	// A polling game client at 1 req/s sits far under the default limits.
	r := limitedRouter(rate.Limit(100), 20)
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hitFrom(r, "203.0.113.50"))
	}
}
