package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceEcho wires TraceID in front of a handler that reports what the
// context ended up holding, the way the scav and inventory handlers
// read it for audit entries.
func traceEcho() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceID())
	r.GET("/scav", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	return r
}

func TestTraceIDMintedWhenAbsent(t *testing.T) {
	r := traceEcho()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scav", nil))
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Body.String()
	require.NotEmpty(t, id)
	assert.Len(t, id, 36, "minted IDs are UUIDs")
	assert.Equal(t, id, w.Header().Get(TraceIDHeader), "handler and response header see the same ID")

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/scav", nil))
	assert.NotEqual(t, id, w2.Body.String(), "each request gets its own ID")
}

func TestTraceIDPropagatedFromClient(t *testing.T) {
	r := traceEcho()

	req := httptest.NewRequest(http.MethodGet, "/scav", nil)
	req.Header.Set(TraceIDHeader, "client-run-0017")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client-run-0017", w.Body.String())
	assert.Equal(t, "client-run-0017", w.Header().Get(TraceIDHeader))
}

func TestGetTraceIDOutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetTraceID(c))
}
