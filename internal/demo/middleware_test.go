package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
	for _, path := range []string{"/api/collection", "/api/volumes/resolve"} {
		router.GET(path, handler)
		router.HEAD(path, handler)
		router.OPTIONS(path, handler)
		router.POST(path, handler)
		router.PUT(path, handler)
		router.DELETE(path, handler)
	}
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewMiddleware(t *testing.T) {
	assert.True(t, NewMiddleware(true).IsEnabled())
	assert.False(t, NewMiddleware(false).IsEnabled())
}

func TestMiddleware_AllowsSafeMethods(t *testing.T) {
	router := newTestRouter(NewMiddleware(true))

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w := serve(router, method, "/api/collection")
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestMiddleware_BlocksWrites(t *testing.T) {
	router := newTestRouter(NewMiddleware(true))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := serve(router, method, "/api/collection")
		assert.Equal(t, http.StatusForbidden, w.Code, method)
	}

	w := serve(router, http.MethodPost, "/api/collection")
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["demo_mode"])
	assert.Equal(t, "demo_mode", response["code"])
}

func TestMiddleware_AllowlistedPrefix(t *testing.T) {
	router := newTestRouter(NewMiddleware(true, "/api/volumes/"))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/volumes/resolve").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/api/collection").Code)
}

func TestMiddleware_DisabledAllowsWrites(t *testing.T) {
	router := newTestRouter(NewMiddleware(false))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodDelete, "/api/collection").Code)
}

func TestMiddleware_SetsContextFlag(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		router := gin.New()
		router.Use(NewMiddleware(enabled).Handler())
		router.GET("/flag", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"demo": c.GetBool(ContextKeyDemoMode)})
		})

		w := serve(router, http.MethodGet, "/flag")
		var body map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, enabled, body["demo"])
	}
}
