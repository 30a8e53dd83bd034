package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyDemoMode is set on every request so handlers can tell a demo shelf apart.
const ContextKeyDemoMode = "demo_mode"

// Middleware makes the shelf read-only in demo mode.
// Safe methods always pass; writes pass only for allowlisted path prefixes.
type Middleware struct {
	enabled bool
	allowed []string
}

// NewMiddleware creates a demo mode middleware. allowed holds path prefixes
// that may still be written to, e.g. "/api/lookup/".
func NewMiddleware(enabled bool, allowed ...string) *Middleware {
	return &Middleware{enabled: enabled, allowed: allowed}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that rejects writes with 403.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		if !m.enabled || isSafeMethod(c.Request.Method) || m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "This action is disabled in demo mode",
			"code":      "demo_mode",
			"demo_mode": true,
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (m *Middleware) isAllowedPath(path string) bool {
	for _, prefix := range m.allowed {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
