package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// TokenValidator resolves an API token to its user; *users.Repository satisfies it.
type TokenValidator interface {
	GetUserByToken(ctx context.Context, token string) (*entities.User, error)
}

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	users       TokenValidator
	limiter     *RateLimiter
	config      config.Auth
	publicPaths map[string]bool
}

// NewMiddleware creates a new authentication middleware. limiter may be nil.
func NewMiddleware(users TokenValidator, cfg config.Auth, limiter *RateLimiter) *Middleware {
	if cfg.DefaultUserID == 0 {
		cfg.DefaultUserID = config.DefaultUserID
	}
	return &Middleware{
		users:   users,
		limiter: limiter,
		config:  cfg,
		publicPaths: map[string]bool{
			"/health":  true,
			"/ping":    true,
			"/metrics": true,
		},
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeToken {
		return m.tokenHandler()
	}
	return m.noAuthHandler()
}

// noAuthHandler injects the default user for all requests when auth is disabled.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, m.config.DefaultUserID)
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) tokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if m.limiter != nil {
			if allowed, retryAfter := m.limiter.Allow(ip); !allowed {
				c.Header("Retry-After", retryAfter.String())
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "too many failed authentication attempts",
					"retry_after": retryAfter.String(),
				})
				return
			}
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		user, err := m.users.GetUserByToken(c.Request.Context(), token)
		if err != nil || user == nil {
			if m.limiter != nil {
				m.limiter.RecordFailure(ip)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if m.limiter != nil {
			m.limiter.RecordSuccess(ip)
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUsername, user.Username)
		c.Set(ContextKeyAuthType, AuthTypeBearer)
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 when the request went through no auth middleware.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
