// Package auth identifies the user behind each API request.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), every request acts as AUTH_DEFAULT_USER_ID
//   - "token": "Authorization: Bearer <token>" is looked up in the users table
//
// # Configuration
//
//	AUTH_MODE=none          # Default, single-user install
//	AUTH_MODE=token         # Multi-user; create users with `mangashelf users create`
//	AUTH_DEFAULT_USER_ID=1  # User acting in "none" mode
//
// Repeated invalid tokens from one client IP are locked out for a while (see RateLimiter).
//
// # Usage
//
//	authMiddleware := auth.NewMiddleware(usersRepo, cfg.Auth, auth.NewRateLimiter(auth.DefaultRateLimitConfig()))
//	router.Use(authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
