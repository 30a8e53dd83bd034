package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mangashelf/internal/auth"
	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	auditLogger := cfg.Audit
	if auditLogger == nil {
		auditLogger = nopAudit{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(metrics.Middleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	if cfg.RequestTimeout > 0 {
		router.Use(requestTimeout(cfg.RequestTimeout))
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, uint(config.DefaultUserID))
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	if cfg.Demo != nil {
		router.Use(cfg.Demo.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.LoanCounter, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")

	if cfg.Catalog != nil {
		volumes := NewVolumesController(cfg.Catalog, cfg.CoverCache)
		api.GET("/lookup/search", volumes.Search)
		api.POST("/volumes/resolve", volumes.Resolve)
		api.GET("/volumes/:id", volumes.GetVolume)
		api.GET("/volumes/:id/cover", volumes.GetCover)

		series := NewSeriesController(cfg.Catalog, auditLogger)
		api.GET("/series", series.ListSeries)
		api.GET("/series/:id", series.GetSeries)
		api.POST("/editions/:id/volumes", series.AddLocalVolumes)

		collection := NewCollectionController(cfg.Catalog, auditLogger, cfg.PayloadSaver)
		api.GET("/collection", collection.ListCollection)
		api.POST("/collection", collection.AddToCollection)
		api.POST("/collection/scan", collection.ScanImport)
		api.DELETE("/collection/:volumeId", collection.RemoveFromCollection)

		wishlist := NewWishlistController(cfg.Catalog, auditLogger)
		api.GET("/wishlist", wishlist.ListWishlist)
		api.POST("/wishlist/:volumeId", wishlist.AddToWishlist)
		api.DELETE("/wishlist/:volumeId", wishlist.RemoveFromWishlist)
	}

	if cfg.Loans != nil {
		loansController := NewLoansController(cfg.Loans, auditLogger)
		api.GET("/loans", loansController.ListLoans)
		api.POST("/loans", loansController.CreateLoan)
		api.POST("/loans/return", loansController.ReturnLoan)
		api.POST("/loans/bulk", loansController.BulkLoan)
		api.POST("/loans/bulk-return", loansController.BulkReturn)
	}

	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskStatus != nil || cfg.CleanupTrigger != nil {
		tasksController := NewTasksController(cfg.TaskStatus, cfg.CleanupTrigger)
		api.POST("/tasks/audit-cleanup/run", tasksController.RunAuditCleanup)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// requestTimeout bounds the request context, provider lookups included.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
