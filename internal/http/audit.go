package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mangashelf/internal/entities"
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?type=&page=&limit=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID := GetUserID(c)
	page, limit, offset := parsePagination(c)
	eventType := entities.AuditEventType(c.Query("type"))

	events, total, err := ac.events.GetEvents(c.Request.Context(), userID, eventType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}
