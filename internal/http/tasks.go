package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	status  TaskStatusReader
	cleanup CleanupTrigger
}

// NewTasksController creates a TasksController. Either dependency may be nil.
func NewTasksController(status TaskStatusReader, cleanup CleanupTrigger) *TasksController {
	return &TasksController{status: status, cleanup: cleanup}
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.status == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue disabled"})
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunAuditCleanup handles POST /api/tasks/audit-cleanup/run
// Enqueues an audit cleanup outside the cron schedule.
func (tc *TasksController) RunAuditCleanup(c *gin.Context) {
	if tc.cleanup == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "audit cleanup disabled"})
		return
	}

	if err := tc.cleanup.RunNow(c.Request.Context()); err != nil {
		respondInternalError(c, err, "run audit cleanup")
		return
	}

	respondAccepted(c, "task enqueued", gin.H{"type": "cleanup_audit_events"})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
