package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mangashelf/internal/auth"
	"github.com/mrlokans/mangashelf/internal/bulk"
	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/loans"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (conflicting loan, failing item, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// Machine-readable error codes.
const (
	CodeNotFound       = "not_found"
	CodeInvalidRequest = "invalid_request"
	CodeNotOwned       = "not_owned"
	CodeAlreadyLoaned  = "already_loaned"
	CodeNoActiveLoan   = "no_active_loan"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalidRequest})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: CodeNotFound})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	slog.ErrorContext(c.Request.Context(), "internal error", "context", context, "error", err,
		"method", c.Request.Method, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondDomainError maps catalog and loan errors onto HTTP statuses.
// Anything it does not recognise is a 500.
func respondDomainError(c *gin.Context, err error, context string) {
	var details gin.H
	var itemErr *bulk.ItemError
	if errors.As(err, &itemErr) {
		details = gin.H{"index": itemErr.Index}
	}

	var already *loans.AlreadyLoanedError
	switch {
	case errors.As(err, &already):
		if details == nil {
			details = gin.H{}
		}
		details["volume_id"] = already.VolumeID
		if already.Borrower != "" {
			details["borrower"] = already.Borrower
		}
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeAlreadyLoaned, Details: details})
	case errors.Is(err, loans.ErrNotOwned):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: CodeNotOwned, Details: detailsOrNil(details)})
	case errors.Is(err, loans.ErrLoanNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNoActiveLoan, Details: detailsOrNil(details)})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound, Details: detailsOrNil(details)})
	case errors.Is(err, catalog.ErrMissingKey),
		errors.Is(err, catalog.ErrInvalidVolumeNumber),
		errors.Is(err, loans.ErrBorrowerRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest, Details: detailsOrNil(details)})
	default:
		respondInternalError(c, err, context)
	}
}

// detailsOrNil keeps an empty details map out of the JSON.
func detailsOrNil(details gin.H) any {
	if len(details) == 0 {
		return nil
	}
	return details
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page and limit query parameters. A missing or
// non-positive limit becomes 25; anything above 100 is clamped to 100.
func parsePagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}
