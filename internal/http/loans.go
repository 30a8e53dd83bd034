package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mangashelf/internal/loans"
)

// LoansController lends volumes out and takes them back.
type LoansController struct {
	loans LoanManager
	audit AuditLogger
}

func NewLoansController(loans LoanManager, audit AuditLogger) *LoansController {
	return &LoansController{loans: loans, audit: audit}
}

// LoanRequest lends one volume.
type LoanRequest struct {
	VolumeID     uint   `json:"volume_id" binding:"required"`
	BorrowerName string `json:"borrower_name"`
	Notes        string `json:"notes"`
}

// ReturnRequest closes the active loan of one volume.
type ReturnRequest struct {
	VolumeID uint `json:"volume_id" binding:"required"`
}

// BulkLoanRequest lends several volumes to one borrower, all or nothing.
type BulkLoanRequest struct {
	VolumeIDs    []uint `json:"volume_ids"`
	BorrowerName string `json:"borrower_name"`
	Notes        string `json:"notes"`
}

// BulkReturnRequest returns several volumes, all or nothing.
type BulkReturnRequest struct {
	VolumeIDs []uint `json:"volume_ids"`
}

// ListLoans handles GET /api/loans?status=active|returned|all
func (lc *LoansController) ListLoans(c *gin.Context) {
	filter := loans.ParseFilter(c.Query("status"))
	result, err := lc.loans.List(c.Request.Context(), GetUserID(c), filter)
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loans":  result,
		"total":  len(result),
		"status": filter,
	})
}

// CreateLoan handles POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "volume_id is required")
		return
	}

	userID := GetUserID(c)
	loan, err := lc.loans.Loan(c.Request.Context(), userID, loans.Request{
		VolumeID:     req.VolumeID,
		BorrowerName: req.BorrowerName,
		Notes:        req.Notes,
	})
	lc.audit.LogLoan(userID, "loan", req.BorrowerName, []uint{req.VolumeID}, err)
	if err != nil {
		respondDomainError(c, err, "create loan")
		return
	}

	respondCreated(c, loan)
}

// ReturnLoan handles POST /api/loans/return
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "volume_id is required")
		return
	}

	userID := GetUserID(c)
	loan, err := lc.loans.Return(c.Request.Context(), userID, req.VolumeID)
	lc.audit.LogLoan(userID, "return", "", []uint{req.VolumeID}, err)
	if err != nil {
		respondDomainError(c, err, "return loan")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// BulkLoan handles POST /api/loans/bulk
// Either every volume is lent or none is; the failing index is reported in the error details.
func (lc *LoansController) BulkLoan(c *gin.Context) {
	var req BulkLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.VolumeIDs) == 0 {
		respondBadRequest(c, "volume_ids must be a non-empty list")
		return
	}

	userID := GetUserID(c)
	result, err := lc.loans.BulkLoan(c.Request.Context(), userID, req.VolumeIDs, req.BorrowerName, req.Notes)
	lc.audit.LogLoan(userID, "bulk_loan", req.BorrowerName, req.VolumeIDs, err)
	if err != nil {
		respondDomainError(c, err, "bulk loan")
		return
	}

	respondCreated(c, gin.H{
		"loans": result,
		"count": len(result),
	})
}

// BulkReturn handles POST /api/loans/bulk-return
func (lc *LoansController) BulkReturn(c *gin.Context) {
	var req BulkReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.VolumeIDs) == 0 {
		respondBadRequest(c, "volume_ids must be a non-empty list")
		return
	}

	userID := GetUserID(c)
	result, err := lc.loans.BulkReturn(c.Request.Context(), userID, req.VolumeIDs)
	lc.audit.LogLoan(userID, "bulk_return", "", req.VolumeIDs, err)
	if err != nil {
		respondDomainError(c, err, "bulk return")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": result,
		"count": len(result),
	})
}
