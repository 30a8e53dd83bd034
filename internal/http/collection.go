package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CollectionController manages the volumes a user owns.
type CollectionController struct {
	catalog  CollectionManager
	audit    AuditLogger
	payloads PayloadSaver
}

// NewCollectionController creates a CollectionController. payloads may be nil.
func NewCollectionController(catalog CollectionManager, audit AuditLogger, payloads PayloadSaver) *CollectionController {
	return &CollectionController{catalog: catalog, audit: audit, payloads: payloads}
}

// ListCollection handles GET /api/collection
func (cc *CollectionController) ListCollection(c *gin.Context) {
	volumes, err := cc.catalog.Collection(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list collection")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"volumes": volumes,
		"total":   len(volumes),
	})
}

// AddToCollection handles POST /api/collection
// Resolves the volume (creating it if needed) and adds it to the collection.
func (cc *CollectionController) AddToCollection(c *gin.Context) {
	var req VolumeKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	userID := GetUserID(c)
	volume, err := cc.catalog.AddToCollection(c.Request.Context(), userID, req.key())
	if err != nil {
		respondDomainError(c, err, "add to collection")
		return
	}

	cc.audit.LogCollectionChange(userID, volume.ID, "volume_added", volume.Title)
	respondCreated(c, volume)
}

// RemoveFromCollection handles DELETE /api/collection/:volumeId
func (cc *CollectionController) RemoveFromCollection(c *gin.Context) {
	volumeID, ok := parseIDParam(c, "volumeId")
	if !ok {
		return
	}

	userID := GetUserID(c)
	if err := cc.catalog.RemoveFromCollection(c.Request.Context(), userID, volumeID); err != nil {
		respondDomainError(c, err, "remove from collection")
		return
	}

	cc.audit.LogCollectionChange(userID, volumeID, "volume_removed", "")
	respondSuccess(c, "volume removed from collection")
}

// ScanRequest carries a batch of scanned barcodes.
type ScanRequest struct {
	ISBNs []string `json:"isbns"`
}

// ScanImport handles POST /api/collection/scan
// Every barcode is attempted; failures are listed in the response rather than failing the batch.
func (cc *CollectionController) ScanImport(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	payloadFile := ""
	if cc.payloads != nil {
		file, err := cc.payloads.SaveJSON(req)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "failed to save scan payload", "error", err)
		}
		payloadFile = file
	}

	userID := GetUserID(c)
	result := cc.catalog.ScanImport(c.Request.Context(), userID, req.ISBNs)

	cc.audit.LogScanImport(userID, payloadFile, len(result.Added), len(result.Failed))
	c.JSON(http.StatusOK, result)
}
