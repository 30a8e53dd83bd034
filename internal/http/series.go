package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SeriesController browses the series hierarchy.
type SeriesController struct {
	catalog SeriesBrowser
	audit   AuditLogger
}

func NewSeriesController(catalog SeriesBrowser, audit AuditLogger) *SeriesController {
	return &SeriesController{catalog: catalog, audit: audit}
}

// ListSeries handles GET /api/series
func (sc *SeriesController) ListSeries(c *gin.Context) {
	series, err := sc.catalog.ListSeries(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list series")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"series": series,
		"total":  len(series),
	})
}

// GetSeries handles GET /api/series/:id
// Returns the series with its editions and their volumes.
func (sc *SeriesController) GetSeries(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := sc.catalog.Series(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "get series")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// AddLocalVolumesRequest lists volume numbers to create under an edition.
type AddLocalVolumesRequest struct {
	Numbers []int `json:"numbers"`
}

// AddLocalVolumes handles POST /api/editions/:id/volumes
// Creates numbered volumes the provider does not know about and adds them to the collection.
func (sc *SeriesController) AddLocalVolumes(c *gin.Context) {
	editionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddLocalVolumesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Numbers) == 0 {
		respondBadRequest(c, "numbers must be a non-empty list")
		return
	}

	userID := GetUserID(c)
	volumes, err := sc.catalog.AddLocalVolumesToEdition(c.Request.Context(), editionID, req.Numbers, userID)
	if err != nil {
		respondDomainError(c, err, "add local volumes")
		return
	}

	for _, v := range volumes {
		sc.audit.LogCollectionChange(userID, v.ID, "volume_added", v.Title)
	}

	respondCreated(c, gin.H{
		"volumes": volumes,
		"count":   len(volumes),
	})
}
