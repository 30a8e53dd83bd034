package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mangashelf/internal/catalog"
)

// VolumesController resolves and serves individual volumes.
type VolumesController struct {
	catalog VolumeResolver
	covers  CoverFetcher
}

// NewVolumesController creates a VolumesController. covers may be nil.
func NewVolumesController(catalog VolumeResolver, covers CoverFetcher) *VolumesController {
	return &VolumesController{catalog: catalog, covers: covers}
}

// VolumeKeyRequest identifies a volume by barcode or external id.
type VolumeKeyRequest struct {
	ISBN  string `json:"isbn"`
	APIID string `json:"api_id"`
}

func (r VolumeKeyRequest) key() catalog.VolumeKey {
	return catalog.VolumeKey{ISBN: r.ISBN, APIID: r.APIID}
}

// Search handles GET /api/lookup/search?q=
func (vc *VolumesController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "query parameter 'q' is required")
		return
	}

	candidates, err := vc.catalog.Search(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "lookup search")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": candidates,
		"count":   len(candidates),
	})
}

// Resolve handles POST /api/volumes/resolve.
// Looks the volume up or creates it, without touching any collection.
func (vc *VolumesController) Resolve(c *gin.Context) {
	var req VolumeKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	volume, err := vc.catalog.Resolve(c.Request.Context(), req.key())
	if err != nil {
		respondDomainError(c, err, "resolve volume")
		return
	}

	c.JSON(http.StatusOK, volume)
}

// GetVolume handles GET /api/volumes/:id
func (vc *VolumesController) GetVolume(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	volume, err := vc.catalog.Volume(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "get volume")
		return
	}

	c.JSON(http.StatusOK, volume)
}

// GetCover serves a cached volume cover image.
// GET /api/volumes/:id/cover
func (vc *VolumesController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	volume, err := vc.catalog.Volume(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "get cover")
		return
	}

	if volume.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	if vc.covers == nil {
		c.Redirect(http.StatusTemporaryRedirect, volume.CoverURL)
		return
	}

	// Fetches on a cache miss
	cachePath, err := vc.covers.GetCover(c.Request.Context(), id, volume.CoverURL)
	if err != nil || cachePath == "" {
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, volume.CoverURL)
		return
	}

	c.File(cachePath)
}
