package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WishlistController manages the volumes a user wants.
type WishlistController struct {
	catalog WishlistManager
	audit   AuditLogger
}

func NewWishlistController(catalog WishlistManager, audit AuditLogger) *WishlistController {
	return &WishlistController{catalog: catalog, audit: audit}
}

// ListWishlist handles GET /api/wishlist
func (wc *WishlistController) ListWishlist(c *gin.Context) {
	volumes, err := wc.catalog.Wishlist(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"volumes": volumes,
		"total":   len(volumes),
	})
}

// AddToWishlist handles POST /api/wishlist/:volumeId
func (wc *WishlistController) AddToWishlist(c *gin.Context) {
	volumeID, ok := parseIDParam(c, "volumeId")
	if !ok {
		return
	}

	userID := GetUserID(c)
	if err := wc.catalog.AddToWishlist(c.Request.Context(), userID, volumeID); err != nil {
		respondDomainError(c, err, "add to wishlist")
		return
	}

	wc.audit.LogWishlistChange(userID, volumeID, "wishlist_added")
	respondSuccess(c, "volume added to wishlist")
}

// RemoveFromWishlist handles DELETE /api/wishlist/:volumeId
func (wc *WishlistController) RemoveFromWishlist(c *gin.Context) {
	volumeID, ok := parseIDParam(c, "volumeId")
	if !ok {
		return
	}

	userID := GetUserID(c)
	if err := wc.catalog.RemoveFromWishlist(c.Request.Context(), userID, volumeID); err != nil {
		respondDomainError(c, err, "remove from wishlist")
		return
	}

	wc.audit.LogWishlistChange(userID, volumeID, "wishlist_removed")
	respondSuccess(c, "volume removed from wishlist")
}
