package handlers

import (
	"net/http"

	"github.com/seriessoft-design/spinlist-mobile-app/internal/ads"

	"github.com/gin-gonic/gin"
)

// AdsHandler exposes the passive banner unit to the client.
type AdsHandler struct {
	provider ads.Provider
}

// NewAdsHandler returns a new AdsHandler.
func NewAdsHandler(provider ads.Provider) *AdsHandler {
	return &AdsHandler{provider: provider}
}

// Banner godoc
// @Summary      Banner ad unit for the current deployment
// @Tags         ads
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /ads/banner [get]
func (h *AdsHandler) Banner(c *gin.Context) {
	unit := h.provider.BannerUnit()
	if unit == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no banner configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit": unit})
}
