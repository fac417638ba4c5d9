package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/seriessoft-design/spinlist-mobile-app/internal/auth"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/billing"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/dto"

	"github.com/gin-gonic/gin"
)

// BillingHandler exposes the vendor pass-throughs and the entitlement
// webhook.
type BillingHandler struct {
	svc          *billing.Service
	webhookToken string
}

// NewBillingHandler returns a new BillingHandler.
func NewBillingHandler(svc *billing.Service, webhookToken string) *BillingHandler {
	return &BillingHandler{svc: svc, webhookToken: webhookToken}
}

// Packages godoc
// @Summary      Available subscription packages
// @Tags         billing
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /billing/packages [get]
func (h *BillingHandler) Packages(c *gin.Context) {
	packages, err := h.svc.Packages(c.Request.Context())
	if err != nil {
		h.writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// Purchase godoc
// @Summary      Purchase a package; entitlement is projected onto the user
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.PurchaseRequest  true  "Package"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /billing/purchase [post]
func (h *BillingHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ent, err := h.svc.Purchase(c.Request.Context(), auth.UserIDFromContext(c), req.PackageID)
	if err != nil {
		h.writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entitlement": ent})
}

// Restore godoc
// @Summary      Restore purchases from the vendor
// @Tags         billing
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /billing/restore [post]
func (h *BillingHandler) Restore(c *gin.Context) {
	ent, err := h.svc.Restore(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		h.writeBillingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entitlement": ent})
}

// Webhook godoc
// @Summary      Entitlement-change push from the billing vendor
// @Tags         billing
// @Accept       json
// @Param        body  body  billing.WebhookEvent  true  "Event"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /billing/webhook [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	if h.webhookToken == "" || !h.bearerMatches(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
		return
	}
	var ev billing.WebhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ApplyWebhook(c.Request.Context(), ev); err != nil {
		if errors.Is(err, billing.ErrBadUserRef) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "projection failed"})
		return
	}
	c.Status(http.StatusOK)
}

func (h *BillingHandler) bearerMatches(c *gin.Context) bool {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	return ok && token == h.webhookToken
}

func (h *BillingHandler) writeBillingError(c *gin.Context, err error) {
	if errors.Is(err, billing.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "billing is not configured"})
		return
	}
	// Vendor failure: surface and abandon, no retry.
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
