package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/seriessoft-design/spinlist-mobile-app/internal/ads"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/auth"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/cache"
	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/dto"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/lifespan"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/service"

	"github.com/gin-gonic/gin"
)

// interstitialHeader tells the client to show a full-screen ad with this
// unit after rendering the response.
const interstitialHeader = "X-Interstitial-Unit"

// ListHandler serves the list lifecycle endpoints.
type ListHandler struct {
	svc           *service.ListService
	userSvc       *service.UserService
	events        *cache.Events
	gate          *ads.Gate
	freeMax       int
	soonThreshold time.Duration
}

// NewListHandler returns a new ListHandler.
func NewListHandler(svc *service.ListService, userSvc *service.UserService, events *cache.Events, gate *ads.Gate, freeMax int, soonThreshold time.Duration) *ListHandler {
	return &ListHandler{
		svc:           svc,
		userSvc:       userSvc,
		events:        events,
		gate:          gate,
		freeMax:       freeMax,
		soonThreshold: soonThreshold,
	}
}

// Create godoc
// @Summary      Create a list (48h lifespan)
// @Tags         lists
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateListRequest  true  "List body"
// @Success      201   {object}  dto.ListResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /lists [post]
func (h *ListHandler) Create(c *gin.Context) {
	var req dto.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	// Quota gate runs here, not in the service: check-then-create is not
	// transactional, so two racing creates can both pass and briefly exceed
	// the free limit. Accepted, no compensating delete.
	count, err := h.svc.CountActive(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if lifespan.QuotaExceeded(count, user.IsPro, h.freeMax) {
		c.JSON(http.StatusForbidden, gin.H{"error": "free list limit reached", "limit": h.freeMax})
		return
	}
	l, err := h.svc.Create(c.Request.Context(), user.ID, req.Title)
	if err != nil {
		if errors.Is(err, service.ErrEmptyTitle) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.trackAction(c, user)
	c.JSON(http.StatusCreated, h.listToResponse(l))
}

// List godoc
// @Summary      List my lists (newest first, expired included)
// @Tags         lists
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListListsResponse
// @Failure      500  {object}  map[string]string
// @Router       /lists [get]
func (h *ListHandler) List(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ListListsResponse{Items: h.listsToResponses(list)})
}

// GetByID godoc
// @Summary      Get a list by ID (soft-deleted ones included)
// @Tags         lists
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "List ID"
// @Success      200  {object}  dto.ListResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /lists/{id} [get]
func (h *ListHandler) GetByID(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	l, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeListError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.listToResponse(l))
}

// Renew godoc
// @Summary      Renew a list: deadline becomes now + 48h, regardless of what it was
// @Tags         lists
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "List ID"
// @Success      200  {object}  dto.ListResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /lists/{id}/renew [post]
func (h *ListHandler) Renew(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	l, err := h.svc.Renew(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.writeListError(c, err)
		return
	}
	h.trackAction(c, user)
	c.JSON(http.StatusOK, h.listToResponse(l))
}

// Delete godoc
// @Summary      Soft-delete a list
// @Tags         lists
// @Security     CookieAuth
// @Param        id   path  string  true  "List ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /lists/{id} [delete]
func (h *ListHandler) Delete(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.writeListError(c, err)
		return
	}
	h.trackAction(c, user)
	c.Status(http.StatusNoContent)
}

// AddItem godoc
// @Summary      Add an item (whole-array write; optional If-Match version guard)
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id        path    string  true   "List ID"
// @Param        If-Match  header  string  false  "List version read earlier"
// @Param        body      body    dto.AddItemRequest  true  "Item body"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /lists/{id}/items [post]
func (h *ListHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	version, ok := h.ifMatchVersion(c)
	if !ok {
		return
	}
	l, err := h.svc.AddItem(c.Request.Context(), user.ID, c.Param("id"), req.Text, version)
	if err != nil {
		h.writeListError(c, err)
		return
	}
	h.trackAction(c, user)
	c.JSON(http.StatusOK, h.listToResponse(l))
}

// ToggleItem godoc
// @Summary      Toggle an item's completed flag
// @Tags         items
// @Produce      json
// @Security     CookieAuth
// @Param        id        path    string  true   "List ID"
// @Param        itemID    path    string  true   "Item ID"
// @Param        If-Match  header  string  false  "List version read earlier"
// @Success      200  {object}  dto.ListResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /lists/{id}/items/{itemID}/toggle [post]
func (h *ListHandler) ToggleItem(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	version, ok := h.ifMatchVersion(c)
	if !ok {
		return
	}
	l, err := h.svc.ToggleItem(c.Request.Context(), user.ID, c.Param("id"), c.Param("itemID"), version)
	if err != nil {
		h.writeListError(c, err)
		return
	}
	h.trackAction(c, user)
	c.JSON(http.StatusOK, h.listToResponse(l))
}

// RemoveItem godoc
// @Summary      Remove an item
// @Tags         items
// @Produce      json
// @Security     CookieAuth
// @Param        id        path    string  true   "List ID"
// @Param        itemID    path    string  true   "Item ID"
// @Param        If-Match  header  string  false  "List version read earlier"
// @Success      200  {object}  dto.ListResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /lists/{id}/items/{itemID} [delete]
func (h *ListHandler) RemoveItem(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	version, ok := h.ifMatchVersion(c)
	if !ok {
		return
	}
	l, err := h.svc.RemoveItem(c.Request.Context(), user.ID, c.Param("id"), c.Param("itemID"), version)
	if err != nil {
		h.writeListError(c, err)
		return
	}
	h.trackAction(c, user)
	c.JSON(http.StatusOK, h.listToResponse(l))
}

// Watch godoc
// @Summary      Stream listing snapshots over SSE as lists change
// @Tags         lists
// @Produce      text/event-stream
// @Security     CookieAuth
// @Success      200
// @Router       /lists/watch [get]
func (h *ListHandler) Watch(c *gin.Context) {
	userID := auth.UserIDFromContext(c)

	// Scoped acquisition: the subscription is released when the client goes
	// away, whatever way the stream ends.
	sub := h.events.Subscribe(c.Request.Context(), userID)
	defer sub.Close()
	ch := sub.Channel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	if !h.sendSnapshot(c, userID) {
		return
	}
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case _, ok := <-ch:
			if !ok {
				return false
			}
			return h.sendSnapshot(c, userID)
		}
	})
}

func (h *ListHandler) sendSnapshot(c *gin.Context, userID int64) bool {
	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	c.SSEvent("lists", dto.ListListsResponse{Items: h.listsToResponses(list)})
	return true
}

// currentUser loads the session's user; handlers need IsPro for the quota
// and ad gates.
func (h *ListHandler) currentUser(c *gin.Context) (dom.User, bool) {
	user, err := h.userSvc.GetByID(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return dom.User{}, false
	}
	return user, true
}

// ifMatchVersion parses the optional optimistic-concurrency header.
func (h *ListHandler) ifMatchVersion(c *gin.Context) (*int64, bool) {
	raw := c.GetHeader("If-Match")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "If-Match must be a list version"})
		return nil, false
	}
	return &v, true
}

func (h *ListHandler) trackAction(c *gin.Context, user dom.User) {
	if ad, show := h.gate.TrackAction(c.Request.Context(), user.ID, user.IsPro); show {
		c.Header(interstitialHeader, ad.Unit)
	}
}

func (h *ListHandler) writeListError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, service.ErrStaleVersion):
		c.JSON(http.StatusConflict, gin.H{"error": "stale", "detail": err.Error()})
	case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrEmptyItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *ListHandler) listToResponse(l dom.List) dto.ListResponse {
	now := time.Now().UTC()
	remaining := lifespan.Remaining(l.ExpiresAt, now)
	items := make([]dto.ItemResponse, len(l.Items))
	for i, it := range l.Items {
		items[i] = dto.ItemResponse{ID: it.ID, Text: it.Text, Completed: it.Completed, CreatedAt: it.CreatedAt}
	}
	return dto.ListResponse{
		ID:            l.ID,
		Title:         l.Title,
		Items:         items,
		Version:       l.Version,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
		ExpiresAt:     l.ExpiresAt,
		TimeRemaining: lifespan.Format(remaining),
		Expired:       remaining == 0,
		ExpiringSoon:  lifespan.ExpiringSoon(l.ExpiresAt, now, h.soonThreshold),
		IsDeleted:     l.IsDeleted,
	}
}

func (h *ListHandler) listsToResponses(list []dom.List) []dto.ListResponse {
	out := make([]dto.ListResponse, len(list))
	for i := range list {
		out[i] = h.listToResponse(list[i])
	}
	return out
}
