package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/seriessoft-design/spinlist-mobile-app/internal/ads"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/auth"
	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/dto"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/service"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// DecisionHandler serves the wheel.
type DecisionHandler struct {
	svc     *service.DecisionService
	userSvc *service.UserService
	gate    *ads.Gate
	v       *validatorv10.Validate
}

// NewDecisionHandler returns a new DecisionHandler.
func NewDecisionHandler(svc *service.DecisionService, userSvc *service.UserService, gate *ads.Gate) *DecisionHandler {
	return &DecisionHandler{svc: svc, userSvc: userSvc, gate: gate, v: validatorv10.New()}
}

// Spin godoc
// @Summary      Spin the wheel over the given options
// @Tags         decisions
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.SpinRequest  true  "Options (at least 2 non-blank)"
// @Success      200   {object}  dto.SpinResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /decisions/spin [post]
func (h *DecisionHandler) Spin(c *gin.Context) {
	var req dto.SpinRequest
	if !bindAndValidate(c, &req, h.v) {
		return
	}
	user, err := h.userSvc.GetByID(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	d, err := h.svc.Spin(c.Request.Context(), user.ID, req.Options)
	if err != nil {
		if errors.Is(err, service.ErrTooFewOptions) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ad, show := h.gate.TrackAction(c.Request.Context(), user.ID, user.IsPro); show {
		c.Header(interstitialHeader, ad.Unit)
	}
	resp := dto.SpinResponse{Decision: decisionToResponse(d)}
	if req.Shuffled {
		resp.Wheel = service.Shuffle(d.Options)
	}
	c.JSON(http.StatusOK, resp)
}

// Recent godoc
// @Summary      Recent spins, newest first
// @Tags         decisions
// @Produce      json
// @Security     CookieAuth
// @Param        limit  query     int  false  "Max records (default 20, cap 50)"
// @Success      200    {object}  dto.ListDecisionsResponse
// @Failure      500    {object}  map[string]string
// @Router       /decisions [get]
func (h *DecisionHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.svc.Recent(c.Request.Context(), auth.UserIDFromContext(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.DecisionResponse, len(list))
	for i := range list {
		out[i] = decisionToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListDecisionsResponse{Items: out})
}

func decisionToResponse(d dom.Decision) dto.DecisionResponse {
	return dto.DecisionResponse{ID: d.ID, Options: d.Options, Result: d.Result, CreatedAt: d.CreatedAt}
}
