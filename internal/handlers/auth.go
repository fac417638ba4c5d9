package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/seriessoft-design/spinlist-mobile-app/internal/auth"
	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/dto"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/service"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const sessionCookieName = "session_id"

// AuthHandler handles password and one-time-code sign-in.
type AuthHandler struct {
	sessions   *auth.Store
	otp        *auth.OTPStore
	userSvc    *service.UserService
	sessionTTL time.Duration
	devMode    bool
	log        zerolog.Logger
}

// NewAuthHandler returns a new AuthHandler. In devMode the OTP response
// carries the code inline since no delivery channel is wired up.
func NewAuthHandler(sessions *auth.Store, otp *auth.OTPStore, userSvc *service.UserService, sessionTTL time.Duration, devMode bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		otp:        otp,
		userSvc:    userSvc,
		sessionTTL: sessionTTL,
		devMode:    devMode,
		log:        log,
	}
}

// Login godoc
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.openSession(c, http.StatusOK, user.ID, userToResponse(user))
}

// Register godoc
// @Summary      Register with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	h.openSession(c, http.StatusCreated, user.ID, userToResponse(user))
}

// OTPRequest godoc
// @Summary      Request a one-time sign-in code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OTPRequest  true  "Phone number"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/otp/request [post]
func (h *AuthHandler) OTPRequest(c *gin.Context) {
	var req dto.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone := utils.NormalizePhone(req.Phone)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	code, err := h.otp.Issue(c.Request.Context(), phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue code"})
		return
	}
	// Delivery is the identity vendor's job; until that is wired the code
	// only shows up in dev responses and the log.
	h.log.Info().Str("phone", phone).Msg("one-time code issued")
	resp := gin.H{"sent": true}
	if h.devMode {
		resp["code"] = code
	}
	c.JSON(http.StatusOK, resp)
}

// OTPVerify godoc
// @Summary      Redeem a one-time code for a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OTPVerifyRequest  true  "Phone and code"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) OTPVerify(c *gin.Context) {
	var req dto.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phone := utils.NormalizePhone(req.Phone)
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
		return
	}
	ok, err := h.otp.Verify(c.Request.Context(), phone, req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
		return
	}
	user, err := h.userSvc.EnsureByPhone(c.Request.Context(), phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}
	h.openSession(c, http.StatusOK, user.ID, userToResponse(user))
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) openSession(c *gin.Context, status int, userID int64, user dto.UserResponse) {
	sessionID, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.SetCookie(sessionCookieName, sessionID, int(h.sessionTTL.Seconds()), "/", "", false, true)
	c.JSON(status, gin.H{"ok": true, "user": user})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func userToResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Email: u.Email, Phone: u.Phone, IsPro: u.IsPro}
}
