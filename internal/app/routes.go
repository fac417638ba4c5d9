package app

import (
	"github.com/seriessoft-design/spinlist-mobile-app/internal/ads"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/auth"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/billing"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/cache"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/config"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/handlers"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/repo"
	"github.com/seriessoft-design/spinlist-mobile-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, cfg.Auth.SessionTTL.Duration())
	otpStore := auth.NewOTPStore(rdb, cfg.Auth.OTPTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(
		sessionStore, otpStore, userSvc,
		cfg.Auth.SessionTTL.Duration(), cfg.App.Env == "dev", log,
	)
	registerAuthRoutes(api, authHandler)

	adProvider := ads.NewStaticProvider(cfg.Ads.BannerUnit, cfg.Ads.InterstitialUnit)
	gate := ads.NewGate(ads.NewRedisCounter(rdb), adProvider, cfg.Ads.Frequency, log)

	var entitlements billing.Provider
	if cfg.Billing.BaseURL != "" {
		entitlements = billing.NewRESTProvider(cfg.Billing.BaseURL, cfg.Billing.APIKey, cfg.Billing.Timeout.Duration())
	}
	billingSvc := billing.NewService(entitlements, userRepo, log)
	billingHandler := handlers.NewBillingHandler(billingSvc, cfg.Billing.WebhookToken)
	// The vendor pushes entitlement changes here; it has no session.
	api.POST("/billing/webhook", billingHandler.Webhook)

	protected := api.Group("", auth.RequireSession(sessionStore))
	protected.GET("/me", authHandler.Me)

	listRepo := repo.NewPGListRepo(db)
	listCache := cache.NewListCache(rdb, cfg.Redis.DefaultTTL.Duration())
	events := cache.NewEvents(rdb)
	listSvc := service.NewListService(listRepo, listCache, events, cfg.Lists.TTL.Duration())
	listHandler := handlers.NewListHandler(
		listSvc, userSvc, events, gate,
		cfg.Lists.FreeMax, cfg.Lists.ExpiringSoon.Duration(),
	)
	registerListRoutes(protected, listHandler)

	decisionSvc := service.NewDecisionService(repo.NewPGDecisionRepo(db))
	decisionHandler := handlers.NewDecisionHandler(decisionSvc, userSvc, gate)
	registerDecisionRoutes(protected, decisionHandler)

	registerBillingRoutes(protected, billingHandler)
	protected.GET("/ads/banner", handlers.NewAdsHandler(adProvider).Banner)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Spinlist API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerListRoutes(api *gin.RouterGroup, h *handlers.ListHandler) {
	api.POST("/lists", h.Create)
	api.GET("/lists", h.List)
	api.GET("/lists/watch", h.Watch)
	api.GET("/lists/:id", h.GetByID)
	api.POST("/lists/:id/renew", h.Renew)
	api.DELETE("/lists/:id", h.Delete)
	api.POST("/lists/:id/items", h.AddItem)
	api.POST("/lists/:id/items/:itemID/toggle", h.ToggleItem)
	api.DELETE("/lists/:id/items/:itemID", h.RemoveItem)
}

func registerDecisionRoutes(api *gin.RouterGroup, h *handlers.DecisionHandler) {
	api.POST("/decisions/spin", h.Spin)
	api.GET("/decisions", h.Recent)
}

func registerBillingRoutes(api *gin.RouterGroup, h *handlers.BillingHandler) {
	api.GET("/billing/packages", h.Packages)
	api.POST("/billing/purchase", h.Purchase)
	api.POST("/billing/restore", h.Restore)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/otp/request", h.OTPRequest)
	api.POST("/auth/otp/verify", h.OTPVerify)
	api.POST("/auth/logout", h.Logout)
}
