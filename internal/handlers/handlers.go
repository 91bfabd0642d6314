package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
	"github.com/marcuseden/slavajewlery-sub001/internal/database"
	"github.com/marcuseden/slavajewlery-sub001/internal/generator"
	"github.com/marcuseden/slavajewlery-sub001/internal/middleware"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
	"github.com/marcuseden/slavajewlery-sub001/internal/repository"
	"github.com/marcuseden/slavajewlery-sub001/internal/service"
	"github.com/marcuseden/slavajewlery-sub001/internal/storage"
)

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	authService    *service.AuthService
	designService  *service.DesignService
	shareService   *service.ShareService
	privacyService *service.PrivacyService
	orderService   *service.OrderService
	users          *repository.UserRepository
	sessions       *repository.SessionRepository
	resolveLimiter *middleware.ClientRateLimiter
}

func NewHandlerSet(log zerolog.Logger, db database.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	designRepo := repository.NewDesignRepository(db)
	shareRepo := repository.NewShareRepository(db)
	privacyRepo := repository.NewPrivacyRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	gen := generator.NewClient(cfg.Generator)
	ingest := service.NewIngestService(store, cfg.Generator, log)

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		authService:    service.NewAuthService(userRepo, sessionRepo, cfg, log),
		designService:  service.NewDesignService(designRepo, gen, ingest, store, log),
		shareService:   service.NewShareService(designRepo, shareRepo, store, cache, cfg.Share, log),
		privacyService: service.NewPrivacyService(privacyRepo, cfg.Privacy, log),
		orderService:   service.NewOrderService(orderRepo, designRepo, cfg.Pricing, log),
		users:          userRepo,
		sessions:       sessionRepo,
		resolveLimiter: middleware.NewClientRateLimiter(cfg.Share.ResolveRPS, cfg.Share.ResolveBurst),
	}
}

// ShareService and PrivacyService expose the services the background
// scheduler shares with the HTTP surface.
func (h HandlerSet) ShareService() *service.ShareService { return h.shareService }

func (h HandlerSet) PrivacyService() *service.PrivacyService { return h.privacyService }

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	authed := middleware.Auth(h.cfg, h.users, h.sessions)

	me := v1.Group("/auth")
	me.Use(authed)
	me.GET("/me", h.Me)

	designs := v1.Group("/designs")
	designs.Use(authed)
	designs.POST("", h.CreateDesign)
	designs.GET("", h.ListDesigns)
	designs.GET("/:id", h.GetDesign)
	designs.POST("/:id/generate", h.GenerateDesignImages)

	images := v1.Group("/images")
	images.POST("/share", authed, h.IssueShareLink)
	images.GET("/shared/:token", h.resolveLimiter.Middleware(), h.ResolveShareLink)

	orders := v1.Group("/orders")
	orders.Use(authed)
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)

	user := v1.Group("/user")
	user.Use(authed)
	user.POST("/export-data", h.ExportData)
	user.POST("/delete-account", h.RequestDeletion)
	user.DELETE("/delete-account", h.CancelDeletion)
	user.GET("/delete-account", h.DeletionStatus)
}

func currentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
