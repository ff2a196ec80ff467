package http

import (
	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/ai"
	"github.com/honiara/homefinder/internal/auth"
	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/notify"
	"github.com/honiara/homefinder/internal/storage"
)

// RouterConfig carries all dependencies for the HTTP router. Optional
// integrations (object storage, mail, text generation) are nil when not
// configured and the corresponding endpoints degrade accordingly.
type RouterConfig struct {
	Database *database.Database
	Version  string

	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	Users      AdminUserStore
	AuthStore  AuthStore
	Properties PropertyStore
	Images     ImageStore
	Favorites  FavoritesStore
	Inquiries  InquiryStore

	Storage  storage.Client
	Notifier notify.Notifier
	AIClient *ai.Client
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Resolve the caller identity on every request. Route guards fall back
	// to pass-through when the middleware is absent (tests wire their own
	// identity).
	requireAuth := passthrough
	requireSuperAdmin := passthrough
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
		requireAuth = cfg.AuthMiddleware.RequireAuth()
		requireSuperAdmin = cfg.AuthMiddleware.RequireSuperAdmin()
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints
	if cfg.AuthStore != nil && cfg.SessionManager != nil {
		authController := NewAuthController(cfg.AuthStore, cfg.SessionManager)
		router.POST("/api/auth/login", authController.Login)
		router.POST("/api/auth/session", authController.ExternalSession)
		router.POST("/api/auth/logout", authController.Logout)
		router.GET("/api/auth/me", authController.Me)
	}

	// Listing endpoints
	if cfg.Properties != nil {
		propertyController := NewPropertyController(cfg.Properties, cfg.Images, cfg.Storage)
		router.GET("/api/properties/search", propertyController.SearchProperties)
		router.GET("/api/properties/featured", propertyController.FeaturedProperties)
		router.GET("/api/properties/map", propertyController.MapProperties)
		router.GET("/api/properties/:id", propertyController.GetProperty)
		router.GET("/api/properties/mine", requireAuth, propertyController.MyProperties)
		router.POST("/api/properties", requireAuth, propertyController.CreateProperty)
		router.PATCH("/api/properties/:id", requireAuth, propertyController.UpdateProperty)
		router.POST("/api/properties/:id/activate", requireAuth, propertyController.ActivateProperty)
		router.POST("/api/properties/:id/deactivate", requireAuth, propertyController.DeactivateProperty)

		imageController := NewImageController(cfg.Images, cfg.Properties, cfg.Storage)
		router.POST("/api/properties/:id/images", requireAuth, imageController.UploadImages)
		router.DELETE("/api/properties/:id/images/:imageId", requireAuth, imageController.DeleteImage)
		router.POST("/api/properties/:id/images/:imageId/primary", requireAuth, imageController.SetPrimaryImage)
	}

	// Favorites endpoints
	if cfg.Favorites != nil {
		favoritesController := NewFavoritesController(cfg.Favorites)
		router.POST("/api/favorites/:propertyId/toggle", requireAuth, favoritesController.ToggleFavorite)
		router.GET("/api/favorites", requireAuth, favoritesController.ListFavorites)
		router.GET("/api/favorites/ids", requireAuth, favoritesController.FavoriteIDs)
		router.GET("/api/favorites/:propertyId", requireAuth, favoritesController.CheckFavorite)
	}

	// Inquiry endpoints
	if cfg.Inquiries != nil && cfg.Properties != nil {
		inquiryController := NewInquiryController(cfg.Inquiries, cfg.Properties, cfg.Notifier)
		router.POST("/api/inquiries", inquiryController.CreateInquiry)
		router.GET("/api/inquiries", requireAuth, inquiryController.MyInquiries)
		router.GET("/api/inquiries/unread-count", requireAuth, inquiryController.UnreadInquiryCount)
		router.POST("/api/inquiries/:id/read", requireAuth, inquiryController.MarkInquiryRead)
		router.GET("/api/properties/:id/inquiries", requireAuth, inquiryController.PropertyInquiries)
	}

	// Description drafting endpoint
	aiController := NewAIController(cfg.AIClient)
	router.POST("/api/ai/describe", requireAuth, aiController.Describe)

	// Admin endpoints, superadmin only
	if cfg.Users != nil {
		adminController := NewAdminController(cfg.Users)
		// Any authenticated caller may ask; the answer is just a boolean.
		router.GET("/api/admin/is-superadmin", requireAuth, adminController.IsSuperAdmin)

		admin := router.Group("/api/admin", requireSuperAdmin)
		admin.GET("/users", adminController.ListUsers)
		admin.POST("/users", adminController.CreateUser)
		admin.PATCH("/users/:id", adminController.UpdateUser)
		admin.DELETE("/users/:id", adminController.DeleteUser)
		admin.POST("/users/:id/role", adminController.UpdateUserRole)
	}

	return router
}

func passthrough(c *gin.Context) {
	c.Next()
}
