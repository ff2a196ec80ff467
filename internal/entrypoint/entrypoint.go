package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/ai"
	"github.com/honiara/homefinder/internal/auth"
	"github.com/honiara/homefinder/internal/config"
	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/database/favorites"
	"github.com/honiara/homefinder/internal/database/images"
	"github.com/honiara/homefinder/internal/database/inquiries"
	"github.com/honiara/homefinder/internal/database/properties"
	"github.com/honiara/homefinder/internal/database/users"
	http_controllers "github.com/honiara/homefinder/internal/http"
	"github.com/honiara/homefinder/internal/notify"
	"github.com/honiara/homefinder/internal/storage"
	cloudinarystorage "github.com/honiara/homefinder/internal/storage/providers/cloudinary"
)

func Serve(router *gin.Engine, cfg *config.Config) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting HomeFinder v%s", version)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	usersRepo := users.NewRepository(db, users.Options{
		OwnerOpenID:        cfg.Bootstrap.OwnerOpenID,
		BcryptCost:         cfg.Auth.BcryptCost,
		SuperAdminEmail:    cfg.Bootstrap.SuperAdminEmail,
		SuperAdminPassword: cfg.Bootstrap.SuperAdminPassword,
	})
	propertiesRepo := properties.NewRepository(db)
	imagesRepo := images.NewRepository(db)
	favoritesRepo := favorites.NewRepository(db)
	inquiriesRepo := inquiries.NewRepository(db)

	// Re-seed the reserved super-admin account. Resetting its password on
	// every start is the recovery mechanism for a lost password.
	if db.Available() {
		if err := usersRepo.EnsureSuperAdmin(); err != nil {
			log.Printf("WARNING: Failed to ensure super admin account: %v", err)
		}
	}

	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(usersRepo, sessionManager)

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	var storageClient storage.Client
	if cfg.Storage.Configured() {
		storageClient, err = cloudinarystorage.NewClient(
			cfg.Storage.CloudinaryCloudName,
			cfg.Storage.CloudinaryAPIKey,
			cfg.Storage.CloudinaryAPISecret,
		)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
	} else {
		log.Printf("WARNING: Object storage is not configured. Image upload endpoints will be disabled. Set 'CLOUDINARY_CLOUD_NAME', 'CLOUDINARY_API_KEY' and 'CLOUDINARY_API_SECRET' to enable.")
	}

	var notifier notify.Notifier
	if cfg.Mail.Configured() {
		notifier = notify.NewMailjetNotifier(
			cfg.Mail.MailjetAPIKey,
			cfg.Mail.MailjetSecretKey,
			cfg.Mail.FromEmail,
			cfg.Mail.FromName,
		)
	} else {
		log.Printf("WARNING: Outgoing mail is not configured. Owners will not be notified of inquiries. Set 'MAILJET_API_KEY', 'MAILJET_SECRET_KEY' and 'MAIL_FROM_EMAIL' to enable.")
	}

	var aiClient *ai.Client
	if cfg.LLM.Configured() {
		aiClient = ai.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
	} else {
		log.Printf("WARNING: Text generation is not configured. The description drafting endpoint will be disabled. Set 'LLM_BASE_URL' and 'LLM_API_KEY' to enable.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database: db,
		Version:  version,

		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,

		Users:      usersRepo,
		AuthStore:  usersRepo,
		Properties: propertiesRepo,
		Images:     imagesRepo,
		Favorites:  favoritesRepo,
		Inquiries:  inquiriesRepo,

		Storage:  storageClient,
		Notifier: notifier,
		AIClient: aiClient,
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg)
}
