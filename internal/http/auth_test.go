package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/honiara/homefinder/internal/auth"
	"github.com/honiara/homefinder/internal/config"
	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/database/users"
	"github.com/honiara/homefinder/internal/entities"
)

func setupAuthTest(t *testing.T) (*users.Repository, *auth.SessionManager, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.New(dbPath)
	require.NoError(t, err)

	repo := users.NewRepository(db, users.Options{BcryptCost: bcrypt.MinCost})

	// In-memory session store is enough for handler tests
	sessionManager, err := auth.NewSessionManager(nil, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return repo, sessionManager, cleanup
}

func TestAuthController_Login(t *testing.T) {
	t.Run("valid admin credentials start a session", func(t *testing.T) {
		repo, sessionManager, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := repo.CreateByAdmin(users.AdminCreateParams{
			Name:     "Admin",
			Email:    "admin@example.com",
			Password: "a-long-enough-password",
			Role:     entities.UserRoleAdmin,
		})
		require.NoError(t, err)

		controller := NewAuthController(repo, sessionManager)
		router := gin.New()
		router.Use(sessionManager.SessionLoadSave())
		router.POST("/api/auth/login", controller.Login)

		payload := gin.H{"email": "admin@example.com", "password": "a-long-enough-password"}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/login", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "session", cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)

		// The password hash must not appear in the response
		assert.NotContains(t, w.Body.String(), "password_hash")
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		repo, sessionManager, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := repo.CreateByAdmin(users.AdminCreateParams{
			Name:     "Admin",
			Email:    "admin@example.com",
			Password: "a-long-enough-password",
			Role:     entities.UserRoleAdmin,
		})
		require.NoError(t, err)

		controller := NewAuthController(repo, sessionManager)
		router := gin.New()
		router.Use(sessionManager.SessionLoadSave())
		router.POST("/api/auth/login", controller.Login)

		payload := gin.H{"email": "admin@example.com", "password": "another-long-password"}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/login", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-admin accounts cannot use the password login", func(t *testing.T) {
		repo, sessionManager, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := repo.CreateByAdmin(users.AdminCreateParams{
			Name:     "Regular",
			Email:    "user@example.com",
			Password: "a-long-enough-password",
			Role:     entities.UserRoleUser,
		})
		require.NoError(t, err)

		controller := NewAuthController(repo, sessionManager)
		router := gin.New()
		router.Use(sessionManager.SessionLoadSave())
		router.POST("/api/auth/login", controller.Login)

		payload := gin.H{"email": "user@example.com", "password": "a-long-enough-password"}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/login", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthController_ExternalSession(t *testing.T) {
	t.Run("upserts the identity and starts a session", func(t *testing.T) {
		repo, sessionManager, cleanup := setupAuthTest(t)
		defer cleanup()

		controller := NewAuthController(repo, sessionManager)
		router := gin.New()
		router.Use(sessionManager.SessionLoadSave())
		router.POST("/api/auth/session", controller.ExternalSession)

		payload := gin.H{"open_id": "ext-1", "name": "Alice", "login_method": "google"}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/session", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		user, err := repo.GetByOpenID("ext-1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "google", user.LoginMethod)
	})

	t.Run("ignores a role supplied in the payload", func(t *testing.T) {
		repo, sessionManager, cleanup := setupAuthTest(t)
		defer cleanup()

		controller := NewAuthController(repo, sessionManager)
		router := gin.New()
		router.Use(sessionManager.SessionLoadSave())
		router.POST("/api/auth/session", controller.ExternalSession)

		payload := gin.H{"open_id": "sneaky-1", "role": "superadmin"}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/session", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		user, err := repo.GetByOpenID("sneaky-1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, entities.UserRoleUser, user.Role)

		isSuper, err := repo.IsSuperAdmin(user.ID)
		require.NoError(t, err)
		assert.False(t, isSuper)
	})

	t.Run("cannot change an existing account's role", func(t *testing.T) {
		repo, sessionManager, cleanup := setupAuthTest(t)
		defer cleanup()

		existing, err := repo.Upsert(users.UpsertParams{OpenID: "ext-2"})
		require.NoError(t, err)
		require.NoError(t, repo.UpdateRole(existing.ID, entities.UserRoleAgent))

		controller := NewAuthController(repo, sessionManager)
		router := gin.New()
		router.Use(sessionManager.SessionLoadSave())
		router.POST("/api/auth/session", controller.ExternalSession)

		payload := gin.H{"open_id": "ext-2", "role": "superadmin"}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/session", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		user, err := repo.GetByOpenID("ext-2")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, entities.UserRoleAgent, user.Role)
	})

	t.Run("requires an open_id", func(t *testing.T) {
		repo, sessionManager, cleanup := setupAuthTest(t)
		defer cleanup()

		controller := NewAuthController(repo, sessionManager)
		router := gin.New()
		router.Use(sessionManager.SessionLoadSave())
		router.POST("/api/auth/session", controller.ExternalSession)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/auth/session", jsonBody(t, gin.H{"name": "No id"}))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthController_Me(t *testing.T) {
	repo, sessionManager, cleanup := setupAuthTest(t)
	defer cleanup()

	user, err := repo.Upsert(users.UpsertParams{OpenID: "ext-1"})
	require.NoError(t, err)

	controller := NewAuthController(repo, sessionManager)

	t.Run("returns the resolved caller", func(t *testing.T) {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, user.ID)
			c.Set(auth.ContextKeyUser, user)
			c.Next()
		})
		router.GET("/api/auth/me", controller.Me)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/auth/me", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ext-1")
	})

	t.Run("anonymous callers get a null user", func(t *testing.T) {
		router := gin.New()
		router.GET("/api/auth/me", controller.Me)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/auth/me", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user": null}`, w.Body.String())
	})
}
