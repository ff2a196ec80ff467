package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/auth"
	"github.com/honiara/homefinder/internal/database/users"
	"github.com/honiara/homefinder/internal/entities"
)

// AuthStore defines the user operations the auth endpoints need.
type AuthStore interface {
	Upsert(p users.UpsertParams) (*entities.User, error)
	AuthenticateAdmin(email, password string) (*entities.User, error)
}

// AuthController handles login, logout and the current-user endpoint.
type AuthController struct {
	store          AuthStore
	sessionManager *auth.SessionManager
}

func NewAuthController(store AuthStore, sessionManager *auth.SessionManager) *AuthController {
	return &AuthController{store: store, sessionManager: sessionManager}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an admin account with email and password.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, err := ac.store.AuthenticateAdmin(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user.ID); err != nil {
		respondInternalError(c, err, "create session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type externalSessionRequest struct {
	OpenID      string  `json:"open_id" binding:"required"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	LoginMethod *string `json:"login_method"`
}

// ExternalSession upserts an externally authenticated identity and starts
// a session for it. The identity itself is verified upstream; roles are
// never taken from the payload. New accounts start as regular users and
// only the superadmin-gated admin endpoints can change a role afterwards.
// POST /api/auth/session
func (ac *AuthController) ExternalSession(c *gin.Context) {
	var req externalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "open_id is required")
		return
	}

	user, err := ac.store.Upsert(users.UpsertParams{
		OpenID:      req.OpenID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		LoginMethod: req.LoginMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrOpenIDRequired):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "upsert identity")
		}
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user.ID); err != nil {
		respondInternalError(c, err, "create session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the current session.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "logout")
		return
	}
	respondSuccess(c, "logged out")
}

// Me returns the authenticated caller's user record, or a null user for
// anonymous callers.
// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": auth.GetUser(c)})
}
