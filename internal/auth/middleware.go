package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/entities"
)

// Context keys for the resolved caller identity
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyUser   = "auth_user"
)

// AnonymousUserID marks an unauthenticated request.
const AnonymousUserID = uint(0)

// UserStore is the user lookup surface the middleware needs. Implemented
// by the users repository.
type UserStore interface {
	GetByID(id uint) (*entities.User, error)
	IsSuperAdmin(id uint) (bool, error)
}

// Middleware resolves the session cookie into a caller identity for every
// request. The user row is fetched fresh per request; nothing about the
// caller is trusted from the cookie beyond the user id.
type Middleware struct {
	users          UserStore
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(users UserStore, sessionManager *SessionManager) *Middleware {
	return &Middleware{users: users, sessionManager: sessionManager}
}

// Handler resolves the caller, if any, and stashes it in the Gin context.
// Requests without a valid session continue as anonymous; route-level
// guards decide what anonymous callers may do.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, AnonymousUserID)

		userID := m.sessionManager.GetUserID(c.Request)
		if userID != 0 {
			user, err := m.users.GetByID(userID)
			if err == nil && user != nil {
				c.Set(ContextKeyUserID, user.ID)
				c.Set(ContextKeyUser, user)
			}
		}

		c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == AnonymousUserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin rejects callers whose current role, looked up with a
// fresh query on every call, is not superadmin. Role revocation therefore
// applies immediately, not at next login.
func (m *Middleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == AnonymousUserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		isSuper, err := m.users.IsSuperAdmin(userID)
		if err != nil || !isSuper {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns AnonymousUserID (0) when the caller is not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return AnonymousUserID
}

// GetUser retrieves the authenticated user row from the context, or nil.
func GetUser(c *gin.Context) *entities.User {
	if u, exists := c.Get(ContextKeyUser); exists {
		if user, ok := u.(*entities.User); ok {
			return user
		}
	}
	return nil
}
