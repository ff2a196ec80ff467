package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/database/users"
	"github.com/honiara/homefinder/internal/entities"
)

// AdminUserStore defines the user management operations exposed to
// superadmins.
type AdminUserStore interface {
	List() ([]entities.User, error)
	CreateByAdmin(p users.AdminCreateParams) (*entities.User, error)
	UpdateByAdmin(id uint, p users.AdminUpdateParams) error
	UpdateRole(id uint, role entities.UserRole) error
	Delete(id uint) error
	IsSuperAdmin(id uint) (bool, error)
}

type AdminController struct {
	store AdminUserStore
}

func NewAdminController(store AdminUserStore) *AdminController {
	return &AdminController{store: store}
}

// IsSuperAdmin reports whether the caller currently holds the superadmin
// role, checked fresh against the database.
// GET /api/admin/is-superadmin
func (ac *AdminController) IsSuperAdmin(c *gin.Context) {
	isSuper, err := ac.store.IsSuperAdmin(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "check superadmin")
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_superadmin": isSuper})
}

// ListUsers returns all user accounts, newest first.
// GET /api/admin/users
func (ac *AdminController) ListUsers(c *gin.Context) {
	list, err := ac.store.List()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

type adminCreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role" binding:"required,oneof=user agent admin superadmin"`
}

// CreateUser creates an account on behalf of a superadmin.
// POST /api/admin/users
func (ac *AdminController) CreateUser(c *gin.Context) {
	var req adminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid user payload: "+err.Error())
		return
	}

	user, err := ac.store.CreateByAdmin(users.AdminCreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     entities.UserRole(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailExists):
			respondError(c, http.StatusConflict, "email already exists")
		case errors.Is(err, users.ErrInvalidRole):
			respondBadRequest(c, "invalid role")
		default:
			respondInternalError(c, err, "create user")
		}
		return
	}
	respondCreated(c, user)
}

type adminUpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Role     *string `json:"role" binding:"omitempty,oneof=user agent admin superadmin"`
}

// UpdateUser applies a partial update to an account. The reserved
// superadmin account is immutable and rejected here.
// PATCH /api/admin/users/:id
func (ac *AdminController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid user payload: "+err.Error())
		return
	}

	params := users.AdminUpdateParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
	if req.Role != nil {
		role := entities.UserRole(*req.Role)
		params.Role = &role
	}

	if err := ac.store.UpdateByAdmin(id, params); err != nil {
		ac.respondUserMutationError(c, err, "update user")
		return
	}
	respondSuccess(c, "user updated")
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user agent admin superadmin"`
}

// UpdateUserRole changes an account's role.
// POST /api/admin/users/:id/role
func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "role is required")
		return
	}

	if err := ac.store.UpdateRole(id, entities.UserRole(req.Role)); err != nil {
		ac.respondUserMutationError(c, err, "update role")
		return
	}
	respondSuccess(c, "role updated")
}

// DeleteUser removes an account. Listings, favorites and inquiries tied
// to the account are left in place.
// DELETE /api/admin/users/:id
func (ac *AdminController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.store.Delete(id); err != nil {
		ac.respondUserMutationError(c, err, "delete user")
		return
	}
	respondSuccess(c, "user deleted")
}

func (ac *AdminController) respondUserMutationError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, users.ErrImmutableUser):
		respondError(c, http.StatusForbidden, "this account cannot be modified")
	case errors.Is(err, users.ErrEmailExists):
		respondError(c, http.StatusConflict, "email already exists")
	case errors.Is(err, users.ErrInvalidRole):
		respondBadRequest(c, "invalid role")
	default:
		respondInternalError(c, err, context)
	}
}
