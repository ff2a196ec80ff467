// Package users provides database operations for identity and user management.
//
// Two write paths exist: the upsert used by external logins, and the
// superadmin-gated CRUD used by the admin console. The immutability guard
// lives here so that no caller can bypass it.
package users

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/honiara/homefinder/internal/auth"
	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/entities"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrOpenIDRequired     = errors.New("openId is required for upsert")
	ErrEmailExists        = errors.New("email already exists")
	ErrImmutableUser      = errors.New("cannot modify immutable user")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Options carries the bootstrap knobs consumed by this repository.
type Options struct {
	// OwnerOpenID, when it matches an upserted identity that carries no
	// explicit role, forces the row's role to admin.
	OwnerOpenID string

	BcryptCost int

	// Reserved super-admin account re-seeded on every process start.
	SuperAdminEmail    string
	SuperAdminPassword string
}

// Repository handles all user database operations.
type Repository struct {
	db   *database.Database
	opts Options
}

// NewRepository creates a new users repository.
func NewRepository(db *database.Database, opts Options) *Repository {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 12
	}
	return &Repository{db: db, opts: opts}
}

// UpsertParams carries the fields supplied by an external login. Nil
// pointer fields are left untouched on existing rows.
type UpsertParams struct {
	OpenID      string
	Name        *string
	Email       *string
	Phone       *string
	LoginMethod *string
	Role        *entities.UserRole
}

// Upsert inserts a user by external identity or updates the matching row's
// supplied fields. LastSignedIn is refreshed on every call.
func (r *Repository) Upsert(p UpsertParams) (*entities.User, error) {
	if p.OpenID == "" {
		return nil, ErrOpenIDRequired
	}
	if !r.db.Available() {
		return nil, database.ErrUnavailable
	}
	if p.Role != nil && !entities.ValidRole(*p.Role) {
		return nil, ErrInvalidRole
	}

	now := time.Now()

	var existing entities.User
	err := r.db.DB.Where("open_id = ?", p.OpenID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user := entities.User{
			OpenID:       p.OpenID,
			Role:         entities.UserRoleUser,
			LastSignedIn: now,
		}
		if p.Name != nil {
			user.Name = *p.Name
		}
		if p.Email != nil {
			user.Email = *p.Email
		}
		if p.Phone != nil {
			user.Phone = *p.Phone
		}
		if p.LoginMethod != nil {
			user.LoginMethod = *p.LoginMethod
		}
		switch {
		case p.Role != nil:
			user.Role = *p.Role
		case p.OpenID == r.opts.OwnerOpenID && r.opts.OwnerOpenID != "":
			user.Role = entities.UserRoleAdmin
		}
		if err := r.db.DB.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	updates := map[string]any{"last_signed_in": now}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.LoginMethod != nil {
		updates["login_method"] = *p.LoginMethod
	}
	switch {
	case p.Role != nil:
		updates["role"] = *p.Role
	case p.OpenID == r.opts.OwnerOpenID && r.opts.OwnerOpenID != "":
		updates["role"] = entities.UserRoleAdmin
	}

	if err := r.db.DB.Model(&existing).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return r.GetByID(existing.ID)
}

// GetByOpenID retrieves a user by external identity. Returns (nil, nil)
// when no row matches or the database is unavailable.
func (r *Repository) GetByOpenID(openID string) (*entities.User, error) {
	if !r.db.Available() {
		return nil, nil
	}
	var user entities.User
	err := r.db.DB.Where("open_id = ?", openID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID. Returns (nil, nil) when absent.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	if !r.db.Available() {
		return nil, nil
	}
	var user entities.User
	err := r.db.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	if !r.db.Available() {
		return nil, nil
	}
	var user entities.User
	err := r.db.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users, newest first.
func (r *Repository) List() ([]entities.User, error) {
	if !r.db.Available() {
		return []entities.User{}, nil
	}
	var users []entities.User
	err := r.db.DB.Order("created_at DESC").Find(&users).Error
	return users, err
}

// AdminCreateParams are the fields accepted by the admin create path.
// Password is optional; accounts without one cannot use the password login.
type AdminCreateParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     entities.UserRole
}

// CreateByAdmin inserts a user row on behalf of a superadmin, rejecting
// duplicate emails.
func (r *Repository) CreateByAdmin(p AdminCreateParams) (*entities.User, error) {
	if !r.db.Available() {
		return nil, database.ErrUnavailable
	}
	if !entities.ValidRole(p.Role) {
		return nil, ErrInvalidRole
	}

	existing, err := r.GetByEmail(p.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	var passwordHash string
	if p.Password != "" {
		passwordHash, err = auth.HashPassword(p.Password, r.opts.BcryptCost)
		if err != nil {
			return nil, err
		}
	}

	suffix, err := randomSuffix()
	if err != nil {
		return nil, err
	}

	user := entities.User{
		OpenID:       fmt.Sprintf("admin-created-%d-%s", time.Now().UnixMilli(), suffix),
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: passwordHash,
		Role:         p.Role,
		IsImmutable:  false,
		LastSignedIn: time.Now(),
	}
	if err := r.db.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// AdminUpdateParams are the fields accepted by the admin update path. Nil
// fields are left untouched.
type AdminUpdateParams struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
	Role     *entities.UserRole
}

// UpdateByAdmin mutates a user row on behalf of a superadmin. Immutable
// rows are rejected, as are emails already taken by another row.
func (r *Repository) UpdateByAdmin(id uint, p AdminUpdateParams) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}

	target, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.IsImmutable {
		return ErrImmutableUser
	}

	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil && *p.Email != target.Email {
		existing, err := r.GetByEmail(*p.Email)
		if err != nil {
			return fmt.Errorf("failed to check existing email: %w", err)
		}
		if existing != nil {
			return ErrEmailExists
		}
		updates["email"] = *p.Email
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Role != nil {
		if !entities.ValidRole(*p.Role) {
			return ErrInvalidRole
		}
		updates["role"] = *p.Role
	}
	if p.Password != nil && *p.Password != "" {
		hash, err := auth.HashPassword(*p.Password, r.opts.BcryptCost)
		if err != nil {
			return err
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return nil
	}
	return r.db.DB.Model(&entities.User{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateRole changes a user's role, rejecting immutable rows.
func (r *Repository) UpdateRole(id uint, role entities.UserRole) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}
	if !entities.ValidRole(role) {
		return ErrInvalidRole
	}

	target, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.IsImmutable {
		return ErrImmutableUser
	}

	return r.db.DB.Model(&entities.User{}).Where("id = ?", id).Update("role", role).Error
}

// Delete hard-deletes a user row, rejecting immutable rows. Properties,
// favorites and inquiries referencing the user are left in place.
func (r *Repository) Delete(id uint) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}

	target, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.IsImmutable {
		return ErrImmutableUser
	}

	return r.db.DB.Delete(&entities.User{}, id).Error
}

// IsSuperAdmin checks the user's current role with a fresh query. Role
// revocation therefore takes effect immediately, not at next login.
func (r *Repository) IsSuperAdmin(id uint) (bool, error) {
	if !r.db.Available() {
		return false, nil
	}
	var count int64
	err := r.db.DB.Model(&entities.User{}).
		Where("id = ? AND role = ?", id, entities.UserRoleSuperAdmin).
		Count(&count).Error
	return count > 0, err
}

// EnsureSuperAdmin makes sure the reserved super-admin row exists with
// role=superadmin, isImmutable=true and a hash of the configured password.
// The password is reset on every run; that is the recovery mechanism.
func (r *Repository) EnsureSuperAdmin() error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}

	passwordHash, err := auth.HashPassword(r.opts.SuperAdminPassword, r.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	existing, err := r.GetByEmail(r.opts.SuperAdminEmail)
	if err != nil {
		return err
	}

	if existing == nil {
		user := entities.User{
			OpenID:       fmt.Sprintf("superadmin-%d", time.Now().UnixMilli()),
			Name:         "Super Admin",
			Email:        r.opts.SuperAdminEmail,
			PasswordHash: passwordHash,
			Role:         entities.UserRoleSuperAdmin,
			IsImmutable:  true,
			LastSignedIn: time.Now(),
		}
		if err := r.db.DB.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create super admin: %w", err)
		}
		log.Printf("Super admin created")
		return nil
	}

	updates := map[string]any{"password_hash": passwordHash}
	if existing.Role != entities.UserRoleSuperAdmin {
		updates["role"] = entities.UserRoleSuperAdmin
	}
	if !existing.IsImmutable {
		updates["is_immutable"] = true
	}
	return r.db.DB.Model(&entities.User{}).Where("id = ?", existing.ID).Updates(updates).Error
}

// AuthenticateAdmin validates email+password credentials for accounts with
// an admin or superadmin role. Any mismatch yields ErrInvalidCredentials.
func (r *Repository) AuthenticateAdmin(email, password string) (*entities.User, error) {
	if !r.db.Available() {
		return nil, ErrInvalidCredentials
	}

	var user entities.User
	err := r.db.DB.
		Where("email = ? AND role IN ?", email, []entities.UserRole{entities.UserRoleAdmin, entities.UserRoleSuperAdmin}).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := auth.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	// A failed timestamp touch must not block the login.
	if err := r.db.DB.Model(&user).Update("last_signed_in", time.Now()).Error; err != nil {
		log.Printf("Failed to record sign-in time for user %d: %v", user.ID, err)
	}
	return &user, nil
}

func randomSuffix() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
