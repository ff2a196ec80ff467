package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleAgent      UserRole = "agent"
	UserRoleSuperAdmin UserRole = "superadmin"
)

// ValidRole reports whether r is one of the known role values.
func ValidRole(r UserRole) bool {
	switch r {
	case UserRoleUser, UserRoleAdmin, UserRoleAgent, UserRoleSuperAdmin:
		return true
	}
	return false
}

type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
)

// ListingStatus is the rent/sale axis of a listing, orthogonal to IsActive.
type ListingStatus string

const (
	ListingStatusRent ListingStatus = "rent"
	ListingStatusSale ListingStatus = "sale"
)

// User is an identity record. Rows are created on first external login
// (upsert by OpenID) or directly by a superadmin. PasswordHash is only
// set for password-based admin accounts.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OpenID       string    `gorm:"uniqueIndex;size:64;not null" json:"open_id"`
	Name         string    `gorm:"size:255" json:"name"`
	Email        string    `gorm:"index;size:320" json:"email,omitempty"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	LoginMethod  string    `gorm:"size:64" json:"login_method,omitempty"`
	Role         UserRole  `gorm:"size:20;default:'user'" json:"role"`
	IsImmutable  bool      `gorm:"default:false" json:"is_immutable"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastSignedIn time.Time `json:"last_signed_in"`
}

// Property is a listing. Price and the coordinates are carried as decimal
// strings to avoid floating-point drift in stored values.
type Property struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"index" json:"user_id"`
	Title        string        `gorm:"size:255;not null" json:"title"`
	Description  string        `gorm:"type:text" json:"description,omitempty"`
	Price        string        `gorm:"type:decimal(12,2);not null" json:"price"`
	PropertyType PropertyType  `gorm:"size:20;not null" json:"property_type"`
	Status       ListingStatus `gorm:"size:10;not null" json:"status"`
	Bedrooms     *int          `json:"bedrooms,omitempty"`
	Bathrooms    *int          `json:"bathrooms,omitempty"`
	Area         *string       `gorm:"type:decimal(10,2)" json:"area,omitempty"`
	Location     string        `gorm:"size:255;not null" json:"location"`
	Address      string        `gorm:"type:text" json:"address,omitempty"`
	Latitude     *string       `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude    *string       `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	Amenities    string        `gorm:"type:text" json:"amenities,omitempty"`
	IsActive     bool          `gorm:"default:true" json:"is_active"`
	ViewCount    int           `gorm:"default:0" json:"view_count"`

	Images []PropertyImage `gorm:"foreignKey:PropertyID" json:"images,omitempty"`
	User   User            `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PropertyImage references a blob in object storage. FileKey is retained
// so stored blobs can be cleaned up later; deleting the row does not
// delete the blob.
type PropertyImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index" json:"property_id"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	FileKey    string    `gorm:"size:512;not null" json:"file_key"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`
	SortOrder  int       `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

// Favorite is a (user, property) join row. Uniqueness of the pair is
// enforced by the toggle logic, not by a constraint.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	PropertyID uint      `gorm:"index" json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Inquiry is a contact-form submission. SenderID is nil for anonymous
// submissions; the sender fields are captured at submission time and are
// not normalized against the users table.
type Inquiry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PropertyID  uint      `gorm:"index" json:"property_id"`
	SenderID    *uint     `json:"sender_id,omitempty"`
	SenderName  string    `gorm:"size:255;not null" json:"sender_name"`
	SenderEmail string    `gorm:"size:320;not null" json:"sender_email"`
	SenderPhone string    `gorm:"size:32" json:"sender_phone,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Property) TableName() string {
	return "properties"
}

func (PropertyImage) TableName() string {
	return "property_images"
}

func (Favorite) TableName() string {
	return "favorites"
}

func (Inquiry) TableName() string {
	return "inquiries"
}
