// Package properties provides database operations for listings.
//
// All owner mutations apply `id = ? AND user_id = ?` in a single statement;
// zero rows affected is silent success, matching the marketplace's "not
// yours, nothing happened" policy for direct field updates.
package properties

import (
	"errors"

	"gorm.io/gorm"

	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/entities"
)

// DefaultSearchLimit caps a search page when the caller supplies none.
const DefaultSearchLimit = 20

// DefaultFeaturedLimit is the home-page featured strip size.
const DefaultFeaturedLimit = 6

// Repository handles all property database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new properties repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Create inserts a new listing owned by p.UserID.
func (r *Repository) Create(p *entities.Property) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}
	return r.db.DB.Create(p).Error
}

// Update applies the given column updates to the listing, scoped to the
// acting owner. A non-owner call matches zero rows and is a no-op.
func (r *Repository) Update(id, userID uint, updates map[string]any) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.DB.Model(&entities.Property{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates).Error
}

// GetByID retrieves a listing by id regardless of active state.
// Returns (nil, nil) when absent or the database is unavailable.
func (r *Repository) GetByID(id uint) (*entities.Property, error) {
	if !r.db.Available() {
		return nil, nil
	}
	var p entities.Property
	err := r.db.DB.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Owner is the contact subset of the owning user exposed on a listing.
type Owner struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// GetWithOwner retrieves a listing together with its owner's contact subset.
func (r *Repository) GetWithOwner(id uint) (*entities.Property, *Owner, error) {
	p, err := r.GetByID(id)
	if err != nil || p == nil {
		return p, nil, err
	}

	var user entities.User
	err = r.db.DB.First(&user, p.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Orphaned listing: the owner row was deleted but the property
		// was not cascade-cleaned.
		return p, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return p, &Owner{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone}, nil
}

// GetUserProperties returns all listings owned by the user, newest first,
// active or not, with images preloaded in display order.
func (r *Repository) GetUserProperties(userID uint) ([]entities.Property, error) {
	if !r.db.Available() {
		return []entities.Property{}, nil
	}
	var props []entities.Property
	err := r.db.DB.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&props).Error
	return props, err
}

// SearchParams is the conjunctive filter set for Search. Zero values mean
// "no filter" for every field.
type SearchParams struct {
	Query        string
	Status       entities.ListingStatus
	PropertyType entities.PropertyType
	MinPrice     float64
	MaxPrice     float64
	Bedrooms     int
	Limit        int
	Offset       int
}

// Search returns a page of active listings matching the filters, newest
// first, plus the total count over the same filter set. The page and the
// count are separate queries with no snapshot guarantee between them.
func (r *Repository) Search(params SearchParams) ([]entities.Property, int64, error) {
	if !r.db.Available() {
		return []entities.Property{}, 0, nil
	}

	filter := func(q *gorm.DB) *gorm.DB {
		q = q.Where("is_active = ?", true)
		if params.Query != "" {
			pattern := "%" + params.Query + "%"
			q = q.Where(
				"title LIKE ? OR location LIKE ? OR description LIKE ?",
				pattern, pattern, pattern,
			)
		}
		if params.Status != "" {
			q = q.Where("status = ?", params.Status)
		}
		if params.PropertyType != "" {
			q = q.Where("property_type = ?", params.PropertyType)
		}
		if params.MinPrice > 0 {
			q = q.Where("price >= ?", params.MinPrice)
		}
		if params.MaxPrice > 0 {
			q = q.Where("price <= ?", params.MaxPrice)
		}
		if params.Bedrooms > 0 {
			q = q.Where("bedrooms >= ?", params.Bedrooms)
		}
		return q
	}

	var total int64
	if err := filter(r.db.DB.Model(&entities.Property{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var props []entities.Property
	err := filter(r.db.DB.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") })).
		Order("created_at DESC").
		Limit(limit).
		Offset(params.Offset).
		Find(&props).Error
	return props, total, err
}

// Featured returns the most-viewed active listings, ties broken by
// creation time, capped at limit.
func (r *Repository) Featured(limit int) ([]entities.Property, error) {
	if !r.db.Available() {
		return []entities.Property{}, nil
	}
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	var props []entities.Property
	err := r.db.DB.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("is_active = ?", true).
		Order("view_count DESC, created_at DESC").
		Limit(limit).
		Find(&props).Error
	return props, err
}

// IncrementViews bumps the view counter by one in a single statement.
// Every detail fetch counts, including the owner's own views.
func (r *Repository) IncrementViews(id uint) error {
	if !r.db.Available() {
		return nil
	}
	return r.db.DB.Model(&entities.Property{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Deactivate soft-hides a listing, scoped to the acting owner.
func (r *Repository) Deactivate(id, userID uint) error {
	return r.setActive(id, userID, false)
}

// Activate restores a listing's visibility, scoped to the acting owner.
func (r *Repository) Activate(id, userID uint) error {
	return r.setActive(id, userID, true)
}

func (r *Repository) setActive(id, userID uint, active bool) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}
	return r.db.DB.Model(&entities.Property{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", active).Error
}

// MapPin is the bandwidth-conscious projection returned for map display.
type MapPin struct {
	ID           uint                   `json:"id"`
	Title        string                 `json:"title"`
	Price        string                 `json:"price"`
	PropertyType entities.PropertyType  `json:"property_type"`
	Status       entities.ListingStatus `json:"status"`
	Bedrooms     *int                   `json:"bedrooms,omitempty"`
	Bathrooms    *int                   `json:"bathrooms,omitempty"`
	Location     string                 `json:"location"`
	Latitude     *string                `json:"latitude"`
	Longitude    *string                `json:"longitude"`
}

// ForMap returns all active listings that carry coordinates.
func (r *Repository) ForMap() ([]MapPin, error) {
	if !r.db.Available() {
		return []MapPin{}, nil
	}
	var pins []MapPin
	err := r.db.DB.Model(&entities.Property{}).
		Select("id", "title", "price", "property_type", "status", "bedrooms", "bathrooms", "location", "latitude", "longitude").
		Where("is_active = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", true).
		Find(&pins).Error
	return pins, err
}
