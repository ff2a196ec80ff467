// Package inquiries provides database operations for contact-form
// submissions and the owner-side read flags.
package inquiries

import (
	"errors"

	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/entities"
)

// ErrNotFound is returned when an inquiry does not exist or does not
// belong to a listing owned by the acting user. The two cases are not
// distinguished, so ownership is never leaked.
var ErrNotFound = errors.New("inquiry not found")

// Repository handles all inquiry database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new inquiries repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Create inserts a submission. SenderID stays nil for anonymous visitors.
func (r *Repository) Create(inq *entities.Inquiry) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}
	return r.db.DB.Create(inq).Error
}

// GetForProperty returns a listing's inquiries, newest first. Ownership of
// the listing is checked by the caller.
func (r *Repository) GetForProperty(propertyID uint) ([]entities.Inquiry, error) {
	if !r.db.Available() {
		return []entities.Inquiry{}, nil
	}
	var inqs []entities.Inquiry
	err := r.db.DB.
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&inqs).Error
	return inqs, err
}

// OwnerInquiry is an inquiry joined with the id and title of the listing
// it targets, for the owner's inbox view.
type OwnerInquiry struct {
	entities.Inquiry
	PropertyTitle string `json:"property_title"`
}

// GetForOwner returns all inquiries across the user's listings, newest first.
func (r *Repository) GetForOwner(userID uint) ([]OwnerInquiry, error) {
	if !r.db.Available() {
		return []OwnerInquiry{}, nil
	}
	var result []OwnerInquiry
	err := r.db.DB.Model(&entities.Inquiry{}).
		Select("inquiries.*, properties.title AS property_title").
		Joins("JOIN properties ON properties.id = inquiries.property_id").
		Where("properties.user_id = ?", userID).
		Order("inquiries.created_at DESC").
		Scan(&result).Error
	return result, err
}

// MarkRead flags an inquiry as read. The inquiry must belong to a listing
// owned by userID; otherwise ErrNotFound.
func (r *Repository) MarkRead(id, userID uint) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}

	var count int64
	err := r.db.DB.Model(&entities.Inquiry{}).
		Joins("JOIN properties ON properties.id = inquiries.property_id").
		Where("inquiries.id = ? AND properties.user_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.DB.Model(&entities.Inquiry{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// UnreadCount returns the number of unread inquiries across the user's
// listings.
func (r *Repository) UnreadCount(userID uint) (int64, error) {
	if !r.db.Available() {
		return 0, nil
	}
	var count int64
	err := r.db.DB.Model(&entities.Inquiry{}).
		Joins("JOIN properties ON properties.id = inquiries.property_id").
		Where("properties.user_id = ? AND inquiries.is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
