// Package images provides database operations for property image rows.
// Callers are expected to have verified listing ownership before mutating;
// every statement is additionally scoped by property id so an image of one
// listing can never be touched through another.
package images

import (
	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/entities"
)

// Repository handles all property image database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new images repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// AddBatch inserts image rows as produced by an upload, preserving the
// caller-assigned sortOrder and isPrimary flags.
func (r *Repository) AddBatch(imgs []entities.PropertyImage) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}
	if len(imgs) == 0 {
		return nil
	}
	return r.db.DB.Create(&imgs).Error
}

// GetForProperty returns the listing's images in display order.
func (r *Repository) GetForProperty(propertyID uint) ([]entities.PropertyImage, error) {
	if !r.db.Available() {
		return []entities.PropertyImage{}, nil
	}
	var imgs []entities.PropertyImage
	err := r.db.DB.
		Where("property_id = ?", propertyID).
		Order("sort_order ASC").
		Find(&imgs).Error
	return imgs, err
}

// Delete removes an image row, scoped by property id. The stored blob is
// not deleted; its file key stays recoverable from backups if needed.
func (r *Repository) Delete(imageID, propertyID uint) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}
	return r.db.DB.
		Where("id = ? AND property_id = ?", imageID, propertyID).
		Delete(&entities.PropertyImage{}).Error
}

// SetPrimary designates one image as the listing's cover: all flags for
// the property are cleared first, then the target is set. The two
// statements are not wrapped in a transaction; concurrent calls on the
// same listing can interleave.
func (r *Repository) SetPrimary(imageID, propertyID uint) error {
	if !r.db.Available() {
		return database.ErrUnavailable
	}

	err := r.db.DB.Model(&entities.PropertyImage{}).
		Where("property_id = ?", propertyID).
		Update("is_primary", false).Error
	if err != nil {
		return err
	}

	return r.db.DB.Model(&entities.PropertyImage{}).
		Where("id = ? AND property_id = ?", imageID, propertyID).
		Update("is_primary", true).Error
}
