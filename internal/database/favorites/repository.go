// Package favorites provides database operations for the user/property
// favorites join table.
package favorites

import (
	"errors"

	"gorm.io/gorm"

	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/entities"
)

// Repository handles all favorites database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new favorites repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Toggle flips the membership of (userID, propertyID) and reports the new
// state: true when the pair was added, false when removed. The existence
// check and the following write are separate statements; two concurrent
// toggles for the same pair can both observe "absent" and insert twice.
func (r *Repository) Toggle(userID, propertyID uint) (bool, error) {
	if !r.db.Available() {
		return false, database.ErrUnavailable
	}

	var existing entities.Favorite
	err := r.db.DB.
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		First(&existing).Error
	if err == nil {
		err = r.db.DB.
			Where("user_id = ? AND property_id = ?", userID, propertyID).
			Delete(&entities.Favorite{}).Error
		return false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	fav := entities.Favorite{UserID: userID, PropertyID: propertyID}
	return true, r.db.DB.Create(&fav).Error
}

// FavoriteProperty is a favorited listing joined with its favorite row id.
type FavoriteProperty struct {
	entities.Property
	FavoriteID uint `json:"favorite_id"`
}

// List returns the user's favorited listings, most recently favorited
// first. The inner join drops favorites whose listing was hard-deleted
// out from under them.
func (r *Repository) List(userID uint) ([]FavoriteProperty, error) {
	if !r.db.Available() {
		return []FavoriteProperty{}, nil
	}

	var result []FavoriteProperty
	err := r.db.DB.Model(&entities.Property{}).
		Select("properties.*, favorites.id AS favorite_id").
		Joins("JOIN favorites ON favorites.property_id = properties.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return []FavoriteProperty{}, nil
	}

	propertyIDs := make([]uint, len(result))
	for i, fp := range result {
		propertyIDs[i] = fp.ID
	}
	var imgs []entities.PropertyImage
	err = r.db.DB.
		Where("property_id IN ?", propertyIDs).
		Order("sort_order ASC").
		Find(&imgs).Error
	if err != nil {
		return nil, err
	}

	byProperty := make(map[uint][]entities.PropertyImage, len(result))
	for _, img := range imgs {
		byProperty[img.PropertyID] = append(byProperty[img.PropertyID], img)
	}
	for i := range result {
		result[i].Images = byProperty[result[i].ID]
	}
	return result, nil
}

// IDs returns the bare property ids the user has favorited, for cheap
// client-side membership checks.
func (r *Repository) IDs(userID uint) ([]uint, error) {
	if !r.db.Available() {
		return []uint{}, nil
	}
	var ids []uint
	err := r.db.DB.Model(&entities.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("property_id", &ids).Error
	return ids, err
}

// IsFavorite reports whether the pair exists.
func (r *Repository) IsFavorite(userID, propertyID uint) (bool, error) {
	if !r.db.Available() {
		return false, nil
	}
	var count int64
	err := r.db.DB.Model(&entities.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	return count > 0, err
}
