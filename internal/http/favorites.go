package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/database/favorites"
)

// FavoritesStore defines database operations for favorites management.
type FavoritesStore interface {
	Toggle(userID, propertyID uint) (bool, error)
	List(userID uint) ([]favorites.FavoriteProperty, error)
	IDs(userID uint) ([]uint, error)
	IsFavorite(userID, propertyID uint) (bool, error)
}

type FavoritesController struct {
	store FavoritesStore
}

func NewFavoritesController(store FavoritesStore) *FavoritesController {
	return &FavoritesController{store: store}
}

// ToggleFavorite flips the caller's favorite state for a listing and
// reports the resulting state.
// POST /api/favorites/:propertyId/toggle
func (fc *FavoritesController) ToggleFavorite(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "propertyId")
	if !ok {
		return
	}

	added, err := fc.store.Toggle(GetUserID(c), propertyID)
	if err != nil {
		respondInternalError(c, err, "toggle favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": added})
}

// ListFavorites returns the caller's favorited listings, most recently
// favorited first.
// GET /api/favorites
func (fc *FavoritesController) ListFavorites(c *gin.Context) {
	favs, err := fc.store.List(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

// FavoriteIDs returns the bare property ids the caller has favorited.
// GET /api/favorites/ids
func (fc *FavoritesController) FavoriteIDs(c *gin.Context) {
	ids, err := fc.store.IDs(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list favorite ids")
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_ids": ids})
}

// CheckFavorite reports whether the caller has favorited the listing.
// GET /api/favorites/:propertyId
func (fc *FavoritesController) CheckFavorite(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "propertyId")
	if !ok {
		return
	}

	favorited, err := fc.store.IsFavorite(GetUserID(c), propertyID)
	if err != nil {
		respondInternalError(c, err, "check favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}
