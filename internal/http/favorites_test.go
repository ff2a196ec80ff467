package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/database/favorites"
	"github.com/honiara/homefinder/internal/entities"
)

func setupFavoritesTest(t *testing.T) (*database.Database, *favorites.Repository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_favorites_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.New(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, favorites.NewRepository(db), cleanup
}

func seedListing(t *testing.T, db *database.Database, title string) *entities.Property {
	t.Helper()
	p := &entities.Property{
		UserID: 1, Title: title, Price: "1000.00",
		PropertyType: entities.PropertyTypeHouse, Status: entities.ListingStatusRent,
		Location: "Honiara", IsActive: true,
	}
	require.NoError(t, db.DB.Create(p).Error)
	return p
}

func TestFavoritesController_ToggleFavorite(t *testing.T) {
	db, repo, cleanup := setupFavoritesTest(t)
	defer cleanup()

	p := seedListing(t, db, "Toggled")

	controller := NewFavoritesController(repo)
	router := gin.New()
	router.Use(identityMiddleware(7))
	router.POST("/api/favorites/:propertyId/toggle", controller.ToggleFavorite)

	toggle := func() bool {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/favorites/%d/toggle", p.ID), nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Favorited bool `json:"favorited"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response.Favorited
	}

	assert.True(t, toggle())
	assert.False(t, toggle())
	assert.True(t, toggle())
}

func TestFavoritesController_FavoriteIDs(t *testing.T) {
	db, repo, cleanup := setupFavoritesTest(t)
	defer cleanup()

	first := seedListing(t, db, "First")
	second := seedListing(t, db, "Second")
	_, err := repo.Toggle(7, first.ID)
	require.NoError(t, err)
	_, err = repo.Toggle(7, second.ID)
	require.NoError(t, err)

	controller := NewFavoritesController(repo)
	router := gin.New()
	router.Use(identityMiddleware(7))
	router.GET("/api/favorites/ids", controller.FavoriteIDs)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/favorites/ids", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		PropertyIDs []uint `json:"property_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, response.PropertyIDs)
}

func TestFavoritesController_ListFavorites(t *testing.T) {
	db, repo, cleanup := setupFavoritesTest(t)
	defer cleanup()

	p := seedListing(t, db, "Favorited")
	_, err := repo.Toggle(7, p.ID)
	require.NoError(t, err)

	controller := NewFavoritesController(repo)
	router := gin.New()
	router.Use(identityMiddleware(7))
	router.GET("/api/favorites", controller.ListFavorites)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/favorites", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Favorites []favorites.FavoriteProperty `json:"favorites"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Favorites, 1)
	assert.Equal(t, "Favorited", response.Favorites[0].Title)
}
