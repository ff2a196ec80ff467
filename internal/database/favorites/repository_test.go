package favorites

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()

	dbPath := "./test_favorites_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.New(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db), db, cleanup
}

func seedProperty(t *testing.T, db *database.Database, title string) *entities.Property {
	t.Helper()
	p := &entities.Property{
		UserID:       1,
		Title:        title,
		Price:        "1000.00",
		PropertyType: entities.PropertyTypeHouse,
		Status:       entities.ListingStatusRent,
		Location:     "Honiara",
		IsActive:     true,
	}
	require.NoError(t, db.DB.Create(p).Error)
	return p
}

func TestRepository_Toggle(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	p := seedProperty(t, db, "Toggled listing")

	added, err := repo.Toggle(7, p.ID)
	require.NoError(t, err)
	assert.True(t, added)

	fav, err := repo.IsFavorite(7, p.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	added, err = repo.Toggle(7, p.ID)
	require.NoError(t, err)
	assert.False(t, added)

	fav, err = repo.IsFavorite(7, p.ID)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestRepository_List(t *testing.T) {
	t.Run("returns favorited listings with images", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()

		p := seedProperty(t, db, "With image")
		img := entities.PropertyImage{PropertyID: p.ID, URL: "https://img/1", FileKey: "k1", IsPrimary: true}
		require.NoError(t, db.DB.Create(&img).Error)

		_, err := repo.Toggle(7, p.ID)
		require.NoError(t, err)

		favs, err := repo.List(7)
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, "With image", favs[0].Title)
		assert.NotZero(t, favs[0].FavoriteID)
		require.Len(t, favs[0].Images, 1)
		assert.Equal(t, "https://img/1", favs[0].Images[0].URL)
	})

	t.Run("skips listings that were hard-deleted", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()

		kept := seedProperty(t, db, "Kept")
		doomed := seedProperty(t, db, "Doomed")

		_, err := repo.Toggle(7, kept.ID)
		require.NoError(t, err)
		_, err = repo.Toggle(7, doomed.ID)
		require.NoError(t, err)

		require.NoError(t, db.DB.Delete(&entities.Property{}, doomed.ID).Error)

		favs, err := repo.List(7)
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, "Kept", favs[0].Title)
	})

	t.Run("only the caller's favorites", func(t *testing.T) {
		repo, db, cleanup := setupTestRepo(t)
		defer cleanup()

		p := seedProperty(t, db, "Shared listing")
		_, err := repo.Toggle(7, p.ID)
		require.NoError(t, err)

		favs, err := repo.List(8)
		require.NoError(t, err)
		assert.Empty(t, favs)
	})
}

func TestRepository_IDs(t *testing.T) {
	repo, db, cleanup := setupTestRepo(t)
	defer cleanup()

	first := seedProperty(t, db, "First")
	second := seedProperty(t, db, "Second")

	_, err := repo.Toggle(7, first.ID)
	require.NoError(t, err)
	_, err = repo.Toggle(7, second.ID)
	require.NoError(t, err)

	ids, err := repo.IDs(7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)
}
