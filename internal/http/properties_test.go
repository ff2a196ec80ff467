package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honiara/homefinder/internal/auth"
	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/database/images"
	"github.com/honiara/homefinder/internal/database/properties"
	"github.com/honiara/homefinder/internal/entities"
)

// fakeStorage records uploads and serves deterministic URLs.
type fakeStorage struct {
	uploads []string
	failPut bool
}

func (f *fakeStorage) Put(_ context.Context, key string, content io.Reader, _ string) (string, error) {
	if f.failPut {
		return "", fmt.Errorf("upload rejected")
	}
	io.Copy(io.Discard, content)
	f.uploads = append(f.uploads, key)
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error {
	return nil
}

func setupPropertiesTest(t *testing.T) (*database.Database, *properties.Repository, *images.Repository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_properties_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.New(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, properties.NewRepository(db), images.NewRepository(db), cleanup
}

// identityMiddleware stamps every request with a fixed caller id.
func identityMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Next()
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestPropertyController_CreateProperty(t *testing.T) {
	t.Run("creates a listing with images", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		store := &fakeStorage{}
		controller := NewPropertyController(propsRepo, imgsRepo, store)
		router := gin.New()
		router.Use(identityMiddleware(1))
		router.POST("/api/properties", controller.CreateProperty)

		payload := gin.H{
			"title":         "Family home",
			"price":         "250000.00",
			"property_type": "house",
			"status":        "sale",
			"location":      "Kukum",
			"bedrooms":      3,
			"images": []gin.H{
				{"filename": "front.jpg", "data": base64.StdEncoding.EncodeToString([]byte("front"))},
				{"filename": "kitchen.jpg", "data": base64.StdEncoding.EncodeToString([]byte("kitchen"))},
				{"filename": "garden.jpg", "data": base64.StdEncoding.EncodeToString([]byte("garden"))},
			},
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/properties", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Len(t, store.uploads, 3)

		var created entities.Property
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		require.Len(t, created.Images, 3)
		assert.True(t, created.Images[0].IsPrimary)
		assert.False(t, created.Images[1].IsPrimary)
		assert.Equal(t, 2, created.Images[2].SortOrder)
		assert.True(t, strings.HasPrefix(created.Images[0].FileKey, fmt.Sprintf("properties/%d/", created.ID)))

		saved, err := imgsRepo.GetForProperty(created.ID)
		require.NoError(t, err)
		assert.Len(t, saved, 3)
	})

	t.Run("upload failure keeps the listing row", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		store := &fakeStorage{failPut: true}
		controller := NewPropertyController(propsRepo, imgsRepo, store)
		router := gin.New()
		router.Use(identityMiddleware(1))
		router.POST("/api/properties", controller.CreateProperty)

		payload := gin.H{
			"title":         "Half created",
			"price":         "1000.00",
			"property_type": "house",
			"status":        "rent",
			"location":      "Honiara",
			"images": []gin.H{
				{"filename": "x.jpg", "data": base64.StdEncoding.EncodeToString([]byte("x"))},
			},
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/properties", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		mine, err := propsRepo.GetUserProperties(1)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Empty(t, mine[0].Images)
	})

	t.Run("images without storage configured", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		controller := NewPropertyController(propsRepo, imgsRepo, nil)
		router := gin.New()
		router.Use(identityMiddleware(1))
		router.POST("/api/properties", controller.CreateProperty)

		payload := gin.H{
			"title":         "No storage",
			"price":         "1000.00",
			"property_type": "house",
			"status":        "rent",
			"location":      "Honiara",
			"images": []gin.H{
				{"filename": "x.jpg", "data": base64.StdEncoding.EncodeToString([]byte("x"))},
			},
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/properties", jsonBody(t, payload))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		controller := NewPropertyController(propsRepo, imgsRepo, nil)
		router := gin.New()
		router.Use(identityMiddleware(1))
		router.POST("/api/properties", controller.CreateProperty)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/properties", jsonBody(t, gin.H{"title": "No price"}))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPropertyController_GetProperty(t *testing.T) {
	t.Run("returns the listing with owner and counts the view", func(t *testing.T) {
		db, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		owner := entities.User{OpenID: "ext-1", Name: "Alice", Email: "alice@example.com"}
		require.NoError(t, db.DB.Create(&owner).Error)

		p := entities.Property{
			UserID: owner.ID, Title: "Viewed", Price: "1000.00",
			PropertyType: entities.PropertyTypeHouse, Status: entities.ListingStatusRent,
			Location: "Honiara", IsActive: true,
		}
		require.NoError(t, propsRepo.Create(&p))

		controller := NewPropertyController(propsRepo, imgsRepo, nil)
		router := gin.New()
		router.GET("/api/properties/:id", controller.GetProperty)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", fmt.Sprintf("/api/properties/%d", p.ID), nil)
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		}

		got, err := propsRepo.GetByID(p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.ViewCount)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/properties/%d", p.ID), nil)
		router.ServeHTTP(w, req)

		var response struct {
			Property entities.Property `json:"property"`
			Owner    properties.Owner  `json:"owner"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Viewed", response.Property.Title)
		assert.Equal(t, 3, response.Property.ViewCount)
		assert.Equal(t, "Alice", response.Owner.Name)
	})

	t.Run("unknown listing", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		controller := NewPropertyController(propsRepo, imgsRepo, nil)
		router := gin.New()
		router.GET("/api/properties/:id", controller.GetProperty)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/properties/999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPropertyController_UpdateProperty(t *testing.T) {
	t.Run("non-owner update changes nothing", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		p := entities.Property{
			UserID: 1, Title: "Original", Price: "1000.00",
			PropertyType: entities.PropertyTypeHouse, Status: entities.ListingStatusRent,
			Location: "Honiara", IsActive: true,
		}
		require.NoError(t, propsRepo.Create(&p))

		controller := NewPropertyController(propsRepo, imgsRepo, nil)
		router := gin.New()
		router.Use(identityMiddleware(2))
		router.PATCH("/api/properties/:id", controller.UpdateProperty)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", fmt.Sprintf("/api/properties/%d", p.ID), jsonBody(t, gin.H{"title": "Hijacked"}))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		got, err := propsRepo.GetByID(p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Title)
	})
}

func TestPropertyController_SearchProperties(t *testing.T) {
	t.Run("rejects invalid filter values", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		controller := NewPropertyController(propsRepo, imgsRepo, nil)
		router := gin.New()
		router.GET("/api/properties/search", controller.SearchProperties)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/properties/search?status=lease", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns a paginated result", func(t *testing.T) {
		_, propsRepo, imgsRepo, cleanup := setupPropertiesTest(t)
		defer cleanup()

		for i := 0; i < 3; i++ {
			p := entities.Property{
				UserID: 1, Title: fmt.Sprintf("Listing %d", i), Price: "1000.00",
				PropertyType: entities.PropertyTypeHouse, Status: entities.ListingStatusRent,
				Location: "Honiara", IsActive: true,
			}
			require.NoError(t, propsRepo.Create(&p))
		}

		controller := NewPropertyController(propsRepo, imgsRepo, nil)
		router := gin.New()
		router.GET("/api/properties/search", controller.SearchProperties)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/properties/search?limit=2", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, int64(3), response.Total)
		assert.Equal(t, 2, response.Limit)
		assert.True(t, response.HasMore)
	})
}
