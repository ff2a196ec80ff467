package http

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/honiara/homefinder/internal/database/properties"
	"github.com/honiara/homefinder/internal/entities"
	"github.com/honiara/homefinder/internal/storage"
)

var validate = validator.New()

// PropertyStore defines database operations for listing management.
type PropertyStore interface {
	Create(p *entities.Property) error
	Update(id, userID uint, updates map[string]any) error
	GetByID(id uint) (*entities.Property, error)
	GetWithOwner(id uint) (*entities.Property, *properties.Owner, error)
	GetUserProperties(userID uint) ([]entities.Property, error)
	Search(params properties.SearchParams) ([]entities.Property, int64, error)
	Featured(limit int) ([]entities.Property, error)
	IncrementViews(id uint) error
	Activate(id, userID uint) error
	Deactivate(id, userID uint) error
	ForMap() ([]properties.MapPin, error)
}

// PropertyImageStore is the image subset the listing endpoints need.
type PropertyImageStore interface {
	AddBatch(imgs []entities.PropertyImage) error
	GetForProperty(propertyID uint) ([]entities.PropertyImage, error)
}

type PropertyController struct {
	store   PropertyStore
	images  PropertyImageStore
	storage storage.Client // nil when object storage is not configured
}

func NewPropertyController(store PropertyStore, images PropertyImageStore, storageClient storage.Client) *PropertyController {
	return &PropertyController{store: store, images: images, storage: storageClient}
}

type imageUpload struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	Data        string `json:"data" binding:"required"` // base64-encoded bytes
}

type createPropertyRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	Price        string  `json:"price" binding:"required"`
	PropertyType string  `json:"property_type" binding:"required,oneof=house apartment land commercial"`
	Status       string  `json:"status" binding:"required,oneof=rent sale"`
	Bedrooms     *int    `json:"bedrooms"`
	Bathrooms    *int    `json:"bathrooms"`
	Area         *string `json:"area"`
	Location     string  `json:"location" binding:"required"`
	Address      string  `json:"address"`
	Latitude     *string `json:"latitude"`
	Longitude    *string `json:"longitude"`
	Amenities    string  `json:"amenities"`

	Images []imageUpload `json:"images"`
}

// CreateProperty creates a listing, uploading any supplied images to object
// storage. The listing row is written first; an upload failure fails the
// call but the row stays, so the owner can retry the images later.
// POST /api/properties
func (pc *PropertyController) CreateProperty(c *gin.Context) {
	userID := GetUserID(c)

	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid listing payload: "+err.Error())
		return
	}
	if len(req.Images) > 0 && pc.storage == nil {
		respondError(c, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	// Decode all image payloads before touching the database.
	blobs := make([][]byte, len(req.Images))
	for i, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			respondBadRequest(c, fmt.Sprintf("image %d is not valid base64", i))
			return
		}
		blobs[i] = data
	}

	property := entities.Property{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		PropertyType: entities.PropertyType(req.PropertyType),
		Status:       entities.ListingStatus(req.Status),
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Area:         req.Area,
		Location:     req.Location,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Amenities:    req.Amenities,
		IsActive:     true,
	}
	if err := pc.store.Create(&property); err != nil {
		respondInternalError(c, err, "create property")
		return
	}

	if len(req.Images) > 0 {
		rows := make([]entities.PropertyImage, 0, len(req.Images))
		for i, img := range req.Images {
			key := imageKey(property.ID, img.Filename)
			url, err := pc.storage.Put(c.Request.Context(), key, bytes.NewReader(blobs[i]), img.ContentType)
			if err != nil {
				respondInternalError(c, err, "upload property image")
				return
			}
			rows = append(rows, entities.PropertyImage{
				PropertyID: property.ID,
				URL:        url,
				FileKey:    key,
				IsPrimary:  i == 0,
				SortOrder:  i,
			})
		}
		if err := pc.images.AddBatch(rows); err != nil {
			respondInternalError(c, err, "save property images")
			return
		}
		property.Images = rows
	}

	respondCreated(c, property)
}

type updatePropertyRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Price        *string `json:"price"`
	PropertyType *string `json:"property_type" binding:"omitempty,oneof=house apartment land commercial"`
	Status       *string `json:"status" binding:"omitempty,oneof=rent sale"`
	Bedrooms     *int    `json:"bedrooms"`
	Bathrooms    *int    `json:"bathrooms"`
	Area         *string `json:"area"`
	Location     *string `json:"location"`
	Address      *string `json:"address"`
	Latitude     *string `json:"latitude"`
	Longitude    *string `json:"longitude"`
	Amenities    *string `json:"amenities"`
}

// UpdateProperty applies a partial update to a listing. The write is scoped
// to the acting owner; updating someone else's listing matches zero rows
// and reports success without changing anything.
// PATCH /api/properties/:id
func (pc *PropertyController) UpdateProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid update payload: "+err.Error())
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.PropertyType != nil {
		updates["property_type"] = *req.PropertyType
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Bedrooms != nil {
		updates["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		updates["bathrooms"] = *req.Bathrooms
	}
	if req.Area != nil {
		updates["area"] = *req.Area
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Amenities != nil {
		updates["amenities"] = *req.Amenities
	}

	if err := pc.store.Update(id, userID, updates); err != nil {
		respondInternalError(c, err, "update property")
		return
	}
	respondSuccess(c, "property updated")
}

// GetProperty returns one listing with its owner's contact subset and
// images. Every call counts as a view, including the owner's own.
// GET /api/properties/:id
func (pc *PropertyController) GetProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	property, owner, err := pc.store.GetWithOwner(id)
	if err != nil {
		respondInternalError(c, err, "get property")
		return
	}
	if property == nil {
		respondNotFound(c, "property")
		return
	}

	if err := pc.store.IncrementViews(id); err != nil {
		respondInternalError(c, err, "count property view")
		return
	}
	property.ViewCount++

	imgs, err := pc.images.GetForProperty(id)
	if err != nil {
		respondInternalError(c, err, "load property images")
		return
	}
	property.Images = imgs

	c.JSON(http.StatusOK, gin.H{"property": property, "owner": owner})
}

// MyProperties returns the caller's own listings, active or not.
// GET /api/properties/mine
func (pc *PropertyController) MyProperties(c *gin.Context) {
	props, err := pc.store.GetUserProperties(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list own properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

type searchQuery struct {
	Query        string  `form:"q"`
	Status       string  `form:"status" validate:"omitempty,oneof=rent sale"`
	PropertyType string  `form:"property_type" validate:"omitempty,oneof=house apartment land commercial"`
	MinPrice     float64 `form:"min_price" validate:"gte=0"`
	MaxPrice     float64 `form:"max_price" validate:"gte=0"`
	Bedrooms     int     `form:"bedrooms" validate:"gte=0"`
	Limit        int     `form:"limit" validate:"gte=0,lte=100"`
	Offset       int     `form:"offset" validate:"gte=0"`
}

// SearchProperties returns a page of active listings matching the filters.
// GET /api/properties/search
func (pc *PropertyController) SearchProperties(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, "invalid search parameters")
		return
	}
	if err := validate.Struct(q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid search parameters", Details: err.Error()})
		return
	}

	limit := q.Limit
	if limit <= 0 {
		limit = properties.DefaultSearchLimit
	}

	props, total, err := pc.store.Search(properties.SearchParams{
		Query:        q.Query,
		Status:       entities.ListingStatus(q.Status),
		PropertyType: entities.PropertyType(q.PropertyType),
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		Bedrooms:     q.Bedrooms,
		Limit:        limit,
		Offset:       q.Offset,
	})
	if err != nil {
		respondInternalError(c, err, "search properties")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    props,
		Total:   total,
		Limit:   limit,
		Offset:  q.Offset,
		HasMore: int64(q.Offset+len(props)) < total,
	})
}

// FeaturedProperties returns the most-viewed active listings.
// GET /api/properties/featured
func (pc *PropertyController) FeaturedProperties(c *gin.Context) {
	limit := properties.DefaultFeaturedLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 24 {
			limit = l
		}
	}

	props, err := pc.store.Featured(limit)
	if err != nil {
		respondInternalError(c, err, "featured properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

// ActivateProperty restores a listing's public visibility.
// POST /api/properties/:id/activate
func (pc *PropertyController) ActivateProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := pc.store.Activate(id, GetUserID(c)); err != nil {
		respondInternalError(c, err, "activate property")
		return
	}
	respondSuccess(c, "property activated")
}

// DeactivateProperty soft-hides a listing from public surfaces.
// POST /api/properties/:id/deactivate
func (pc *PropertyController) DeactivateProperty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := pc.store.Deactivate(id, GetUserID(c)); err != nil {
		respondInternalError(c, err, "deactivate property")
		return
	}
	respondSuccess(c, "property deactivated")
}

// MapProperties returns the coordinate projection of all active listings
// that carry a position.
// GET /api/properties/map
func (pc *PropertyController) MapProperties(c *gin.Context) {
	pins, err := pc.store.ForMap()
	if err != nil {
		respondInternalError(c, err, "map properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": pins})
}

// imageKey builds the object-storage key for an uploaded listing image.
// Only the payload's base filename is used; any path segments are dropped.
func imageKey(propertyID uint, filename string) string {
	return fmt.Sprintf("properties/%d/%s-%s", propertyID, uuid.NewString(), path.Base(filename))
}
