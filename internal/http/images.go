package http

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/entities"
	"github.com/honiara/homefinder/internal/storage"
)

// ImageStore defines database operations for managing a listing's images.
type ImageStore interface {
	AddBatch(imgs []entities.PropertyImage) error
	GetForProperty(propertyID uint) ([]entities.PropertyImage, error)
	Delete(imageID, propertyID uint) error
	SetPrimary(imageID, propertyID uint) error
}

// ImageOwnerStore resolves a listing so ownership can be verified before
// any image mutation.
type ImageOwnerStore interface {
	GetByID(id uint) (*entities.Property, error)
}

type ImageController struct {
	store      ImageStore
	properties ImageOwnerStore
	storage    storage.Client // nil when object storage is not configured
}

func NewImageController(store ImageStore, props ImageOwnerStore, storageClient storage.Client) *ImageController {
	return &ImageController{store: store, properties: props, storage: storageClient}
}

// ownedProperty fetches the listing and verifies the caller owns it.
// Responds with 404 or 403 and returns false on failure. Unlike the direct
// listing updates, image operations report the ownership mismatch instead
// of no-opping, because the upload has side effects outside the database.
func (ic *ImageController) ownedProperty(c *gin.Context, propertyID uint) bool {
	property, err := ic.properties.GetByID(propertyID)
	if err != nil {
		respondInternalError(c, err, "fetch property")
		return false
	}
	if property == nil {
		respondNotFound(c, "property")
		return false
	}
	if property.UserID != GetUserID(c) {
		respondError(c, http.StatusForbidden, "you do not own this property")
		return false
	}
	return true
}

type uploadImagesRequest struct {
	Images []imageUpload `json:"images" binding:"required,min=1"`
}

// UploadImages appends images to a listing. New images are ordered after
// the existing ones; the first uploaded image becomes primary only when
// the listing has no images yet.
// POST /api/properties/:id/images
func (ic *ImageController) UploadImages(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if !ic.ownedProperty(c, propertyID) {
		return
	}
	if ic.storage == nil {
		respondError(c, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	var req uploadImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "at least one image is required")
		return
	}

	blobs := make([][]byte, len(req.Images))
	for i, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			respondBadRequest(c, fmt.Sprintf("image %d is not valid base64", i))
			return
		}
		blobs[i] = data
	}

	existing, err := ic.store.GetForProperty(propertyID)
	if err != nil {
		respondInternalError(c, err, "load existing images")
		return
	}
	startOrder := len(existing)

	rows := make([]entities.PropertyImage, 0, len(req.Images))
	for i, img := range req.Images {
		key := imageKey(propertyID, img.Filename)
		url, err := ic.storage.Put(c.Request.Context(), key, bytes.NewReader(blobs[i]), img.ContentType)
		if err != nil {
			respondInternalError(c, err, "upload image")
			return
		}
		rows = append(rows, entities.PropertyImage{
			PropertyID: propertyID,
			URL:        url,
			FileKey:    key,
			IsPrimary:  startOrder == 0 && i == 0,
			SortOrder:  startOrder + i,
		})
	}
	if err := ic.store.AddBatch(rows); err != nil {
		respondInternalError(c, err, "save images")
		return
	}

	respondCreated(c, gin.H{"images": rows})
}

// DeleteImage removes an image row from a listing. The stored blob is kept;
// its file key remains on backups for later cleanup.
// DELETE /api/properties/:id/images/:imageId
func (ic *ImageController) DeleteImage(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return
	}
	if !ic.ownedProperty(c, propertyID) {
		return
	}

	if err := ic.store.Delete(imageID, propertyID); err != nil {
		respondInternalError(c, err, "delete image")
		return
	}
	respondSuccess(c, "image deleted")
}

// SetPrimaryImage designates one image as the listing's cover.
// POST /api/properties/:id/images/:imageId/primary
func (ic *ImageController) SetPrimaryImage(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return
	}
	if !ic.ownedProperty(c, propertyID) {
		return
	}

	if err := ic.store.SetPrimary(imageID, propertyID); err != nil {
		respondInternalError(c, err, "set primary image")
		return
	}
	respondSuccess(c, "primary image updated")
}
