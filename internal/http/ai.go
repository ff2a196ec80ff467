package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/ai"
)

type AIController struct {
	client *ai.Client // nil when the text-generation service is not configured
}

func NewAIController(client *ai.Client) *AIController {
	return &AIController{client: client}
}

type describeRequest struct {
	Title          string   `json:"title" binding:"required"`
	PropertyType   string   `json:"property_type" binding:"required,oneof=house apartment land commercial"`
	Status         string   `json:"status" binding:"required,oneof=rent sale"`
	Bedrooms       *int     `json:"bedrooms"`
	Bathrooms      *int     `json:"bathrooms"`
	Area           *float64 `json:"area"`
	Location       string   `json:"location" binding:"required"`
	Amenities      string   `json:"amenities"`
	AdditionalInfo string   `json:"additional_info"`
}

// Describe drafts a listing description from the supplied attributes. The
// draft is returned to the client; nothing is saved.
// POST /api/ai/describe
func (aic *AIController) Describe(c *gin.Context) {
	if aic.client == nil {
		respondError(c, http.StatusServiceUnavailable, "description generation is not configured")
		return
	}

	var req describeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid description request: "+err.Error())
		return
	}

	description, err := aic.client.GenerateDescription(c.Request.Context(), ai.ListingDetails{
		Title:          req.Title,
		PropertyType:   req.PropertyType,
		Status:         req.Status,
		Bedrooms:       req.Bedrooms,
		Bathrooms:      req.Bathrooms,
		Area:           req.Area,
		Location:       req.Location,
		Amenities:      req.Amenities,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			respondError(c, http.StatusServiceUnavailable, "description generation is not configured")
			return
		}
		respondInternalError(c, err, "generate description")
		return
	}

	c.JSON(http.StatusOK, gin.H{"description": description})
}
