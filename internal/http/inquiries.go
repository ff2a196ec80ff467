package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/honiara/homefinder/internal/auth"
	"github.com/honiara/homefinder/internal/database/inquiries"
	"github.com/honiara/homefinder/internal/database/properties"
	"github.com/honiara/homefinder/internal/entities"
	"github.com/honiara/homefinder/internal/notify"
)

// InquiryStore defines database operations for inquiry management.
type InquiryStore interface {
	Create(inq *entities.Inquiry) error
	GetForProperty(propertyID uint) ([]entities.Inquiry, error)
	GetForOwner(userID uint) ([]inquiries.OwnerInquiry, error)
	MarkRead(id, userID uint) error
	UnreadCount(userID uint) (int64, error)
}

// InquiryPropertyStore resolves the targeted listing and its owner.
type InquiryPropertyStore interface {
	GetByID(id uint) (*entities.Property, error)
	GetWithOwner(id uint) (*entities.Property, *properties.Owner, error)
}

type InquiryController struct {
	store      InquiryStore
	properties InquiryPropertyStore
	notifier   notify.Notifier // nil when outgoing mail is not configured
}

func NewInquiryController(store InquiryStore, props InquiryPropertyStore, notifier notify.Notifier) *InquiryController {
	return &InquiryController{store: store, properties: props, notifier: notifier}
}

type createInquiryRequest struct {
	PropertyID uint   `json:"property_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Message    string `json:"message" binding:"required"`
}

// CreateInquiry records a contact-form submission against a listing and
// notifies the owner by email on a best-effort basis. Anonymous visitors
// may submit; a logged-in caller's id is attached as the sender.
// POST /api/inquiries
func (ic *InquiryController) CreateInquiry(c *gin.Context) {
	var req createInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid inquiry payload: "+err.Error())
		return
	}

	property, owner, err := ic.properties.GetWithOwner(req.PropertyID)
	if err != nil {
		respondInternalError(c, err, "fetch inquiry target")
		return
	}
	if property == nil {
		respondNotFound(c, "property")
		return
	}

	inquiry := entities.Inquiry{
		PropertyID:  req.PropertyID,
		SenderName:  req.Name,
		SenderEmail: req.Email,
		SenderPhone: req.Phone,
		Message:     req.Message,
	}
	if userID := GetUserID(c); userID != auth.AnonymousUserID {
		inquiry.SenderID = &userID
	}

	if err := ic.store.Create(&inquiry); err != nil {
		respondInternalError(c, err, "create inquiry")
		return
	}

	// Notification failure must never fail the submission.
	if ic.notifier != nil && owner != nil && owner.Email != "" {
		msg := notify.Message{
			ToEmail: owner.Email,
			ToName:  owner.Name,
			Title:   fmt.Sprintf("New inquiry about %s", property.Title),
			Content: fmt.Sprintf(
				"%s (%s) sent you a message about your listing %q:\n\n%s",
				req.Name, req.Email, property.Title, req.Message,
			),
		}
		if err := ic.notifier.Notify(c.Request.Context(), msg); err != nil {
			log.Printf("Failed to notify owner of inquiry %d: %v", inquiry.ID, err)
		}
	}

	respondCreated(c, inquiry)
}

// PropertyInquiries returns a listing's inquiries to its owner.
// GET /api/properties/:id/inquiries
func (ic *InquiryController) PropertyInquiries(c *gin.Context) {
	propertyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	property, err := ic.properties.GetByID(propertyID)
	if err != nil {
		respondInternalError(c, err, "fetch property")
		return
	}
	if property == nil {
		respondNotFound(c, "property")
		return
	}
	if property.UserID != GetUserID(c) {
		respondError(c, http.StatusForbidden, "you do not own this property")
		return
	}

	inqs, err := ic.store.GetForProperty(propertyID)
	if err != nil {
		respondInternalError(c, err, "list property inquiries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inqs})
}

// MyInquiries returns all inquiries across the caller's listings.
// GET /api/inquiries
func (ic *InquiryController) MyInquiries(c *gin.Context) {
	inqs, err := ic.store.GetForOwner(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list own inquiries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inqs})
}

// MarkInquiryRead flags an inquiry on one of the caller's listings as read.
// POST /api/inquiries/:id/read
func (ic *InquiryController) MarkInquiryRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ic.store.MarkRead(id, GetUserID(c)); err != nil {
		if errors.Is(err, inquiries.ErrNotFound) {
			respondNotFound(c, "inquiry")
			return
		}
		respondInternalError(c, err, "mark inquiry read")
		return
	}
	respondSuccess(c, "inquiry marked as read")
}

// UnreadInquiryCount returns the caller's unread inquiry count for the
// inbox badge.
// GET /api/inquiries/unread-count
func (ic *InquiryController) UnreadInquiryCount(c *gin.Context) {
	count, err := ic.store.UnreadCount(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "count unread inquiries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
