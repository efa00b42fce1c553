package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/database/content"
	"github.com/mrlokans/readingcenter/internal/entities"
)

type ContactsController struct {
	store    ContactStore
	notifier ContactNotifier
	recorder ActivityRecorder
}

// NewContactsController creates the controller. notifier may be nil, in which
// case no acknowledgement is sent.
func NewContactsController(store ContactStore, notifier ContactNotifier, recorder ActivityRecorder) *ContactsController {
	return &ContactsController{store: store, notifier: notifier, recorder: recorder}
}

func (cc *ContactsController) RegisterRoutes(api *gin.RouterGroup, g Guards, publicLimit gin.HandlerFunc) {
	create := []gin.HandlerFunc{cc.CreateContact}
	if publicLimit != nil {
		create = append([]gin.HandlerFunc{publicLimit}, create...)
	}
	api.POST("/contacts", create...)
	api.GET("/contacts", g.Staff, cc.ListContacts)
	api.GET("/contacts/:id", g.Staff, cc.GetContact)
	api.PATCH("/contacts/:id/read", g.Staff, cc.MarkRead)
	api.DELETE("/contacts/:id", g.Staff, cc.DeleteContact)
}

type CreateContactRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"omitempty,max=300"`
	Message string `json:"message" binding:"required,max=5000"`
}

// CreateContact handles POST /api/contacts. The acknowledgement mail is sent
// in the background.
func (cc *ContactsController) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if !bindJSON(c, &req) {
		return
	}
	msg := &entities.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := cc.store.CreateContact(msg); err != nil {
		respondStoreError(c, err, "contact message")
		return
	}
	if cc.notifier != nil {
		cc.notifier.NotifyContact(c.Request.Context(), msg.ID)
	}
	recordActivity(c, cc.recorder, activity.Entry{
		Type:        entities.ActivityContent,
		Action:      "contact_create",
		Description: fmt.Sprintf("Contact message from %s", msg.Email),
		EntityType:  "contact",
		EntityID:    idPtr(msg.ID),
	})
	respondCreated(c, gin.H{"id": msg.ID, "message": "message received"})
}

// ListContacts handles GET /api/contacts; unread=true skips read messages.
func (cc *ContactsController) ListContacts(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	messages, total, err := cc.store.ListContacts(parseBoolQuery(c, "unread"), content.Page{Limit: limit, Offset: offset})
	if err != nil {
		respondInternalError(c, err, "list contacts")
		return
	}
	c.JSON(http.StatusOK, newPaginated(messages, total, limit, offset))
}

func (cc *ContactsController) GetContact(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	msg, err := cc.store.GetContact(id)
	if err != nil {
		respondStoreError(c, err, "contact message")
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (cc *ContactsController) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	msg, err := cc.store.MarkContactRead(id)
	if err != nil {
		respondStoreError(c, err, "contact message")
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (cc *ContactsController) DeleteContact(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.store.DeleteContact(id); err != nil {
		respondStoreError(c, err, "contact message")
		return
	}
	recordActivity(c, cc.recorder, activity.Entry{
		Type:       entities.ActivityContent,
		Action:     "contact_delete",
		EntityType: "contact",
		EntityID:   idPtr(id),
	})
	respondSuccess(c, "contact message deleted")
}
