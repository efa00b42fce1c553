package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/readingcenter/internal/database/content"
)

type NewsletterController struct {
	store NewsletterStore
}

func NewNewsletterController(store NewsletterStore) *NewsletterController {
	return &NewsletterController{store: store}
}

func (nc *NewsletterController) RegisterRoutes(api *gin.RouterGroup, g Guards, publicLimit gin.HandlerFunc) {
	subscribe := []gin.HandlerFunc{nc.Subscribe}
	if publicLimit != nil {
		subscribe = append([]gin.HandlerFunc{publicLimit}, subscribe...)
	}
	api.POST("/newsletter/subscribe", subscribe...)
	api.GET("/newsletter/unsubscribe/:token", nc.Unsubscribe)
	api.GET("/newsletter/subscribers", g.Staff, nc.ListSubscribers)
}

type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name" binding:"omitempty,max=200"`
}

// Subscribe handles POST /api/newsletter/subscribe. Subscribing twice is not
// an error.
func (nc *NewsletterController) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := nc.store.Subscribe(req.Email, req.Name)
	if err != nil {
		respondStoreError(c, err, "subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": sub.Email, "active": sub.Active})
}

// Unsubscribe handles GET /api/newsletter/unsubscribe/:token
func (nc *NewsletterController) Unsubscribe(c *gin.Context) {
	token := c.Param("token")
	if _, err := uuid.Parse(token); err != nil {
		respondBadRequest(c, "invalid token")
		return
	}
	sub, err := nc.store.Unsubscribe(token)
	if err != nil {
		respondStoreError(c, err, "subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": sub.Email, "active": sub.Active})
}

// ListSubscribers handles GET /api/newsletter/subscribers; all=true includes
// cancelled subscriptions.
func (nc *NewsletterController) ListSubscribers(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	subs, total, err := nc.store.ListSubscribers(!parseBoolQuery(c, "all"), content.Page{Limit: limit, Offset: offset})
	if err != nil {
		respondInternalError(c, err, "list subscribers")
		return
	}
	c.JSON(http.StatusOK, newPaginated(subs, total, limit, offset))
}
