package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/database/content"
	"github.com/mrlokans/readingcenter/internal/entities"
)

type NewsController struct {
	store    NewsStore
	recorder ActivityRecorder
}

func NewNewsController(store NewsStore, recorder ActivityRecorder) *NewsController {
	return &NewsController{store: store, recorder: recorder}
}

func (nc *NewsController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/news", nc.ListNews)
	api.GET("/news/:id", nc.GetNews)
	api.POST("/news", g.Staff, nc.CreateNews)
	api.PATCH("/news/:id", g.Staff, nc.UpdateNews)
	api.DELETE("/news/:id", g.Staff, nc.DeleteNews)
}

type CreateNewsRequest struct {
	Title     string `json:"title" binding:"required,max=300"`
	Summary   string `json:"summary" binding:"omitempty,max=1000"`
	Body      string `json:"body" binding:"required"`
	ImageURL  string `json:"image_url" binding:"omitempty,url,max=2048"`
	Published bool   `json:"published"`
}

type UpdateNewsRequest struct {
	Title     *string `json:"title" binding:"omitempty,min=1,max=300"`
	Summary   *string `json:"summary" binding:"omitempty,max=1000"`
	Body      *string `json:"body"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=2048"`
	Published *bool   `json:"published"`
}

// ListNews shows drafts to staff only.
func (nc *NewsController) ListNews(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	publishedOnly := !auth.GetIdentity(c).IsPrivileged()
	news, total, err := nc.store.ListNews(publishedOnly, content.Page{Limit: limit, Offset: offset})
	if err != nil {
		respondInternalError(c, err, "list news")
		return
	}
	c.JSON(http.StatusOK, newPaginated(news, total, limit, offset))
}

func (nc *NewsController) GetNews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	news, err := nc.store.GetNews(id)
	if err != nil {
		respondStoreError(c, err, "news")
		return
	}
	if !news.Published && !auth.GetIdentity(c).IsPrivileged() {
		respondNotFound(c, "news")
		return
	}
	c.JSON(http.StatusOK, news)
}

func (nc *NewsController) CreateNews(c *gin.Context) {
	var req CreateNewsRequest
	if !bindJSON(c, &req) {
		return
	}
	news := &entities.News{
		Title:     req.Title,
		Summary:   req.Summary,
		Body:      req.Body,
		ImageURL:  req.ImageURL,
		Published: req.Published,
		AuthorID:  auth.ActorID(c),
	}
	if err := nc.store.CreateNews(news); err != nil {
		respondStoreError(c, err, "news")
		return
	}
	recordActivity(c, nc.recorder, activity.Entry{
		Type:        entities.ActivityContent,
		Action:      "news_create",
		Description: fmt.Sprintf("Wrote article %q", news.Title),
		EntityType:  "news",
		EntityID:    idPtr(news.ID),
		Metadata:    map[string]any{"published": news.Published},
	})
	respondCreated(c, news)
}

func (nc *NewsController) UpdateNews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateNewsRequest
	if !bindJSON(c, &req) {
		return
	}
	news, err := nc.store.UpdateNews(id, content.NewsUpdate{
		Title:     req.Title,
		Summary:   req.Summary,
		Body:      req.Body,
		ImageURL:  req.ImageURL,
		Published: req.Published,
	})
	if err != nil {
		respondStoreError(c, err, "news")
		return
	}
	recordActivity(c, nc.recorder, activity.Entry{
		Type:       entities.ActivityContent,
		Action:     "news_update",
		EntityType: "news",
		EntityID:   idPtr(id),
	})
	c.JSON(http.StatusOK, news)
}

func (nc *NewsController) DeleteNews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := nc.store.DeleteNews(id); err != nil {
		respondStoreError(c, err, "news")
		return
	}
	recordActivity(c, nc.recorder, activity.Entry{
		Type:       entities.ActivityContent,
		Action:     "news_delete",
		EntityType: "news",
		EntityID:   idPtr(id),
	})
	respondSuccess(c, "news deleted")
}
