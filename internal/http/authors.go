package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/entities"
)

type AuthorsController struct {
	store    AuthorStore
	recorder ActivityRecorder
}

func NewAuthorsController(store AuthorStore, recorder ActivityRecorder) *AuthorsController {
	return &AuthorsController{store: store, recorder: recorder}
}

func (ac *AuthorsController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/authors", ac.ListAuthors)
	api.GET("/authors/:id", ac.GetAuthor)
	api.POST("/authors", g.Staff, ac.CreateAuthor)
	api.PATCH("/authors/:id", g.Staff, ac.UpdateAuthor)
	api.DELETE("/authors/:id", g.Staff, ac.DeleteAuthor)
}

type CreateAuthorRequest struct {
	Name        string `json:"name" binding:"required,max=256"`
	Nationality string `json:"nationality" binding:"omitempty,max=100"`
	Biography   string `json:"biography"`
	BirthYear   int    `json:"birth_year" binding:"omitempty,min=0,max=9999"`
}

type UpdateAuthorRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=256"`
	Nationality *string `json:"nationality" binding:"omitempty,max=100"`
	Biography   *string `json:"biography"`
	BirthYear   *int    `json:"birth_year" binding:"omitempty,min=0,max=9999"`
}

func (ac *AuthorsController) ListAuthors(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	authors, total, err := ac.store.ListAuthors(c.Query("q"), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, newPaginated(authors, total, limit, offset))
}

func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := ac.store.GetAuthor(id)
	if err != nil {
		respondStoreError(c, err, "author")
		return
	}
	c.JSON(http.StatusOK, author)
}

func (ac *AuthorsController) CreateAuthor(c *gin.Context) {
	var req CreateAuthorRequest
	if !bindJSON(c, &req) {
		return
	}
	author := &entities.Author{
		Name:        req.Name,
		Nationality: req.Nationality,
		Biography:   req.Biography,
		BirthYear:   req.BirthYear,
	}
	if err := ac.store.CreateAuthor(author); err != nil {
		respondStoreError(c, err, "author")
		return
	}
	recordActivity(c, ac.recorder, activity.Entry{
		Type:        entities.ActivityCatalog,
		Action:      "author_create",
		Description: fmt.Sprintf("Added author %q", author.Name),
		EntityType:  "author",
		EntityID:    idPtr(author.ID),
	})
	respondCreated(c, author)
}

func (ac *AuthorsController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateAuthorRequest
	if !bindJSON(c, &req) {
		return
	}
	author, err := ac.store.UpdateAuthor(id, books.AuthorUpdate{
		Name:        req.Name,
		Nationality: req.Nationality,
		Biography:   req.Biography,
		BirthYear:   req.BirthYear,
	})
	if err != nil {
		respondStoreError(c, err, "author")
		return
	}
	recordActivity(c, ac.recorder, activity.Entry{
		Type:       entities.ActivityCatalog,
		Action:     "author_update",
		EntityType: "author",
		EntityID:   idPtr(id),
	})
	c.JSON(http.StatusOK, author)
}

func (ac *AuthorsController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ac.store.DeleteAuthor(id); err != nil {
		respondStoreError(c, err, "author")
		return
	}
	recordActivity(c, ac.recorder, activity.Entry{
		Type:       entities.ActivityCatalog,
		Action:     "author_delete",
		EntityType: "author",
		EntityID:   idPtr(id),
	})
	respondSuccess(c, "author deleted")
}
