package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/entities"
)

type CategoriesController struct {
	store    CategoryStore
	recorder ActivityRecorder
}

func NewCategoriesController(store CategoryStore, recorder ActivityRecorder) *CategoriesController {
	return &CategoriesController{store: store, recorder: recorder}
}

func (cc *CategoriesController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/categories", cc.ListCategories)
	api.GET("/categories/:id", cc.GetCategory)
	api.POST("/categories", g.Staff, cc.CreateCategory)
	api.PATCH("/categories/:id", g.Staff, cc.UpdateCategory)
	api.DELETE("/categories/:id", g.Staff, cc.DeleteCategory)
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Color       *string `json:"color" binding:"omitempty,hexcolor"`
}

// ListCategories returns every category with its book count.
func (cc *CategoriesController) ListCategories(c *gin.Context) {
	categories, err := cc.store.ListCategories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

func (cc *CategoriesController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := cc.store.GetCategory(id)
	if err != nil {
		respondStoreError(c, err, "category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (cc *CategoriesController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category := &entities.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := cc.store.CreateCategory(category); err != nil {
		respondStoreError(c, err, "category")
		return
	}
	recordActivity(c, cc.recorder, activity.Entry{
		Type:        entities.ActivityCatalog,
		Action:      "category_create",
		Description: fmt.Sprintf("Added category %q", category.Name),
		EntityType:  "category",
		EntityID:    idPtr(category.ID),
	})
	respondCreated(c, category)
}

func (cc *CategoriesController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := cc.store.UpdateCategory(id, books.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondStoreError(c, err, "category")
		return
	}
	recordActivity(c, cc.recorder, activity.Entry{
		Type:       entities.ActivityCatalog,
		Action:     "category_update",
		EntityType: "category",
		EntityID:   idPtr(id),
	})
	c.JSON(http.StatusOK, category)
}

func (cc *CategoriesController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.store.DeleteCategory(id); err != nil {
		respondStoreError(c, err, "category")
		return
	}
	recordActivity(c, cc.recorder, activity.Entry{
		Type:       entities.ActivityCatalog,
		Action:     "category_delete",
		EntityType: "category",
		EntityID:   idPtr(id),
	})
	respondSuccess(c, "category deleted")
}
