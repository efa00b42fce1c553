package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/entities"
)

type BooksController struct {
	store    BookStore
	recorder ActivityRecorder
}

func NewBooksController(store BookStore, recorder ActivityRecorder) *BooksController {
	return &BooksController{
		store:    store,
		recorder: recorder,
	}
}

// RegisterRoutes mounts the catalog: reads are public, writes need staff.
func (controller *BooksController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.GET("/books", controller.ListBooks)
	api.GET("/books/:id", controller.GetBook)
	api.POST("/books", g.Staff, controller.CreateBook)
	api.PATCH("/books/:id", g.Staff, controller.UpdateBook)
	api.DELETE("/books/:id", g.Staff, controller.DeleteBook)
}

type CreateBookRequest struct {
	Title           string              `json:"title" binding:"required,max=512"`
	ISBN            string              `json:"isbn" binding:"omitempty,max=20"`
	Description     string              `json:"description"`
	PublicationYear int                 `json:"publication_year" binding:"omitempty,min=0,max=9999"`
	CoverURL        string              `json:"cover_url" binding:"omitempty,url,max=2048"`
	Language        string              `json:"language" binding:"omitempty,max=20"`
	AuthorID        *uint               `json:"author_id"`
	CategoryID      *uint               `json:"category_id"`
	TotalCopies     *int                `json:"total_copies" binding:"omitempty,min=0"`
	Status          entities.BookStatus `json:"status" binding:"omitempty,bookstatus"`
}

// UpdateBookRequest is a partial update. copies_available is not accepted:
// only the reservation lifecycle moves it.
type UpdateBookRequest struct {
	Title           *string              `json:"title" binding:"omitempty,min=1,max=512"`
	ISBN            *string              `json:"isbn" binding:"omitempty,max=20"`
	Description     *string              `json:"description"`
	PublicationYear *int                 `json:"publication_year" binding:"omitempty,min=0,max=9999"`
	CoverURL        *string              `json:"cover_url" binding:"omitempty,max=2048"`
	Language        *string              `json:"language" binding:"omitempty,max=20"`
	AuthorID        *uint                `json:"author_id"` // 0 clears the author
	CategoryID      *uint                `json:"category_id"`
	TotalCopies     *int                 `json:"total_copies" binding:"omitempty,min=0"`
	Status          *entities.BookStatus `json:"status" binding:"omitempty,bookstatus"`
}

// ListBooks handles GET /api/books
func (controller *BooksController) ListBooks(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	authorID, ok := optionalQueryID(c, "author_id")
	if !ok {
		return
	}
	categoryID, ok := optionalQueryID(c, "category_id")
	if !ok {
		return
	}
	status := entities.BookStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		respondBadRequest(c, "invalid status")
		return
	}

	list, total, err := controller.store.ListBooks(books.BookFilter{
		Query:      c.Query("q"),
		AuthorID:   authorID,
		CategoryID: categoryID,
		Status:     status,
		Language:   c.Query("language"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, newPaginated(list, total, limit, offset))
}

// GetBook handles GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := controller.store.GetBook(id)
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook handles POST /api/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	book := &entities.Book{
		Title:           req.Title,
		ISBN:            req.ISBN,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		CoverURL:        req.CoverURL,
		Language:        req.Language,
		AuthorID:        nonZero(req.AuthorID),
		CategoryID:      nonZero(req.CategoryID),
		TotalCopies:     1,
		Status:          req.Status,
	}
	if req.TotalCopies != nil {
		book.TotalCopies = *req.TotalCopies
	}

	if err := controller.store.CreateBook(book); err != nil {
		respondStoreError(c, err, "book")
		return
	}

	recordActivity(c, controller.recorder, activity.Entry{
		Type:        entities.ActivityCatalog,
		Action:      "book_create",
		Description: fmt.Sprintf("Added book %q", book.Title),
		EntityType:  "book",
		EntityID:    idPtr(book.ID),
	})

	created, err := controller.store.GetBook(book.ID)
	if err != nil {
		respondCreated(c, book)
		return
	}
	respondCreated(c, created)
}

// UpdateBook handles PATCH /api/books/:id
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	book, err := controller.store.UpdateBook(id, books.BookUpdate{
		Title:           req.Title,
		ISBN:            req.ISBN,
		Description:     req.Description,
		PublicationYear: req.PublicationYear,
		CoverURL:        req.CoverURL,
		Language:        req.Language,
		AuthorID:        req.AuthorID,
		CategoryID:      req.CategoryID,
		TotalCopies:     req.TotalCopies,
		Status:          req.Status,
	})
	if errors.Is(err, books.ErrCopiesInUse) {
		respondError(c, http.StatusConflict, CodeConflict, err.Error())
		return
	}
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}

	recordActivity(c, controller.recorder, activity.Entry{
		Type:        entities.ActivityCatalog,
		Action:      "book_update",
		Description: fmt.Sprintf("Updated book %q", book.Title),
		EntityType:  "book",
		EntityID:    idPtr(book.ID),
	})
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	err := controller.store.DeleteBook(id)
	if errors.Is(err, books.ErrHasActiveReservations) {
		respondError(c, http.StatusConflict, CodeConflict, err.Error())
		return
	}
	if err != nil {
		respondStoreError(c, err, "book")
		return
	}

	recordActivity(c, controller.recorder, activity.Entry{
		Type:        entities.ActivityCatalog,
		Action:      "book_delete",
		Description: fmt.Sprintf("Deleted book %d", id),
		EntityType:  "book",
		EntityID:    idPtr(id),
	})
	respondSuccess(c, "book deleted")
}

// nonZero maps an absent or zero reference to nil.
func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
