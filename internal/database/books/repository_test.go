package books

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB), db.DB
}

func ptr[T any](v T) *T { return &v }

func TestRepository_CreateBook(t *testing.T) {
	repo, _ := setupTestDB(t)

	book := &entities.Book{Title: "Dune", TotalCopies: 3, CopiesAvailable: 99}
	require.NoError(t, repo.CreateBook(book))

	assert.NotZero(t, book.ID)
	assert.Equal(t, 3, book.CopiesAvailable)
	assert.Equal(t, entities.BookStatusAvailable, book.Status)

	empty := &entities.Book{Title: "Nothing left", TotalCopies: 0}
	require.NoError(t, repo.CreateBook(empty))
	assert.Equal(t, entities.BookStatusFullyReserved, empty.Status)
}

func TestRepository_ListBooks(t *testing.T) {
	repo, _ := setupTestDB(t)

	author := &entities.Author{Name: "Frank Herbert"}
	require.NoError(t, repo.CreateAuthor(author))
	category := &entities.Category{Name: "Science Fiction"}
	require.NoError(t, repo.CreateCategory(category))

	require.NoError(t, repo.CreateBook(&entities.Book{Title: "Dune", ISBN: "9780441013593", AuthorID: &author.ID, CategoryID: &category.ID, TotalCopies: 1}))
	require.NoError(t, repo.CreateBook(&entities.Book{Title: "Dune Messiah", AuthorID: &author.ID, TotalCopies: 1}))
	require.NoError(t, repo.CreateBook(&entities.Book{Title: "Emma", TotalCopies: 1, Status: entities.BookStatusMaintenance}))

	t.Run("query matches title case-insensitively", func(t *testing.T) {
		books, total, err := repo.ListBooks(BookFilter{Query: "dune"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, "Dune", books[0].Title)
		require.NotNil(t, books[0].Author)
		assert.Equal(t, "Frank Herbert", books[0].Author.Name)
	})

	t.Run("query matches isbn", func(t *testing.T) {
		_, total, err := repo.ListBooks(BookFilter{Query: "978044"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("filters by category and status", func(t *testing.T) {
		_, total, err := repo.ListBooks(BookFilter{CategoryID: category.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		books, total, err := repo.ListBooks(BookFilter{Status: entities.BookStatusMaintenance})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Emma", books[0].Title)
	})

	t.Run("pagination keeps the total", func(t *testing.T) {
		books, total, err := repo.ListBooks(BookFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, books, 1)
		assert.Equal(t, "Dune Messiah", books[0].Title)
	})
}

func TestRepository_UpdateBook(t *testing.T) {
	repo, _ := setupTestDB(t)

	book := &entities.Book{Title: "Dune", TotalCopies: 2}
	require.NoError(t, repo.CreateBook(book))

	t.Run("updates only provided fields", func(t *testing.T) {
		updated, err := repo.UpdateBook(book.ID, BookUpdate{Description: ptr("Spice")})
		require.NoError(t, err)
		assert.Equal(t, "Dune", updated.Title)
		assert.Equal(t, "Spice", updated.Description)
	})

	t.Run("total copies shifts available copies", func(t *testing.T) {
		// one copy committed to a validated reservation
		require.NoError(t, repo.db.Model(&entities.Book{}).Where("id = ?", book.ID).Update("copies_available", 1).Error)

		updated, err := repo.UpdateBook(book.ID, BookUpdate{TotalCopies: ptr(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.TotalCopies)
		assert.Equal(t, 3, updated.CopiesAvailable)

		updated, err = repo.UpdateBook(book.ID, BookUpdate{TotalCopies: ptr(1)})
		require.NoError(t, err)
		assert.Equal(t, 0, updated.CopiesAvailable)
		assert.Equal(t, entities.BookStatusFullyReserved, updated.Status)
	})

	t.Run("cannot drop below copies in use", func(t *testing.T) {
		_, err := repo.UpdateBook(book.ID, BookUpdate{TotalCopies: ptr(0)})
		assert.ErrorIs(t, err, ErrCopiesInUse)
	})

	t.Run("clears author with zero id", func(t *testing.T) {
		author := &entities.Author{Name: "Frank Herbert"}
		require.NoError(t, repo.CreateAuthor(author))

		updated, err := repo.UpdateBook(book.ID, BookUpdate{AuthorID: ptr(author.ID)})
		require.NoError(t, err)
		require.NotNil(t, updated.AuthorID)

		updated, err = repo.UpdateBook(book.ID, BookUpdate{AuthorID: ptr(uint(0))})
		require.NoError(t, err)
		assert.Nil(t, updated.AuthorID)
	})

	t.Run("missing book", func(t *testing.T) {
		_, err := repo.UpdateBook(9999, BookUpdate{Title: ptr("x")})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRepository_DeleteBook(t *testing.T) {
	repo, db := setupTestDB(t)

	book := &entities.Book{Title: "Dune", TotalCopies: 1}
	require.NoError(t, repo.CreateBook(book))

	res := &entities.Reservation{
		ReservationNumber: "RES-20300311-000001",
		VisitorName:       "Ann",
		VisitorEmail:      "ann@example.com",
		BookID:            book.ID,
		DesiredDate:       "2030-03-11",
		Slot:              entities.SlotMorning,
		Status:            entities.ReservationStatusPending,
	}
	require.NoError(t, db.Create(res).Error)

	err := repo.DeleteBook(book.ID)
	assert.ErrorIs(t, err, ErrHasActiveReservations)

	require.NoError(t, db.Model(res).Update("status", entities.ReservationStatusCancelled).Error)
	require.NoError(t, repo.DeleteBook(book.ID))

	_, err = repo.GetBook(book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// soft-deleted row is kept for the reservation history
	var count int64
	require.NoError(t, db.Unscoped().Model(&entities.Book{}).Where("id = ?", book.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_Authors(t *testing.T) {
	repo, _ := setupTestDB(t)

	author := &entities.Author{Name: "Jane Austen", Nationality: "British"}
	require.NoError(t, repo.CreateAuthor(author))
	require.NoError(t, repo.CreateAuthor(&entities.Author{Name: "Chinua Achebe"}))

	authors, total, err := repo.ListAuthors("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Chinua Achebe", authors[0].Name)

	_, total, err = repo.ListAuthors("austen", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	updated, err := repo.UpdateAuthor(author.ID, AuthorUpdate{BirthYear: ptr(1775)})
	require.NoError(t, err)
	assert.Equal(t, 1775, updated.BirthYear)
	assert.Equal(t, "British", updated.Nationality)

	book := &entities.Book{Title: "Emma", AuthorID: &author.ID, TotalCopies: 1}
	require.NoError(t, repo.CreateBook(book))

	require.NoError(t, repo.DeleteAuthor(author.ID))
	got, err := repo.GetBook(book.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AuthorID)
}

func TestRepository_Categories(t *testing.T) {
	repo, _ := setupTestDB(t)

	category := &entities.Category{Name: "Poetry", Color: "#aa00cc"}
	require.NoError(t, repo.CreateCategory(category))
	require.NoError(t, repo.CreateBook(&entities.Book{Title: "Leaves of Grass", CategoryID: &category.ID, TotalCopies: 1}))

	categories, err := repo.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, int64(1), categories[0].BookCount)

	updated, err := repo.UpdateCategory(category.ID, CategoryUpdate{Description: ptr("Verse")})
	require.NoError(t, err)
	assert.Equal(t, "Verse", updated.Description)

	require.NoError(t, repo.DeleteCategory(category.ID))
	require.NoError(t, repo.CreateCategory(&entities.Category{Name: "Poetry"}))
}
