// Command seed fills a database with a small sample catalog, center content
// and a few reservations for local development.
// Usage: go run ./cmd/seed [-db path/to/center.db] [-fresh]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/database/content"
	"github.com/mrlokans/readingcenter/internal/entities"
	"github.com/mrlokans/readingcenter/internal/reservations"
)

const defaultSeedDatabasePath = "./demo/readingcenter.db"

type sampleBook struct {
	Book     entities.Book
	Author   string
	Category string
}

func main() {
	dbPath := flag.String("db", defaultSeedDatabasePath, "path to the database file")
	fresh := flag.Bool("fresh", false, "delete the database before seeding")
	flag.Parse()

	if *fresh {
		if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove existing database: %v", err)
		}
	}

	log.Printf("Seeding database at %s...", *dbPath)

	db, err := database.Open(config.Database{Driver: config.DriverSQLite, Path: *dbPath})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	catalog := books.NewRepository(db.DB)
	authors := createAuthors(catalog)
	categories := createCategories(catalog)

	var saved []entities.Book
	for _, sample := range sampleBooks() {
		book := sample.Book
		if id, ok := authors[sample.Author]; ok {
			book.AuthorID = &id
		}
		if id, ok := categories[sample.Category]; ok {
			book.CategoryID = &id
		}
		if err := catalog.CreateBook(&book); err != nil {
			log.Printf("Failed to save book %s: %v", book.Title, err)
			continue
		}
		log.Printf("Saved: %s (%d copies)", book.Title, book.TotalCopies)
		saved = append(saved, book)
	}

	createContent(content.NewRepository(db.DB))
	createReservations(db, saved)

	log.Println("Sample data created successfully!")
}

func createAuthors(repo *books.Repository) map[string]uint {
	list := []entities.Author{
		{Name: "Jane Austen", Nationality: "British", BirthYear: 1775},
		{Name: "Fyodor Dostoevsky", Nationality: "Russian", BirthYear: 1821},
		{Name: "Mary Shelley", Nationality: "British", BirthYear: 1797},
		{Name: "Herman Melville", Nationality: "American", BirthYear: 1819},
	}

	ids := make(map[string]uint)
	for i := range list {
		if err := repo.CreateAuthor(&list[i]); err != nil {
			log.Printf("Failed to create author %s: %v", list[i].Name, err)
			continue
		}
		ids[list[i].Name] = list[i].ID
	}
	return ids
}

func createCategories(repo *books.Repository) map[string]uint {
	list := []entities.Category{
		{Name: "Novel", Description: "Long-form fiction", Color: "#3b82f6"},
		{Name: "Gothic", Description: "Horror and the sublime", Color: "#7c3aed"},
		{Name: "Adventure", Description: "Voyages and quests", Color: "#059669"},
	}

	ids := make(map[string]uint)
	for i := range list {
		if err := repo.CreateCategory(&list[i]); err != nil {
			log.Printf("Failed to create category %s: %v", list[i].Name, err)
			continue
		}
		ids[list[i].Name] = list[i].ID
	}
	return ids
}

func sampleBooks() []sampleBook {
	return []sampleBook{
		{Author: "Jane Austen", Category: "Novel", Book: entities.Book{Title: "Pride and Prejudice", PublicationYear: 1813, Language: "en", TotalCopies: 3}},
		{Author: "Jane Austen", Category: "Novel", Book: entities.Book{Title: "Emma", PublicationYear: 1815, Language: "en", TotalCopies: 1}},
		{Author: "Fyodor Dostoevsky", Category: "Novel", Book: entities.Book{Title: "Crime and Punishment", PublicationYear: 1866, Language: "en", TotalCopies: 2}},
		{Author: "Mary Shelley", Category: "Gothic", Book: entities.Book{Title: "Frankenstein", PublicationYear: 1818, Language: "en", TotalCopies: 2}},
		{Author: "Herman Melville", Category: "Adventure", Book: entities.Book{Title: "Moby-Dick", PublicationYear: 1851, Language: "en", TotalCopies: 1}},
		{Author: "Herman Melville", Category: "Adventure", Book: entities.Book{Title: "Typee", PublicationYear: 1846, Language: "en", TotalCopies: 1, Status: entities.BookStatusMaintenance}},
	}
}

func createContent(repo *content.Repository) {
	groups := []entities.ReadingGroup{
		{Name: "Classics Circle", Description: "One nineteenth-century novel a month", Schedule: "first Tuesday, 18:00", MaxMembers: 12, Active: true},
		{Name: "Young Readers", Description: "Reading aloud for ages 8 to 12", Schedule: "Saturdays, 10:30", MaxMembers: 15, Active: true},
	}
	for i := range groups {
		if err := repo.CreateGroup(&groups[i]); err != nil {
			log.Printf("Failed to create group %s: %v", groups[i].Name, err)
		}
	}

	start := time.Now().AddDate(0, 0, 14).Truncate(24 * time.Hour).Add(18 * time.Hour)
	end := start.Add(2 * time.Hour)
	event := entities.Event{
		Title:       "An evening with Frankenstein",
		Description: "Readings and discussion for the anniversary of the novel",
		Location:    "Main hall",
		StartsAt:    start,
		EndsAt:      &end,
		Capacity:    40,
	}
	if err := repo.CreateEvent(&event); err != nil {
		log.Printf("Failed to create event: %v", err)
	}

	news := entities.News{
		Title:     "Saturday opening hours",
		Summary:   "The center now opens on Saturdays",
		Body:      "Morning and afternoon visits can be booked on Saturdays from this week on.",
		Published: true,
	}
	if err := repo.CreateNews(&news); err != nil {
		log.Printf("Failed to create news: %v", err)
	}
}

func createReservations(db *database.Database, saved []entities.Book) {
	if len(saved) == 0 {
		return
	}

	engine := reservations.NewEngine(db.DB)
	manager := reservations.NewManager(db.DB)
	date := nextWeekday(time.Now())

	visitors := []struct {
		name  string
		email string
		slot  entities.Slot
	}{
		{"Alice Martin", "alice@example.com", entities.SlotMorning},
		{"Bruno Costa", "bruno@example.com", entities.SlotAfternoon},
	}

	ctx := context.Background()
	for i, v := range visitors {
		book := saved[i%len(saved)]
		r, err := engine.Admit(ctx, reservations.Request{
			BookID:       book.ID,
			VisitorName:  v.name,
			VisitorEmail: v.email,
			DesiredDate:  date,
			Slot:         v.slot,
		})
		if err != nil {
			log.Printf("Failed to reserve %s for %s: %v", book.Title, v.name, err)
			continue
		}
		log.Printf("Reserved: %s for %s on %s (%s)", book.Title, v.name, date, r.ReservationNumber)

		if i == 0 {
			if _, err := manager.UpdateStatus(ctx, r.ID, reservations.StatusChange{Status: entities.ReservationStatusValidated}); err != nil {
				log.Printf("Failed to validate %s: %v", r.ReservationNumber, err)
			}
		}
	}
}

// nextWeekday returns the first Monday to Saturday after from.
func nextWeekday(from time.Time) string {
	day := from.AddDate(0, 0, 1)
	for day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day.Format(entities.DateLayout)
}
