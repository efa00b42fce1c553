package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	dbactivity "github.com/mrlokans/readingcenter/internal/database/activity"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/database/content"
	dbreservations "github.com/mrlokans/readingcenter/internal/database/reservations"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
	"github.com/mrlokans/readingcenter/internal/reservations"
)

// Store interfaces consumed by the controllers. The database repositories
// satisfy them; tests may substitute their own.

type BookStore interface {
	ListBooks(filter books.BookFilter) ([]entities.Book, int64, error)
	GetBook(id uint) (*entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(id uint, update books.BookUpdate) (*entities.Book, error)
	DeleteBook(id uint) error
}

type AuthorStore interface {
	ListAuthors(q string, limit, offset int) ([]entities.Author, int64, error)
	GetAuthor(id uint) (*entities.Author, error)
	CreateAuthor(author *entities.Author) error
	UpdateAuthor(id uint, update books.AuthorUpdate) (*entities.Author, error)
	DeleteAuthor(id uint) error
}

type CategoryStore interface {
	ListCategories() ([]books.CategoryWithCount, error)
	GetCategory(id uint) (*entities.Category, error)
	CreateCategory(category *entities.Category) error
	UpdateCategory(id uint, update books.CategoryUpdate) (*entities.Category, error)
	DeleteCategory(id uint) error
}

// ReservationAdmitter is the admission engine.
type ReservationAdmitter interface {
	Admit(ctx context.Context, req reservations.Request) (*entities.Reservation, error)
	Availability(ctx context.Context, bookID uint, date string) (*reservations.Availability, error)
}

// ReservationUpdater is the lifecycle manager.
type ReservationUpdater interface {
	Get(ctx context.Context, id uint) (*entities.Reservation, error)
	UpdateStatus(ctx context.Context, id uint, change reservations.StatusChange) (*entities.Reservation, error)
}

type ReservationLister interface {
	List(filter dbreservations.Filter) ([]entities.Reservation, int64, error)
	CountByStatus() (map[entities.ReservationStatus]int64, error)
}

type GroupStore interface {
	ListGroups(activeOnly bool, page content.Page) ([]entities.ReadingGroup, int64, error)
	GetGroup(id uint) (*entities.ReadingGroup, error)
	CreateGroup(group *entities.ReadingGroup) error
	UpdateGroup(id uint, update content.GroupUpdate) (*entities.ReadingGroup, error)
	DeleteGroup(id uint) error
}

type EventStore interface {
	ListEvents(filter content.EventFilter) ([]entities.Event, int64, error)
	GetEvent(id uint) (*entities.Event, error)
	CreateEvent(event *entities.Event) error
	UpdateEvent(id uint, update content.EventUpdate) (*entities.Event, error)
	DeleteEvent(id uint) error
}

type NewsStore interface {
	ListNews(publishedOnly bool, page content.Page) ([]entities.News, int64, error)
	GetNews(id uint) (*entities.News, error)
	CreateNews(news *entities.News) error
	UpdateNews(id uint, update content.NewsUpdate) (*entities.News, error)
	DeleteNews(id uint) error
}

type ContactStore interface {
	CreateContact(msg *entities.ContactMessage) error
	GetContact(id uint) (*entities.ContactMessage, error)
	ListContacts(unreadOnly bool, page content.Page) ([]entities.ContactMessage, int64, error)
	MarkContactRead(id uint) (*entities.ContactMessage, error)
	DeleteContact(id uint) error
}

type NewsletterStore interface {
	Subscribe(email, name string) (*entities.NewsletterSubscriber, error)
	Unsubscribe(token string) (*entities.NewsletterSubscriber, error)
	ListSubscribers(activeOnly bool, page content.Page) ([]entities.NewsletterSubscriber, int64, error)
}

type UserStore interface {
	ListUsers() ([]entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	UpdateUser(id uint, update users.Update) (*entities.User, error)
	CountActiveAdmins() (int64, error)
	DeleteUser(id uint) error
}

// ContactNotifier sends the acknowledgement for a stored contact message.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, contactID uint)
}

// ActivityRecorder is the best-effort activity sink.
type ActivityRecorder interface {
	Record(e activity.Entry)
}

// ActivityReader lists recorded activity.
type ActivityReader interface {
	List(filter dbactivity.Filter) ([]entities.ActivityLog, int64, error)
}

// Guards are the access checks applied to route groups.
type Guards struct {
	Auth  gin.HandlerFunc // Any authenticated caller
	Staff gin.HandlerFunc // Staff or admin
	Admin gin.HandlerFunc // Admin only
}

// NewGuards builds the guards from the auth middleware.
func NewGuards(m *auth.Middleware) Guards {
	return Guards{
		Auth:  m.RequireAuth(),
		Staff: m.RequireRole(entities.UserRoleAdmin, entities.UserRoleStaff),
		Admin: m.RequireRole(entities.UserRoleAdmin),
	}
}

// recordActivity fills the caller and client IP and hands the entry to rec.
func recordActivity(c *gin.Context, rec ActivityRecorder, e activity.Entry) {
	if rec == nil {
		return
	}
	if e.UserID == nil {
		e.UserID = auth.ActorID(c)
	}
	e.IPAddress = c.ClientIP()
	rec.Record(e)
}

func idPtr(id uint) *uint {
	return &id
}
