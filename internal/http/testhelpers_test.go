package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// Wednesday 5 March 2025, 10:00 UTC
var fixedNow = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

const (
	nextMonday = "2025-03-10"
	nextSunday = "2025-03-09"
)

var (
	adminIdentity  = &auth.Identity{UserID: 1, Email: "admin@center.test", Role: entities.UserRoleAdmin, AuthType: auth.AuthTypeBearer}
	staffIdentity  = &auth.Identity{UserID: 2, Email: "staff@center.test", Role: entities.UserRoleStaff, AuthType: auth.AuthTypeBearer}
	memberIdentity = &auth.Identity{UserID: 3, Email: "alice@example.com", Role: entities.UserRoleMember, AuthType: auth.AuthTypeBearer}
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// testGuards uses a local-mode middleware; only its Require* checks run.
func testGuards() Guards {
	return NewGuards(auth.NewMiddleware(nil, nil, nil, config.Auth{Mode: config.AuthModeLocal}))
}

// newTestRouter mounts routes under /api with identity attached to every
// request. A nil identity is an anonymous caller.
func newTestRouter(identity *auth.Identity, register func(api *gin.RouterGroup, g Guards)) *gin.Engine {
	RegisterValidators()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if identity != nil {
			copied := *identity
			c.Set(auth.ContextKeyIdentity, &copied)
		}
		c.Next()
	})
	register(router.Group("/api"), testGuards())
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// fakeRecorder collects activity entries synchronously.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (r *fakeRecorder) Record(e activity.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *fakeRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *fakeRecorder) last() activity.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

// seedUser inserts an account so foreign keys on actor ids hold, and returns
// an identity for it.
func seedUser(t *testing.T, db *database.Database, username string, role entities.UserRole) *auth.Identity {
	t.Helper()
	user := &entities.User{
		Username: username,
		Email:    username + "@center.test",
		Role:     role,
		Active:   true,
	}
	require.NoError(t, db.DB.Create(user).Error)
	return &auth.Identity{UserID: user.ID, Email: user.Email, Role: role, AuthType: auth.AuthTypeBearer}
}

func seedBook(t *testing.T, db *database.Database, title string, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:           title,
		TotalCopies:     copies,
		CopiesAvailable: copies,
		Status:          entities.BookStatusAvailable,
	}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// validationErrorResponse mirrors ErrorResponse with Details decoded as the
// field->tag map produced by validationDetails.
type validationErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
