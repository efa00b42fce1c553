package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
	dbactivity "github.com/mrlokans/readingcenter/internal/database/activity"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/database/content"
	dbreservations "github.com/mrlokans/readingcenter/internal/database/reservations"
	"github.com/mrlokans/readingcenter/internal/database/settings"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
	"github.com/mrlokans/readingcenter/internal/reservations"
)

func routerConfig(db *database.Database) RouterConfig {
	opts := []reservations.Option{
		reservations.WithClock(func() time.Time { return fixedNow }),
		reservations.WithLocation(time.UTC),
	}
	catalog := books.NewRepository(db.DB)
	site := content.NewRepository(db.DB)
	return RouterConfig{
		Database:     db,
		Activity:     activity.NewService(dbactivity.NewRepository(db.DB)),
		Admitter:     reservations.NewEngine(db.DB, opts...),
		Lifecycle:    reservations.NewManager(db.DB, opts...),
		Reservations: dbreservations.NewRepository(db.DB),
		Books:        catalog,
		Authors:      catalog,
		Categories:   catalog,
		Groups:       site,
		Events:       site,
		News:         site,
		Contacts:     site,
		Newsletter:   site,
		Settings:     settings.NewRepository(db.DB),
		Users:        users.NewRepository(db.DB),
		AuthConfig:   config.Auth{Mode: config.AuthModeNone},
		Version:      "test",
		CenterName:   "Reading Center",
	}
}

func serve(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouter_Wiring(t *testing.T) {
	db := setupTestDB(t)
	cfg := routerConfig(db)
	t.Cleanup(cfg.Activity.Wait)
	router := NewRouter(cfg)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/books", http.StatusOK},
		{http.MethodGet, "/api/authors", http.StatusOK},
		{http.MethodGet, "/api/categories", http.StatusOK},
		{http.MethodGet, "/api/groups", http.StatusOK},
		{http.MethodGet, "/api/events", http.StatusOK},
		{http.MethodGet, "/api/news", http.StatusOK},
		{http.MethodGet, "/api/settings/public", http.StatusOK},
		{http.MethodGet, "/api/reservations/stats", http.StatusOK},
		{http.MethodGet, "/api/admin/activity", http.StatusOK},
		// No account service, no task queue, no auth routes
		{http.MethodGet, "/api/admin/users", http.StatusNotFound},
		{http.MethodGet, "/api/admin/tasks/types", http.StatusNotFound},
		{http.MethodPost, "/api/auth/login", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, "", "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestNewRouter_SecurityHeaders(t *testing.T) {
	db := setupTestDB(t)
	router := NewRouter(routerConfig(db))

	w := serve(router, http.MethodGet, "/ping", "", "")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestNewRouter_RejectsUnknownFields(t *testing.T) {
	db := setupTestDB(t)
	book := seedBook(t, db, "Dune", 1)
	router := NewRouter(routerConfig(db))

	body := `{"book_id":` + itoa(book.ID) + `,"visitor_name":"Ann","visitor_email":"ann@example.com","desired_date":"2025-03-10","slot":"morning","priority":"high"}`
	w := serve(router, http.MethodPost, "/api/reservations", body, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), CodeValidation)
	assert.Contains(t, w.Body.String(), "priority")
}

func TestNewRouter_BearerAuth(t *testing.T) {
	db := setupTestDB(t)
	authCfg := config.Auth{Mode: config.AuthModeLocal, BcryptCost: 4, TokenTTL: time.Hour}
	userRepo := users.NewRepository(db.DB)
	service := auth.NewService(userRepo, authCfg)
	tokens := auth.NewTokenIssuer([]byte("router-test-secret-32-bytes-long!"), authCfg.TokenTTL)
	controller := auth.NewAuthController(service, tokens, nil, nil, authCfg)
	t.Cleanup(controller.Stop)

	_, err := service.CreateUser(auth.NewUser{Username: "desk", Email: "desk@center.test", Password: testPassword, Role: entities.UserRoleStaff})
	require.NoError(t, err)

	cfg := routerConfig(db)
	cfg.AuthConfig = authCfg
	cfg.AuthService = service
	cfg.AuthController = controller
	cfg.AuthMiddleware = auth.NewMiddleware(service, tokens, nil, authCfg)
	router := NewRouter(cfg)

	w := serve(router, http.MethodPost, "/api/auth/login", `{"login":"desk","password":"`+testPassword+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[auth.LoginResponse](t, w)
	require.NotEmpty(t, login.Token)

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/reservations/stats", "", "").Code)
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/books", "", "").Code)
	})

	t.Run("staff token", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/reservations/stats", "", login.Token).Code)
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/auth/me", "", login.Token).Code)
	})

	t.Run("staff is not admin", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/api/admin/users", "", login.Token).Code)
		assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPut, "/api/settings", `{"open_sunday":true}`, login.Token).Code)
	})

	t.Run("bad token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/books", "", "not-a-jwt").Code)
	})
}
