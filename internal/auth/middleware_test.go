package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
)

func setupMiddlewareRouter(t *testing.T, mode config.AuthMode) (*gin.Engine, *Service, *TokenIssuer, *users.Repository) {
	t.Helper()
	svc, db := setupTestService(t)
	cfg := testConfig()
	cfg.Mode = mode
	tokens := NewTokenIssuer(testSecret, cfg.TokenTTL)
	m := NewMiddleware(svc, tokens, nil, cfg)

	router := gin.New()
	router.Use(m.Handler())
	router.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"identity": GetIdentity(c)})
	})
	router.GET("/protected", m.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.GET("/admin", m.RequireRole(entities.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/staff", m.RequireRole(entities.UserRoleAdmin, entities.UserRoleStaff), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router, svc, tokens, users.NewRepository(db.DB)
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_Anonymous(t *testing.T) {
	router, _, _, _ := setupMiddlewareRouter(t, config.AuthModeLocal)

	rr := get(router, "/public", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"identity":null}`, rr.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(router, "/protected", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/admin", "").Code)
}

func TestMiddleware_Bearer(t *testing.T) {
	router, svc, tokens, _ := setupMiddlewareRouter(t, config.AuthModeLocal)
	staff := mustCreateUser(t, svc, "clerk", entities.UserRoleStaff)

	token, _, err := tokens.Issue(staff)
	require.NoError(t, err)

	rr := get(router, "/protected", token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"user_id":`)

	assert.Equal(t, http.StatusOK, get(router, "/staff", token).Code)
	assert.Equal(t, http.StatusForbidden, get(router, "/admin", token).Code)
}

func TestMiddleware_InvalidBearerIsRejected(t *testing.T) {
	router, _, _, _ := setupMiddlewareRouter(t, config.AuthModeLocal)

	// even on a public route a bad token is an error, not anonymous access
	rr := get(router, "/public", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNAUTHORIZED")
}

func TestMiddleware_DisabledUserLosesAccess(t *testing.T) {
	router, svc, tokens, repo := setupMiddlewareRouter(t, config.AuthModeLocal)
	staff := mustCreateUser(t, svc, "clerk", entities.UserRoleStaff)
	token, _, err := tokens.Issue(staff)
	require.NoError(t, err)

	inactive := false
	_, err = repo.UpdateUser(staff.ID, users.Update{Active: &inactive})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/protected", token).Code)
}

func TestMiddleware_RoleComesFromDatabase(t *testing.T) {
	router, svc, tokens, repo := setupMiddlewareRouter(t, config.AuthModeLocal)
	user := mustCreateUser(t, svc, "clerk", entities.UserRoleAdmin)
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	// demoted after the token was issued
	member := entities.UserRoleMember
	_, err = repo.UpdateUser(user.ID, users.Update{Role: &member})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(router, "/admin", token).Code)
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	router, _, _, _ := setupMiddlewareRouter(t, config.AuthModeNone)

	assert.Equal(t, http.StatusOK, get(router, "/protected", "").Code)
	assert.Equal(t, http.StatusOK, get(router, "/admin", "").Code)

	rr := get(router, "/public", "")
	assert.Contains(t, rr.Body.String(), `"role":"admin"`)
	assert.Contains(t, rr.Body.String(), `"auth_type":"none"`)
}

func TestIdentityHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetIdentity(c))
	assert.Equal(t, DefaultUserID, GetUserID(c))
	assert.Equal(t, entities.UserRole(""), GetUserRole(c))
	assert.Equal(t, AuthType(""), GetAuthType(c))
	assert.Nil(t, ActorID(c))

	c.Set(ContextKeyIdentity, &Identity{UserID: 7, Role: entities.UserRoleStaff, AuthType: AuthTypeSession})
	assert.Equal(t, uint(7), GetUserID(c))
	assert.Equal(t, entities.UserRoleStaff, GetUserRole(c))
	assert.Equal(t, AuthTypeSession, GetAuthType(c))
	require.NotNil(t, ActorID(c))
	assert.Equal(t, uint(7), *ActorID(c))
	assert.True(t, GetIdentity(c).IsPrivileged())

	// auth disabled has no stored account to blame
	c.Set(ContextKeyIdentity, &Identity{UserID: DefaultUserID, Role: entities.UserRoleAdmin, AuthType: AuthTypeNone})
	assert.Nil(t, ActorID(c))
}

func TestIdentity_Roles(t *testing.T) {
	var anon *Identity
	assert.False(t, anon.IsPrivileged())
	assert.False(t, anon.HasRole(entities.UserRoleAdmin))

	member := &Identity{Role: entities.UserRoleMember}
	assert.False(t, member.IsPrivileged())
	assert.True(t, member.HasRole(entities.UserRoleMember, entities.UserRoleStaff))
	assert.False(t, member.HasRole(entities.UserRoleAdmin))
}
