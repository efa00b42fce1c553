package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// Context keys for user data
const (
	ContextKeyIdentity = "auth_identity"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none" // Auth disabled
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// DefaultUserID is used when authentication is disabled
const DefaultUserID = uint(0)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   uint              `json:"id"`
	Email    string            `json:"email"`
	Role     entities.UserRole `json:"role"`
	AuthType AuthType          `json:"auth_type"`
}

// IsPrivileged reports whether the caller may act on any visitor's data.
func (i *Identity) IsPrivileged() bool {
	return i != nil && i.Role.IsPrivileged()
}

// HasRole reports whether the caller holds one of the roles.
func (i *Identity) HasRole(roles ...entities.UserRole) bool {
	if i == nil {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service        *Service
	tokens         *TokenIssuer
	sessionManager *SessionManager
	config         config.Auth
}

// NewMiddleware creates a new authentication middleware. sessionManager may
// be nil when only Bearer tokens are accepted.
func NewMiddleware(service *Service, tokens *TokenIssuer, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		tokens:         tokens,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// Handler returns a Gin middleware that resolves the caller identity. It never
// rejects anonymous requests; route groups add RequireAuth or RequireRole.
// A Bearer token that is present but invalid is rejected with 401.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

// noAuthHandler treats every caller as the administrator.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyIdentity, &Identity{
			UserID:   DefaultUserID,
			Role:     entities.UserRoleAdmin,
			AuthType: AuthTypeNone,
		})
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			user, err := m.bearerUser(token)
			if err != nil {
				message := "invalid token"
				if errors.Is(err, ErrTokenExpired) {
					message = "token expired"
				}
				abort(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
				return
			}
			setIdentity(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			setIdentity(c, user, AuthTypeSession)
		}
		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// bearerUser validates the token and reloads the user so that disabled or
// deleted accounts lose access before their token expires.
func (m *Middleware) bearerUser(token string) (*entities.User, error) {
	if m.tokens == nil {
		return nil, ErrInvalidToken
	}
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := m.service.GetUserByID(id)
	if err != nil || !user.Active {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// trySessionAuth attempts to authenticate using session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(userID)
	if err != nil || !user.Active {
		return nil
	}

	return user
}

func setIdentity(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyIdentity, &Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		AuthType: authType,
	})
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

// RequireAuth returns a middleware that requires an authenticated caller.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that requires one of the given roles.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if !id.HasRole(roles...) {
			abort(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}
		c.Next()
	}
}

// Helper functions to extract auth data from Gin context

// GetIdentity returns the caller identity, or nil for anonymous requests.
func GetIdentity(c *gin.Context) *Identity {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns DefaultUserID (0) if not authenticated or auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id := GetIdentity(c); id != nil {
		return id.UserID
	}
	return DefaultUserID
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if id := GetIdentity(c); id != nil {
		return id.Role
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if id := GetIdentity(c); id != nil {
		return id.AuthType
	}
	return ""
}

// ActorID returns the user ID to record as the acting administrator, or nil
// when there is no stored account behind the request.
func ActorID(c *gin.Context) *uint {
	id := GetIdentity(c)
	if id == nil || id.UserID == DefaultUserID {
		return nil
	}
	uid := id.UserID
	return &uid
}
