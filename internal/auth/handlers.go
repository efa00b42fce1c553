package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// ActivityRecorder receives login and logout events.
type ActivityRecorder interface {
	LogAuth(userID *uint, action, ipAddr string, success bool)
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	tokens         *TokenIssuer
	sessionManager *SessionManager
	config         config.Auth
	rateLimiter    *RateLimiter
	recorder       ActivityRecorder
}

// NewAuthController creates a new authentication controller. sessionManager
// and recorder may be nil.
func NewAuthController(service *Service, tokens *TokenIssuer, sessionManager *SessionManager, recorder ActivityRecorder, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		tokens:         tokens,
		sessionManager: sessionManager,
		config:         cfg,
		rateLimiter:    NewRateLimiter(RateLimitConfigFromAuth(cfg)),
		recorder:       recorder,
	}
}

// RegisterRoutes registers authentication routes under group. requireAuth
// protects the routes that need a caller.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	group.GET("/auth/status", ac.Status)
	group.POST("/auth/login", ac.Login)
	group.POST("/auth/logout", ac.Logout)
	group.POST("/auth/setup", ac.Setup)
	group.GET("/auth/csrf", ac.CSRFToken)
	group.GET("/auth/me", requireAuth, ac.Me)
	group.POST("/auth/password", requireAuth, ac.ChangePassword)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"` // Username or email
	Password string `json:"password" binding:"required"`
}

type SetupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// LoginResponse carries the Bearer token. Browser clients may ignore it and
// rely on the session cookie set alongside.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// Status reports the auth mode and whether the first admin must be created.
func (ac *AuthController) Status(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to check users")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":           ac.service.GetAuthMode(),
		"setup_required": !hasUsers,
		"authenticated":  GetIdentity(c) != nil,
	})
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "login and password are required")
		return
	}
	clientIP := c.ClientIP()

	// Check rate limiting before attempting authentication
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Login); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"code":        "TOO_MANY_REQUESTS",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Login, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Login)
		ac.record(nil, "login", clientIP, false)

		switch {
		case errors.Is(err, ErrAccountLocked):
			errorJSON(c, http.StatusForbidden, "ACCOUNT_LOCKED", "account is locked, try again later")
		case errors.Is(err, ErrAccountDisabled):
			errorJSON(c, http.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled")
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
			errorJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
		default:
			errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "login failed")
		}
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Login)
	ac.startSession(c, user, http.StatusOK)
	ac.record(&user.ID, "login", clientIP, true)
}

// startSession issues a token, opens a cookie session and writes the response.
func (ac *AuthController) startSession(c *gin.Context, user *entities.User, status int) {
	token, expiresAt, err := ac.tokens.Issue(user)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to issue token")
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create session")
			return
		}
	}

	c.JSON(status, LoginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// Logout destroys the session. Bearer tokens stay valid until they expire.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	if id := GetIdentity(c); id != nil && id.UserID != DefaultUserID {
		ac.record(&id.UserID, "logout", c.ClientIP(), true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the caller identity and, for stored accounts, the profile.
func (ac *AuthController) Me(c *gin.Context) {
	id := GetIdentity(c)
	resp := gin.H{"identity": id}

	if id.UserID != DefaultUserID {
		user, err := ac.service.GetUserByID(id.UserID)
		if err != nil {
			errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists")
			return
		}
		resp["user"] = user
	}
	c.JSON(http.StatusOK, resp)
}

// Setup handles the initial admin user creation. It is only available while
// no user exists.
func (ac *AuthController) Setup(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "username, email and password are required")
		return
	}

	user, err := ac.service.SetupFirstAdmin(NewUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSetupCompleted), errors.Is(err, ErrUserExists):
			errorJSON(c, http.StatusConflict, "SETUP_COMPLETED", "setup has already been completed")
		case IsUserInputError(err):
			errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create user")
		}
		return
	}

	ac.startSession(c, user, http.StatusCreated)
	ac.record(&user.ID, "setup", c.ClientIP(), true)
}

// ChangePassword handles POST /api/auth/password for the caller's own account.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	id := GetIdentity(c)
	if id.UserID == DefaultUserID {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "no stored account when authentication is disabled")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "current_password and new_password are required")
		return
	}

	err := ac.service.ChangePassword(id.UserID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		ac.record(&id.UserID, "password_change", c.ClientIP(), true)
		c.JSON(http.StatusOK, gin.H{"message": "password changed"})
	case errors.Is(err, ErrInvalidPassword):
		ac.record(&id.UserID, "password_change", c.ClientIP(), false)
		errorJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "current password is incorrect")
	case IsUserInputError(err):
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrUserNotFound):
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists")
	default:
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to change password")
	}
}

// CSRFToken returns the token browser clients must echo in X-CSRF-Token.
// It is empty for requests without a session cookie.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
}

func (ac *AuthController) record(userID *uint, action, ip string, success bool) {
	if ac.recorder != nil {
		ac.recorder.LogAuth(userID, action, ip, success)
	}
}

// IsUserInputError reports whether err describes bad input rather than a
// storage failure.
func IsUserInputError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired, ErrUsernameInvalid,
		ErrEmailRequired, ErrEmailInvalid,
		ErrPasswordRequired, ErrPasswordTooShort, ErrPasswordTooLong,
		ErrInvalidRole,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
