package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/config"
)

// hstsMaxAge is one year, sent only when cookies are marked secure.
const hstsMaxAge = 31536000

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	// Sessions load first so CSRF and auth see the session context
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// CSRF only guards cookie-session requests
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.SessionManager))
	}

	// Without an auth middleware every caller is the administrator
	middleware := cfg.AuthMiddleware
	if middleware == nil {
		middleware = auth.NewMiddleware(nil, nil, nil, config.Auth{Mode: config.AuthModeNone})
	}
	router.Use(middleware.Handler())
	guards := NewGuards(middleware)

	var publicLimit gin.HandlerFunc
	if cfg.PublicRateLimiter != nil {
		publicLimit = cfg.PublicRateLimiter.Middleware()
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version).WithCenter(cfg.CenterName, cfg.TaskClient != nil)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")
	api.GET("/health", health.Status)

	// Register auth routes if auth is enabled
	if cfg.AuthController != nil && cfg.AuthConfig.Mode != config.AuthModeNone {
		cfg.AuthController.RegisterRoutes(api, guards.Auth)
	}

	if cfg.Admitter != nil && cfg.Lifecycle != nil && cfg.Reservations != nil {
		NewReservationsController(cfg.Admitter, cfg.Lifecycle, cfg.Reservations, recorder(cfg)).
			RegisterRoutes(api, guards, publicLimit)
	}

	if cfg.Books != nil {
		NewBooksController(cfg.Books, recorder(cfg)).RegisterRoutes(api, guards)
	}
	if cfg.Authors != nil {
		NewAuthorsController(cfg.Authors, recorder(cfg)).RegisterRoutes(api, guards)
	}
	if cfg.Categories != nil {
		NewCategoriesController(cfg.Categories, recorder(cfg)).RegisterRoutes(api, guards)
	}

	if cfg.Groups != nil {
		NewGroupsController(cfg.Groups, recorder(cfg)).RegisterRoutes(api, guards)
	}
	if cfg.Events != nil {
		NewEventsController(cfg.Events, recorder(cfg)).RegisterRoutes(api, guards)
	}
	if cfg.News != nil {
		NewNewsController(cfg.News, recorder(cfg)).RegisterRoutes(api, guards)
	}
	if cfg.Contacts != nil {
		NewContactsController(cfg.Contacts, cfg.ContactNotifier, recorder(cfg)).RegisterRoutes(api, guards, publicLimit)
	}
	if cfg.Newsletter != nil {
		NewNewsletterController(cfg.Newsletter).RegisterRoutes(api, guards, publicLimit)
	}

	if cfg.Settings != nil {
		var settingsRecorder SettingsRecorder
		if cfg.Activity != nil {
			settingsRecorder = cfg.Activity
		}
		NewSettingsController(cfg.Settings, settingsRecorder).RegisterRoutes(api, guards)
	}

	if cfg.Users != nil && cfg.AuthService != nil {
		NewUsersController(cfg.AuthService, cfg.Users, recorder(cfg)).RegisterRoutes(api, guards)
	}

	if cfg.Activity != nil {
		NewActivityController(cfg.Activity).RegisterRoutes(api, guards)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		NewTasksController(cfg.TaskClient, cfg.Jobs).RegisterRoutes(api, guards)
	}

	return router
}

// recorder avoids handing controllers a non-nil interface around a nil
// service.
func recorder(cfg RouterConfig) ActivityRecorder {
	if cfg.Activity == nil {
		return nil
	}
	return cfg.Activity
}
