// Package auth provides authentication and authorization for the staff side
// of the reading center.
//
// It supports two authentication modes:
//   - "none": No authentication required, every caller acts as an administrator
//   - "local": Local user database with session cookies for browsers and
//     JWT Bearer tokens for API clients
//
// # Configuration
//
// Set AUTH_MODE environment variable to select the mode:
//
//	AUTH_MODE=local  # Default, requires the first admin to be set up
//	AUTH_MODE=none   # Local development only
//
// For local mode, additional configuration:
//
//	AUTH_JWT_SECRET=<hex-32-bytes>         # Auto-generated if empty
//	AUTH_TOKEN_TTL=12h                     # Bearer token lifetime
//	AUTH_SESSION_LIFETIME=24h              # Session duration
//	AUTH_BCRYPT_COST=12                    # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	tokens := auth.NewTokenIssuer(secret, cfg.Auth.TokenTTL)
//	authMiddleware := auth.NewMiddleware(authService, tokens, sessions, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Public routes see an optional identity. Protected routes add
// RequireAuth or RequireRole:
//
//	staff := api.Group("", authMiddleware.RequireRole(entities.UserRoleAdmin, entities.UserRoleStaff))
//	id := auth.GetIdentity(c)
package auth
