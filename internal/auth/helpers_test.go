package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "correct-horse-battery"

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

func testConfig() config.Auth {
	return config.Auth{
		Mode:             config.AuthModeLocal,
		TokenTTL:         time.Hour,
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       4, // Low cost for faster tests
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupTestService(t *testing.T) (*Service, *database.Database) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(users.NewRepository(db.DB), testConfig()), db
}

func mustCreateUser(t *testing.T, svc *Service, username string, role entities.UserRole) *entities.User {
	t.Helper()
	user, err := svc.CreateUser(NewUser{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}
