package auth

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
)

func TestService_CreateUser(t *testing.T) {
	svc, _ := setupTestService(t)

	tests := []struct {
		name    string
		in      NewUser
		wantErr error
	}{
		{
			name:    "valid admin user",
			in:      NewUser{Username: "admin", Email: "Admin@Example.com", Password: testPassword, Role: entities.UserRoleAdmin},
			wantErr: nil,
		},
		{
			name:    "role defaults to staff",
			in:      NewUser{Username: "clerk", Email: "clerk@example.com", Password: testPassword},
			wantErr: nil,
		},
		{
			name:    "missing username",
			in:      NewUser{Email: "test@example.com", Password: testPassword},
			wantErr: ErrUsernameRequired,
		},
		{
			name:    "missing email",
			in:      NewUser{Username: "testuser", Password: testPassword},
			wantErr: ErrEmailRequired,
		},
		{
			name:    "missing password",
			in:      NewUser{Username: "testuser", Email: "test@example.com"},
			wantErr: ErrPasswordRequired,
		},
		{
			name:    "password too short",
			in:      NewUser{Username: "testuser", Email: "test@example.com", Password: "short"},
			wantErr: ErrPasswordTooShort,
		},
		{
			name:    "invalid username",
			in:      NewUser{Username: "a b", Email: "test@example.com", Password: testPassword},
			wantErr: ErrUsernameInvalid,
		},
		{
			name:    "invalid email",
			in:      NewUser{Username: "testuser", Email: "not-an-email", Password: testPassword},
			wantErr: ErrEmailInvalid,
		},
		{
			name:    "invalid role",
			in:      NewUser{Username: "testuser", Email: "test@example.com", Password: testPassword, Role: "viewer"},
			wantErr: ErrInvalidRole,
		},
		{
			name:    "duplicate username",
			in:      NewUser{Username: "admin", Email: "other@example.com", Password: testPassword},
			wantErr: ErrUserExists,
		},
		{
			name:    "duplicate email ignores case",
			in:      NewUser{Username: "other", Email: "ADMIN@example.com", Password: testPassword},
			wantErr: ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.CreateUser(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.True(t, user.Active)
			assert.NotEqual(t, tt.in.Password, user.PasswordHash)
		})
	}
}

func TestService_CreateUser_StoredFields(t *testing.T) {
	svc, db := setupTestService(t)

	_, err := svc.CreateUser(NewUser{Username: "clerk", Email: " Clerk@Example.com ", FullName: " Jo Clerk ", Password: testPassword})
	require.NoError(t, err)

	stored, err := users.NewRepository(db.DB).GetUserByUsername("clerk")
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", stored.Email)
	assert.Equal(t, "Jo Clerk", stored.FullName)
	assert.Equal(t, entities.UserRoleStaff, stored.Role)
	assert.True(t, stored.Active)
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := setupTestService(t)
	created := mustCreateUser(t, svc, "admin", entities.UserRoleAdmin)

	t.Run("by username", func(t *testing.T) {
		user, err := svc.Authenticate("admin", testPassword)
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		require.NotNil(t, user.LastLoginAt)
	})

	t.Run("by email ignoring case", func(t *testing.T) {
		user, err := svc.Authenticate("ADMIN@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("admin", "wrong-password-123")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate("nobody", testPassword)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("empty login", func(t *testing.T) {
		_, err := svc.Authenticate("  ", testPassword)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_Authenticate_Lockout(t *testing.T) {
	svc, db := setupTestService(t)
	user := mustCreateUser(t, svc, "admin", entities.UserRoleAdmin)

	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// MaxLoginAttempts is 3 in the test config
	for i := 0; i < 3; i++ {
		_, err := svc.Authenticate("admin", "wrong-password-123")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	}

	_, err := svc.Authenticate("admin", testPassword)
	assert.ErrorIs(t, err, ErrAccountLocked, "correct password is refused while locked")

	stored, err := users.NewRepository(db.DB).GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.FailedLoginCount)
	require.NotNil(t, stored.LockedUntil)

	// lockout expires after LockoutDuration
	now = now.Add(2 * time.Minute)
	_, err = svc.Authenticate("admin", testPassword)
	require.NoError(t, err)

	stored, err = users.NewRepository(db.DB).GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FailedLoginCount)
	assert.Nil(t, stored.LockedUntil)
}

func TestService_Authenticate_Disabled(t *testing.T) {
	svc, db := setupTestService(t)
	user := mustCreateUser(t, svc, "clerk", entities.UserRoleStaff)

	inactive := false
	_, err := users.NewRepository(db.DB).UpdateUser(user.ID, users.Update{Active: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate("clerk", testPassword)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestService_SetupFirstAdmin(t *testing.T) {
	svc, _ := setupTestService(t)

	hasUsers, err := svc.HasUsers()
	require.NoError(t, err)
	assert.False(t, hasUsers)

	// role in the request is ignored
	user, err := svc.SetupFirstAdmin(NewUser{Username: "owner", Email: "owner@example.com", Password: testPassword, Role: entities.UserRoleMember})
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)

	_, err = svc.SetupFirstAdmin(NewUser{Username: "second", Email: "second@example.com", Password: testPassword})
	assert.ErrorIs(t, err, ErrSetupCompleted)
}

func TestService_SetupFirstAdmin_Concurrent(t *testing.T) {
	svc, _ := setupTestService(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "owner" + string(rune('a'+i))
			_, err := svc.SetupFirstAdmin(NewUser{Username: name, Email: name + "@example.com", Password: testPassword})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else if !errors.Is(err, ErrSetupCompleted) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestService_ChangePassword(t *testing.T) {
	svc, _ := setupTestService(t)
	user := mustCreateUser(t, svc, "admin", entities.UserRoleAdmin)

	err := svc.ChangePassword(user.ID, "wrong-password-123", "brand-new-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	err = svc.ChangePassword(user.ID, testPassword, "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(user.ID, testPassword, "brand-new-password"))

	_, err = svc.Authenticate("admin", testPassword)
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = svc.Authenticate("admin", "brand-new-password")
	assert.NoError(t, err)

	err = svc.ChangePassword(9999, testPassword, "brand-new-password")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_AuthMode(t *testing.T) {
	local := NewService(nil, config.Auth{Mode: config.AuthModeLocal})
	assert.True(t, local.IsAuthEnabled())
	assert.Equal(t, config.AuthModeLocal, local.GetAuthMode())

	none := NewService(nil, config.Auth{Mode: config.AuthModeNone})
	assert.False(t, none.IsAuthEnabled())
}
