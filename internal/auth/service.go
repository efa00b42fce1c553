package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrAuthRequired     = errors.New("authentication required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrAccountDisabled  = errors.New("account is disabled")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrSetupCompleted   = errors.New("an administrator already exists")
	ErrLastAdmin        = errors.New("cannot remove the last active administrator")
)

// UserRepository is the storage the service needs.
type UserRepository interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByUsername(username string) (*entities.User, error)
	GetUserByEmail(email string) (*entities.User, error)
	CountUsers() (int64, error)
	UpdatePassword(id uint, hash string) error
	RecordLoginSuccess(id uint, at time.Time) error
	RecordLoginFailure(id uint, lockUntil *time.Time) (int, error)
}

var _ UserRepository = (*users.Repository)(nil)

// NewUser describes an account to create.
type NewUser struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     entities.UserRole
}

// Service handles authentication and user management.
type Service struct {
	users  UserRepository
	config config.Auth
	now    func() time.Time

	// setupMu serializes first-admin setup so two concurrent requests cannot
	// both see an empty user table.
	setupMu sync.Mutex
}

// NewService creates a new authentication service.
func NewService(repo UserRepository, cfg config.Auth) *Service {
	return &Service{
		users:  repo,
		config: cfg,
		now:    time.Now,
	}
}

// CreateUser creates a new active user with password authentication.
func (s *Service) CreateUser(in NewUser) (*entities.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}

	// Validate username format: 3-64 chars, alphanumeric + underscore/hyphen
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	// Validate email format and length (RFC 5321 limit is 254)
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	role := in.Role
	if role == "" {
		role = entities.UserRoleStaff
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.CreateUser(user); err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// SetupFirstAdmin creates the initial administrator. It fails with
// ErrSetupCompleted once any user exists.
func (s *Service) SetupFirstAdmin(in NewUser) (*entities.User, error) {
	s.setupMu.Lock()
	defer s.setupMu.Unlock()

	hasUsers, err := s.HasUsers()
	if err != nil {
		return nil, err
	}
	if hasUsers {
		return nil, ErrSetupCompleted
	}

	in.Role = entities.UserRoleAdmin
	return s.CreateUser(in)
}

// Authenticate validates credentials and returns the user. login is either
// the username or the email address. Accounts are locked after
// MaxLoginAttempts consecutive failures.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.lookup(login)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user, now)
		return nil, err
	}

	if err := s.users.RecordLoginSuccess(user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	return user, nil
}

func (s *Service) lookup(login string) (*entities.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, ErrUserNotFound
	}

	var (
		user *entities.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.users.GetUserByEmail(login)
	} else {
		user, err = s.users.GetUserByUsername(login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// recordFailedLogin increments the failed login counter and locks the account if threshold reached.
func (s *Service) recordFailedLogin(user *entities.User, now time.Time) {
	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var lockUntil *time.Time
	if user.FailedLoginCount+1 >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		until := now.Add(lockoutDuration)
		lockUntil = &until
	}

	count, err := s.users.RecordLoginFailure(user.ID, lockUntil)
	if err != nil {
		return
	}
	user.FailedLoginCount = count
	user.LockedUntil = lockUntil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	return s.SetPassword(userID, newPassword)
}

// SetPassword replaces a user's password without checking the old one.
func (s *Service) SetPassword(userID uint, newPassword string) error {
	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(userID, newHash)
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode != config.AuthModeNone
}

// GetAuthMode returns the current authentication mode.
func (s *Service) GetAuthMode() config.AuthMode {
	return s.config.Mode
}
