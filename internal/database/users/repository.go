// Package users provides database operations for administrator accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUsername("admin")
package users

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Update lists the profile fields an administrator may change.
type Update struct {
	Email    *string
	FullName *string
	Role     *entities.UserRole
	Active   *bool
}

// CreateUser inserts a user. Email is stored lower-cased.
func (r *Repository) CreateUser(user *entities.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = entities.UserRoleStaff
	}
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by username.
func (r *Repository) ListUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("username ASC").Find(&users).Error
	return users, err
}

// CountUsers returns the number of users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// CountActiveAdmins returns the number of active users with the admin role.
func (r *Repository) CountActiveAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("role = ? AND active = ?", entities.UserRoleAdmin, true).
		Count(&count).Error
	return count, err
}

// UpdateUser applies a partial profile update and returns the refreshed user.
func (r *Repository) UpdateUser(id uint, update Update) (*entities.User, error) {
	user, err := r.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Email != nil {
		changes["email"] = strings.ToLower(strings.TrimSpace(*update.Email))
	}
	if update.FullName != nil {
		changes["full_name"] = *update.FullName
	}
	if update.Role != nil {
		changes["role"] = *update.Role
	}
	if update.Active != nil {
		changes["active"] = *update.Active
	}
	if len(changes) > 0 {
		if err := r.db.Model(user).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return r.GetUserByID(id)
}

// UpdatePassword replaces the password hash and clears any lockout.
func (r *Repository) UpdatePassword(id uint, hash string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash":      hash,
		"failed_login_count": 0,
		"locked_until":       nil,
	}).Error
}

// RecordLoginSuccess resets the failure counter and stamps the login time.
func (r *Repository) RecordLoginSuccess(id uint, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"failed_login_count": 0,
		"locked_until":       nil,
		"last_login_at":      at,
	}).Error
}

// RecordLoginFailure increments the failure counter and, when lockUntil is
// set, locks the account until then. It returns the new failure count.
func (r *Repository) RecordLoginFailure(id uint, lockUntil *time.Time) (int, error) {
	var count int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.User{}).Where("id = ?", id).
			UpdateColumn("failed_login_count", gorm.Expr("failed_login_count + 1")).Error; err != nil {
			return err
		}
		if lockUntil != nil {
			if err := tx.Model(&entities.User{}).Where("id = ?", id).
				UpdateColumn("locked_until", *lockUntil).Error; err != nil {
				return err
			}
		}
		var user entities.User
		if err := tx.Select("failed_login_count").First(&user, id).Error; err != nil {
			return err
		}
		count = user.FailedLoginCount
		return nil
	})
	return count, err
}

// DeleteUser soft-deletes a user.
func (r *Repository) DeleteUser(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
