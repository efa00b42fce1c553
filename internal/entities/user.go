package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"  // Full access, manages accounts and settings
	UserRoleStaff  UserRole = "staff"  // Manages catalog, reservations and content
	UserRoleMember UserRole = "member" // Sees only their own reservations
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleStaff, UserRoleMember:
		return true
	}
	return false
}

// IsPrivileged reports whether the role may act on other visitors' data.
func (r UserRole) IsPrivileged() bool {
	return r == UserRoleAdmin || r == UserRoleStaff
}

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Username         string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email            string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName         string         `gorm:"size:200" json:"full_name,omitempty"`
	PasswordHash     string         `gorm:"size:100" json:"-"`
	Role             UserRole       `gorm:"size:20;not null;default:'staff'" json:"role"`
	Active           bool           `gorm:"not null" json:"active"`
	FailedLoginCount int            `gorm:"not null;default:0" json:"-"`
	LockedUntil      *time.Time     `json:"-"`
	LastLoginAt      *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
