package domain

import (
	"strings"
	"time"
)

// PrimordialAdministratorID identifies the seeded administrator, who can never be deleted.
const PrimordialAdministratorID int64 = 1

// UserRole represents what a user does in the lab
type UserRole string

const (
	UserRoleAdministrator UserRole = "ADMINISTRATOR"
	UserRoleTechnician    UserRole = "TECHNICIAN"
	UserRoleUser          UserRole = "USER"
)

// UserStatus represents whether an account may be used
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdministrator, UserRoleTechnician, UserRoleUser:
		return true
	}
	return false
}

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

type User struct {
	ID             int64      `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          *string    `json:"email,omitempty"`
	Role           UserRole   `json:"role"`
	Login          string     `json:"login"`
	CredentialHash string     `json:"-"`
	RegisteredAt   time.Time  `json:"registered_at"`
	Status         UserStatus `json:"status"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Normalize trims text fields; a blank email becomes no email.
func (u *User) Normalize() {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Login = strings.TrimSpace(u.Login)
	if u.Email != nil {
		e := strings.TrimSpace(*u.Email)
		if e == "" {
			u.Email = nil
		} else {
			u.Email = &e
		}
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

func (u *User) Validate() error {
	if u.FirstName == "" {
		return NewValidationError("first_name", "is required")
	}
	if u.Login == "" {
		return NewValidationError("login", "is required")
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "unknown role")
	}
	if !u.Status.Valid() {
		return NewValidationError("status", "unknown status")
	}
	return nil
}

// CanBeDeleted guards the primordial administrator.
func (u *User) CanBeDeleted() error {
	if u.ID == PrimordialAdministratorID {
		return &ForbiddenOperationError{Reason: "the primordial administrator cannot be deleted"}
	}
	return nil
}

// UserFilter represents filters for listing users
type UserFilter struct {
	Role   *UserRole   `json:"role,omitempty"`
	Status *UserStatus `json:"status,omitempty"`
}
