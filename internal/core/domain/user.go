package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an account. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        *string   `json:"phone,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Name is the display name used by clients.
func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdminList is the set of addresses granted the admin role when an account
// or client session is created.
type AdminList []string

// Contains matches case-insensitively.
func (l AdminList) Contains(email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	for _, a := range l {
		if NormalizeEmail(a) == email {
			return true
		}
	}
	return false
}

// RoleFor returns RoleAdmin for allow-listed addresses and RoleUser otherwise.
func (l AdminList) RoleFor(email string) string {
	if l.Contains(email) {
		return RoleAdmin
	}
	return RoleUser
}
