// internal/membership/domain.go
package membership

import (
	"time"

	"biblioteca/internal/authz"
)

// User is an identity record. The credential hash and salt never leave
// this package; every outward-facing representation goes through View.
type User struct {
	ID             string
	Name           string
	Email          string
	CredentialHash string
	CredentialSalt string
	Role           authz.Role
	Active         bool
	CreatedAt      time.Time
	LastAccessAt   time.Time
}

// UserView is the sanitized representation returned by every service
// operation. It carries no credential material.
type UserView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         authz.Role `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastAccessAt time.Time  `json:"last_access_at,omitzero"`
}

// View strips the credential fields from a user record.
func (u *User) View() UserView {
	return UserView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		LastAccessAt: u.LastAccessAt,
	}
}

// NewUserInput carries the fields needed to create an account.
type NewUserInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Credential string `json:"password"`
	Role       string `json:"role"`
}

// UserPatch carries a partial update; empty fields are left untouched.
type UserPatch struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Credential string `json:"password"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}
