// internal/membership/service.go
package membership

import (
	"context"
)

// Service defines the interface for authentication and permission-gated
// user administration.
type Service interface {
	Login(ctx context.Context, email, credential string) (*LoginResult, error)
	Logout(ctx context.Context, token string)
	ValidateToken(ctx context.Context, token string) (*User, error)

	CreateUser(ctx context.Context, input NewUserInput, actor *User) (*UserView, error)
	ListUsers(ctx context.Context, actor *User) ([]UserView, error)
	GetUser(ctx context.Context, id string, actor *User) (*UserView, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch, actor *User) (*UserView, error)
	DeactivateUser(ctx context.Context, id string, actor *User) error
	ActivateUser(ctx context.Context, id string, actor *User) error
	RemoveUser(ctx context.Context, id string, actor *User) error
}
