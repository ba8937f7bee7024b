// internal/membership/implementation.go
package membership

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"biblioteca/internal/apperr"
	"biblioteca/internal/authz"
)

// loginFailedMsg is deliberately identical for unknown emails and wrong
// credentials so responses leak nothing about which one failed.
const loginFailedMsg = "invalid email or password"

// service implements the Service interface.
type service struct {
	store    UserStore
	sessions *SessionManager
	limiter  *rate.Limiter
	tracer   trace.Tracer
	logins   metric.Int64Counter
}

// NewService creates a new membership service instance.
func NewService(store UserStore, sessions *SessionManager) Service {
	meter := otel.Meter("biblioteca/membership")
	logins, err := meter.Int64Counter("membership.logins",
		metric.WithDescription("Successful logins"))
	if err != nil {
		log.Printf("failed to register login counter: %v", err)
	}

	return &service{
		store:    store,
		sessions: sessions,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 10),
		tracer:   otel.Tracer("biblioteca/membership"),
		logins:   logins,
	}
}

// Login authenticates a user by email and credential and mints a session.
func (s *service) Login(ctx context.Context, email, credential string) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "membership.login")
	defer span.End()

	if strings.TrimSpace(email) == "" {
		return nil, apperr.Validation("email", "must not be empty")
	}
	if credential == "" {
		return nil, apperr.Validation("password", "must not be empty")
	}

	if !s.limiter.Allow() {
		log.Printf("login rate limit exceeded for %s", email)
		return nil, apperr.Authentication("too many login attempts, try again later")
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperr.Authentication(loginFailedMsg)
	}

	if !user.Active {
		log.Printf("login attempt on inactive account: %s", email)
		return nil, apperr.Authentication("account is inactive")
	}

	ok, err := verifyCredential(credential, user.CredentialSalt, user.CredentialHash)
	if err != nil {
		return nil, apperr.Internal("failed to verify credential", err)
	}
	if !ok {
		log.Printf("wrong credential for %s", email)
		return nil, apperr.Authentication(loginFailedMsg)
	}

	session := s.sessions.Login(user)
	if err := s.store.Update(ctx, user); err != nil {
		s.sessions.Invalidate(session.Token)
		return nil, apperr.Internal("failed to record last access", err)
	}

	span.SetAttributes(attribute.String("user.role", string(user.Role)))
	if s.logins != nil {
		s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("role", string(user.Role))))
	}
	log.Printf("login succeeded: %s (%s)", user.Email, user.Role)

	return &LoginResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user.View(),
	}, nil
}

// Logout invalidates the session token. Unknown tokens are a no-op.
func (s *service) Logout(ctx context.Context, token string) {
	_, span := s.tracer.Start(ctx, "membership.logout")
	defer span.End()

	s.sessions.Invalidate(token)
}

// ValidateToken resolves a session token to its owning user, renewing
// the session on the way.
func (s *service) ValidateToken(ctx context.Context, token string) (*User, error) {
	ctx, span := s.tracer.Start(ctx, "membership.validate_token")
	defer span.End()

	session, err := s.sessions.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, apperr.Internal("failed to resolve session user", err)
	}
	if user == nil || !user.Active {
		// The account went away or was deactivated while the session
		// was live; the session must not outlive it.
		s.sessions.Invalidate(token)
		return nil, apperr.Authentication("session invalid or expired")
	}

	return user, nil
}

// CreateUser registers a new account on behalf of actor.
func (s *service) CreateUser(ctx context.Context, input NewUserInput, actor *User) (*UserView, error) {
	ctx, span := s.tracer.Start(ctx, "membership.create_user",
		trace.WithAttributes(attribute.String("actor.role", string(actor.Role))))
	defer span.End()

	if !authz.HasPermission(actor.Role, authz.PermCreateUser) {
		return nil, apperr.PermissionDenied("you do not have permission to create users")
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperr.Validation("email", "must not be empty")
	}
	if input.Credential == "" {
		return nil, apperr.Validation("password", "must not be empty")
	}
	role, ok := authz.ParseRole(strings.ToUpper(strings.TrimSpace(input.Role)))
	if !ok {
		return nil, apperr.Validation("role", "must be one of ADMIN, LIBRARIAN, MEMBER")
	}

	exists, err := s.store.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if exists {
		return nil, apperr.UserAlreadyExists(input.Email)
	}

	hash, salt, err := hashCredential(input.Credential)
	if err != nil {
		return nil, apperr.Internal("failed to hash credential", err)
	}

	user := &User{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(input.Name),
		Email:          strings.TrimSpace(input.Email),
		CredentialHash: hash,
		CredentialSalt: salt,
		Role:           role,
		Active:         true,
		CreatedAt:      time.Now(),
	}

	if err := s.store.Save(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperr.UserAlreadyExists(input.Email)
		}
		return nil, apperr.Internal("failed to save user", err)
	}

	log.Printf("user created: %s (%s) by %s", user.Email, user.Role, actor.Email)
	view := user.View()
	return &view, nil
}

// ListUsers returns sanitized views of every account.
func (s *service) ListUsers(ctx context.Context, actor *User) ([]UserView, error) {
	ctx, span := s.tracer.Start(ctx, "membership.list_users")
	defer span.End()

	if !authz.HasPermission(actor.Role, authz.PermListUsers) {
		return nil, apperr.PermissionDenied("you do not have permission to list users")
	}

	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Email < views[j].Email })
	return views, nil
}

// GetUser returns the sanitized view of a single account.
func (s *service) GetUser(ctx context.Context, id string, actor *User) (*UserView, error) {
	ctx, span := s.tracer.Start(ctx, "membership.get_user")
	defer span.End()

	if !authz.HasPermission(actor.Role, authz.PermListUsers) {
		return nil, apperr.PermissionDenied("you do not have permission to view users")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// UpdateUser applies the non-empty fields of patch to an account.
func (s *service) UpdateUser(ctx context.Context, id string, patch UserPatch, actor *User) (*UserView, error) {
	ctx, span := s.tracer.Start(ctx, "membership.update_user")
	defer span.End()

	if !authz.HasPermission(actor.Role, authz.PermEditUser) {
		return nil, apperr.PermissionDenied("you do not have permission to edit users")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(patch.Email); email != "" && !strings.EqualFold(email, user.Email) {
		exists, err := s.store.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, apperr.Internal("failed to check email", err)
		}
		if exists {
			return nil, apperr.UserAlreadyExists(email)
		}
		user.Email = email
	}
	if patch.Credential != "" {
		hash, salt, err := hashCredential(patch.Credential)
		if err != nil {
			return nil, apperr.Internal("failed to hash credential", err)
		}
		user.CredentialHash = hash
		user.CredentialSalt = salt
	}

	if err := s.store.Update(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperr.UserAlreadyExists(user.Email)
		}
		return nil, apperr.Internal("failed to update user", err)
	}

	log.Printf("user updated: %s by %s", user.ID, actor.Email)
	view := user.View()
	return &view, nil
}

// DeactivateUser flips the account inactive (soft delete).
func (s *service) DeactivateUser(ctx context.Context, id string, actor *User) error {
	return s.setActive(ctx, "membership.deactivate_user", id, actor, false)
}

// ActivateUser flips the account active again.
func (s *service) ActivateUser(ctx context.Context, id string, actor *User) error {
	return s.setActive(ctx, "membership.activate_user", id, actor, true)
}

func (s *service) setActive(ctx context.Context, op, id string, actor *User, active bool) error {
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	if !authz.HasPermission(actor.Role, authz.PermEditUser) {
		return apperr.PermissionDenied("you do not have permission to edit users")
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	user.Active = active
	if err := s.store.Update(ctx, user); err != nil {
		return apperr.Internal("failed to update user", err)
	}

	log.Printf("user %s set active=%t by %s", user.ID, active, actor.Email)
	return nil
}

// RemoveUser deletes the account.
func (s *service) RemoveUser(ctx context.Context, id string, actor *User) error {
	ctx, span := s.tracer.Start(ctx, "membership.remove_user")
	defer span.End()

	if !authz.HasPermission(actor.Role, authz.PermDeleteUser) {
		return apperr.PermissionDenied("you do not have permission to delete users")
	}

	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}

	if err := s.store.Remove(ctx, id); err != nil {
		return apperr.Internal("failed to remove user", err)
	}

	log.Printf("user removed: %s by %s", id, actor.Email)
	return nil
}

func (s *service) findUser(ctx context.Context, id string) (*User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperr.UserNotFound(id)
	}
	return user, nil
}
