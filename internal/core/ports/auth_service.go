package ports

import (
	"context"

	"github.com/inkwell/content-api/internal/core/domain"
)

// Caller is the identity every content operation is authorized against:
// the {id, role} pair resolved from a token, or the guest sentinel.
type Caller struct {
	ID   string
	Role string
}

// Guest is the unauthenticated caller identity.
func Guest() Caller {
	return Caller{Role: domain.RoleGuest}
}

// IsGuest reports whether the caller is unauthenticated.
func (c Caller) IsGuest() bool {
	return c.ID == ""
}

// UserView is the public projection of a user (no password hash).
type UserView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthService registers and authenticates users and resolves tokens back to
// caller identities.
type AuthService interface {
	// Register creates an account and returns an issued token plus the
	// public user view. Fails with domain.ErrEmailTaken on duplicate email.
	Register(ctx context.Context, name, email, password, role string) (string, *UserView, error)
	// Login fails with domain.ErrInvalidCredentials for both unknown email
	// and wrong password; callers cannot distinguish the two.
	Login(ctx context.Context, email, password string) (string, *UserView, error)
	// ResolveCaller validates a raw bearer token and re-fetches its subject.
	// Fails with domain.ErrInvalidToken on a malformed/expired token and
	// domain.ErrUserNotFound when the subject no longer exists.
	ResolveCaller(ctx context.Context, token string) (Caller, *UserView, error)
	// CurrentUser returns the public view of an authenticated user.
	CurrentUser(ctx context.Context, userID string) (*UserView, error)
}
