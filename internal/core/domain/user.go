package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	// RoleGuest is the sentinel role for unauthenticated callers. It is never
	// persisted; it only appears in Caller identities on public routes.
	RoleGuest = "guest"
)

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
