package domain

import (
	"errors"
	"time"
)

// PostStatus represents the visibility state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

var ErrPostNotFound = errors.New("post not found")
var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already in use")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")
var ErrForbidden = errors.New("access forbidden")

// Post is the core content aggregate. Author is set at creation and is
// immutable for the lifetime of the post.
type Post struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	Title       string     `json:"title" bson:"title"`
	Content     string     `json:"content" bson:"content"`
	AuthorID    string     `json:"author_id" bson:"author_id"`
	Status      PostStatus `json:"status" bson:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty" bson:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// VisibleTo reports whether the post may be read by the given caller.
// Published posts are public; drafts are restricted to the owner or an admin.
func (p *Post) VisibleTo(callerID, role string) bool {
	if p.Status == StatusPublished {
		return true
	}
	return role == RoleAdmin || (callerID != "" && callerID == p.AuthorID)
}

// MutableBy reports whether the caller may update or delete the post.
func (p *Post) MutableBy(callerID, role string) bool {
	return role == RoleAdmin || (callerID != "" && callerID == p.AuthorID)
}
