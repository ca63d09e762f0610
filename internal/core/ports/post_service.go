package ports

import (
	"context"
	"time"

	"github.com/inkwell/content-api/internal/core/domain"
)

// CreatePostInput carries the data needed to create a post. The author is
// never part of the input; it is forced to the caller's id by the service.
type CreatePostInput struct {
	Title   string
	Content string
	Status  domain.PostStatus
}

// UpdatePostInput is the partial field set accepted by Update. The request
// boundary guarantees at least one field is present.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Status  *domain.PostStatus
}

// AuthorView is the display projection of a post's author. Email is only
// populated on owner/admin views.
type AuthorView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// PostView is the post as returned to callers, with the author populated
// for display.
type PostView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Author      AuthorView        `json:"author"`
	Status      domain.PostStatus `json:"status"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ListPublicInput carries the pre-validated public listing parameters
// (page >= 1, 1 <= limit <= 100).
type ListPublicInput struct {
	Page   int
	Limit  int
	Search string
}

// ListPublicResult is one page of published posts with pagination metadata.
type ListPublicResult struct {
	Posts      []PostView
	Page       int
	TotalPages int
	Total      int64
}

// PostService is the access-controlled content service. Every operation
// takes an explicit Caller; there is no ambient session state.
type PostService interface {
	Create(ctx context.Context, caller Caller, input CreatePostInput) (*PostView, error)
	// ListMine returns the caller's own posts for authors and all posts for
	// admins.
	ListMine(ctx context.Context, caller Caller) ([]PostView, error)
	// Get applies the draft visibility rule: published posts are readable by
	// anyone including guests; drafts only by their owner or an admin.
	Get(ctx context.Context, postID string, caller Caller) (*PostView, error)
	// Update applies a partial update. The returned bool reports whether
	// this update performed the draft to published transition (the publish
	// stamp was set); re-sending published or reverting to draft reports
	// false.
	Update(ctx context.Context, postID string, caller Caller, input UpdatePostInput) (*PostView, bool, error)
	Delete(ctx context.Context, postID string, caller Caller) error
	ListPublic(ctx context.Context, input ListPublicInput) (*ListPublicResult, error)
}
