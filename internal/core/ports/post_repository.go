package ports

import (
	"context"
	"time"

	"github.com/inkwell/content-api/internal/core/domain"
)

// PostUpdate carries the partial field set applied by an update. Nil fields
// are left untouched. The author reference is deliberately absent: ownership
// is immutable.
type PostUpdate struct {
	Title       *string
	Content     *string
	Status      *domain.PostStatus
	PublishedAt *time.Time // set only when the service stamps a first publish
	UpdatedAt   time.Time
}

// ListPublishedFilter carries query parameters for the public listing.
// Only published posts are ever matched; the repository enforces that.
type ListPublishedFilter struct {
	Search string // optional: text-relevance match over title + content
	Page   int    // 1-based
	Limit  int    // rows per page, bounded by the request boundary
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) (*domain.Post, error)
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	// ListByAuthor returns posts scoped to one author. An empty authorID
	// returns all posts (admin listing).
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error)
	// Update applies the partial update and returns the post as stored
	// afterwards. Returns domain.ErrPostNotFound when the id does not exist.
	Update(ctx context.Context, id string, upd PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
	// ListPublished returns one page of published posts sorted by
	// published_at descending, plus the total match count.
	ListPublished(ctx context.Context, filter ListPublishedFilter) ([]*domain.Post, int64, error)
}
