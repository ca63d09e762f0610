package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

// PostService enforces the ownership and visibility rules around the post
// store. It holds no per-request state; every operation is authorized
// against the Caller passed in.
type PostService struct {
	posts  ports.PostRepository
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewPostService(posts ports.PostRepository, users ports.UserRepository, logger zerolog.Logger) *PostService {
	return &PostService{posts: posts, users: users, logger: logger}
}

// Create stores a new post owned by the caller. The author is always the
// caller's id; a post created as published gets its publish stamp now.
func (s *PostService) Create(ctx context.Context, caller ports.Caller, input ports.CreatePostInput) (*ports.PostView, error) {
	now := time.Now().UTC()
	post := &domain.Post{
		Title:     input.Title,
		Content:   input.Content,
		AuthorID:  caller.ID,
		Status:    input.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post.Status == "" {
		post.Status = domain.StatusDraft
	}
	if post.Status == domain.StatusPublished {
		published := now
		post.PublishedAt = &published
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", caller.ID).Msg("failed to create post")
		return nil, err
	}

	s.logger.Info().Str("post_id", created.ID).Str("author_id", caller.ID).Str("status", string(created.Status)).Msg("post created")

	return s.view(ctx, created, true)
}

// ListMine returns the caller's own posts for authors, or every post for
// admins. Author name and email are populated for display.
func (s *PostService) ListMine(ctx context.Context, caller ports.Caller) ([]ports.PostView, error) {
	authorID := caller.ID
	if caller.Role == domain.RoleAdmin {
		authorID = "" // admin listing is unscoped
	}

	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, posts, true)
}

// Get retrieves a single post. The draft visibility rule lives here and
// only here: published posts are readable by anyone including guests,
// drafts only by their owner or an admin.
func (s *PostService) Get(ctx context.Context, postID string, caller ports.Caller) (*ports.PostView, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.VisibleTo(caller.ID, caller.Role) {
		return nil, domain.ErrForbidden
	}

	return s.view(ctx, post, post.MutableBy(caller.ID, caller.Role))
}

// Update applies a partial update after the owner-or-admin check. A
// draft→published transition stamps published_at exactly once; re-sending
// published or reverting to draft leaves the stamp untouched. The returned
// bool reports whether this update set the stamp.
func (s *PostService) Update(ctx context.Context, postID string, caller ports.Caller, input ports.UpdatePostInput) (*ports.PostView, bool, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, false, err
	}

	if !post.MutableBy(caller.ID, caller.Role) {
		return nil, false, domain.ErrForbidden
	}

	upd := ports.PostUpdate{
		Title:     input.Title,
		Content:   input.Content,
		Status:    input.Status,
		UpdatedAt: time.Now().UTC(),
	}
	if input.Status != nil && *input.Status == domain.StatusPublished && post.Status != domain.StatusPublished {
		published := upd.UpdatedAt
		upd.PublishedAt = &published
	}

	updated, err := s.posts.Update(ctx, postID, upd)
	if err != nil {
		s.logger.Error().Err(err).Str("post_id", postID).Msg("failed to update post")
		return nil, false, err
	}

	published := upd.PublishedAt != nil
	if published {
		s.logger.Info().Str("post_id", postID).Str("caller_id", caller.ID).Msg("post published")
	}

	view, err := s.view(ctx, updated, true)
	if err != nil {
		return nil, false, err
	}
	return view, published, nil
}

// Delete removes a post after the owner-or-admin check. Hard delete, no
// cascade effects.
func (s *PostService) Delete(ctx context.Context, postID string, caller ports.Caller) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if !post.MutableBy(caller.ID, caller.Role) {
		return domain.ErrForbidden
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		s.logger.Error().Err(err).Str("post_id", postID).Msg("failed to delete post")
		return err
	}

	s.logger.Info().Str("post_id", postID).Str("caller_id", caller.ID).Msg("post deleted")
	return nil
}

// ListPublic returns a page of published posts, newest publish first.
// A page past the end yields an empty slice with correct totals.
func (s *PostService) ListPublic(ctx context.Context, input ports.ListPublicInput) (*ports.ListPublicResult, error) {
	posts, total, err := s.posts.ListPublished(ctx, ports.ListPublishedFilter{
		Search: input.Search,
		Page:   input.Page,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, posts, false)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(input.Limit) - 1) / int64(input.Limit))

	return &ports.ListPublicResult{
		Posts:      views,
		Page:       input.Page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// view builds the display projection for one post, resolving the author.
func (s *PostService) view(ctx context.Context, post *domain.Post, includeEmail bool) (*ports.PostView, error) {
	views, err := s.views(ctx, []*domain.Post{post}, includeEmail)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves author display fields for a batch of posts. A dangling
// author reference (user deleted after the post was created) is tolerated:
// the view keeps the id with no name.
func (s *PostService) views(ctx context.Context, posts []*domain.Post, includeEmail bool) ([]ports.PostView, error) {
	authors := make(map[string]*domain.User)
	out := make([]ports.PostView, 0, len(posts))

	for _, p := range posts {
		author, seen := authors[p.AuthorID]
		if !seen {
			u, err := s.users.FindByID(ctx, p.AuthorID)
			if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			author = u // nil when the user no longer exists
			authors[p.AuthorID] = author
		}

		av := ports.AuthorView{ID: p.AuthorID}
		if author != nil {
			av.Name = author.Name
			if includeEmail {
				av.Email = author.Email
			}
		}

		out = append(out, ports.PostView{
			ID:          p.ID,
			Title:       p.Title,
			Content:     p.Content,
			Author:      av,
			Status:      p.Status,
			PublishedAt: p.PublishedAt,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}

	return out, nil
}
