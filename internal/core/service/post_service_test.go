package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub post repository
// ---------------------------------------------------------------------------

type stubPostRepo struct {
	byID             map[string]*domain.Post
	order            []string // insertion order, for stable tie-breaks
	nextID           int
	lastAuthorFilter string // authorID passed to the last ListByAuthor call
	failWith         error  // if set, every operation returns this error
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{byID: make(map[string]*domain.Post)}
}

func (r *stubPostRepo) Create(_ context.Context, p *domain.Post) (*domain.Post, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("post_%d", r.nextID)
	r.byID[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubPostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPostRepo) ListByAuthor(_ context.Context, authorID string) ([]*domain.Post, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.lastAuthorFilter = authorID
	var out []*domain.Post
	for _, id := range r.order {
		p := r.byID[id]
		if authorID != "" && p.AuthorID != authorID {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubPostRepo) Update(_ context.Context, id string, upd ports.PostUpdate) (*domain.Post, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.PublishedAt != nil {
		stamp := *upd.PublishedAt
		p.PublishedAt = &stamp
	}
	p.UpdatedAt = upd.UpdatedAt
	clone := *p
	return &clone, nil
}

func (r *stubPostRepo) Delete(_ context.Context, id string) error {
	if r.failWith != nil {
		return r.failWith
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListPublished applies the same filters the real Mongo repo would use.
func (r *stubPostRepo) ListPublished(_ context.Context, f ports.ListPublishedFilter) ([]*domain.Post, int64, error) {
	if r.failWith != nil {
		return nil, 0, r.failWith
	}

	var matched []*domain.Post
	for _, id := range r.order {
		p := r.byID[id]
		if p.Status != domain.StatusPublished {
			continue
		}
		if f.Search != "" {
			titleMatch := strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search))
			contentMatch := strings.Contains(strings.ToLower(p.Content), strings.ToLower(f.Search))
			if !titleMatch && !contentMatch {
				continue
			}
		}
		clone := *p
		matched = append(matched, &clone)
	}

	// Newest publish first; insertion order breaks ties (stable across pages
	// for a fixed snapshot, like Mongo's natural order).
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(*matched[j].PublishedAt)
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip >= len(matched) {
		return nil, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newPostFixture(t *testing.T) (*stubPostRepo, *stubUserRepo, *PostService) {
	t.Helper()
	posts := newStubPostRepo()
	users := newStubUserRepo()
	users.seed("u_author", "Ada", "ada@example.com", domain.RoleAuthor)
	users.seed("u_other", "Ben", "ben@example.com", domain.RoleAuthor)
	users.seed("u_admin", "Root", "root@example.com", domain.RoleAdmin)
	return posts, users, NewPostService(posts, users, discardLogger)
}

var (
	callerAda   = ports.Caller{ID: "u_author", Role: domain.RoleAuthor}
	callerBen   = ports.Caller{ID: "u_other", Role: domain.RoleAuthor}
	callerAdmin = ports.Caller{ID: "u_admin", Role: domain.RoleAdmin}
)

func draftInput(title string) ports.CreatePostInput {
	return ports.CreatePostInput{Title: title, Content: "body of " + title, Status: domain.StatusDraft}
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestPostService_Create_DraftHasNoPublishStamp(t *testing.T) {
	_, _, svc := newPostFixture(t)

	view, err := svc.Create(context.Background(), callerAda, draftInput("A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Status != domain.StatusDraft {
		t.Errorf("expected status draft, got %q", view.Status)
	}
	if view.PublishedAt != nil {
		t.Errorf("draft must have nil published_at, got %v", view.PublishedAt)
	}
	if view.Author.ID != "u_author" {
		t.Errorf("author must be forced to caller id, got %q", view.Author.ID)
	}
}

func TestPostService_Create_PublishedStampsNow(t *testing.T) {
	_, _, svc := newPostFixture(t)
	before := time.Now().UTC()

	view, err := svc.Create(context.Background(), callerAda, ports.CreatePostInput{
		Title: "A", Content: "B", Status: domain.StatusPublished,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC()

	if view.PublishedAt == nil {
		t.Fatal("published post must carry a publish stamp")
	}
	if view.PublishedAt.Before(before) || view.PublishedAt.After(after) {
		t.Errorf("publish stamp %v outside [%v, %v]", view.PublishedAt, before, after)
	}
	if !view.PublishedAt.Equal(view.CreatedAt) {
		t.Errorf("create-as-published must stamp at creation time: %v vs %v", view.PublishedAt, view.CreatedAt)
	}
}

func TestPostService_Create_DefaultsToDraft(t *testing.T) {
	_, _, svc := newPostFixture(t)

	view, err := svc.Create(context.Background(), callerAda, ports.CreatePostInput{Title: "A", Content: "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Status != domain.StatusDraft {
		t.Errorf("missing status must default to draft, got %q", view.Status)
	}
}

func TestPostService_Create_RepoError(t *testing.T) {
	posts, _, svc := newPostFixture(t)
	posts.failWith = errors.New("db unavailable")

	if _, err := svc.Create(context.Background(), callerAda, draftInput("A")); err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

// ---------------------------------------------------------------------------
// Publish stamp transition tests
// ---------------------------------------------------------------------------

func TestPostService_Update_DraftToPublishedStampsOnce(t *testing.T) {
	_, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, draftInput("A"))

	published := domain.StatusPublished
	first, stamped, err := svc.Update(context.Background(), created.ID, callerAda, ports.UpdatePostInput{Status: &published})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if first.PublishedAt == nil {
		t.Fatal("draft→published must set published_at")
	}
	if !stamped {
		t.Error("first publish must report the transition")
	}

	// Re-sending published must not move the stamp.
	newTitle := "A v2"
	second, stamped, err := svc.Update(context.Background(), created.ID, callerAda, ports.UpdatePostInput{
		Title: &newTitle, Status: &published,
	})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if !second.PublishedAt.Equal(*first.PublishedAt) {
		t.Errorf("publish stamp changed on re-publish: %v → %v", first.PublishedAt, second.PublishedAt)
	}
	if stamped {
		t.Error("re-publish must not report a transition")
	}
	if second.Title != "A v2" {
		t.Errorf("title not updated: %q", second.Title)
	}
}

func TestPostService_Update_RevertToDraftKeepsStamp(t *testing.T) {
	_, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, ports.CreatePostInput{
		Title: "A", Content: "B", Status: domain.StatusPublished,
	})

	draft := domain.StatusDraft
	reverted, stamped, err := svc.Update(context.Background(), created.ID, callerAda, ports.UpdatePostInput{Status: &draft})
	if err != nil {
		t.Fatalf("revert failed: %v", err)
	}
	if stamped {
		t.Error("revert to draft must not report a publish transition")
	}
	if reverted.Status != domain.StatusDraft {
		t.Errorf("expected draft after revert, got %q", reverted.Status)
	}
	if reverted.PublishedAt == nil || !reverted.PublishedAt.Equal(*created.PublishedAt) {
		t.Errorf("publish stamp is a one-way marker and must survive a revert: %v", reverted.PublishedAt)
	}
}

// ---------------------------------------------------------------------------
// Visibility tests
// ---------------------------------------------------------------------------

func TestPostService_Get_PublishedVisibleToAnyone(t *testing.T) {
	_, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, ports.CreatePostInput{
		Title: "A", Content: "B", Status: domain.StatusPublished,
	})

	for _, caller := range []ports.Caller{callerAda, callerBen, callerAdmin, ports.Guest()} {
		if _, err := svc.Get(context.Background(), created.ID, caller); err != nil {
			t.Errorf("published post must be visible to %q/%q: %v", caller.ID, caller.Role, err)
		}
	}
}

func TestPostService_Get_DraftOnlyOwnerOrAdmin(t *testing.T) {
	_, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, draftInput("A"))

	if _, err := svc.Get(context.Background(), created.ID, callerAda); err != nil {
		t.Errorf("owner must see own draft: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID, callerAdmin); err != nil {
		t.Errorf("admin must see any draft: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID, callerBen); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("other author must get ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID, ports.Guest()); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("guest must get ErrForbidden on a draft, got %v", err)
	}
}

func TestPostService_Get_Missing(t *testing.T) {
	_, _, svc := newPostFixture(t)

	if _, err := svc.Get(context.Background(), "post_404", callerAdmin); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Mutation authorization tests
// ---------------------------------------------------------------------------

func TestPostService_Update_NonOwnerForbidden(t *testing.T) {
	posts, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, draftInput("A"))

	published := domain.StatusPublished
	newTitle := "hijacked"
	_, _, err := svc.Update(context.Background(), created.ID, callerBen, ports.UpdatePostInput{
		Title: &newTitle, Status: &published,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// The forbidden update must not have written anything.
	stored := posts.byID[created.ID]
	if stored.Title != "A" || stored.Status != domain.StatusDraft || stored.PublishedAt != nil {
		t.Errorf("forbidden update mutated state: %+v", stored)
	}
}

func TestPostService_Update_AdminMayEditAnyPost(t *testing.T) {
	_, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, draftInput("A"))

	newTitle := "edited by admin"
	view, _, err := svc.Update(context.Background(), created.ID, callerAdmin, ports.UpdatePostInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if view.Title != newTitle {
		t.Errorf("title not applied: %q", view.Title)
	}
	if view.Author.ID != "u_author" {
		t.Errorf("author must never be reassigned, got %q", view.Author.ID)
	}
}

func TestPostService_Delete_NonOwnerForbidden(t *testing.T) {
	posts, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, draftInput("A"))

	if err := svc.Delete(context.Background(), created.ID, callerBen); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := posts.byID[created.ID]; !ok {
		t.Error("forbidden delete removed the post")
	}
}

func TestPostService_Delete_OwnerAndAdmin(t *testing.T) {
	posts, _, svc := newPostFixture(t)
	p1, _ := svc.Create(context.Background(), callerAda, draftInput("A"))
	p2, _ := svc.Create(context.Background(), callerAda, draftInput("B"))

	if err := svc.Delete(context.Background(), p1.ID, callerAda); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), p2.ID, callerAdmin); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if len(posts.byID) != 0 {
		t.Errorf("expected empty store, got %d posts", len(posts.byID))
	}
	if err := svc.Delete(context.Background(), p1.ID, callerAda); !errors.Is(err, domain.ErrPostNotFound) {
		t.Errorf("double delete must be ErrPostNotFound, got %v", err)
	}
}

// Read-then-write in Update is deliberately not transactional: two
// concurrent authorized updates race and the last write wins. This test
// documents the accepted behaviour rather than guarding against it.
func TestPostService_Update_LastWriteWins(t *testing.T) {
	_, _, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, draftInput("A"))

	titleA := "from owner"
	titleB := "from admin"
	if _, _, err := svc.Update(context.Background(), created.ID, callerAda, ports.UpdatePostInput{Title: &titleA}); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	final, _, err := svc.Update(context.Background(), created.ID, callerAdmin, ports.UpdatePostInput{Title: &titleB})
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if final.Title != titleB {
		t.Errorf("expected last write to win, got %q", final.Title)
	}
}

// ---------------------------------------------------------------------------
// ListMine tests
// ---------------------------------------------------------------------------

func TestPostService_ListMine_AuthorScopedToOwnPosts(t *testing.T) {
	posts, _, svc := newPostFixture(t)
	_, _ = svc.Create(context.Background(), callerAda, draftInput("ada 1"))
	_, _ = svc.Create(context.Background(), callerAda, draftInput("ada 2"))
	_, _ = svc.Create(context.Background(), callerBen, draftInput("ben 1"))

	views, err := svc.ListMine(context.Background(), callerAda)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(views))
	}
	for _, v := range views {
		if v.Author.ID != "u_author" {
			t.Errorf("author listing leaked foreign post %q (author %q)", v.ID, v.Author.ID)
		}
	}
	if posts.lastAuthorFilter != "u_author" {
		t.Errorf("author listing must filter at the store, got filter %q", posts.lastAuthorFilter)
	}
}

func TestPostService_ListMine_AdminSeesAll(t *testing.T) {
	posts, _, svc := newPostFixture(t)
	_, _ = svc.Create(context.Background(), callerAda, draftInput("ada 1"))
	_, _ = svc.Create(context.Background(), callerBen, draftInput("ben 1"))

	views, err := svc.ListMine(context.Background(), callerAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("admin must see all posts, got %d", len(views))
	}
	if posts.lastAuthorFilter != "" {
		t.Errorf("admin listing must not pass an author filter, got %q", posts.lastAuthorFilter)
	}
	// Author display fields are populated for the admin view.
	if views[0].Author.Name == "" || views[0].Author.Email == "" {
		t.Errorf("admin listing must populate author name and email: %+v", views[0].Author)
	}
}

// ---------------------------------------------------------------------------
// ListPublic tests
// ---------------------------------------------------------------------------

func seedPublished(t *testing.T, svc *PostService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := svc.Create(context.Background(), callerAda, ports.CreatePostInput{
			Title:   fmt.Sprintf("published %02d", i),
			Content: "lorem ipsum",
			Status:  domain.StatusPublished,
		})
		if err != nil {
			t.Fatalf("seed %d failed: %v", i, err)
		}
	}
}

func TestPostService_ListPublic_Pagination(t *testing.T) {
	_, _, svc := newPostFixture(t)
	seedPublished(t, svc, 15)
	for i := 0; i < 5; i++ {
		_, _ = svc.Create(context.Background(), callerAda, draftInput(fmt.Sprintf("draft %d", i)))
	}

	page1, err := svc.ListPublic(context.Background(), ports.ListPublicInput{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("page 1 failed: %v", err)
	}
	if len(page1.Posts) != 10 || page1.Total != 15 || page1.TotalPages != 2 {
		t.Errorf("page 1: got %d posts, total=%d, totalPages=%d", len(page1.Posts), page1.Total, page1.TotalPages)
	}

	page2, err := svc.ListPublic(context.Background(), ports.ListPublicInput{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("page 2 failed: %v", err)
	}
	if len(page2.Posts) != 5 || page2.Total != 15 {
		t.Errorf("page 2: got %d posts, total=%d", len(page2.Posts), page2.Total)
	}

	// Past-the-end page must not error.
	page3, err := svc.ListPublic(context.Background(), ports.ListPublicInput{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("page 3 failed: %v", err)
	}
	if len(page3.Posts) != 0 || page3.Total != 15 || page3.TotalPages != 2 {
		t.Errorf("page 3: got %d posts, total=%d, totalPages=%d", len(page3.Posts), page3.Total, page3.TotalPages)
	}
}

func TestPostService_ListPublic_ExcludesDraftsAndSorts(t *testing.T) {
	posts, _, svc := newPostFixture(t)
	seedPublished(t, svc, 3)

	// Space the publish stamps out so the ordering is unambiguous.
	base := time.Now().UTC().Add(-time.Hour)
	i := 0
	for _, id := range posts.order {
		stamp := base.Add(time.Duration(i) * time.Minute)
		posts.byID[id].PublishedAt = &stamp
		i++
	}

	result, err := svc.ListPublic(context.Background(), ports.ListPublicInput{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for j := 1; j < len(result.Posts); j++ {
		if result.Posts[j].PublishedAt.After(*result.Posts[j-1].PublishedAt) {
			t.Errorf("posts not sorted by published_at descending at index %d", j)
		}
	}
	for _, v := range result.Posts {
		if v.Status != domain.StatusPublished {
			t.Errorf("public listing leaked a %q post", v.Status)
		}
		if v.Author.Email != "" {
			t.Errorf("public listing must not expose author email, got %q", v.Author.Email)
		}
	}
}

func TestPostService_ListPublic_Search(t *testing.T) {
	_, _, svc := newPostFixture(t)
	_, _ = svc.Create(context.Background(), callerAda, ports.CreatePostInput{
		Title: "Gardening tips", Content: "tomatoes and basil", Status: domain.StatusPublished,
	})
	_, _ = svc.Create(context.Background(), callerAda, ports.CreatePostInput{
		Title: "Go concurrency", Content: "channels and goroutines", Status: domain.StatusPublished,
	})

	result, err := svc.ListPublic(context.Background(), ports.ListPublicInput{Page: 1, Limit: 10, Search: "tomatoes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Posts) != 1 || result.Posts[0].Title != "Gardening tips" {
		t.Errorf("search returned wrong set: %+v", result.Posts)
	}
	if result.Total != 1 {
		t.Errorf("expected total=1, got %d", result.Total)
	}
}

// ---------------------------------------------------------------------------
// End-to-end scenario
// ---------------------------------------------------------------------------

func TestPostService_DraftPublishLifecycle(t *testing.T) {
	_, _, svc := newPostFixture(t)

	created, err := svc.Create(context.Background(), callerAda, ports.CreatePostInput{
		Title: "A", Content: "B", Status: domain.StatusDraft,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), created.ID, callerBen); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other author reading a draft must be forbidden, got %v", err)
	}

	published := domain.StatusPublished
	updated, _, err := svc.Update(context.Background(), created.ID, callerAda, ports.UpdatePostInput{Status: &published})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if updated.PublishedAt == nil {
		t.Fatal("publish must stamp published_at")
	}

	if _, err := svc.Get(context.Background(), created.ID, ports.Guest()); err != nil {
		t.Fatalf("guest must read the post once published, got %v", err)
	}
}

// A post whose author account was deleted still renders, with a bare
// author id (no cascade delete of posts).
func TestPostService_Get_DanglingAuthor(t *testing.T) {
	_, users, svc := newPostFixture(t)
	created, _ := svc.Create(context.Background(), callerAda, ports.CreatePostInput{
		Title: "A", Content: "B", Status: domain.StatusPublished,
	})

	delete(users.byID, "u_author")

	view, err := svc.Get(context.Background(), created.ID, ports.Guest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Author.ID != "u_author" || view.Author.Name != "" {
		t.Errorf("dangling author must render as bare id: %+v", view.Author)
	}
}
