package handler

import (
	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createPostRequest) ports.CreatePostInput {
	return ports.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Status:  domain.PostStatus(req.Status),
	}
}

func toUpdateInput(req updatePostRequest) ports.UpdatePostInput {
	in := ports.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Status != nil {
		status := domain.PostStatus(*req.Status)
		in.Status = &status
	}
	return in
}

// --- Service result → HTTP response ---

func toPostResponse(v *ports.PostView) postResponse {
	return postResponse{
		ID:      v.ID,
		Title:   v.Title,
		Content: v.Content,
		Author: authorResponse{
			ID:    v.Author.ID,
			Name:  v.Author.Name,
			Email: v.Author.Email,
		},
		Status:      string(v.Status),
		PublishedAt: v.PublishedAt,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toPostListResponse(views []ports.PostView) []postResponse {
	out := make([]postResponse, len(views))
	for i := range views {
		out[i] = toPostResponse(&views[i])
	}
	return out
}
