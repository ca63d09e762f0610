package handler

import "time"

// errorResponse is the standard failure envelope returned on all 4xx/5xx
// responses. Declared here for swagger docs; the HTTP error handler renders it.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// --- Request types ---

type createPostRequest struct {
	Title   string `json:"title"   validate:"required"`
	Content string `json:"content" validate:"required"`
	Status  string `json:"status"  validate:"omitempty,oneof=draft published"`
}

// updatePostRequest is a partial update; at least one field must be present
// (checked in the handler, since validator tags cannot express it cleanly).
type updatePostRequest struct {
	Title   *string `json:"title"   validate:"omitempty,min=1"`
	Content *string `json:"content" validate:"omitempty,min=1"`
	Status  *string `json:"status"  validate:"omitempty,oneof=draft published"`
}

// listPublicQuery carries the public listing parameters. Defaults are
// applied before validation so the core only ever sees page >= 1 and
// 1 <= limit <= 100.
type listPublicQuery struct {
	Page   int    `query:"page"   validate:"gte=1"`
	Limit  int    `query:"limit"  validate:"gte=1,lte=100"`
	Search string `query:"search"`
}

// --- Response types ---

// authorResponse is the display projection of a post's author. Email is
// only present on owner/admin views.
type authorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type postResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Author      authorResponse `json:"author"`
	Status      string         `json:"status"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type postEnvelope struct {
	Success bool         `json:"success"`
	Data    postResponse `json:"data"`
}

type postListEnvelope struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Data    []postResponse `json:"data"`
}

type publicListEnvelope struct {
	Success    bool           `json:"success"`
	Count      int            `json:"count"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int64          `json:"total"`
	Data       []postResponse `json:"data"`
}

type deletedEnvelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}
