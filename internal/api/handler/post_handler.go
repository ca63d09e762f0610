package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/api/metrics"
	"github.com/inkwell/content-api/internal/api/middleware"
	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

// PostHandler handles HTTP requests for post operations.
type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// Create handles POST /api/v1/posts.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPostRequest  true  "Post details"
// @Success      201   {object}  postEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	view, err := h.service.Create(c.Request().Context(), caller, toCreateInput(req))
	if err != nil {
		return err
	}

	metrics.PostsCreatedTotal.WithLabelValues(string(view.Status)).Inc()
	if view.Status == domain.StatusPublished {
		metrics.PostsPublishedTotal.Inc()
	}

	return c.JSON(http.StatusCreated, postEnvelope{Success: true, Data: toPostResponse(view)})
}

// ListMine handles GET /api/v1/posts. Authors see their own posts, admins
// see everything.
//
// @Summary      List the caller's posts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  postListEnvelope
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/posts [get]
func (h *PostHandler) ListMine(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListMine(c.Request().Context(), caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, postListEnvelope{
		Success: true,
		Count:   len(views),
		Data:    toPostListResponse(views),
	})
}

// Get handles GET /api/v1/posts/:id. The route allows guests; draft
// visibility is decided by the service, not the route.
//
// @Summary      Get a post by id
// @Tags         posts
// @Produce      json
// @Param        id  path      string  true  "Post id"
// @Success      200  {object}  postEnvelope
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	caller := middleware.Caller(c)

	view, err := h.service.Get(c.Request().Context(), c.Param("id"), caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, postEnvelope{Success: true, Data: toPostResponse(view)})
}

// Update handles PUT /api/v1/posts/:id.
//
// @Summary      Update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Post id"
// @Param        body  body      updatePostRequest  true  "Fields to update"
// @Success      200   {object}  postEnvelope
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.Title == nil && req.Content == nil && req.Status == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "at least one of title, content or status is required")
	}

	view, published, err := h.service.Update(c.Request().Context(), c.Param("id"), caller, toUpdateInput(req))
	if err != nil {
		return err
	}

	// Count first publishes only; the service reports whether this update
	// actually set the stamp.
	if published {
		metrics.PostsPublishedTotal.Inc()
	}

	return c.JSON(http.StatusOK, postEnvelope{Success: true, Data: toPostResponse(view)})
}

// Delete handles DELETE /api/v1/posts/:id.
//
// @Summary      Delete a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Post id"
// @Success      200  {object}  deletedEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), caller); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deletedEnvelope{Success: true, Data: map[string]any{}})
}

// ListPublic handles GET /api/v1/posts/public: published posts only, with
// pagination and optional text search. No authentication required.
//
// @Summary      List published posts
// @Tags         posts
// @Produce      json
// @Param        page    query     int     false  "1-based page"      default(1)
// @Param        limit   query     int     false  "Page size (1-100)" default(10)
// @Param        search  query     string  false  "Text search over title and content"
// @Success      200  {object}  publicListEnvelope
// @Failure      422  {object}  errorResponse
// @Router       /api/v1/posts/public [get]
func (h *PostHandler) ListPublic(c echo.Context) error {
	q := listPublicQuery{Page: 1, Limit: 10}
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.ListPublic(c.Request().Context(), ports.ListPublicInput{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, publicListEnvelope{
		Success:    true,
		Count:      len(result.Posts),
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Total:      result.Total,
		Data:       toPostListResponse(result.Posts),
	})
}
