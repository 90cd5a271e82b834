package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// BlogHandler serves the community blog endpoints.  Listing and detail are
// public; writes require an Editor; updates are author-only and deletes are
// author-or-admin.
type BlogHandler struct {
	Blogs *repository.BlogRepo
	Users *repository.UserRepo
}

func NewBlogHandler(b *repository.BlogRepo, u *repository.UserRepo) *BlogHandler {
	return &BlogHandler{Blogs: b, Users: u}
}

// isAdmin re-reads the caller's authority from the users table.
func isAdmin(ctx context.Context, users *repository.UserRepo, userID uint64) bool {
	u, err := users.GetByID(ctx, userID)
	return err == nil && u.IsAdmin()
}

type blogCreateReq struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	ImageURL string   `json:"image_url"`
	Tags     []string `json:"tags"`
}

type blogUpdateReq struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	ImageURL *string  `json:"image_url"`
	Tags     []string `json:"tags"`
}

type commentReq struct {
	Content string `json:"content"`
}

// Create publishes a new post.
func (h *BlogHandler) Create(c echo.Context) error {
	userID, _ := currentUserID(c)

	var req blogCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Blogs.Create(ctx, userID, req.Title, req.Content, req.ImageURL, req.Tags)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Blog post created successfully", "post_id": id})
}

// List returns a page of posts, optionally filtered by ?tag=.
func (h *BlogHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	posts, total, err := h.Blogs.List(ctx, page, perPage, c.QueryParam("tag"))
	if err != nil {
		return internalError(c, err)
	}
	if posts == nil {
		posts = []repository.BlogPost{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"blog_posts": posts,
		"total":      total,
		"page":       page,
		"per_page":   perPage,
	})
}

// Get returns one post with its tags and comments.
func (h *BlogHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	post, comments, err := h.Blogs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Blog post not found"})
		}
		return internalError(c, err)
	}
	if comments == nil {
		comments = []repository.BlogComment{}
	}
	return c.JSON(http.StatusOK, echo.Map{"blog_post": post, "comments": comments})
}

// Update patches the author's own post.
func (h *BlogHandler) Update(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	var req blogUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Blogs.Update(ctx, id, userID, repository.BlogPatch{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Tags:     req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Blog post not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only update your own posts"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Blog post updated successfully"})
}

// Delete removes a post; the author or an admin may do it.
func (h *BlogHandler) Delete(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Blogs.Delete(ctx, id, userID, isAdmin(ctx, h.Users, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Blog post not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only delete your own posts"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Blog post deleted successfully"})
}

// AddComment appends a comment to a post.
func (h *BlogHandler) AddComment(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	commentID, err := h.Blogs.AddComment(ctx, id, userID, req.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Blog post not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Comment added successfully", "comment_id": commentID})
}
