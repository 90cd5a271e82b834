package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// NoteHandler serves private study notes.  Every route is owner-scoped;
// there is no public listing and no admin override.
type NoteHandler struct {
	Notes *repository.NoteRepo
}

func NewNoteHandler(n *repository.NoteRepo) *NoteHandler {
	return &NoteHandler{Notes: n}
}

type noteCreateReq struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type noteUpdateReq struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

// Create adds a note for the caller.
func (h *NoteHandler) Create(c echo.Context) error {
	userID, _ := currentUserID(c)

	var req noteCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Notes.Create(ctx, userID, req.Title, req.Content, req.Category)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Note created successfully", "note_id": id})
}

// List returns the caller's notes, optionally filtered by ?category=.
func (h *NoteHandler) List(c echo.Context) error {
	userID, _ := currentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	notes, err := h.Notes.List(ctx, userID, c.QueryParam("category"))
	if err != nil {
		return internalError(c, err)
	}
	if notes == nil {
		notes = []repository.Note{}
	}
	return c.JSON(http.StatusOK, echo.Map{"notes": notes})
}

// Get returns one of the caller's notes.
func (h *NoteHandler) Get(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	note, err := h.Notes.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Note not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"note": note})
}

// Update patches one of the caller's notes.
func (h *NoteHandler) Update(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}

	var req noteUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Notes.Update(ctx, id, userID, repository.NotePatch{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Note not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Note updated successfully"})
}

// Delete removes one of the caller's notes.
func (h *NoteHandler) Delete(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Notes.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Note not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Note deleted successfully"})
}
