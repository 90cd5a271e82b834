package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// ResearchHandler serves the research paper endpoints.
type ResearchHandler struct {
	Papers *repository.ResearchRepo
	Users  *repository.UserRepo
}

func NewResearchHandler(r *repository.ResearchRepo, u *repository.UserRepo) *ResearchHandler {
	return &ResearchHandler{Papers: r, Users: u}
}

type paperCreateReq struct {
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	Content         string   `json:"content"`
	PDFURL          string   `json:"pdf_url"`
	PublicationDate string   `json:"publication_date"`
	Keywords        []string `json:"keywords"`
}

type paperUpdateReq struct {
	Title           *string  `json:"title"`
	Abstract        *string  `json:"abstract"`
	Content         *string  `json:"content"`
	PDFURL          *string  `json:"pdf_url"`
	PublicationDate *string  `json:"publication_date"`
	Keywords        []string `json:"keywords"`
}

// Create publishes a new paper.
func (h *ResearchHandler) Create(c echo.Context) error {
	userID, _ := currentUserID(c)

	var req paperCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Abstract == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and abstract are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Papers.Create(ctx, userID, req.Title, req.Abstract, req.Content,
		req.PDFURL, req.PublicationDate, req.Keywords)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Research paper created successfully", "paper_id": id})
}

// List returns a page of papers, optionally filtered by ?keyword=.
func (h *ResearchHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	papers, total, err := h.Papers.List(ctx, page, perPage, c.QueryParam("keyword"))
	if err != nil {
		return internalError(c, err)
	}
	if papers == nil {
		papers = []repository.ResearchPaper{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"research_papers": papers,
		"total":           total,
		"page":            page,
		"per_page":        perPage,
	})
}

// Get returns one paper with its keywords.
func (h *ResearchHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid paper id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	paper, err := h.Papers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Research paper not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"research_paper": paper})
}

// Update patches the author's own paper.
func (h *ResearchHandler) Update(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid paper id"})
	}

	var req paperUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Papers.Update(ctx, id, userID, repository.ResearchPatch{
		Title:           req.Title,
		Abstract:        req.Abstract,
		Content:         req.Content,
		PDFURL:          req.PDFURL,
		PublicationDate: req.PublicationDate,
		Keywords:        req.Keywords,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Research paper not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only update your own papers"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Research paper updated successfully"})
}

// Delete removes a paper; the author or an admin may do it.
func (h *ResearchHandler) Delete(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid paper id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Papers.Delete(ctx, id, userID, isAdmin(ctx, h.Users, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Research paper not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only delete your own papers"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Research paper deleted successfully"})
}
