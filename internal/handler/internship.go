package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// InternshipHandler serves internship postings and applications.
type InternshipHandler struct {
	Internships *repository.InternshipRepo
	Users       *repository.UserRepo
}

func NewInternshipHandler(i *repository.InternshipRepo, u *repository.UserRepo) *InternshipHandler {
	return &InternshipHandler{Internships: i, Users: u}
}

type internshipCreateReq struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Stipend     string   `json:"stipend"`
	Deadline    string   `json:"deadline"`
	Tags        []string `json:"tags"`
}

type internshipUpdateReq struct {
	Title       *string  `json:"title"`
	Company     *string  `json:"company"`
	Location    *string  `json:"location"`
	Description *string  `json:"description"`
	Stipend     *string  `json:"stipend"`
	Deadline    *string  `json:"deadline"`
	Tags        []string `json:"tags"`
}

type applyReq struct {
	CoverLetter string `json:"cover_letter"`
}

// Create publishes a new posting.
func (h *InternshipHandler) Create(c echo.Context) error {
	userID, _ := currentUserID(c)

	var req internshipCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Company == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and company are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Internships.Create(ctx, userID, req.Title, req.Company, req.Location,
		req.Description, req.Stipend, req.Deadline, req.Tags)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Internship created successfully", "internship_id": id})
}

// List returns a page of postings, optionally filtered by ?location=.
func (h *InternshipHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, total, err := h.Internships.List(ctx, page, perPage, c.QueryParam("location"))
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []repository.Internship{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"internships": items,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
	})
}

// Get returns one posting with its tags.
func (h *InternshipHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid internship id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	item, err := h.Internships.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Internship not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"internship": item})
}

// Update patches the poster's own listing.
func (h *InternshipHandler) Update(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid internship id"})
	}

	var req internshipUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Internships.Update(ctx, id, userID, repository.InternshipPatch{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		Stipend:     req.Stipend,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Internship not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only update your own postings"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Internship updated successfully"})
}

// Delete removes a posting; the poster or an admin may do it.
func (h *InternshipHandler) Delete(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid internship id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Internships.Delete(ctx, id, userID, isAdmin(ctx, h.Users, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Internship not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only delete your own postings"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Internship deleted successfully"})
}

// Apply records the caller's application to a posting.
func (h *InternshipHandler) Apply(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid internship id"})
	}

	var req applyReq
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	appID, err := h.Internships.Apply(ctx, id, userID, req.CoverLetter)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Internship not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "You have already applied to this internship"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Application submitted successfully", "application_id": appID})
}

// Applications lists who applied; poster or admin only.
func (h *InternshipHandler) Applications(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid internship id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	apps, err := h.Internships.Applications(ctx, id, userID, isAdmin(ctx, h.Users, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Internship not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only view applications to your own postings"})
		default:
			return internalError(c, err)
		}
	}
	if apps == nil {
		apps = []repository.InternshipApplication{}
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}
