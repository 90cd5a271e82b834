package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// CourseHandler serves courses, modules and enrollments.
type CourseHandler struct {
	Courses *repository.CourseRepo
	Users   *repository.UserRepo
}

func NewCourseHandler(cr *repository.CourseRepo, u *repository.UserRepo) *CourseHandler {
	return &CourseHandler{Courses: cr, Users: u}
}

type courseCreateReq struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	DurationWeeks int    `json:"duration_weeks"`
}

type courseUpdateReq struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	DurationWeeks *int    `json:"duration_weeks"`
}

type moduleReq struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// Create publishes a new course.
func (h *CourseHandler) Create(c echo.Context) error {
	userID, _ := currentUserID(c)

	var req courseCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Courses.Create(ctx, userID, req.Title, req.Description, req.Category, req.DurationWeeks)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Course created successfully", "course_id": id})
}

// List returns a page of courses, optionally filtered by ?category=.
func (h *CourseHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	courses, total, err := h.Courses.List(ctx, page, perPage, c.QueryParam("category"))
	if err != nil {
		return internalError(c, err)
	}
	if courses == nil {
		courses = []repository.Course{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"courses":  courses,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Get returns one course with its modules.
func (h *CourseHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	course, modules, err := h.Courses.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Course not found"})
		}
		return internalError(c, err)
	}
	if modules == nil {
		modules = []repository.CourseModule{}
	}
	return c.JSON(http.StatusOK, echo.Map{"course": course, "modules": modules})
}

// Update patches the instructor's own course.
func (h *CourseHandler) Update(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}

	var req courseUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Courses.Update(ctx, id, userID, repository.CoursePatch{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		DurationWeeks: req.DurationWeeks,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Course not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only update your own courses"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Course updated successfully"})
}

// Delete removes a course; the instructor or an admin may do it.
func (h *CourseHandler) Delete(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Courses.Delete(ctx, id, userID, isAdmin(ctx, h.Users, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Course not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only delete your own courses"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Course deleted successfully"})
}

// AddModule appends a module to the instructor's own course.
func (h *CourseHandler) AddModule(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}

	var req moduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	moduleID, err := h.Courses.AddModule(ctx, id, userID, req.Title, req.Content, req.Position)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Course not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only add modules to your own courses"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Module added successfully", "module_id": moduleID})
}

// Enroll records the caller's enrollment in a course.
func (h *CourseHandler) Enroll(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid course id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Courses.Enroll(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Course not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "You are already enrolled in this course"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Enrolled successfully"})
}
