package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prabhjot122/LawCourt/internal/repository"
)

// QuizHandler serves quizzes, question authoring and attempt scoring.
type QuizHandler struct {
	Quizzes *repository.QuizRepo
	Users   *repository.UserRepo
}

func NewQuizHandler(q *repository.QuizRepo, u *repository.UserRepo) *QuizHandler {
	return &QuizHandler{Quizzes: q, Users: u}
}

type quizCreateReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type quizUpdateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type questionReq struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        int      `json:"points"`
}

type submitReq struct {
	Answers map[uint64]string `json:"answers"`
}

// Create publishes a new quiz.
func (h *QuizHandler) Create(c echo.Context) error {
	userID, _ := currentUserID(c)

	var req quizCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Quizzes.Create(ctx, userID, req.Title, req.Description, req.Category)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Quiz created successfully", "quiz_id": id})
}

// List returns a page of quizzes, optionally filtered by ?category=.
func (h *QuizHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	quizzes, total, err := h.Quizzes.List(ctx, page, perPage, c.QueryParam("category"))
	if err != nil {
		return internalError(c, err)
	}
	if quizzes == nil {
		quizzes = []repository.Quiz{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"quizzes":  quizzes,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Get returns one quiz with its questions; correct answers stay hidden.
func (h *QuizHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	quiz, questions, err := h.Quizzes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quiz not found"})
		}
		return internalError(c, err)
	}
	if questions == nil {
		questions = []repository.QuizQuestion{}
	}
	return c.JSON(http.StatusOK, echo.Map{"quiz": quiz, "questions": questions})
}

// Update patches the creator's own quiz.
func (h *QuizHandler) Update(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}

	var req quizUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Quizzes.Update(ctx, id, userID, repository.QuizPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quiz not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only update your own quizzes"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Quiz updated successfully"})
}

// Delete removes a quiz; the creator or an admin may do it.
func (h *QuizHandler) Delete(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Quizzes.Delete(ctx, id, userID, isAdmin(ctx, h.Users, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quiz not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only delete your own quizzes"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Quiz deleted successfully"})
}

// AddQuestion appends a question to the creator's own quiz.
func (h *QuizHandler) AddQuestion(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}

	var req questionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Question == "" || len(req.Options) < 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "question and at least two options are required"})
	}
	valid := false
	for _, opt := range req.Options {
		if opt == req.CorrectAnswer {
			valid = true
			break
		}
	}
	if !valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "correct_answer must be one of the options"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	questionID, err := h.Quizzes.AddQuestion(ctx, id, userID, req.Question, req.Options, req.CorrectAnswer, req.Points)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quiz not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only add questions to your own quizzes"})
		default:
			return internalError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Question added successfully", "question_id": questionID})
}

// Submit scores the caller's answers and records the attempt.
func (h *QuizHandler) Submit(c echo.Context) error {
	userID, _ := currentUserID(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quiz id"})
	}

	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	result, err := h.Quizzes.Submit(ctx, id, userID, req.Answers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Quiz not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Quiz submitted successfully", "result": result})
}
