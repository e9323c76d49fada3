package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/response"
	"github.com/stemsi/qbank-backend/internal/service"
	"github.com/stemsi/qbank-backend/internal/validator"
)

// QuestionHandler handles question management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListQuestions godoc
// GET /api/v1/libraries/:id/questions?type=&difficulty=&search=&page=&per_page=
// Lists the questions of a library.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	libraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	filter := model.QuestionFilter{Search: c.Query("search")}
	if t := c.Query("type"); t != "" {
		qtype, ok := model.ParseQuestionType(t)
		if !ok {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidType)
			return
		}
		filter.Type = qtype
	}
	if d := c.Query("difficulty"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || !model.Difficulty(n).Valid() {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"difficulty": "difficulty must be 1, 2 or 3",
			})
			return
		}
		filter.Difficulty = model.Difficulty(n)
	}

	questions, pagination, err := h.questionService.List(c.Request.Context(), libraryID, filter, page, perPage)
	if err != nil {
		writeQuestionError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// AddQuestion godoc
// POST /api/v1/libraries/:id/questions
// Adds a hand-written question to a library.
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	libraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), libraryID, &req)
	if err != nil {
		writeQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// GetQuestion godoc
// GET /api/v1/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		writeQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		writeQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}

// BatchDeleteQuestions godoc
// POST /api/v1/libraries/:id/questions/batch-delete
// Removes several questions of one library at once.
func (h *QuestionHandler) BatchDeleteQuestions(c *gin.Context) {
	libraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.BatchDeleteQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	deleted, err := h.questionService.BatchDelete(c.Request.Context(), libraryID, req.QuestionIDs)
	if err != nil {
		writeQuestionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted_count": deleted})
}

func writeQuestionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLibraryNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrLibraryNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, service.ErrQuestionDuplicate):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrInvalidType):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidType)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
