package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/qbank-backend/internal/middleware"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/response"
	"github.com/stemsi/qbank-backend/internal/service"
	"github.com/stemsi/qbank-backend/internal/validator"
)

// PaperHandler handles exam paper endpoints.
type PaperHandler struct {
	paperService *service.PaperService
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(paperService *service.PaperService) *PaperHandler {
	return &PaperHandler{paperService: paperService}
}

// GeneratePaper godoc
// POST /api/v1/libraries/:id/papers
// Draws random questions per section and stores the paper.
func (h *PaperHandler) GeneratePaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	libraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GeneratePaperRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	paper, err := h.paperService.Generate(c.Request.Context(), libraryID, claims.UserID, &req)
	if err != nil {
		writePaperError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"paper": paper})
}

// ListPapers godoc
// GET /api/v1/papers?page=1&per_page=10
// Admins see every paper, other users their own.
func (h *PaperHandler) ListPapers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	papers, pagination, err := h.paperService.List(c.Request.Context(), claims.UserID, claims.IsAdmin(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"papers": papers}, pagination)
}

// GetPaper godoc
// GET /api/v1/papers/:id
func (h *PaperHandler) GetPaper(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.paperService.Get(c.Request.Context(), id)
	if err != nil {
		writePaperError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// DeletePaper godoc
// DELETE /api/v1/papers/:id
func (h *PaperHandler) DeletePaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.paperService.Delete(c.Request.Context(), id, claims.UserID, claims.IsAdmin()); err != nil {
		writePaperError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "paper deleted"})
}

// ExportPaper godoc
// GET /api/v1/papers/:id/export?format=markdown|pdf|xlsx
func (h *PaperHandler) ExportPaper(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	format := model.ExportFormat(c.DefaultQuery("format", string(model.ExportFormatMarkdown)))
	exported, err := h.paperService.Export(c.Request.Context(), id, format)
	if err != nil {
		writePaperError(c, err)
		return
	}

	response.Attachment(c, exported.Filename, exported.ContentType, exported.Body)
}

func writePaperError(c *gin.Context, err error) {
	var short *service.NotEnoughQuestionsError
	switch {
	case errors.As(err, &short):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrNotEnoughQuestions, map[string]string{
			"question_type": string(short.QuestionType),
			"difficulty":    short.Difficulty.Label(),
			"requested":     strconv.Itoa(short.Requested),
			"available":     strconv.Itoa(short.Available),
		})
	case errors.Is(err, service.ErrLibraryNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrLibraryNotFound)
	case errors.Is(err, service.ErrPaperNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
	case errors.Is(err, service.ErrEmptyPaper):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"sections": "at least one section must request questions",
		})
	case errors.Is(err, service.ErrInvalidType):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidType)
	case errors.Is(err, service.ErrNotPaperAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotPaperAuthor)
	case errors.Is(err, service.ErrUnsupportedExport):
		response.Fail(c, http.StatusBadRequest, response.ErrExportFormat)
	case errors.Is(err, service.ErrPDFExportUnavailable):
		response.Fail(c, http.StatusNotImplemented, response.ErrExportUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
