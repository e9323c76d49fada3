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

// LibraryHandler handles question library endpoints.
type LibraryHandler struct {
	libraryService *service.LibraryService
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// ListLibraries godoc
// GET /api/v1/libraries?page=1&per_page=10&search=
// Lists libraries, newest first.
func (h *LibraryHandler) ListLibraries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	libraries, pagination, err := h.libraryService.List(c.Request.Context(), page, perPage, c.Query("search"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"libraries": libraries}, pagination)
}

// CreateLibrary godoc
// POST /api/v1/libraries
func (h *LibraryHandler) CreateLibrary(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateLibraryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	library, err := h.libraryService.Create(c.Request.Context(), &req, claims.UserID)
	if err != nil {
		writeLibraryError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"library": library})
}

// GetLibrary godoc
// GET /api/v1/libraries/:id
func (h *LibraryHandler) GetLibrary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	library, err := h.libraryService.Get(c.Request.Context(), id)
	if err != nil {
		writeLibraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"library": library})
}

// UpdateLibrary godoc
// PUT /api/v1/libraries/:id
func (h *LibraryHandler) UpdateLibrary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateLibraryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	library, err := h.libraryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		writeLibraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"library": library})
}

// DeleteLibrary godoc
// DELETE /api/v1/libraries/:id
// Removes a library together with its questions. Admin only.
func (h *LibraryHandler) DeleteLibrary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.libraryService.Delete(c.Request.Context(), id); err != nil {
		writeLibraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "library deleted"})
}

func writeLibraryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLibraryNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrLibraryNotFound)
	case errors.Is(err, service.ErrLibraryExists):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
