package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/middleware"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/response"
	"github.com/stemsi/qbank-backend/internal/service"
)

const uploadTemplateName = "题库导入模板.md"

type libraryChecker interface {
	EnsureExists(ctx context.Context, id uuid.UUID) error
}

type documentImporter interface {
	Import(ctx context.Context, document []byte, libraryID uuid.UUID, opts service.ImportOptions) model.ImportResult
}

type importJobs interface {
	Submit(ctx context.Context, libraryID uuid.UUID, filename string, document []byte, opts service.ImportOptions, userID int) (*model.ImportJobStatus, error)
	Status(ctx context.Context, jobID uuid.UUID) (*model.ImportJobStatus, error)
	Subscribe(ctx context.Context, jobID uuid.UUID) *redis.PubSub
}

// ImportHandler handles document import endpoints.
type ImportHandler struct {
	libraries libraryChecker
	documents *service.DocumentService
	importer  documentImporter
	jobs      importJobs
	log       zerolog.Logger
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(libraries libraryChecker, documents *service.DocumentService, importer documentImporter, jobs importJobs, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		libraries: libraries,
		documents: documents,
		importer:  importer,
		jobs:      jobs,
		log:       log.With().Str("component", "import_handler").Logger(),
	}
}

// ImportDocument godoc
// POST /api/v1/libraries/:id/imports
// multipart/form-data: file (.txt/.md), question_type (optional override),
// charset (utf-8 | gb18030), async (bool).
// Synchronous imports answer with the import result; async ones with 202
// and the queued job.
func (h *ImportHandler) ImportDocument(c *gin.Context) {
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

	ctx := c.Request.Context()
	if err := h.libraries.EnsureExists(ctx, libraryID); err != nil {
		if errors.Is(err, service.ErrLibraryNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrLibraryNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	var opts service.ImportOptions
	if t := c.PostForm("question_type"); t != "" {
		qtype, ok := model.ParseQuestionType(t)
		if !ok {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidType)
			return
		}
		opts.Override = qtype
	}
	opts.Charset = c.DefaultPostForm("charset", "utf-8")
	if err := service.CheckCharset(opts.Charset); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedCharset)
		return
	}
	async, _ := strconv.ParseBool(c.DefaultPostForm("async", "false"))

	data, err := h.documents.ReadUpload(header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			h.log.Error().Err(err).Msg("Failed to read upload")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	log := h.log.With().
		Str("library_id", libraryID.String()).
		Str("filename", header.Filename).
		Int("user_id", claims.UserID).
		Logger()

	if async {
		status, err := h.jobs.Submit(ctx, libraryID, header.Filename, data, opts, claims.UserID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to queue import")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		h.archive(log, status.JobID, header.Filename, data)
		response.Success(c, http.StatusAccepted, gin.H{"job": status})
		return
	}

	h.archive(log, uuid.New(), header.Filename, data)
	result := h.importer.Import(ctx, data, libraryID, opts)
	response.Success(c, http.StatusOK, result)
}

// GetImportJob godoc
// GET /api/v1/imports/:job_id
func (h *ImportHandler) GetImportJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	status, err := h.jobs.Status(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrImportJobNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrJobNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if !canViewJob(middleware.GetClaims(c), status) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"job": status})
}

// canViewJob allows the submitter and admins.
func canViewJob(claims *service.Claims, st *model.ImportJobStatus) bool {
	if claims == nil {
		return false
	}
	return claims.IsAdmin() || claims.UserID == st.SubmittedBy
}

// UploadTemplate godoc
// GET /api/v1/upload-template
// Downloads a sample import document.
func (h *ImportHandler) UploadTemplate(c *gin.Context) {
	response.Attachment(c, uploadTemplateName, "text/markdown; charset=utf-8", []byte(service.UploadTemplate))
}

func (h *ImportHandler) archive(log zerolog.Logger, id uuid.UUID, filename string, data []byte) {
	if _, err := h.documents.Archive(id, filename, data); err != nil {
		log.Warn().Err(err).Msg("Failed to archive document")
	}
}
