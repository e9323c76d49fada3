package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
	"github.com/stemsi/qbank-backend/internal/response"
)

// Library errors.
var (
	ErrLibraryNotFound = errors.New("library not found")
	ErrLibraryExists   = errors.New("library with this name already exists")
)

// LibraryService handles library business logic.
type LibraryService struct {
	libraryRepo *repository.LibraryRepository
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(libraryRepo *repository.LibraryRepository) *LibraryService {
	return &LibraryService{libraryRepo: libraryRepo}
}

// List retrieves libraries with pagination, newest first.
func (s *LibraryService) List(ctx context.Context, page, perPage int, search string) ([]model.Library, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	libraries, total, err := s.libraryRepo.ListPaginated(ctx, perPage, (page-1)*perPage, strings.TrimSpace(search))
	if err != nil {
		return nil, nil, err
	}
	if libraries == nil {
		libraries = []model.Library{}
	}
	return libraries, response.NewPagination(page, perPage, total), nil
}

// Get retrieves a library by id.
func (s *LibraryService) Get(ctx context.Context, id uuid.UUID) (*model.Library, error) {
	l, err := s.libraryRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLibraryNotFound
	}
	return l, err
}

// EnsureExists returns ErrLibraryNotFound unless the library exists.
func (s *LibraryService) EnsureExists(ctx context.Context, id uuid.UUID) error {
	ok, err := s.libraryRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLibraryNotFound
	}
	return nil
}

// Create adds a library owned by ownerID.
func (s *LibraryService) Create(ctx context.Context, req *model.CreateLibraryRequest, ownerID int) (*model.Library, error) {
	l := &model.Library{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     &ownerID,
	}
	if err := s.libraryRepo.Create(ctx, l); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLibraryExists
		}
		return nil, err
	}
	return l, nil
}

// Update changes the fields present in req.
func (s *LibraryService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateLibraryRequest) (*model.Library, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		l.Name = name
	}
	if req.Description != "" {
		l.Description = strings.TrimSpace(req.Description)
	}

	if err := s.libraryRepo.Update(ctx, l); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrLibraryExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrLibraryNotFound
		}
		return nil, err
	}
	return l, nil
}

// Delete removes a library together with its questions and papers.
func (s *LibraryService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.libraryRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLibraryNotFound
	}
	return err
}

// normalizePage clamps pagination parameters to 1..100 items per page.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
