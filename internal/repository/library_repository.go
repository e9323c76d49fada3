package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/qbank-backend/internal/model"
)

// LibraryRepository handles library data access.
type LibraryRepository struct {
	pool *pgxpool.Pool
}

// NewLibraryRepository creates a new LibraryRepository.
func NewLibraryRepository(pool *pgxpool.Pool) *LibraryRepository {
	return &LibraryRepository{pool: pool}
}

const librarySelect = `SELECT l.id, l.name, l.description, l.owner_id,
	        (SELECT COUNT(*) FROM questions q WHERE q.library_id = l.id),
	        l.created_at, l.updated_at
	 FROM libraries l`

// GetByID retrieves a library with its question count.
func (r *LibraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Library, error) {
	l := &model.Library{}
	err := r.pool.QueryRow(ctx, librarySelect+` WHERE l.id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Description, &l.OwnerID, &l.QuestionCount, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return l, nil
}

// Exists reports whether a library with the given id exists.
func (r *LibraryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM libraries WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// ListPaginated retrieves libraries newest first, optionally filtered by a
// case-insensitive name search.
func (r *LibraryRepository) ListPaginated(ctx context.Context, limit, offset int, search string) ([]model.Library, int, error) {
	// 1. Get total count
	countQuery := `SELECT COUNT(*) FROM libraries l`
	var args []interface{}
	where := ""
	if search != "" {
		where = ` WHERE l.name ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// 2. Get paginated data
	argIdx := len(args) + 1
	query := librarySelect + where +
		` ORDER BY l.created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var libraries []model.Library
	for rows.Next() {
		var l model.Library
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.OwnerID, &l.QuestionCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		libraries = append(libraries, l)
	}
	return libraries, total, rows.Err()
}

// Create inserts a new library. Returns ErrDuplicate if the name is taken.
func (r *LibraryRepository) Create(ctx context.Context, l *model.Library) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO libraries (name, description, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		l.Name, l.Description, l.OwnerID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return mapErr(err)
}

// Update modifies a library's name and description.
func (r *LibraryRepository) Update(ctx context.Context, l *model.Library) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE libraries SET name = $1, description = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		l.Name, l.Description, l.ID,
	).Scan(&l.UpdatedAt)
	return mapErr(err)
}

// Delete removes a library; its questions and papers cascade.
func (r *LibraryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM libraries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
