package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/model"
)

// PaperRepository handles generated paper data access.
type PaperRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPaperRepository creates a new PaperRepository.
func NewPaperRepository(pool *pgxpool.Pool, log zerolog.Logger) *PaperRepository {
	return &PaperRepository{
		pool: pool,
		log:  log.With().Str("component", "paper_repository").Logger(),
	}
}

// CreateWithQuestions writes the paper row and its ordered question links in
// a single transaction.
func (r *PaperRepository) CreateWithQuestions(ctx context.Context, p *model.Paper) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.log.Error().Err(rbErr).Msg("failed to rollback paper transaction")
			}
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO papers (library_id, title, description, author_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.LibraryID, p.Title, p.Description, p.AuthorID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert paper: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"paper_questions"},
		[]string{"paper_id", "question_id", "order_num"},
		pgx.CopyFromSlice(len(p.Questions), func(i int) ([]interface{}, error) {
			return []interface{}{p.ID, p.Questions[i].ID, p.Questions[i].Order}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("insert paper questions: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit paper: %w", err)
	}
	return nil
}

// GetByID retrieves a paper with its questions in paper order.
func (r *PaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Paper, error) {
	p := &model.Paper{}
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.library_id, l.name, p.title, p.description, p.author_id, p.created_at
		 FROM papers p JOIN libraries l ON l.id = p.library_id
		 WHERE p.id = $1`, id,
	).Scan(&p.ID, &p.LibraryID, &p.LibraryName, &p.Title, &p.Description, &p.AuthorID, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.library_id, q.question_text, q.answer_text, q.question_type, q.difficulty,
		        q.created_at, q.updated_at, pq.order_num
		 FROM paper_questions pq JOIN questions q ON q.id = pq.question_id
		 WHERE pq.paper_id = $1
		 ORDER BY pq.order_num`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pq model.PaperQuestion
		if err := rows.Scan(&pq.ID, &pq.LibraryID, &pq.QuestionText, &pq.AnswerText, &pq.QuestionType,
			&pq.Difficulty, &pq.CreatedAt, &pq.UpdatedAt, &pq.Order); err != nil {
			return nil, err
		}
		p.Questions = append(p.Questions, pq)
	}
	return p, rows.Err()
}

// ListPaginated retrieves papers newest first. Pass authorID=0 to list all.
func (r *PaperRepository) ListPaginated(ctx context.Context, authorID, limit, offset int) ([]model.Paper, int, error) {
	where := ""
	var args []interface{}
	if authorID > 0 {
		where = ` WHERE p.author_id = $1`
		args = append(args, authorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM papers p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argIdx := len(args) + 1
	query := fmt.Sprintf(
		`SELECT p.id, p.library_id, l.name, p.title, p.description, p.author_id, p.created_at
		 FROM papers p JOIN libraries l ON l.id = p.library_id%s
		 ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var papers []model.Paper
	for rows.Next() {
		var p model.Paper
		if err := rows.Scan(&p.ID, &p.LibraryID, &p.LibraryName, &p.Title, &p.Description, &p.AuthorID, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		papers = append(papers, p)
	}
	return papers, total, rows.Err()
}

// Delete removes a paper and its question links.
func (r *PaperRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM papers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
