package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/qbank-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, library_id, question_text, answer_text, question_type, difficulty, created_at, updated_at`

func scanQuestion(row interface{ Scan(...interface{}) error }, q *model.Question) error {
	return row.Scan(&q.ID, &q.LibraryID, &q.QuestionText, &q.AnswerText, &q.QuestionType, &q.Difficulty, &q.CreatedAt, &q.UpdatedAt)
}

// Exists reports whether libraryID already holds a question with exactly
// this text.
func (r *QuestionRepository) Exists(ctx context.Context, questionText string, libraryID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM questions
		   WHERE library_id = $1 AND md5(question_text) = md5($2) AND question_text = $2)`,
		libraryID, questionText,
	).Scan(&ok)
	return ok, err
}

// Insert adds a question. A question whose text already exists in the
// library is not written and ErrDuplicate is returned.
func (r *QuestionRepository) Insert(ctx context.Context, q *model.Question) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO questions (library_id, question_text, answer_text, question_type, difficulty)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (library_id, md5(question_text)) DO NOTHING
		 RETURNING id, created_at, updated_at`,
		q.LibraryID, q.QuestionText, q.AnswerText, q.QuestionType, q.Difficulty,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	err = mapErr(err)
	if errors.Is(err, ErrNotFound) {
		return ErrDuplicate
	}
	return err
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	row := r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	if err := scanQuestion(row, q); err != nil {
		return nil, mapErr(err)
	}
	return q, nil
}

// ListByLibrary retrieves a page of questions in insertion order.
func (r *QuestionRepository) ListByLibrary(ctx context.Context, libraryID uuid.UUID, f model.QuestionFilter, limit, offset int) ([]model.Question, int, error) {
	conds := []string{"library_id = $1"}
	args := []interface{}{libraryID}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, "question_type = $"+strconv.Itoa(len(args)))
	}
	if f.Difficulty != 0 {
		args = append(args, f.Difficulty)
		conds = append(conds, "difficulty = $"+strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, "question_text ILIKE $"+strconv.Itoa(len(args)))
	}
	where := ` WHERE ` + strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argIdx := len(args) + 1
	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		` ORDER BY created_at, id LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// ListCandidates returns every question of one type in a library, optionally
// restricted to a difficulty. Used for paper sampling.
func (r *QuestionRepository) ListCandidates(ctx context.Context, libraryID uuid.UUID, qtype model.QuestionType, difficulty model.Difficulty) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE library_id = $1 AND question_type = $2`
	args := []interface{}{libraryID, qtype}
	if difficulty != 0 {
		query += ` AND difficulty = $3`
		args = append(args, difficulty)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Update modifies a question in place.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE questions
		 SET question_text = $1, answer_text = $2, question_type = $3, difficulty = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING library_id, created_at, updated_at`,
		q.QuestionText, q.AnswerText, q.QuestionType, q.Difficulty, q.ID,
	).Scan(&q.LibraryID, &q.CreatedAt, &q.UpdatedAt)
	return mapErr(err)
}

// Delete removes a question by ID.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBatch removes the listed questions that belong to libraryID and
// returns how many were deleted.
func (r *QuestionRepository) DeleteBatch(ctx context.Context, libraryID uuid.UUID, ids []uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM questions WHERE library_id = $1 AND id = ANY($2)`,
		libraryID, ids,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
