package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/qbank-backend/internal/model"
	_ "modernc.org/sqlite" // driver: sqlite
)

// SQLiteQuestionStore is a single-file question store used by the offline
// CLI and by tests. It implements the same Exists/Insert pair as
// QuestionRepository.
type SQLiteQuestionStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// ensures the schema exists. Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteQuestionStore, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path + "?mode=rwc&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &SQLiteQuestionStore{db: db}, nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  library_id TEXT NOT NULL,
  question_text TEXT NOT NULL CHECK (trim(question_text) <> ''),
  answer_text TEXT NOT NULL,
  question_type TEXT NOT NULL,
  difficulty INTEGER NOT NULL DEFAULT 2,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE (library_id, question_text)
);
`

// Close releases the underlying database.
func (s *SQLiteQuestionStore) Close() error {
	return s.db.Close()
}

// Exists reports whether libraryID already holds a question with exactly
// this text.
func (s *SQLiteQuestionStore) Exists(ctx context.Context, questionText string, libraryID uuid.UUID) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE library_id = ? AND question_text = ?`,
		libraryID.String(), questionText,
	).Scan(&n)
	return n > 0, err
}

// Insert adds a question. A question whose text already exists in the
// library is not written and ErrDuplicate is returned.
func (s *SQLiteQuestionStore) Insert(ctx context.Context, q *model.Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, library_id, question_text, answer_text, question_type, difficulty, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (library_id, question_text) DO NOTHING`,
		q.ID.String(), q.LibraryID.String(), q.QuestionText, q.AnswerText,
		string(q.QuestionType), int(q.Difficulty), now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicate
	}
	q.CreatedAt, q.UpdatedAt = now, now
	return nil
}

// ListByLibrary returns every question of a library in insertion order.
func (s *SQLiteQuestionStore) ListByLibrary(ctx context.Context, libraryID uuid.UUID) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, library_id, question_text, answer_text, question_type, difficulty, created_at, updated_at
		 FROM questions WHERE library_id = ? ORDER BY rowid`, libraryID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var (
			q                model.Question
			id, lib, qtype   string
			created, updated int64
			difficulty       int
		)
		if err := rows.Scan(&id, &lib, &q.QuestionText, &q.AnswerText, &qtype, &difficulty, &created, &updated); err != nil {
			return nil, err
		}
		if q.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse question id: %w", err)
		}
		if q.LibraryID, err = uuid.Parse(lib); err != nil {
			return nil, fmt.Errorf("parse library id: %w", err)
		}
		q.QuestionType = model.QuestionType(qtype)
		q.Difficulty = model.Difficulty(difficulty)
		q.CreatedAt = time.UnixMilli(created).UTC()
		q.UpdatedAt = time.UnixMilli(updated).UTC()
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Count returns the number of questions stored for a library.
func (s *SQLiteQuestionStore) Count(ctx context.Context, libraryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE library_id = ?`, libraryID.String()).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
