package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/qbank-backend/internal/model"
)

// StatisticsRepository aggregates installation-wide counts.
type StatisticsRepository struct {
	pool *pgxpool.Pool
}

// NewStatisticsRepository creates a new StatisticsRepository.
func NewStatisticsRepository(pool *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{pool: pool}
}

// GetSummaryCounts retrieves the headline totals.
func (r *StatisticsRepository) GetSummaryCounts(ctx context.Context) (libraries, questions, papers int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM libraries),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM papers)`,
	).Scan(&libraries, &questions, &papers)
	return
}

// GetTypeCounts retrieves the number of questions per type.
func (r *StatisticsRepository) GetTypeCounts(ctx context.Context) (map[model.QuestionType]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT question_type, COUNT(*) FROM questions GROUP BY question_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.QuestionType]int)
	for rows.Next() {
		var t model.QuestionType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// GetDifficultyCounts retrieves the number of questions per difficulty level.
func (r *StatisticsRepository) GetDifficultyCounts(ctx context.Context) (map[model.Difficulty]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT difficulty, COUNT(*) FROM questions GROUP BY difficulty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Difficulty]int)
	for rows.Next() {
		var d model.Difficulty
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, err
		}
		counts[d] = n
	}
	return counts, rows.Err()
}
