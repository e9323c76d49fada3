package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
)

const statisticsCacheTTL = 30 * time.Second

// StatisticsService builds the installation overview. Results are cached in
// Redis briefly because the counts scan whole tables.
type StatisticsService struct {
	repo *repository.StatisticsRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewStatisticsService creates a new StatisticsService. rdb may be nil, in
// which case nothing is cached.
func NewStatisticsService(repo *repository.StatisticsRepository, rdb *redis.Client, log zerolog.Logger) *StatisticsService {
	return &StatisticsService{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "statistics_service").Logger(),
	}
}

// Get returns the current statistics.
func (s *StatisticsService) Get(ctx context.Context) (*model.Statistics, error) {
	key := config.CacheKey.LibraryStatsKey()
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached model.Statistics
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return &cached, nil
			}
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Msg("Statistics cache read failed")
		}
	}

	libraries, questions, papers, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.repo.GetTypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	byDifficulty, err := s.repo.GetDifficultyCounts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.Statistics{
		TotalLibraries:        libraries,
		TotalQuestions:        questions,
		TotalPapers:           papers,
		QuestionsByType:       byType,
		QuestionsByDifficulty: labelDifficulties(byDifficulty),
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, key, payload, statisticsCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Statistics cache write failed")
			}
		}
	}
	return stats, nil
}

func labelDifficulties(counts map[model.Difficulty]int) map[string]int {
	out := make(map[string]int, len(counts))
	for d, n := range counts {
		out[d.Label()] += n
	}
	return out
}
