package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"gradebox/internal/domain/model"
	"gradebox/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const leaderboardCacheKey = "leaderboard:v1"

// LeaderboardService serves the score ranking with a short-lived Redis cache
// in front of the database. The cache is a read optimization only: entries
// expire on their own, so a fresh acceptance shows up within the TTL.
type LeaderboardService struct {
	userRepo repository.UserRepository
	rdb      *redis.Client
	ttl      time.Duration
	limit    int
	logger   *slog.Logger
}

func NewLeaderboardService(userRepo repository.UserRepository, rdb *redis.Client, ttl time.Duration, limit int, logger *slog.Logger) *LeaderboardService {
	if limit <= 0 {
		limit = 50
	}
	return &LeaderboardService{userRepo: userRepo, rdb: rdb, ttl: ttl, limit: limit, logger: logger}
}

func (s *LeaderboardService) Top(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, leaderboardCacheKey).Bytes()
		if err == nil {
			var entries []model.LeaderboardEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("leaderboard cache read failed", "error", err)
		}
	}

	entries, err := s.userRepo.Leaderboard(ctx, s.limit)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, leaderboardCacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("leaderboard cache write failed", "error", err)
			}
		}
	}
	return entries, nil
}
