package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/config"
)

// RateLimitInfo is exposed to clients via X-RateLimit-* headers.
type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimitService implements a fixed-window counter in hot Redis, keyed by
// caller identity and window start.
type RateLimitService struct {
	redis  *redis.Client
	config *config.RateLimitConfig
	logger *logrus.Logger
}

func NewRateLimitService(redisClient *redis.Client, cfg *config.RateLimitConfig, logger *logrus.Logger) *RateLimitService {
	return &RateLimitService{redis: redisClient, config: cfg, logger: logger}
}

// IsAllowed increments the caller's counter for the current window and
// reports whether the request fits under the limit.
func (s *RateLimitService) IsAllowed(ctx context.Context, identity string) (bool, *RateLimitInfo, error) {
	window := s.config.Window
	windowStart := time.Now().Truncate(window)
	key := fmt.Sprintf("ratelimit:%s:%d", identity, windowStart.Unix())

	pipe := s.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, nil, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	count := int(incr.Val())
	info := &RateLimitInfo{
		Limit:     s.config.Requests,
		Remaining: s.config.Requests - count,
		ResetTime: windowStart.Add(window).Unix(),
	}
	if info.Remaining < 0 {
		info.Remaining = 0
	}

	return count <= s.config.Requests, info, nil
}
