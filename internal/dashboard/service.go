// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Deeazer/company-crm/internal/core"
)

const cacheKey = "dashboard:stats"

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService caches stats for ttl. A nil cache or zero ttl disables it.
func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// Stats serves from the cache when possible. Cache failures never fail the
// request.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if s.cacheEnabled() {
		var cached Stats
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, core.ErrCacheMiss) {
			slog.WarnContext(ctx, "dashboard cache read failed", "error", err)
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, stats, s.ttl); err != nil {
			slog.WarnContext(ctx, "dashboard cache write failed", "error", err)
		}
	}

	return stats, nil
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}
