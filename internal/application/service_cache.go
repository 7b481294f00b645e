package application

import (
	"context"
	"encoding/json"
)

const (
	cachePrefixPosts        = "posts:"
	cachePrefixEvents       = "events:"
	cachePrefixPages        = "pages:"
	cachePrefixTransparency = "transparency:"
)

// readCache decodes a cached value into dest. Cache errors count as misses.
func (s *Service) readCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logWarn(ctx, "cache_get", "content cache read failed", err, "key", key)
		return false
	}
	if raw == nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *Service) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.PublicCacheTTL); err != nil {
		s.logWarn(ctx, "cache_set", "content cache write failed", err, "key", key)
	}
}

func (s *Service) invalidateCache(ctx context.Context, prefix string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
		s.logWarn(ctx, "cache_invalidate", "content cache invalidation failed", err, "prefix", prefix)
	}
}
