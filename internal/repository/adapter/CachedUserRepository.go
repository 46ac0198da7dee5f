package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cache "github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/cache/port"
	repository "github.com/levanmartirosyan/Tbilink-BE/internal/repository/port"
)

const userCacheTTL = 5 * time.Minute

// CachedUserRepository decorates a UserRepository with a read-through cache.
// Message and notification payloads look up sender profiles on every send, so
// those reads are served from the cache when possible. Cache failures fall back
// to the underlying repository.
type CachedUserRepository struct {
	inner repository.UserRepository
	cache cache.Cache
}

func NewCachedUserRepository(inner repository.UserRepository, c cache.Cache) *CachedUserRepository {
	return &CachedUserRepository{inner: inner, cache: c}
}

var _ repository.UserRepository = (*CachedUserRepository)(nil)

func (r *CachedUserRepository) GetUserByID(ctx context.Context, userID int64) (*repository.User, error) {
	key := userCacheKey(userID)

	if raw, err := r.cache.Get(ctx, key); err == nil {
		var u repository.User
		if jsonErr := json.Unmarshal([]byte(raw), &u); jsonErr == nil {
			return &u, nil
		}
		// Corrupt entry: drop it and fall through to the source of truth.
		_, _ = r.cache.Del(ctx, key)
	} else if !errors.Is(err, cache.ErrMiss) {
		// Transport error: serve from the repository, do not fail the caller.
		return r.inner.GetUserByID(ctx, userID)
	}

	u, err := r.inner.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if raw, jsonErr := json.Marshal(u); jsonErr == nil {
		_ = r.cache.Set(ctx, key, string(raw), userCacheTTL)
	}
	return u, nil
}

func (r *CachedUserRepository) UpdateLastActive(ctx context.Context, userID int64, at time.Time) error {
	if err := r.inner.UpdateLastActive(ctx, userID, at); err != nil {
		return err
	}
	_, _ = r.cache.Del(ctx, userCacheKey(userID))
	return nil
}

func userCacheKey(userID int64) string {
	return fmt.Sprintf("user:profile:%d", userID)
}
