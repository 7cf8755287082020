package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	UserTokenPrefix   = "login:user:token"
	UserRefreshPrefix = "login:user:refresh"
)

// TokenRepository 每个用户只保留一对有效 token，新登录会顶掉旧的
type TokenRepository struct {
	rdb        *redis.Client
	ttl        time.Duration
	refreshTTL time.Duration
}

func NewTokenRepository(rdb *redis.Client, ttl, refreshTTL time.Duration) *TokenRepository {
	return &TokenRepository{rdb: rdb, ttl: ttl, refreshTTL: refreshTTL}
}

func (r *TokenRepository) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, userID)
}

func (r *TokenRepository) refreshKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserRefreshPrefix, userID)
}

func (r *TokenRepository) Save(ctx context.Context, userID uint64, token string) error {
	if err := r.rdb.Set(ctx, r.key(userID), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, userID uint64) (string, error) {
	token, err := r.rdb.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

// Extend 滑动过期
func (r *TokenRepository) Extend(ctx context.Context, userID uint64) error {
	if err := r.rdb.Expire(ctx, r.key(userID), r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// SaveRefresh 覆盖旧的 refresh token，旧的随即作废
func (r *TokenRepository) SaveRefresh(ctx context.Context, userID uint64, token string) error {
	if err := r.rdb.Set(ctx, r.refreshKey(userID), token, r.refreshTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *TokenRepository) GetRefresh(ctx context.Context, userID uint64) (string, error) {
	token, err := r.rdb.Get(ctx, r.refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

// Delete 同时清掉 access 和 refresh
func (r *TokenRepository) Delete(ctx context.Context, userID uint64) error {
	if err := r.rdb.Del(ctx, r.key(userID), r.refreshKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
