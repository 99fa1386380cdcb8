package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diewo77/go-talent/internal/logger"
	"github.com/diewo77/go-talent/internal/models"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "talent:profile:"
	generationKey = keyPrefix + "generation"
	userGenPrefix = keyPrefix + "usergen:"
	// userGenTTL must stay well above the profile TTL: a counter that expires
	// restarts at zero, which is only safe once every entry keyed by it is gone.
	userGenTTL = 24 * time.Hour
)

// Redis shares cached profiles between server instances. Every key carries the
// global generation (bumped by InvalidateAll) and the user's generation (bumped
// by Invalidate), so invalidating moves readers to a fresh key and a late Set
// lands on a key nobody reads. Stale entries simply expire. Redis failures are
// logged and treated as cache misses.
type Redis struct {
	client goredis.UniversalClient
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func NewRedis(client goredis.UniversalClient, ttl time.Duration, log *logger.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, log: log.With("component", "ProfileCache")}
}

func (r *Redis) key(ctx context.Context, userID string) (string, error) {
	vals, err := r.client.MGet(ctx, generationKey, userGenPrefix+userID).Result()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, counter(vals[0]), counter(vals[1]), userID), nil
}

// counter renders an MGET reply slot, where a missing key counts as zero.
func counter(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "0"
}

func (r *Redis) Get(ctx context.Context, userID string) (models.UserProfile, Stamp, bool) {
	key, err := r.key(ctx, userID)
	if err != nil {
		r.log.Warn("profile cache unavailable", "error", err)
		return nil, "", false
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, Stamp(key), false
	}
	if err != nil {
		r.log.Warn("profile cache read failed", "user_id", userID, "error", err)
		return nil, "", false
	}
	var p models.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Warn("profile cache entry corrupt", "user_id", userID, "error", err)
		return nil, Stamp(key), false
	}
	return p, Stamp(key), true
}

// Set writes to the key captured by Get. An empty stamp means Get could not
// reach Redis, so nothing is written.
func (r *Redis) Set(ctx context.Context, userID string, stamp Stamp, profile models.UserProfile) {
	if stamp == "" {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, string(stamp), data, r.ttl).Err(); err != nil {
		r.log.Warn("profile cache write failed", "user_id", userID, "error", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, userID string) {
	key := userGenPrefix + userID
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, userGenTTL)
		return nil
	})
	if err != nil {
		r.log.Warn("profile cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (r *Redis) InvalidateAll(ctx context.Context) {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		r.log.Warn("profile cache generation bump failed", "error", err)
	}
}
