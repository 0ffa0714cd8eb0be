package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const authHashKey = "users:auth"

type Config struct {
	Addr         string
	Password     string
	AuthCacheTTL time.Duration
}

// AuthCache memoizes credential lookups so the hot request path does not
// hit Postgres for every Basic auth header. Entries map an encoded
// email:password-hash pair to a user id.
type AuthCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAuthCache(cfg Config) (*AuthCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &AuthCache{client: rdb, ttl: cfg.AuthCacheTTL}, nil
}

func authKey(email, passwordHash string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":" + passwordHash))
}

// GetUserID returns the cached user id for the credentials, or 0 with a
// nil error on a cache miss.
func (c *AuthCache) GetUserID(ctx context.Context, email, passwordHash string) (int64, error) {
	val, err := c.client.HGet(ctx, authHashKey, authKey(email, passwordHash)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id in cache: %w", err)
	}
	return userID, nil
}

// PutUserID stores a verified credential pair. The hash field carries no
// per-field TTL, so the whole hash is refreshed on each write.
func (c *AuthCache) PutUserID(ctx context.Context, email, passwordHash string, userID int64) error {
	key := authKey(email, passwordHash)
	if err := c.client.HSet(ctx, authHashKey, key, strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("cache store error: %w", err)
	}
	if c.ttl > 0 {
		if err := c.client.Expire(ctx, authHashKey, c.ttl).Err(); err != nil {
			return fmt.Errorf("cache expire error: %w", err)
		}
	}
	return nil
}

func (c *AuthCache) Close() error {
	return c.client.Close()
}
