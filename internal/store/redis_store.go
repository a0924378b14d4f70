package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotTTL = 24 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return &RedisStore{client: c}, nil
}

func snapshotKey(pollID string) string {
	return fmt.Sprintf("poll:%s:results", pollID)
}

func (rs *RedisStore) Save(ctx context.Context, pollID string, snapshot []byte) (bool, error) {
	key := snapshotKey(pollID)

	pipe := rs.client.TxPipeline()
	prevCmd := pipe.GetSet(ctx, key, snapshot)
	pipe.Expire(ctx, key, snapshotTTL)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("error executing redis pipeline: %w", err)
	}

	prev, err := prevCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("error getting previous snapshot: %w", err)
	}

	return !bytes.Equal(prev, snapshot), nil
}

func (rs *RedisStore) Latest(ctx context.Context, pollID string) ([]byte, error) {
	data, err := rs.client.Get(ctx, snapshotKey(pollID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("error getting snapshot from redis: %w", err)
	}
	return data, nil
}

func (rs *RedisStore) Close() error {
	if err := rs.client.Close(); err != nil {
		return fmt.Errorf("error closing redis client: %w", err)
	}
	return nil
}
