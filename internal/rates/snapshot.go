package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Snapshotter shares the last good table between processes.
type Snapshotter interface {
	LoadRates(ctx context.Context, base string) (Table, bool, error)
	SaveRates(ctx context.Context, base string, table Table) error
}

// RedisSnapshot keeps the table under rates:latest:{base} with a TTL.
type RedisSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshot connects to Redis and pings it.
func NewRedisSnapshot(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisSnapshot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSnapshot{client: client, ttl: ttl}, nil
}

func snapshotKey(base string) string {
	return "rates:latest:" + base
}

func (s *RedisSnapshot) LoadRates(ctx context.Context, base string) (Table, bool, error) {
	data, err := s.client.Get(ctx, snapshotKey(base)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(table) == 0 {
		return nil, false, nil
	}
	return table, true, nil
}

func (s *RedisSnapshot) SaveRates(ctx context.Context, base string, table Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKey(base), data, s.ttl).Err()
}

func (s *RedisSnapshot) Close() error {
	return s.client.Close()
}
