package highscore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the keys written by RedisStore
const DefaultRedisPrefix = "game2048"

// raiseScript sets KEYS[1] to ARGV[1] only when it is higher than the stored value
var raiseScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local score = tonumber(ARGV[1])
if score > current then
	redis.call("SET", KEYS[1], ARGV[1])
	return 1
end
return 0
`)

// RedisStore keeps the high score in the <prefix>:highscore key
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr and checks the connection with a PING
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := conn.Ping(ctx).Result(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreFromClient(conn, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. Close closes client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, key: prefix + ":highscore"}
}

// Key returns the Redis key holding the score
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) LoadHighScore(ctx context.Context) (int, error) {
	score, err := s.client.Get(ctx, s.key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to get high score from Redis: %w", err)
	}
	return score, nil
}

func (s *RedisStore) SaveHighScore(ctx context.Context, score int) error {
	if score < 0 {
		return ErrNegativeScore
	}
	if err := raiseScript.Run(ctx, s.client, []string{s.key}, score).Err(); err != nil {
		return fmt.Errorf("failed to save high score in Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
