package checkpoint

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const localhost = "127.0.0.1:6379"

// Redis stores cursors in Redis, for connectors that run on more than one
// host or want cursors to outlive the working directory.
type Redis struct {
	appName string
	client  *redis.Client
}

// RedisOption overrides defaults when creating a Redis store.
type RedisOption func(*Redis)

// WithClient overrides the default client.
func WithClient(client *redis.Client) RedisOption {
	return func(r *Redis) {
		r.client = client
	}
}

// NewRedis returns a cursor store backed by Redis. addr is used when no
// client is supplied; empty addr falls back to localhost.
func NewRedis(appName, addr string, opts ...RedisOption) (*Redis, error) {
	if appName == "" {
		return nil, fmt.Errorf("must provide app name")
	}

	r := &Redis{appName: appName}
	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		if addr == "" {
			addr = localhost
		}
		r.client = redis.NewClient(&redis.Options{Addr: addr})
	}

	if _, err := r.client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Redis) Get(connector, endpoint string) (string, error) {
	val, err := r.client.Get(context.Background(), r.key(connector, endpoint)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *Redis) Set(connector, endpoint, cursor string) error {
	if cursor == "" {
		return fmt.Errorf("cursor should not be empty")
	}
	return r.client.Set(context.Background(), r.key(connector, endpoint), cursor, 0).Err()
}

func (r *Redis) Clear(connector, endpoint string) error {
	return r.client.Del(context.Background(), r.key(connector, endpoint)).Err()
}

// key generates a unique Redis key for cursor storage.
func (r *Redis) key(connector, endpoint string) string {
	return fmt.Sprintf("%v:checkpoint:%v:%v", r.appName, connector, endpoint)
}
