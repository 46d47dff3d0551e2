package data

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamMissions receives mission lifecycle events.
const StreamMissions = "spycat.missions"

// OpenRedis parses url and returns a client. An empty url yields nil.
func OpenRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}

// PublishEvent appends payload to stream.
func PublishEvent(ctx context.Context, rdb *redis.Client, stream string, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: 10000,
		Approx: true,
		Values: payload,
	}).Result()
	return err
}
