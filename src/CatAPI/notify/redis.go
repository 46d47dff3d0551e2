package notify

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/CatAPI/data"
)

// RedisStream appends every event to a Redis stream for downstream consumers.
type RedisStream struct {
	rdb    *redis.Client
	stream string
}

func NewRedisStream(rdb *redis.Client, stream string) *RedisStream {
	if stream == "" {
		stream = data.StreamMissions
	}
	return &RedisStream{rdb: rdb, stream: stream}
}

func (p *RedisStream) Publish(ctx context.Context, ev agency.Event) error {
	payload := map[string]interface{}{
		"type":       ev.Type,
		"mission_id": ev.MissionID,
		"time":       ev.At.Unix(),
	}
	if ev.CatID != nil {
		payload["cat_id"] = *ev.CatID
	}
	return data.PublishEvent(context.WithoutCancel(ctx), p.rdb, p.stream, payload)
}
