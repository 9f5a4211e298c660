package emitter

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const RedisEmitterIdentifier = "redis"

const DefaultRedisStream = "elb_access_log"

// RedisEmitter appends events to a Redis stream, the JSON encoded event in the "payload" field
type RedisEmitter struct {
	client *redis.Client
	stream string
	// approximate stream cap, 0 for unbounded
	maxLen int64
}

func NewRedisEmitter(ctx context.Context, address, stream string, maxLen int64) (*RedisEmitter, error) {
	if stream == "" {
		stream = DefaultRedisStream
	}
	client := redis.NewClient(&redis.Options{Addr: address})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", address, err)
	}
	slog.Info("Initialized RedisEmitter", "address", address, "stream", stream, "max_len", maxLen)

	return &RedisEmitter{client: client, stream: stream, maxLen: maxLen}, nil
}

func (e *RedisEmitter) Identifier() string {
	return RedisEmitterIdentifier
}

func (e *RedisEmitter) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(jsonLine{Tag: event.Tag, Time: event.Time, Record: event.Record})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: e.stream,
		Values: map[string]interface{}{"payload": payload},
	}
	if e.maxLen > 0 {
		args.MaxLen = e.maxLen
		args.Approx = true
	}

	if err := e.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	return nil
}

func (e *RedisEmitter) Close() error {
	return e.client.Close()
}
