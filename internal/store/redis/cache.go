package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"restoledger/internal/domain/event"
)

// EventCache is a non-load-bearing idempotency fast path: a repeated event_id
// can be answered without touching postgres. The unique index on event_id
// remains the real guard; cache misses and outages just fall through.
type EventCache struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

func NewEventCache(addr, namespace string) *EventCache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	return &EventCache{client: client, namespace: namespace, ttl: 24 * time.Hour}
}

func (c *EventCache) key(eventID string) string {
	return c.namespace + ":event:" + eventID
}

func (c *EventCache) Get(ctx context.Context, eventID string) (*event.ProcessorEvent, bool) {
	raw, err := c.client.Get(ctx, c.key(eventID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("event_id", eventID).Msg("event cache unavailable, falling through to db")
		}
		return nil, false
	}
	var e event.ProcessorEvent
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		log.Warn().Err(err).Str("event_id", eventID).Msg("corrupt event cache entry, evicting")
		_ = c.client.Del(ctx, c.key(eventID)).Err()
		return nil, false
	}
	return &e, true
}

func (c *EventCache) Set(ctx context.Context, e *event.ProcessorEvent) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(e.EventID), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("event_id", e.EventID).Msg("event cache set failed")
	}
}

func (c *EventCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *EventCache) Close() error {
	return c.client.Close()
}
