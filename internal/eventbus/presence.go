package eventbus

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceCache mirrors connection heartbeats into Redis so a second
// process (a horizontally-scaled API node) can answer "is anyone
// connected to mission X" without holding the in-memory connection map
// itself. It is a pure cache: the in-memory Bus in this process remains
// the source of truth for delivery, matching spec §9's "the Event Bus is
// a process-wide component."
type PresenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresenceCache wraps an existing Redis client. ttl should exceed
// heartbeatTimeout so a node restart doesn't flap presence.
func NewPresenceCache(client *redis.Client, ttl time.Duration) *PresenceCache {
	if ttl <= 0 {
		ttl = heartbeatTimeout + heartbeatInterval
	}
	return &PresenceCache{client: client, ttl: ttl}
}

func presenceKey(missionOrSessionID string) string {
	return "maestro:presence:" + missionOrSessionID
}

// Touch records that connectionID is present for id, refreshing the TTL.
func (p *PresenceCache) Touch(ctx context.Context, id, connectionID string) error {
	if p == nil || p.client == nil {
		return nil
	}
	if err := p.client.SAdd(ctx, presenceKey(id), connectionID).Err(); err != nil {
		return err
	}
	return p.client.Expire(ctx, presenceKey(id), p.ttl).Err()
}

// Remove drops connectionID from id's presence set.
func (p *PresenceCache) Remove(ctx context.Context, id, connectionID string) error {
	if p == nil || p.client == nil {
		return nil
	}
	if err := p.client.SRem(ctx, presenceKey(id), connectionID).Err(); err != nil {
		return err
	}
	return p.client.Expire(ctx, presenceKey(id), p.ttl).Err()
}

// HasSubscribers reports whether any connection, in any process, is
// currently subscribed to id. Used by the mission controller to skip
// expensive streaming-chunk fan-out when nobody is watching.
func (p *PresenceCache) HasSubscribers(ctx context.Context, id string) (bool, error) {
	if p == nil || p.client == nil {
		return true, nil // no cache configured: assume someone might be watching
	}
	n, err := p.client.SCard(ctx, presenceKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
