// Package cache provides the Redis read-through cache for offers.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalogs/offer"
)

const offerKeyPrefix = "backoffice:offer:"

// DefaultOfferTTL bounds staleness if an invalidation is lost.
const DefaultOfferTTL = 5 * time.Minute

var _ offer.Cache = (*OfferCache)(nil)

// OfferCache stores offers as JSON under backoffice:offer:<id>.
type OfferCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewOfferCache creates an offer cache over client.
func NewOfferCache(client redis.UniversalClient, ttl time.Duration) *OfferCache {
	if ttl <= 0 {
		ttl = DefaultOfferTTL
	}
	return &OfferCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func offerKey(offerID id.ID) string {
	return offerKeyPrefix + offerID.String()
}

func (c *OfferCache) Get(ctx context.Context, offerID id.ID) (*offer.Offer, bool, error) {
	raw, err := c.client.Get(ctx, offerKey(offerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var o offer.Offer
	if err := json.Unmarshal(raw, &o); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next Set
		return nil, false, nil
	}
	return &o, true, nil
}

func (c *OfferCache) Set(ctx context.Context, o *offer.Offer) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal offer: %w", err)
	}
	if err := c.client.Set(ctx, offerKey(o.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *OfferCache) Invalidate(ctx context.Context, offerIDs ...id.ID) error {
	if len(offerIDs) == 0 {
		return nil
	}
	keys := make([]string, len(offerIDs))
	for i, offerID := range offerIDs {
		keys[i] = offerKey(offerID)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
