package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/id"
)

func TestOfferKey(t *testing.T) {
	offerID := id.MustParse("0190f7a2-6c1e-7b3a-9f00-000000000001")
	assert.Equal(t, "backoffice:offer:0190f7a2-6c1e-7b3a-9f00-000000000001", offerKey(offerID))
}

func TestNewOfferCache_DefaultTTL(t *testing.T) {
	c := NewOfferCache(nil, 0)
	assert.Equal(t, DefaultOfferTTL, c.ttl)
	assert.Equal(t, time.Minute, NewOfferCache(nil, time.Minute).ttl)
}

func TestOfferCache_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewOfferCache(client, time.Minute)

	_, ok, err := c.Get(context.Background(), id.New())
	require.Error(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Invalidate(context.Background()))
}
