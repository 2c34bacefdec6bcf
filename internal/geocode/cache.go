package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecohome_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// CachedGeocoder decorates a Geocoder with a Redis cache. Entries expire
// after the configured TTL, which is the staleness policy: backing data
// changes rarely, so a stale-for-TTL coordinate is acceptable. Only
// successful lookups are cached, so misses and outages are retried.
type CachedGeocoder struct {
	inner Geocoder
	rdb   *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner Geocoder, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log,
	}
}

// GeocodePostcode serves from cache when possible, falling back to the inner
// geocoder. Cache failures degrade to an uncached lookup, never to an error.
func (c *CachedGeocoder) GeocodePostcode(ctx context.Context, postcode string) (Result, error) {
	key := cacheKey(postcode)

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var result Result
		if err := json.Unmarshal(cached, &result); err == nil {
			return result, nil
		}
		// Unreadable entry: drop it and re-resolve.
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.log.Debug("geocode cache read failed", "error", err)
	}

	result, err := c.inner.GeocodePostcode(ctx, postcode)
	if err != nil {
		return Result{}, err
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Debug("geocode cache write failed", "error", err)
		}
	}

	return result, nil
}

func cacheKey(postcode string) string {
	return fmt.Sprintf("geocode:postcode:%s", NormalizePostcode(postcode))
}
