package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
)

const keyPrefix = "availability"

// AvailabilityRedis caches per-day availability answers. Entries hold the
// slots before the lead-time cut, so they stay valid while the clock moves.
type AvailabilityRedis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewAvailabilityRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *AvailabilityRedis {
	return &AvailabilityRedis{client: client, ttl: ttl, log: log}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  300 * time.Millisecond,
		WriteTimeout: 300 * time.Millisecond,
	})
}

// Generation keys live far longer than any entry, so an expired counter
// can only restart at a value whose entries are long gone.
const generationTTL = 7 * 24 * time.Hour

func providerGenKey(providerID uint) string {
	return fmt.Sprintf("%s:gen:%d", keyPrefix, providerID)
}

func dayGenKey(providerID uint, date string) string {
	return fmt.Sprintf("%s:gen:%d:%s", keyPrefix, providerID, date)
}

// Key addresses one answer. gen comes from Generation, read before the
// answer is computed, so an answer computed across an invalidation is stored
// under a key nobody reads any more.
func Key(providerID uint, date, gen string, durationMinutes int, mode string) string {
	return fmt.Sprintf("%s:%d:%s:%s:%d:%s", keyPrefix, providerID, date, gen, durationMinutes, mode)
}

// Generation returns the current version of the provider's day. ok is false
// when redis cannot answer; callers then skip the cache entirely.
func (c *AvailabilityRedis) Generation(ctx context.Context, providerID uint, date string) (string, bool) {
	vals, err := c.client.MGet(ctx, providerGenKey(providerID), dayGenKey(providerID, date)).Result()
	if err != nil {
		c.log.Debug("availability cache generation failed", zap.Uint("provider_id", providerID), zap.Error(err))
		return "", false
	}
	return genPart(vals[0]) + "." + genPart(vals[1]), true
}

func genPart(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "0"
}

// Get reports a miss on any error; the caller recomputes from the database.
func (c *AvailabilityRedis) Get(ctx context.Context, key string) (*booking.Availability, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Debug("availability cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var a booking.Availability
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (c *AvailabilityRedis) Set(ctx context.Context, key string, a *booking.Availability) {
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Debug("availability cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateDay moves the day to a new generation. Entries of the old one
// are never read again and age out with their TTL.
func (c *AvailabilityRedis) InvalidateDay(ctx context.Context, providerID uint, date string) error {
	return c.bump(ctx, dayGenKey(providerID, date))
}

// InvalidateProvider moves every day of the provider to a new generation,
// used when working hours change.
func (c *AvailabilityRedis) InvalidateProvider(ctx context.Context, providerID uint) error {
	return c.bump(ctx, providerGenKey(providerID))
}

func (c *AvailabilityRedis) bump(ctx context.Context, key string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, generationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("bump %s: %w", key, err)
	}
	return nil
}

// Nop never hits. Used when no redis address is configured.
type Nop struct{}

func (Nop) Generation(context.Context, uint, string) (string, bool)     { return "", false }
func (Nop) Get(context.Context, string) (*booking.Availability, bool) { return nil, false }
func (Nop) Set(context.Context, string, *booking.Availability)        {}
func (Nop) InvalidateDay(context.Context, uint, string) error         { return nil }
func (Nop) InvalidateProvider(context.Context, uint) error            { return nil }
