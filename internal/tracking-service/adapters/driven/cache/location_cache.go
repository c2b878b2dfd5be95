package cache

import (
	"context"
	"encoding/json"
	"time"

	"bus-fleet/internal/config"
	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/observability"
	"bus-fleet/internal/tracking-service/core/domain/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fleet:current:"

// LocationCache holds each vehicle's latest position in Redis with a TTL.
// It is a soft dependency: every failure is logged, counted and swallowed,
// and callers fall back to the durable log.
type LocationCache struct {
	rdb *redis.Client
	ttl time.Duration
	log mylogger.Logger
}

// Connect pings Redis; on failure the cache is still returned in degraded
// mode (every read is a miss, every write a no-op) so that ingestion never
// depends on cache availability.
func Connect(ctx context.Context, cfg *config.Redisconfig, log mylogger.Logger) *LocationCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, location cache degraded", "addr", cfg.Addr, "err", err.Error())
		return &LocationCache{rdb: nil, ttl: cfg.CurrentTTL, log: log}
	}
	log.Info("location cache connected", "addr", cfg.Addr)
	return &LocationCache{rdb: rdb, ttl: cfg.CurrentTTL, log: log}
}

// SetCurrent overwrites the vehicle's cached position unless the cached
// entry is newer than the incoming one. The monotonicity check keeps a
// delayed report from clobbering a fresher position.
func (c *LocationCache) SetCurrent(ctx context.Context, loc model.CurrentLocation) {
	if c.rdb == nil {
		return
	}
	log := c.log.Action("cache_set").With("vehicle_id", loc.VehicleID)

	if cached, ok := c.GetCurrent(ctx, loc.VehicleID); ok && cached.Timestamp.After(loc.Timestamp) {
		log.Debug("stale report, keeping newer cached position",
			"cached_at", cached.Timestamp, "report_at", loc.Timestamp)
		return
	}

	payload, err := json.Marshal(loc)
	if err != nil {
		observability.CacheErrors.Inc()
		log.Warn("marshal cache entry failed", "err", err.Error())
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+loc.VehicleID, payload, c.ttl).Err(); err != nil {
		observability.CacheErrors.Inc()
		log.Warn("cache write failed", "err", err.Error())
	}
}

// GetCurrent returns the cached position, reporting expiry and outages as
// a plain miss.
func (c *LocationCache) GetCurrent(ctx context.Context, vehicleID string) (model.CurrentLocation, bool) {
	if c.rdb == nil {
		return model.CurrentLocation{}, false
	}
	val, err := c.rdb.Get(ctx, keyPrefix+vehicleID).Result()
	if err != nil {
		if err != redis.Nil {
			observability.CacheErrors.Inc()
			c.log.Action("cache_get").Warn("cache read failed", "vehicle_id", vehicleID, "err", err.Error())
		}
		return model.CurrentLocation{}, false
	}
	var loc model.CurrentLocation
	if err := json.Unmarshal([]byte(val), &loc); err != nil {
		observability.CacheErrors.Inc()
		return model.CurrentLocation{}, false
	}
	return loc, true
}
