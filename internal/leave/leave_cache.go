package leave

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const LeaveCacheKeyPrefix = "leaves:user:"

func GetLeaveCacheKey(userID string, date time.Time) string {
	return LeaveCacheKeyPrefix + userID + ":" + date.Format(DateLayout)
}

type cachedLookup struct {
	next   Lookup
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewCachedLookup puts a Redis read-through cache in front of next. Every
// session polls leaves on the status interval, so concurrent misses for the
// same key collapse into one upstream call. A nil rdb only de-duplicates.
func NewCachedLookup(next Lookup, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Lookup {
	l := zap.L().Named("leave.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.cache")
	}
	return &cachedLookup{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (c *cachedLookup) GetLeaveForUser(ctx context.Context, userID string, date time.Time) ([]Record, error) {
	cacheKey := GetLeaveCacheKey(userID, date)

	if c.rdb != nil && c.ttl > 0 {
		if cached, err := c.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var rows []LeaveResponse
			if json.Unmarshal([]byte(cached), &rows) == nil {
				return fromCached(rows), nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("leave cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	v, err, _ := c.sf.Do(cacheKey, func() (interface{}, error) {
		records, err := c.next.GetLeaveForUser(ctx, userID, date)
		if err != nil {
			return nil, err
		}

		if c.rdb != nil && c.ttl > 0 {
			rows := make([]LeaveResponse, len(records))
			for i, r := range records {
				rows[i] = mapToResponse(r)
			}
			if payload, err := json.Marshal(rows); err == nil {
				if err := c.rdb.Set(ctx, cacheKey, payload, c.ttl).Err(); err != nil {
					c.logger.Warn("leave cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]Record), nil
}

func fromCached(rows []LeaveResponse) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if rec, err := row.toRecord(); err == nil {
			records = append(records, rec)
		}
	}
	return records
}
