// Package cache stores computed portfolio reports in Redis as JSON.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/segyhp/cartera-engine/internal/calendar"
)

const keyPrefix = "cartera"

// Cache is a JSON report cache.
type Cache interface {
	// GetJSON decodes the value at key into dest. found is false on a miss.
	GetJSON(ctx context.Context, key string, dest any) (found bool, err error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// CVReportKey identifies the CV report of a business week.
func CVReportKey(week calendar.WeekRange) string {
	return fmt.Sprintf("%s:cv:%s", keyPrefix, week.Start.Format("2006-01-02"))
}

// MonthlyKPIsKey identifies monthly KPIs. The previous values feed the
// trends, so they are part of the key.
func MonthlyKPIsKey(year, month int, previousBalance *int, previousRate *decimal.Decimal) string {
	balance, rate := "-", "-"
	if previousBalance != nil {
		balance = fmt.Sprint(*previousBalance)
	}
	if previousRate != nil {
		rate = previousRate.String()
	}
	return fmt.Sprintf("%s:kpi:%04d-%02d:%s:%s", keyPrefix, year, month, balance, rate)
}
