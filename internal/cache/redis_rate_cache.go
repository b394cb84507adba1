// Package cache holds the Redis-backed exchange rate cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "rate:"

// setIfNotOlder writes ARGV[1] unless the stored value carries a larger
// version than ARGV[2]. ARGV[3] is the TTL in milliseconds, 0 for none.
const setIfNotOlder = `
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, decoded = pcall(cjson.decode, cur)
  if ok and type(decoded) == 'table' and tonumber(decoded['version']) and tonumber(decoded['version']) > tonumber(ARGV[2]) then
    return 0
  end
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`

// redisClient is the subset of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cachedRate is the stored value. Version is the entry's UpdatedAt in
// microseconds.
type cachedRate struct {
	Version int64                    `json:"version"`
	Entry   domain.ExchangeRateEntry `json:"entry"`
}

// RedisRateCache stores rate entries as JSON under rate:<client>:<method>.
type RedisRateCache struct {
	client redisClient
	closer func() error
}

var _ gateways.RateCache = (*RedisRateCache)(nil)

// NewRedisRateCache connects to Redis at addr.
func NewRedisRateCache(addr string, password string, db int) *RedisRateCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisRateCache{client: client, closer: client.Close}
}

func newRedisRateCacheWithClient(client redisClient) *RedisRateCache {
	return &RedisRateCache{client: client, closer: func() error { return nil }}
}

// Ping checks connectivity. Only meaningful for caches created with NewRedisRateCache.
func (c *RedisRateCache) Ping(ctx context.Context) error {
	if pinger, ok := c.client.(interface {
		Ping(ctx context.Context) *redis.StatusCmd
	}); ok {
		return pinger.Ping(ctx).Err()
	}
	return nil
}

func (c *RedisRateCache) Close() error {
	return c.closer()
}

func rateKey(clientID string, method domain.PaymentMethodCode) string {
	return keyPrefix + clientID + ":" + string(method)
}

// Get returns the cached entry. A missing key is a miss, not an error.
func (c *RedisRateCache) Get(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, bool, error) {
	val, err := c.client.Get(ctx, rateKey(clientID, method)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached cachedRate
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false, err
	}
	return &cached.Entry, true, nil
}

// Set stores rate atomically unless a newer version is already cached.
func (c *RedisRateCache) Set(ctx context.Context, rate domain.ExchangeRateEntry, ttl time.Duration) error {
	payload, err := json.Marshal(cachedRate{Version: rate.Version(), Entry: rate})
	if err != nil {
		return err
	}
	key := rateKey(rate.ClientID, rate.MethodCode)
	return c.client.Eval(ctx, setIfNotOlder, []string{key}, payload, rate.Version(), ttl.Milliseconds()).Err()
}

func (c *RedisRateCache) Delete(ctx context.Context, clientID string, method domain.PaymentMethodCode) error {
	return c.client.Del(ctx, rateKey(clientID, method)).Err()
}
