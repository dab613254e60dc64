package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CounterRepository is a durable monotonic counter primitive. Next must be
// atomic: two concurrent callers never observe the same value. This is the
// structural guarantee behind ticket-number uniqueness.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
	EnsureAtLeast(ctx context.Context, name string, floor int64) error
}

type redisCounterRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisCounterRepository backs counters with Redis INCR.
func NewRedisCounterRepository(client *redis.Client) CounterRepository {
	return &redisCounterRepository{client: client, prefix: "helpdesk:counter:"}
}

func (r *redisCounterRepository) Next(ctx context.Context, name string) (int64, error) {
	return r.client.Incr(ctx, r.prefix+name).Result()
}

// ensureAtLeastScript raises the counter to floor without ever lowering it.
var ensureAtLeastScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
    redis.call('SET', KEYS[1], floor)
end
return 0
`)

func (r *redisCounterRepository) EnsureAtLeast(ctx context.Context, name string, floor int64) error {
	return ensureAtLeastScript.Run(ctx, r.client, []string{r.prefix + name}, floor).Err()
}
