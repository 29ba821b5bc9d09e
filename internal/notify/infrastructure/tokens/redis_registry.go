// Package tokens implements the per-user device token registry. The
// production store is redis: each user's tokens live in a single list key
// and every mutation runs as one server-side script, so concurrent adds and
// evictions for the same user cannot lose updates.
package tokens

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

// addScript appends a token unless it is already present, evicting the
// oldest entries first when the list is at capacity.
var addScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]
local cap = tonumber(ARGV[2])
if redis.call('LPOS', key, token) then
  return 0
end
while redis.call('LLEN', key) >= cap do
  redis.call('LPOP', key)
end
redis.call('RPUSH', key, token)
return 1
`)

// removeScript drops every listed token; LREM keeps the survivors in order.
var removeScript = redis.NewScript(`
local key = KEYS[1]
for i = 1, #ARGV do
  redis.call('LREM', key, 0, ARGV[i])
end
return redis.call('LLEN', key)
`)

type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

func key(userID uuid.UUID) string {
	return fmt.Sprintf("devtokens:%s", userID)
}

func (r *RedisRegistry) Add(ctx context.Context, userID uuid.UUID, token string) error {
	return addScript.Run(ctx, r.rdb, []string{key(userID)}, token, domain.MaxDeviceTokens).Err()
}

func (r *RedisRegistry) Remove(ctx context.Context, userID uuid.UUID, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	args := make([]any, len(tokens))
	for i, t := range tokens {
		args[i] = t
	}
	return removeScript.Run(ctx, r.rdb, []string{key(userID)}, args...).Err()
}

func (r *RedisRegistry) List(ctx context.Context, userID uuid.UUID) (domain.DeviceTokenList, error) {
	vals, err := r.rdb.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return domain.DeviceTokenList(vals), nil
}
