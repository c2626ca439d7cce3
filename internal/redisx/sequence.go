package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// raiseTo sets KEYS[1] to ARGV[1] unless it already holds a larger number.
var raiseTo = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if cur < floor then
  redis.call("SET", KEYS[1], ARGV[1])
  return floor
end
return cur
`)

// Sequence hands out booking ids from a Redis counter, so ids stay unique across
// restarts and API replicas.
type Sequence struct {
	rdb redis.Cmdable
	key string
}

func NewSequence(rdb redis.Cmdable, key string) *Sequence {
	if key == "" {
		key = KeyBookingSeq
	}
	return &Sequence{rdb: rdb, key: key}
}

// Ensure moves the counter up to floor, typically the largest id already stored.
func (s *Sequence) Ensure(ctx context.Context, floor int64) error {
	if err := raiseTo.Run(ctx, s.rdb, []string{s.key}, floor).Err(); err != nil {
		return fmt.Errorf("redisx: ensure sequence: %w", err)
	}
	return nil
}

func (s *Sequence) NextID(ctx context.Context) (int64, error) {
	id, err := s.rdb.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redisx: next id: %w", err)
	}
	return id, nil
}
