package redisx

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
)

// Storage keeps the booking list in a single string key with no expiry.
type Storage struct {
	rdb redis.Cmdable
	key string
}

func NewStorage(rdb redis.Cmdable, key string) *Storage {
	if key == "" {
		key = KeyBookings
	}
	return &Storage{rdb: rdb, key: key}
}

func (s *Storage) Load(ctx context.Context) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, bookings.ErrNoData
	}
	return b, err
}

func (s *Storage) Save(ctx context.Context, data []byte) error {
	return s.rdb.Set(ctx, s.key, data, 0).Err()
}
