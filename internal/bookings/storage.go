package bookings

import (
	"context"
	"errors"
)

// ErrNoData is returned by a Storage that has never been written.
var ErrNoData = errors.New("bookings: no stored data")

// Storage keeps the serialized booking list under a single key.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
