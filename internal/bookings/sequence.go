package bookings

import (
	"context"
	"sync/atomic"
)

// IDGenerator hands out booking ids. Implementations must never repeat a value.
type IDGenerator interface {
	NextID(ctx context.Context) (int64, error)
}

// Sequence is an in-process counter. Ids are unique only within one process.
type Sequence struct {
	last atomic.Int64
}

// NewSequence starts counting after floor, usually Store.MaxID().
func NewSequence(floor int64) *Sequence {
	s := &Sequence{}
	s.last.Store(floor)
	return s
}

func (s *Sequence) NextID(context.Context) (int64, error) {
	return s.last.Add(1), nil
}
