package redisx

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStorageMissingKey(t *testing.T) {
	_, rdb := newRedis(t)
	_, err := NewStorage(rdb, "").Load(context.Background())
	assert.ErrorIs(t, err, bookings.ErrNoData)
}

func TestStorageRoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	s := NewStorage(rdb, "")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []byte(`[{"id":1}]`)))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))

	raw, err := mr.Get(KeyBookings)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, raw)
	assert.Zero(t, mr.TTL(KeyBookings))
}

func TestStoreOverRedisSeedsOnceAndReloads(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	first := bookings.NewStore(NewStorage(rdb, ""), logging.Discard())
	list, err := first.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	b := bookings.Promote(bookings.Draft{
		ServiceID:     "home",
		Date:          "2025-06-01",
		TimeSlot:      "9:00 AM",
		CustomerName:  "Alan Turing",
		CustomerEmail: "alan@example.com",
		CustomerPhone: "555-0111",
		Address:       "Bletchley Park",
	}, 4, 89, list[0].CreatedAt)
	require.NoError(t, first.Append(ctx, b))

	second := bookings.NewStore(NewStorage(rdb, ""), logging.Discard())
	list, err = second.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "Alan Turing", list[3].CustomerName)
}

func TestSequence(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	seq := NewSequence(rdb, "")

	id, err := seq.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.NoError(t, seq.Ensure(ctx, 10))
	id, err = seq.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	// a lower floor never moves the counter back
	require.NoError(t, seq.Ensure(ctx, 3))
	id, err = seq.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}
