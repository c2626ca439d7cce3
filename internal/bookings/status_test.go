package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PaymentPending, PaymentPaid))
	assert.False(t, CanTransition(PaymentPaid, PaymentPending))
	assert.False(t, CanTransition(PaymentPaid, PaymentPaid))
}

func TestPromoteThenMarkPaid(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.FixedZone("X", 3600))
	d := validDraft()
	d.CustomerName = "  Jane Doe  "

	b := Promote(d, 5, 149, now)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.Equal(t, "Jane Doe", b.CustomerName)
	assert.Equal(t, time.UTC, b.CreatedAt.Location())

	assert.NoError(t, b.MarkPaid())
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.True(t, b.IsPaid())

	assert.ErrorIs(t, b.MarkPaid(), ErrInvalidTransition)
}

func TestSequenceStrictlyIncreasing(t *testing.T) {
	s := NewSequence(3)
	a, _ := s.NextID(context.Background())
	b, _ := s.NextID(context.Background())
	assert.Equal(t, int64(4), a)
	assert.Equal(t, int64(5), b)
}
