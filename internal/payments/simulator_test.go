package payments

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
)

func newTestSimulator(rate float64, delay time.Duration, seed uint64) *Simulator {
	return NewSimulator(
		SimulatorConfig{Delay: delay, SuccessRate: rate},
		logging.Discard(),
		WithRand(rand.New(rand.NewPCG(seed, seed+1))),
	)
}

func TestAuthorizeSuccessRateConverges(t *testing.T) {
	sim := newTestSimulator(0.9, 0, 42)
	ctx := context.Background()

	const trials = 5000
	ok := 0
	for i := 0; i < trials; i++ {
		_, err := sim.Authorize(ctx, goodCard()).Wait(ctx)
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrDeclined)
	}
	rate := float64(ok) / trials
	assert.InDelta(t, 0.9, rate, 0.03)
}

func TestAuthorizeAlwaysSucceeds(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sim := NewSimulator(SimulatorConfig{SuccessRate: 1}, logging.Discard(), WithClock(func() time.Time { return fixed }))

	auth, err := sim.Authorize(context.Background(), goodCard()).Wait(context.Background())
	require.NoError(t, err)
	assert.Contains(t, auth.Reference, "AUTH-")
	assert.Equal(t, fixed, auth.AuthorizedAt)
}

func TestAuthorizeAlwaysDeclines(t *testing.T) {
	sim := newTestSimulator(0, 0, 1)
	_, err := sim.Authorize(context.Background(), goodCard()).Wait(context.Background())
	assert.True(t, errors.Is(err, ErrDeclined))
}

func TestAuthorizeHonoursCancellation(t *testing.T) {
	sim := newTestSimulator(1, time.Hour, 1)
	ctx, cancel := context.WithCancel(context.Background())
	tk := sim.Authorize(ctx, goodCard())
	cancel()

	select {
	case <-tk.Done():
	case <-time.After(time.Second):
		t.Fatal("authorization ignored cancellation")
	}
	_, err := tk.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthorizeWaitsForDelay(t *testing.T) {
	sim := newTestSimulator(1, 30*time.Millisecond, 1)
	start := time.Now()
	_, err := sim.Authorize(context.Background(), goodCard()).Wait(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestNewSimulatorClampsRate(t *testing.T) {
	sim := NewSimulator(SimulatorConfig{SuccessRate: 3}, logging.Discard())
	assert.Equal(t, 0.9, sim.cfg.SuccessRate)
}
