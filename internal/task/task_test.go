package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReturnsResult(t *testing.T) {
	tk := Go(context.Background(), func(context.Context) (int, error) { return 7, nil })
	v, err := tk.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestWaitReturnsError(t *testing.T) {
	boom := errors.New("boom")
	tk := Go(context.Background(), func(context.Context) (string, error) { return "", boom })
	_, err := tk.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCancelStopsSleepingTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tk := Go(ctx, func(ctx context.Context) (bool, error) {
		if err := Sleep(ctx, time.Hour); err != nil {
			return false, err
		}
		return true, nil
	})
	cancel()

	select {
	case <-tk.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not observe cancellation")
	}
	_, err := tk.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitGivesUpWithCallerContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	tk := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := tk.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok, _ := tk.Poll()
	assert.False(t, ok)
}

func TestSleepZero(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}
