package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUntil_ReturnsTrueOnceConditionHolds(t *testing.T) {
	t.Parallel()
	calls := 0
	ok, err := Until(context.Background(), time.Second, 5*time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, calls)
}

func TestUntil_TimeoutIsSoft(t *testing.T) {
	t.Parallel()
	start := time.Now()
	ok, err := Until(context.Background(), 60*time.Millisecond, 10*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Less(t, time.Since(start), time.Second)
}

func TestUntil_ConditionCutShortByDeadlineIsSoft(t *testing.T) {
	t.Parallel()
	ok, err := Until(context.Background(), 20*time.Millisecond, time.Millisecond, func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUntil_ConditionErrorStops(t *testing.T) {
	t.Parallel()
	boom := errors.New("detached")
	calls := 0
	ok, err := Until(context.Background(), time.Second, 5*time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
	require.Equal(t, 1, calls)
}

func TestUntil_ParentCancellationPropagates(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := Until(ctx, time.Second, 5*time.Millisecond, func(context.Context) (bool, error) {
		return true, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, ok)
}

func TestUntil_NonPositiveIntervalUsesDefault(t *testing.T) {
	t.Parallel()
	ok, err := Until(context.Background(), time.Second, 0, func(context.Context) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRemaining(t *testing.T) {
	t.Parallel()
	require.Equal(t, time.Minute, Remaining(context.Background(), time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	got := Remaining(ctx, time.Minute)
	require.LessOrEqual(t, got, 50*time.Millisecond)

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	require.Zero(t, Remaining(expired, time.Minute))
}
