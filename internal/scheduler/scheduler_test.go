package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingApplier struct {
	calls atomic.Int32
	err   error
}

func (c *countingApplier) ApplyInterestToAll(context.Context) (int, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return 3, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New(&countingApplier{}, "not a schedule", quietLogger())
	require.Error(t, err)
}

func TestNewSchedules(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"", DefaultSchedule},
		{"@monthly", "@monthly"},
		{"30 2 * * *", "30 2 * * *"},
	}
	for _, tt := range tests {
		s, err := New(&countingApplier{}, tt.spec, quietLogger())
		require.NoError(t, err, tt.spec)
		require.Equal(t, tt.want, s.Spec())
	}
}

func TestRunOnce(t *testing.T) {
	a := &countingApplier{}
	s, err := New(a, "", quietLogger())
	require.NoError(t, err)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.EqualValues(t, 1, a.calls.Load())

	a.err = errors.New("disk full")
	_, err = s.RunOnce(context.Background())
	require.ErrorIs(t, err, a.err)
}

func TestStartAndStop(t *testing.T) {
	a := &countingApplier{}
	s, err := New(a, "@every 1s", quietLogger())
	require.NoError(t, err)

	s.Start()
	require.False(t, s.Next().IsZero())
	require.Eventually(t, func() bool { return a.calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
