package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_IntervalJobRuns(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	ran := make(chan struct{}, 10)
	_, err = s.AddInterval("publish-widgets", 50*time.Millisecond, func(context.Context) error {
		ran <- struct{}{}
		return errors.New("errors are logged, not fatal")
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(5 * time.Second):
			t.Fatal("scheduled job did not run")
		}
	}
	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_CronValidation(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	id, err := s.AddCron("nightly", "0 3 * * *", false, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = s.AddCron("broken", "every tuesday", false, func(context.Context) error { return nil })
	require.Error(t, err)

	_, err = s.AddInterval("zero", 0, func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestScheduler_NextRuns(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	_, err = s.AddCron("nightly", "0 3 * * *", false, func(context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		next, ok := s.NextRuns()["nightly"]
		return ok && next.Hour() == 3
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
