package polling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoffStrategy(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	t.Run("success returns base interval", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(30*time.Second, 300*time.Second, 2.0, logger)

		assert.Equal(t, 30*time.Second, strategy.NextInterval(true))
		assert.Equal(t, 30*time.Second, strategy.NextInterval(true))
	})

	t.Run("failures back off exponentially up to max", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(30*time.Second, 300*time.Second, 2.0, logger)

		want := []time.Duration{30, 60, 120, 240, 300, 300}
		for i, w := range want {
			assert.Equal(t, w*time.Second, strategy.NextInterval(false), "failure %d", i+1)
		}
	})

	t.Run("success after failures resets", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(30*time.Second, 300*time.Second, 2.0, logger)

		strategy.NextInterval(false)
		strategy.NextInterval(false)
		strategy.NextInterval(false)

		assert.Equal(t, 30*time.Second, strategy.NextInterval(true))
		assert.Equal(t, 30*time.Second, strategy.NextInterval(false))
	})

	t.Run("fractional multiplier", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(10*time.Second, 100*time.Second, 1.5, logger)

		assert.Equal(t, 10*time.Second, strategy.NextInterval(false))
		assert.Equal(t, 15*time.Second, strategy.NextInterval(false))
		assert.Equal(t, time.Duration(22.5*float64(time.Second)), strategy.NextInterval(false))
	})

	t.Run("multiplier at or below one defaults to two", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(time.Second, time.Minute, 0.5, logger)

		strategy.NextInterval(false)
		assert.Equal(t, 2*time.Second, strategy.NextInterval(false))
	})

	t.Run("Reset", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(30*time.Second, 300*time.Second, 2.0, logger)

		strategy.NextInterval(false)
		strategy.NextInterval(false)
		strategy.Reset()

		assert.Equal(t, 30*time.Second, strategy.NextInterval(false))
	})
}

type fixedStrategy struct {
	mu      sync.Mutex
	results []bool
}

func (s *fixedStrategy) NextInterval(success bool) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, success)
	return time.Millisecond
}

func (s *fixedStrategy) Reset() {}

func (s *fixedStrategy) seen() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.results...)
}

func TestPollingController(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	strategy := &fixedStrategy{}
	controller := NewPollingController(strategy, logger)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- controller.Start(ctx, func(context.Context) error {
			calls++
			if calls == 3 {
				cancel()
			}
			if calls%2 == 0 {
				return errors.New("probe failed")
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop after cancellation")
	}

	// the third run cancels ctx, so only the first two outcomes reach the strategy
	assert.Equal(t, []bool{true, false}, strategy.seen())
	assert.Equal(t, 3, calls)
}
