package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatcher_Defaults(t *testing.T) {
	d := NewDispatcher("test", 0)
	assert.Equal(t, int64(DefaultIOParallelism), d.Parallelism())
	assert.Equal(t, "test", d.Name())

	assert.Equal(t, "io", IO.Name())
}

func TestDispatcher_RunReturnsErrorUnchanged(t *testing.T) {
	d := NewDispatcher("test", 1)
	sentinel := errors.New("boom")

	err := d.Run(context.Background(), func(context.Context) error { return sentinel })

	assert.Same(t, sentinel, err)
}

func TestDispatcher_RunBlocksUntilDone(t *testing.T) {
	d := NewDispatcher("test", 1)
	var finished atomic.Bool

	err := d.Run(context.Background(), func(context.Context) error {
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, finished.Load())
}

func TestDispatcher_PassesContext(t *testing.T) {
	d := NewDispatcher("test", 1)
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	err := d.Run(ctx, func(ctx context.Context) error {
		assert.Equal(t, "v", ctx.Value(key{}))
		return nil
	})
	require.NoError(t, err)
}

func TestDispatcher_LimitsParallelism(t *testing.T) {
	d := NewDispatcher("test", 2)
	var running, maxRunning atomic.Int32

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			_ = d.Run(context.Background(), func(context.Context) error {
				n := running.Add(1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}

	assert.LessOrEqual(t, maxRunning.Load(), int32(2))
}

func TestDispatcher_CancelledWhileWaitingForSlot(t *testing.T) {
	d := NewDispatcher("test", 1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = d.Run(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var ran atomic.Bool
	err := d.Run(ctx, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	close(release)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran.Load())
}
