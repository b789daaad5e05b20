package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_AllSucceed(t *testing.T) {
	g := NewGroup(context.Background())
	var ran atomic.Int32

	for i := 0; i < 5; i++ {
		g.Go("worker", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	assert.NoError(t, g.Wait())
	assert.Equal(t, int32(5), ran.Load())
	assert.Empty(t, g.Failures())
}

func TestGroup_ReportsEarliestFailure(t *testing.T) {
	g := NewGroup(context.Background())
	first := errors.New("disk gone")
	second := errors.New("followup noise")

	g.Go("early", func(ctx context.Context) error {
		return first
	})
	g.Go("late", func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return second
	})

	err := g.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.Contains(t, err.Error(), "early")

	failures := g.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "early", failures[0].Name)
	assert.Equal(t, "late", failures[1].Name)
}

func TestGroup_RecoversPanics(t *testing.T) {
	g := NewGroup(context.Background())

	g.Go("explodes", func(ctx context.Context) error {
		panic("boom")
	})

	err := g.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explodes")
	assert.Contains(t, err.Error(), "boom")
}

func TestGroup_AbortCancelsContext(t *testing.T) {
	g := NewGroup(context.Background())
	stopped := make(chan struct{})

	g.Go("looper", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	})

	g.Abort()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutine did not observe cancellation")
	}
	assert.NoError(t, g.Wait())
}

func TestGroup_WaitCancelsContextAfterwards(t *testing.T) {
	g := NewGroup(context.Background())
	g.Go("quick", func(ctx context.Context) error { return nil })
	require.NoError(t, g.Wait())
	assert.ErrorIs(t, g.ctx.Err(), context.Canceled)
}
