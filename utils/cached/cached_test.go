package cached

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ComputesOnce(t *testing.T) {
	calls := 0
	v := New(func() (string, error) {
		calls++
		return "1.1.1", nil
	})

	for i := 0; i < 3; i++ {
		got, err := v.Get()
		require.NoError(t, err)
		assert.Equal(t, "1.1.1", got)
	}
	assert.Equal(t, 1, calls)
}

func TestValue_CachesError(t *testing.T) {
	calls := 0
	failure := errors.New("unreachable")
	v := New(func() (int, error) {
		calls++
		return 0, failure
	})

	_, err := v.Get()
	assert.ErrorIs(t, err, failure)
	_, err = v.Get()
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, calls)
}

func TestValue_ConcurrentGet(t *testing.T) {
	var calls atomic.Int32
	v := Of(func() int {
		calls.Add(1)
		return 42
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := v.Get()
			assert.NoError(t, err)
			assert.Equal(t, 42, got)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}
