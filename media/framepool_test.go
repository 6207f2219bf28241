package media_test

import (
	"testing"

	"github.com/automoto/curtaincall/media"
	"github.com/stretchr/testify/require"
)

func TestFramePoolReuse(t *testing.T) {
	t.Parallel()
	pool := media.NewFramePool(64)

	a := pool.Acquire()
	require.Len(t, a, 64)
	a[0] = 42
	pool.Release(a)
	require.Equal(t, 1, pool.Idle())

	b := pool.Acquire()
	require.Equal(t, byte(42), b[0], "released buffer should be handed out again")
	require.Zero(t, pool.Idle())
}

func TestFramePoolDropsForeignSizes(t *testing.T) {
	t.Parallel()
	pool := media.NewFramePool(64)
	pool.Release(make([]byte, 32))
	require.Zero(t, pool.Idle())
}

func TestFrameQueueBounded(t *testing.T) {
	t.Parallel()
	q := media.NewFrameQueue(3)

	for i := 0; i < 3; i++ {
		require.True(t, q.TryPush([]byte{byte(i)}))
	}
	require.True(t, q.Full())
	require.False(t, q.TryPush([]byte{9}), "push beyond capacity must fail")
	require.Equal(t, 3, q.Len())

	f, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, []byte{0}, f)
	require.True(t, q.TryPush([]byte{3}))

	var order []byte
	q.Drain(func(b []byte) { order = append(order, b[0]) })
	require.Equal(t, []byte{1, 2, 3}, order)

	_, ok = q.TryPop()
	require.False(t, ok)
}
