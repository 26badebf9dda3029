package uart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingBufferCapacity(t *testing.T) {
	r := NewRingBuffer(4, nil)
	require.Equal(t, 4, r.Size())
	require.Equal(t, 3, r.Cap())
	for i := 0; i < 3; i++ {
		require.True(t, r.Put(byte(i)))
	}
	require.Equal(t, 3, r.Count())
	require.False(t, r.Put(0xff))
	require.Equal(t, 3, r.Count())
	for i := 0; i < 3; i++ {
		b, ok := r.Get()
		require.True(t, ok)
		require.Equal(t, byte(i), b)
	}
	_, ok := r.Get()
	require.False(t, ok)
	require.Zero(t, r.Count())
}

func TestRingBufferWrapAround(t *testing.T) {
	r := NewRingBuffer(5, nil)
	var next, expected byte
	for round := 0; round < 20; round++ {
		for r.Put(next) {
			next++
		}
		require.Equal(t, r.Cap(), r.Count())
		// drain partially so head and tail wrap at different points
		for i := 0; i < round%r.Cap()+1; i++ {
			b, ok := r.Get()
			require.True(t, ok)
			require.Equal(t, expected, b)
			expected++
		}
	}
	for {
		b, ok := r.Get()
		if !ok {
			break
		}
		require.Equal(t, expected, b)
		expected++
	}
	require.Equal(t, next, expected)
}

func TestRingBufferTooSmall(t *testing.T) {
	require.Panics(t, func() { NewRingBuffer(1, nil) })
}

func TestStatus(t *testing.T) {
	require.Equal(t, "ok", StatusOK.String())
	require.Equal(t, "buffer-full", StatusBufferFull.String())
	require.Equal(t, "dropped", StatusDropped.String())
	require.NoError(t, StatusOK.Err())
	require.Equal(t, ErrBufferFull, StatusBufferFull.Err())
	require.Equal(t, ErrDropped, StatusDropped.Err())
}

func TestStatsReport(t *testing.T) {
	s := Stats{TxBytes: 3, RxBytes: 2, RxEdges: 2, RxDropped: 1, Available: 1}
	require.Equal(t,
		"TX bytes: 3\nRX bytes: 2\nRX interrupts: 2\nRX dropped: 1\nBuffer available: 1\n",
		s.Report())
}
