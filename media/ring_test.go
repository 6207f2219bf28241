package media_test

import (
	"testing"

	"github.com/automoto/curtaincall/media"
	"github.com/stretchr/testify/require"
)

func TestRingAudioBufferFIFO(t *testing.T) {
	t.Parallel()
	rb := media.NewRingAudioBuffer(8, 2)

	var written []float32
	next := float32(0)
	write := func(frames int) {
		chunk := make([]float32, frames*2)
		for i := range chunk {
			chunk[i] = next
			next++
		}
		require.Equal(t, frames, rb.Write(chunk))
		written = append(written, chunk...)
	}

	var read []float32
	readFrames := func(frames int) {
		dst := make([]float32, frames*2)
		n := rb.Read(frames, dst)
		read = append(read, dst[:n*2]...)
	}

	// Interleave writes and reads so both cursors wrap several times.
	write(5)
	readFrames(3)
	write(6)
	readFrames(7)
	write(4)
	write(3)
	readFrames(8)

	require.Equal(t, written[:len(read)], read)
	require.Equal(t, (len(written)-len(read))/2, rb.Len())

	readFrames(rb.Len())
	require.Equal(t, written, read)
	require.Zero(t, rb.Len())
}

func TestRingAudioBufferNeverOverwrites(t *testing.T) {
	t.Parallel()
	rb := media.NewRingAudioBuffer(4, 1)

	require.Equal(t, 4, rb.Write([]float32{1, 2, 3, 4, 5, 6}))
	require.Zero(t, rb.Free())
	require.Zero(t, rb.Write([]float32{7}))

	dst := make([]float32, 2)
	require.Equal(t, 2, rb.Read(2, dst))
	require.Equal(t, []float32{1, 2}, dst)

	require.Equal(t, 2, rb.Write([]float32{5, 6, 7}))
	out := make([]float32, 10)
	n := rb.Read(10, out)
	require.Equal(t, 4, n)
	require.Equal(t, []float32{3, 4, 5, 6}, out[:n])
}

func TestRingAudioBufferReadBeyondCount(t *testing.T) {
	t.Parallel()
	rb := media.NewRingAudioBuffer(16, 2)
	rb.Write([]float32{1, 1, 2, 2})

	dst := make([]float32, 32)
	require.Equal(t, 2, rb.Read(16, dst))
	require.Zero(t, rb.Read(16, dst))
}

func TestRingAudioBufferClear(t *testing.T) {
	t.Parallel()
	rb := media.NewRingAudioBuffer(4, 1)
	rb.Write([]float32{1, 2, 3})
	rb.Clear()

	require.Zero(t, rb.Len())
	require.Equal(t, 4, rb.Free())
}

func TestRingFramesFor(t *testing.T) {
	t.Parallel()
	require.Equal(t, 66150, media.RingFramesFor(44100, 1.5))
}
