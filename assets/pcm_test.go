package assets

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func readFloats(t *testing.T, s *pcmSource, n int) []float32 {
	t.Helper()
	buf := make([]byte, n*4)
	got, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), got)
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func TestPCMSourceUpmixesMono(t *testing.T) {
	t.Parallel()
	s := newPCMSource(44100, 1, 44100)
	s.Push([]float32{0.1, 0.2})
	require.False(t, s.Drained())

	require.Equal(t, []float32{0.1, 0.1, 0.2, 0.2}, readFloats(t, s, 4))
	require.True(t, s.Drained())
}

func TestPCMSourcePadsUnderrunWithSilence(t *testing.T) {
	t.Parallel()
	s := newPCMSource(48000, 2, 48000)
	s.Push([]float32{0.5, -0.5})

	require.Equal(t, []float32{0.5, -0.5, 0, 0, 0, 0}, readFloats(t, s, 6))
	require.Equal(t, []float32{0, 0}, readFloats(t, s, 2))
}

func TestPCMSourceKeepsOrderAcrossReads(t *testing.T) {
	t.Parallel()
	s := newPCMSource(44100, 2, 44100)
	s.Push([]float32{1, 2, 3, 4})
	s.Push([]float32{5, 6})

	require.Equal(t, []float32{1, 2}, readFloats(t, s, 2))
	require.Equal(t, []float32{3, 4, 5, 6}, readFloats(t, s, 4))
}

func TestPCMSourceFlush(t *testing.T) {
	t.Parallel()
	s := newPCMSource(44100, 2, 44100)
	s.Push([]float32{1, 1})
	s.Flush()
	require.True(t, s.Drained())
	require.Equal(t, []float32{0, 0}, readFloats(t, s, 2))
}

func TestToStereoDropsExtraChannels(t *testing.T) {
	t.Parallel()
	got := toStereo([]float32{1, 2, 3, 4, 5, 6}, 3)
	require.Equal(t, []float32{1, 2, 4, 5}, got)
}

func TestResamplerUpsamplesLinearly(t *testing.T) {
	t.Parallel()
	r := newResampler(1, 2)
	out := r.process([]float32{0, 0, 1, 1, 2, 2}, nil)
	require.Equal(t, []float32{0, 0, 0.5, 0.5, 1, 1, 1.5, 1.5}, out)

	// The next chunk continues from the last frame of the previous one.
	out = r.process([]float32{3, 3}, nil)
	require.Equal(t, []float32{2, 2, 2.5, 2.5}, out)
}

func TestResamplerDownsamplesAcrossChunks(t *testing.T) {
	t.Parallel()
	r := newResampler(2, 1)
	var out []float32
	for i := 0; i < 8; i++ {
		out = r.process([]float32{float32(i), float32(i)}, out)
	}
	require.Equal(t, []float32{0, 0, 2, 2, 4, 4, 6, 6}, out)
}
