package assets

import (
	"encoding/binary"
	"math"
	"sync"
)

// pcmSource is the io.Reader behind a float32 ebiten player. Pushed chunks
// are converted to stereo at the output rate; when nothing is queued the
// reader plays silence.
type pcmSource struct {
	mu       sync.Mutex
	channels int
	pending  []float32 // stereo, output rate
	conv     *resampler
}

func newPCMSource(inRate, channels, outRate int) *pcmSource {
	s := &pcmSource{channels: max(1, channels)}
	if inRate > 0 && inRate != outRate {
		s.conv = newResampler(inRate, outRate)
	}
	return s
}

func (s *pcmSource) Push(samples []float32) {
	stereo := toStereo(samples, s.channels)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv != nil {
		s.pending = s.conv.process(stereo, s.pending)
		return
	}
	s.pending = append(s.pending, stereo...)
}

// Drained reports whether everything pushed has been handed to the player.
func (s *pcmSource) Drained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) == 0
}

func (s *pcmSource) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = s.pending[:0]
	if s.conv != nil {
		s.conv.reset()
	}
}

// Read fills p with little-endian float32 stereo frames.
func (s *pcmSource) Read(p []byte) (int, error) {
	const frameBytes = 8
	n := len(p) / frameBytes * frameBytes
	if n == 0 {
		return 0, nil
	}

	s.mu.Lock()
	samples := min(n/4, len(s.pending))
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s.pending[i]))
	}
	s.pending = s.pending[:copy(s.pending, s.pending[samples:])]
	s.mu.Unlock()

	clear(p[samples*4 : n])
	return n, nil
}

// toStereo returns interleaved stereo: mono is duplicated, channels past
// the second are dropped.
func toStereo(samples []float32, channels int) []float32 {
	if channels == 2 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float32, 0, frames*2)
	for i := 0; i < frames; i++ {
		l := samples[i*channels]
		r := l
		if channels > 1 {
			r = samples[i*channels+1]
		}
		out = append(out, l, r)
	}
	return out
}

// resampler converts interleaved stereo between rates by linear
// interpolation, carrying its fractional position across chunks.
type resampler struct {
	step     float64
	pos      float64
	prev     [2]float32
	havePrev bool
}

func newResampler(inRate, outRate int) *resampler {
	return &resampler{step: float64(inRate) / float64(outRate)}
}

func (r *resampler) reset() {
	r.pos = 0
	r.havePrev = false
}

func (r *resampler) process(in, out []float32) []float32 {
	frames := len(in) / 2
	if frames == 0 {
		return out
	}

	// Frame i of the virtual buffer [prev, in...].
	offset := 0
	if r.havePrev {
		offset = 1
	}
	at := func(i int) (float32, float32) {
		if i < offset {
			return r.prev[0], r.prev[1]
		}
		j := (i - offset) * 2
		return in[j], in[j+1]
	}
	total := frames + offset

	for {
		i := int(r.pos)
		if i+1 >= total {
			break
		}
		f := float32(r.pos - float64(i))
		l0, r0 := at(i)
		l1, r1 := at(i + 1)
		out = append(out, l0+(l1-l0)*f, r0+(r1-r0)*f)
		r.pos += r.step
	}

	r.pos -= float64(total - 1)
	r.prev[0], r.prev[1] = at(total - 1)
	r.havePrev = true
	return out
}
