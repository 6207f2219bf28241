package media

import (
	"math"
	"sync"
)

// RingAudioBuffer is a fixed-capacity circular buffer of interleaved float
// samples. The decode worker writes and the playback tick reads; both sides
// go through the same mutex. Capacity is counted in frames (one sample per
// channel).
type RingAudioBuffer struct {
	mu       sync.Mutex
	buf      []float32
	channels int
	capacity int // frames
	w        int // write position, frames
	r        int // read position, frames
	n        int // frames stored
}

// NewRingAudioBuffer allocates capacityFrames*channels samples up front.
func NewRingAudioBuffer(capacityFrames, channels int) *RingAudioBuffer {
	if channels < 1 {
		channels = 1
	}
	if capacityFrames < 1 {
		capacityFrames = 1
	}
	return &RingAudioBuffer{
		buf:      make([]float32, capacityFrames*channels),
		channels: channels,
		capacity: capacityFrames,
	}
}

// RingFramesFor returns the frame capacity holding seconds of audio.
func RingFramesFor(sampleRate int, seconds float64) int {
	return int(math.Ceil(float64(sampleRate) * seconds))
}

// Write appends whole frames from interleaved, never more than Free().
// It returns the number of frames written; the caller keeps the rest and
// retries once the reader has made room.
func (b *RingAudioBuffer) Write(interleaved []float32) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	frames := len(interleaved) / b.channels
	if free := b.capacity - b.n; frames > free {
		frames = free
	}
	if frames == 0 {
		return 0
	}

	// Two copies at most: up to the end of the array, then from the start.
	first := min(frames, b.capacity-b.w)
	copy(b.buf[b.w*b.channels:], interleaved[:first*b.channels])
	if rest := frames - first; rest > 0 {
		copy(b.buf, interleaved[first*b.channels:frames*b.channels])
	}

	b.w = (b.w + frames) % b.capacity
	b.n += frames
	return frames
}

// Read copies up to frames frames into dst in FIFO order and returns the
// number of frames copied. dst must hold frames*Channels() samples.
func (b *RingAudioBuffer) Read(frames int, dst []float32) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	frames = min(frames, b.n, len(dst)/b.channels)
	if frames <= 0 {
		return 0
	}

	first := min(frames, b.capacity-b.r)
	copy(dst, b.buf[b.r*b.channels:(b.r+first)*b.channels])
	if rest := frames - first; rest > 0 {
		copy(dst[first*b.channels:], b.buf[:rest*b.channels])
	}

	b.r = (b.r + frames) % b.capacity
	b.n -= frames
	return frames
}

// Len returns the number of buffered frames.
func (b *RingAudioBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// Free returns how many frames can be written without overwriting.
func (b *RingAudioBuffer) Free() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity - b.n
}

// Cap returns the capacity in frames.
func (b *RingAudioBuffer) Cap() int {
	return b.capacity
}

// Channels returns the interleave width.
func (b *RingAudioBuffer) Channels() int {
	return b.channels
}

// Clear drops all buffered audio.
func (b *RingAudioBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.w, b.r, b.n = 0, 0, 0
}
