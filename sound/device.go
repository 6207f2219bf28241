// Package sound owns the shared audio device and wraps every per-stream
// call so that device trouble never escapes into the render loop.
package sound

import "time"

// Device is the physical audio output. It is opened on the first
// registration and closed when the last user unregisters.
type Device interface {
	Open(sampleRate int) error
	Close() error
	SampleRate() int
	// LoadStream opens a compressed music file as a seekable stream.
	LoadStream(path string) (Stream, error)
	// NewPCMStream creates a push stream for decoded interleaved float PCM.
	NewPCMStream(sampleRate, channels int) (PCMStream, error)
}

// Stream is a seekable music stream.
type Stream interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Volume() float64
	Seek(t time.Duration) error
	Position() time.Duration
	Length() time.Duration
	Close() error
}

// PCMStream accepts fixed-format interleaved float chunks from a decoder.
type PCMStream interface {
	Play()
	Pause()
	SetVolume(volume float64)
	// Ready reports whether everything pushed so far has been consumed by
	// the hardware and the stream wants more data.
	Ready() bool
	Push(interleaved []float32)
	// Flush discards pushed but unplayed samples.
	Flush()
	Close() error
}

// Updater is implemented by streams that need per-tick servicing.
type Updater interface {
	Update() error
}
