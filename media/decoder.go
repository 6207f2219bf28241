package media

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrEndOfStream is returned by a Source when no more frames remain.
	ErrEndOfStream = errors.New("end of stream")
	// ErrSeekUnsupported is returned by a Source that cannot seek the
	// requested stream in this container. Decoder.Seek swallows it.
	ErrSeekUnsupported = errors.New("seek not supported for this stream")
	// ErrFrameSize means the destination buffer is not Stride*Height bytes.
	ErrFrameSize = errors.New("frame buffer size mismatch")
	// ErrNoBackend means a player or probe was used without a decode backend.
	ErrNoBackend = errors.New("no decode backend")
)

// OpenError reports a media source that could not be opened: a missing
// file, an unsupported codec or a corrupt container.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open media %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Info describes an opened media source.
type Info struct {
	Width      int
	Height     int
	FrameRate  float64
	Duration   time.Duration
	SampleRate int
	Channels   int
	Stride     int // bytes per pixel row
	HasVideo   bool
	HasAudio   bool
}

// FrameBytes is the size of one decoded video frame.
func (i Info) FrameBytes() int {
	return i.Stride * i.Height
}

// FrameInterval is the presentation time of one video frame.
func (i Info) FrameInterval() time.Duration {
	if i.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / i.FrameRate)
}

// AudioChunk holds one decoded audio frame as per-channel sample slices.
// Chunks vary in length.
type AudioChunk struct {
	Samples [][]float32
}

// Frames returns the number of sample frames in the chunk.
func (c AudioChunk) Frames() int {
	if len(c.Samples) == 0 {
		return 0
	}
	return len(c.Samples[0])
}

// Interleave appends the chunk to dst as interleaved samples.
func (c AudioChunk) Interleave(dst []float32) []float32 {
	frames := c.Frames()
	for i := 0; i < frames; i++ {
		for ch := range c.Samples {
			dst = append(dst, c.Samples[ch][i])
		}
	}
	return dst
}

// InterleaveChannels appends the chunk to dst interleaved as channels
// channels. Missing channels repeat the last decoded one (mono to stereo);
// extra decoded channels are dropped.
func (c AudioChunk) InterleaveChannels(channels int, dst []float32) []float32 {
	if channels == len(c.Samples) || len(c.Samples) == 0 {
		return c.Interleave(dst)
	}
	last := len(c.Samples) - 1
	frames := c.Frames()
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			dst = append(dst, c.Samples[min(ch, last)][i])
		}
	}
	return dst
}

// Source is one demux/decode handle onto a media file, as provided by a
// Backend. A Source is used by one goroutine at a time.
type Source interface {
	Info() Info
	// ReadVideo decodes the next video frame into dst. It returns false at
	// end of stream.
	ReadVideo(dst []byte) (bool, error)
	// ReadAudio decodes the next audio frame. It returns false at end of
	// stream.
	ReadAudio() ([][]float32, bool, error)
	// Seek repositions the source so the next read returns the frame at or
	// after t.
	Seek(t time.Duration) error
	Close() error
}

// Backend opens Sources.
type Backend interface {
	Open(path string) (Source, error)
}

// Decoder wraps a backend Source with the pull-based frame API used by the
// player. Video and audio are decoded from two independent Decoders onto
// the same file so each can be seeked and read on its own schedule.
type Decoder struct {
	path string
	src  Source
	info Info
	log  *zap.Logger
}

// OpenDecoder opens path on backend. Failures are returned as *OpenError.
func OpenDecoder(backend Backend, path string, log *zap.Logger) (*Decoder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if backend == nil {
		return nil, &OpenError{Path: path, Err: ErrNoBackend}
	}

	src, err := backend.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	info := src.Info()
	if info.HasVideo && (info.Width <= 0 || info.Height <= 0 || info.Stride < info.Width) {
		_ = src.Close()
		return nil, &OpenError{Path: path, Err: fmt.Errorf("invalid video geometry %dx%d stride %d", info.Width, info.Height, info.Stride)}
	}

	return &Decoder{
		path: path,
		src:  src,
		info: info,
		log:  log.With(zap.String("path", path)),
	}, nil
}

func (d *Decoder) Info() Info {
	return d.info
}

func (d *Decoder) Path() string {
	return d.path
}

// NextVideoFrame decodes into dst, which must be exactly FrameBytes long.
// It returns false at end of stream.
func (d *Decoder) NextVideoFrame(dst []byte) (bool, error) {
	if !d.info.HasVideo {
		return false, nil
	}
	if len(dst) != d.info.FrameBytes() {
		return false, fmt.Errorf("%w: got %d, want %d", ErrFrameSize, len(dst), d.info.FrameBytes())
	}

	ok, err := d.src.ReadVideo(dst)
	if errors.Is(err, ErrEndOfStream) {
		return false, nil
	}
	return ok, err
}

// NextAudioFrame decodes one audio frame. It returns false at end of stream.
func (d *Decoder) NextAudioFrame() (AudioChunk, bool, error) {
	if !d.info.HasAudio {
		return AudioChunk{}, false, nil
	}

	samples, ok, err := d.src.ReadAudio()
	if errors.Is(err, ErrEndOfStream) {
		return AudioChunk{}, false, nil
	}
	if err != nil || !ok {
		return AudioChunk{}, false, err
	}
	return AudioChunk{Samples: samples}, true, nil
}

// Seek clamps t into [0, Duration] and seeks the container. A backend that
// cannot seek this stream is not an error: the position is left unchanged.
func (d *Decoder) Seek(t time.Duration) error {
	t = clampDuration(t, d.info.Duration)

	err := d.src.Seek(t)
	if errors.Is(err, ErrSeekUnsupported) {
		d.log.Debug("seek not supported, keeping position", zap.Duration("target", t))
		return nil
	}
	return err
}

func (d *Decoder) Close() error {
	return d.src.Close()
}

// Probe opens path only to read its duration.
func Probe(backend Backend, path string) (time.Duration, error) {
	d, err := OpenDecoder(backend, path, nil)
	if err != nil {
		return 0, err
	}
	defer d.Close()
	return d.Info().Duration, nil
}

func clampDuration(t, limit time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if limit > 0 && t > limit {
		return limit
	}
	return t
}
