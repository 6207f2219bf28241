// Package mediatest provides a synthetic decode backend, display and audio
// sinks, and a manual clock for exercising the player without FFmpeg or an
// audio device.
package mediatest

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/automoto/curtaincall/media"
	"github.com/automoto/curtaincall/sound"
	"github.com/hajimehoshi/ebiten/v2"
)

// Clip describes a synthetic media file.
type Clip struct {
	Width      int
	Height     int
	FrameRate  float64
	Duration   time.Duration
	SampleRate int // 0 means no audio
	Channels   int
	ChunkSize  int // audio frames per decoded chunk, default 1024
	NoVideo    bool
	// FailAfter makes video decoding fail once this many frames have been
	// read, simulating truncated trailing data. Zero disables it.
	FailAfter int
	// SeekUnsupported makes every seek report media.ErrSeekUnsupported.
	SeekUnsupported bool
}

// TestClip is a 10 s, 30 fps, mono 44.1 kHz clip.
func TestClip() Clip {
	return Clip{
		Width:      16,
		Height:     9,
		FrameRate:  30,
		Duration:   10 * time.Second,
		SampleRate: 44100,
		Channels:   1,
	}
}

func (c Clip) frameCount() int {
	return int(math.Round(c.Duration.Seconds() * c.FrameRate))
}

func (c Clip) sampleCount() int {
	return int(math.Round(c.Duration.Seconds() * float64(c.SampleRate)))
}

// FramePixels returns the pixels of frame index of clip.
func FramePixels(c Clip, index int) []byte {
	pix := make([]byte, c.Width*4*c.Height)
	fillFrame(pix, index)
	return pix
}

func fillFrame(pix []byte, index int) {
	for i := range pix {
		pix[i] = byte(index*7 + i%251)
	}
}

// SampleValue is the value of sample frame i on channel ch.
func SampleValue(i, ch int) float32 {
	return float32(i%1000)/1000 + float32(ch)
}

// ErrMissing is returned when opening a path not registered on a Backend.
var ErrMissing = errors.New("no such media")

// Backend opens registered synthetic clips by path.
type Backend struct {
	mu     sync.Mutex
	clips  map[string]Clip
	opened int
	closed int
	// OpenDelay is slept inside Open to keep Load in flight.
	OpenDelay time.Duration
}

func NewBackend() *Backend {
	return &Backend{clips: make(map[string]Clip)}
}

// Add registers clip under path.
func (b *Backend) Add(path string, clip Clip) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if clip.ChunkSize == 0 {
		clip.ChunkSize = 1024
	}
	b.clips[path] = clip
}

func (b *Backend) Open(path string) (media.Source, error) {
	if b.OpenDelay > 0 {
		time.Sleep(b.OpenDelay)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	clip, ok := b.clips[path]
	if !ok {
		return nil, ErrMissing
	}
	b.opened++
	return &source{clip: clip, backend: b}, nil
}

// OpenSources returns the number of sources currently open.
func (b *Backend) OpenSources() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened - b.closed
}

type source struct {
	clip    Clip
	backend *Backend
	frame   int
	sample  int
	closed  bool
}

func (s *source) Info() media.Info {
	c := s.clip
	info := media.Info{
		FrameRate: c.FrameRate,
		Duration:  c.Duration,
		HasAudio:  c.SampleRate > 0,
	}
	if !c.NoVideo {
		info.HasVideo = true
		info.Width = c.Width
		info.Height = c.Height
		info.Stride = c.Width * 4
	}
	if info.HasAudio {
		info.SampleRate = c.SampleRate
		info.Channels = c.Channels
	}
	return info
}

func (s *source) ReadVideo(dst []byte) (bool, error) {
	if s.clip.FailAfter > 0 && s.frame >= s.clip.FailAfter {
		return false, errors.New("corrupt packet")
	}
	if s.frame >= s.clip.frameCount() {
		return false, nil
	}
	fillFrame(dst, s.frame)
	s.frame++
	return true, nil
}

func (s *source) ReadAudio() ([][]float32, bool, error) {
	total := s.clip.sampleCount()
	if s.sample >= total {
		return nil, false, media.ErrEndOfStream
	}
	n := min(s.clip.ChunkSize, total-s.sample)
	out := make([][]float32, s.clip.Channels)
	for ch := range out {
		out[ch] = make([]float32, n)
		for i := 0; i < n; i++ {
			out[ch][i] = SampleValue(s.sample+i, ch)
		}
	}
	s.sample += n
	return out, true, nil
}

func (s *source) Seek(t time.Duration) error {
	if s.clip.SeekUnsupported {
		return media.ErrSeekUnsupported
	}
	s.frame = int(math.Ceil(t.Seconds()*s.clip.FrameRate - 1e-9))
	s.sample = int(math.Ceil(t.Seconds()*float64(s.clip.SampleRate) - 1e-9))
	return nil
}

func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.backend.mu.Lock()
	s.backend.closed++
	s.backend.mu.Unlock()
	return nil
}

// ManualClock is a Clock advanced by hand.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Texture records the pixels written to it.
type Texture struct {
	Width, Height int
	Writes        int
	Pixels        []byte
	Disposed      bool
}

func (t *Texture) WritePixels(pix []byte) {
	t.Writes++
	t.Pixels = append(t.Pixels[:0], pix...)
}

func (t *Texture) Draw(*ebiten.Image, image.Rectangle, color.Color) {}

func (t *Texture) Dispose() {
	t.Disposed = true
}

// Textures hands out recording textures.
type Textures struct {
	Created []*Texture
}

func (f *Textures) NewTexture(width, height int) media.Texture {
	t := &Texture{Width: width, Height: height}
	f.Created = append(f.Created, t)
	return t
}

// Last returns the most recently created texture.
func (f *Textures) Last() *Texture {
	if len(f.Created) == 0 {
		return nil
	}
	return f.Created[len(f.Created)-1]
}

var _ sound.Device = (*Device)(nil)

// Device is an in-memory audio device.
type Device struct {
	mu      sync.Mutex
	Opens   int
	Closes  int
	OpenErr error
	LoadErr error
	Streams map[string]*Stream
	PCM     []*PCMStream
	// Lengths overrides the default 3 minute stream length per path.
	Lengths map[string]time.Duration
	rate    int
	isOpen  bool
}

func NewDevice() *Device {
	return &Device{Streams: make(map[string]*Stream), Lengths: make(map[string]time.Duration)}
}

func (d *Device) Open(sampleRate int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.OpenErr != nil {
		return d.OpenErr
	}
	d.Opens++
	d.rate = sampleRate
	d.isOpen = true
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closes++
	d.isOpen = false
	return nil
}

func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isOpen
}

func (d *Device) SampleRate() int {
	return d.rate
}

func (d *Device) LoadStream(path string) (sound.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LoadErr != nil {
		return nil, d.LoadErr
	}
	length, ok := d.Lengths[path]
	if !ok {
		length = 3 * time.Minute
	}
	s := &Stream{Path: path, length: length, volume: 1}
	d.Streams[path] = s
	return s, nil
}

func (d *Device) NewPCMStream(sampleRate, channels int) (sound.PCMStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &PCMStream{SampleRate: sampleRate, Channels: channels, volume: 1}
	d.PCM = append(d.PCM, s)
	return s, nil
}

// Stream is a music stream whose position moves only through Advance.
type Stream struct {
	Path    string
	playing bool
	volume  float64
	pos     time.Duration
	length  time.Duration
	Closed  bool
	// VolumeLog records every SetVolume call.
	VolumeLog []float64
}

func (s *Stream) Play()           { s.playing = true }
func (s *Stream) Pause()          { s.playing = false }
func (s *Stream) IsPlaying() bool { return s.playing }
func (s *Stream) SetVolume(v float64) {
	s.volume = v
	s.VolumeLog = append(s.VolumeLog, v)
}
func (s *Stream) Volume() float64 { return s.volume }
func (s *Stream) Seek(t time.Duration) error {
	s.pos = min(t, s.length)
	return nil
}
func (s *Stream) Position() time.Duration { return s.pos }
func (s *Stream) Length() time.Duration   { return s.length }
func (s *Stream) Close() error {
	s.Closed = true
	s.playing = false
	return nil
}

// Advance moves a playing stream forward; it stops at the end like a real
// player does.
func (s *Stream) Advance(d time.Duration) {
	if !s.playing {
		return
	}
	s.pos += d
	if s.pos >= s.length {
		s.pos = s.length
		s.playing = false
	}
}

// PCMStream records pushed samples and is always ready for more.
type PCMStream struct {
	SampleRate int
	Channels   int
	Playing    bool
	Pushed     []float32
	Flushes    int
	Closed     bool
	volume     float64
}

func (s *PCMStream) Play()                  { s.Playing = true }
func (s *PCMStream) Pause()                 { s.Playing = false }
func (s *PCMStream) SetVolume(v float64)    { s.volume = v }
func (s *PCMStream) Ready() bool            { return true }
func (s *PCMStream) Push(samples []float32) { s.Pushed = append(s.Pushed, samples...) }
func (s *PCMStream) Flush()                 { s.Flushes++ }
func (s *PCMStream) Close() error {
	s.Closed = true
	return nil
}
