package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/automoto/curtaincall/sound"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"go.uber.org/zap"
)

// decoded 16-bit stereo PCM: 4 bytes per frame.
const bytesPerFrame16 = 4

var _ sound.Device = (*AudioDevice)(nil)

// AudioDevice is the ebiten audio context behind sound.Service. Ebiten
// allows one context per process, so Close only marks the device closed and
// a later Open reuses the context.
type AudioDevice struct {
	context    *audio.Context
	bufferSize time.Duration
	open       bool
	log        *zap.Logger
}

// NewAudioDevice returns a device whose PCM players buffer bufferSize of
// audio.
func NewAudioDevice(bufferSize time.Duration, log *zap.Logger) *AudioDevice {
	if log == nil {
		log = zap.NewNop()
	}
	return &AudioDevice{bufferSize: bufferSize, log: log}
}

func (d *AudioDevice) Open(sampleRate int) error {
	if d.context == nil {
		if ctx := audio.CurrentContext(); ctx != nil {
			d.context = ctx
		} else {
			d.context = audio.NewContext(sampleRate)
		}
	}
	if d.context.SampleRate() != sampleRate {
		d.log.Warn("audio context already running at a different rate",
			zap.Int("want", sampleRate), zap.Int("have", d.context.SampleRate()))
	}
	d.open = true
	return nil
}

func (d *AudioDevice) Close() error {
	d.open = false
	return nil
}

func (d *AudioDevice) SampleRate() int {
	if d.context == nil {
		return 0
	}
	return d.context.SampleRate()
}

var errDeviceClosed = errors.New("audio device is closed")

type decodedStream interface {
	io.ReadSeeker
	Length() int64
}

func (d *AudioDevice) decode(path string, f io.ReadSeeker) (decodedStream, error) {
	rate := d.context.SampleRate()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".ogg":
		stream, err := vorbis.DecodeWithSampleRate(rate, f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ogg %s: %w", path, err)
		}
		return stream, nil

	case ".wav":
		stream, err := wav.DecodeWithSampleRate(rate, f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode wav %s: %w", path, err)
		}
		return stream, nil

	case ".mp3":
		stream, err := mp3.DecodeWithSampleRate(rate, f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode mp3 %s: %w", path, err)
		}
		return stream, nil

	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
}

// LoadStream opens a music file and streams it from disk.
func (d *AudioDevice) LoadStream(path string) (sound.Stream, error) {
	if !d.open {
		return nil, errDeviceClosed
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open music file %s: %w", path, err)
	}
	stream, err := d.decode(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	player, err := d.context.NewPlayer(stream)
	if err != nil {
		f.Close()
		return nil, err
	}

	frames := stream.Length() / bytesPerFrame16
	length := time.Duration(frames) * time.Second / time.Duration(d.context.SampleRate())
	return &musicStream{player: player, file: f, length: length}, nil
}

// NewPCMStream creates a float32 push stream converted to the context's
// stereo output rate.
func (d *AudioDevice) NewPCMStream(sampleRate, channels int) (sound.PCMStream, error) {
	if !d.open {
		return nil, errDeviceClosed
	}
	src := newPCMSource(sampleRate, channels, d.context.SampleRate())
	player, err := d.context.NewPlayerF32(src)
	if err != nil {
		return nil, err
	}
	if d.bufferSize > 0 {
		player.SetBufferSize(d.bufferSize)
	}
	return &pcmStream{player: player, src: src}, nil
}

type musicStream struct {
	player *audio.Player
	file   *os.File
	length time.Duration
}

func (s *musicStream) Play()           { s.player.Play() }
func (s *musicStream) Pause()          { s.player.Pause() }
func (s *musicStream) IsPlaying() bool { return s.player.IsPlaying() }

func (s *musicStream) SetVolume(v float64) { s.player.SetVolume(v) }
func (s *musicStream) Volume() float64     { return s.player.Volume() }

func (s *musicStream) Seek(t time.Duration) error {
	return s.player.SetPosition(t)
}

func (s *musicStream) Position() time.Duration { return s.player.Position() }
func (s *musicStream) Length() time.Duration   { return s.length }

func (s *musicStream) Close() error {
	return errors.Join(s.player.Close(), s.file.Close())
}

type pcmStream struct {
	player *audio.Player
	src    *pcmSource
}

func (s *pcmStream) Play()               { s.player.Play() }
func (s *pcmStream) Pause()              { s.player.Pause() }
func (s *pcmStream) SetVolume(v float64) { s.player.SetVolume(v) }
func (s *pcmStream) Ready() bool         { return s.src.Drained() }
func (s *pcmStream) Push(samples []float32) {
	s.src.Push(samples)
}
func (s *pcmStream) Flush() { s.src.Flush() }
func (s *pcmStream) Close() error {
	s.src.Flush()
	return s.player.Close()
}
