package sound

import (
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v5"
	"go.uber.org/zap"
)

// ServiceConfig controls device opening.
type ServiceConfig struct {
	SampleRate   int
	OpenAttempts uint
	RetryDelay   time.Duration
}

// Service reference-counts the audio device and exposes tolerant per-stream
// operations: every call is a no-op returning a zero value when the device
// is not ready or the stream is nil, and failures are logged, not returned.
//
// Register and Unregister are called from the main goroutine only; the
// reference count is not locked.
type Service struct {
	device Device
	cfg    ServiceConfig
	log    *zap.Logger
	refs   int
	ready  bool
}

func NewService(device Device, cfg ServiceConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.OpenAttempts == 0 {
		cfg.OpenAttempts = 1
	}
	return &Service{device: device, cfg: cfg, log: log}
}

// Register adds a user of the device, opening it on the first registration.
// It reports whether the device is ready.
func (s *Service) Register() bool {
	s.refs++
	if s.refs == 1 {
		s.open()
	}
	return s.ready
}

// Unregister drops a user; the device is closed when none remain.
func (s *Service) Unregister() {
	if s.refs == 0 {
		return
	}
	s.refs--
	if s.refs > 0 || !s.ready {
		return
	}
	s.ready = false
	s.guard("close device", func() error {
		return s.device.Close()
	})
}

// Refs returns the number of registered users.
func (s *Service) Refs() int {
	return s.refs
}

// Ready reports whether the device is open.
func (s *Service) Ready() bool {
	return s.ready && s.device != nil
}

// SampleRate returns the device output rate, or 0 when not ready.
func (s *Service) SampleRate() int {
	if !s.Ready() {
		return 0
	}
	return s.device.SampleRate()
}

func (s *Service) open() {
	if s.device == nil {
		s.log.Warn("no audio device configured, audio disabled")
		return
	}

	err := retry.New(
		retry.Attempts(s.cfg.OpenAttempts),
		retry.Delay(s.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	).Do(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("device open panicked: %v", r)
			}
		}()
		return s.device.Open(s.cfg.SampleRate)
	})
	if err != nil {
		s.log.Warn("audio device unavailable, continuing without audio", zap.Error(err))
		return
	}
	s.ready = true
	s.log.Info("audio device opened", zap.Int("sampleRate", s.device.SampleRate()))
}

// guard runs fn, logging its error or any panic it raises.
func (s *Service) guard(op string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("audio call panicked", zap.String("op", op), zap.Any("panic", r))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		s.log.Warn("audio call failed", zap.String("op", op), zap.Error(err))
		return false
	}
	return true
}

// Load opens a music stream. It returns nil when the device is not ready or
// the file cannot be decoded.
func (s *Service) Load(path string) Stream {
	if !s.Ready() {
		return nil
	}
	var stream Stream
	s.guard("load "+path, func() error {
		var err error
		stream, err = s.device.LoadStream(path)
		return err
	})
	return stream
}

// NewPCM creates a push stream for decoded audio, or nil.
func (s *Service) NewPCM(sampleRate, channels int) PCMStream {
	if !s.Ready() {
		return nil
	}
	var stream PCMStream
	s.guard("new pcm stream", func() error {
		var err error
		stream, err = s.device.NewPCMStream(sampleRate, channels)
		return err
	})
	return stream
}

func (s *Service) Play(stream Stream) {
	if !s.Ready() || stream == nil {
		return
	}
	s.guard("play", func() error {
		stream.Play()
		return nil
	})
}

func (s *Service) Pause(stream Stream) {
	if !s.Ready() || stream == nil {
		return
	}
	s.guard("pause", func() error {
		stream.Pause()
		return nil
	})
}

// Stop pauses and rewinds to the start.
func (s *Service) Stop(stream Stream) {
	if !s.Ready() || stream == nil {
		return
	}
	s.guard("stop", func() error {
		stream.Pause()
		return stream.Seek(0)
	})
}

func (s *Service) SetVolume(stream Stream, volume float64) {
	if !s.Ready() || stream == nil {
		return
	}
	volume = max(0, min(volume, 1))
	s.guard("set volume", func() error {
		stream.SetVolume(volume)
		return nil
	})
}

func (s *Service) Volume(stream Stream) float64 {
	if !s.Ready() || stream == nil {
		return 0
	}
	var v float64
	s.guard("volume", func() error {
		v = stream.Volume()
		return nil
	})
	return v
}

func (s *Service) Seek(stream Stream, t time.Duration) {
	if !s.Ready() || stream == nil {
		return
	}
	if t < 0 {
		t = 0
	}
	s.guard("seek", func() error {
		return stream.Seek(t)
	})
}

func (s *Service) IsPlaying(stream Stream) bool {
	if !s.Ready() || stream == nil {
		return false
	}
	var playing bool
	s.guard("is playing", func() error {
		playing = stream.IsPlaying()
		return nil
	})
	return playing
}

// TimePlayed returns the stream position.
func (s *Service) TimePlayed(stream Stream) time.Duration {
	if !s.Ready() || stream == nil {
		return 0
	}
	var pos time.Duration
	s.guard("time played", func() error {
		pos = stream.Position()
		return nil
	})
	return pos
}

// TimeLength returns the stream length.
func (s *Service) TimeLength(stream Stream) time.Duration {
	if !s.Ready() || stream == nil {
		return 0
	}
	var length time.Duration
	s.guard("time length", func() error {
		length = stream.Length()
		return nil
	})
	return length
}

// Update services streams that need it once per tick.
func (s *Service) Update(stream Stream) {
	if !s.Ready() || stream == nil {
		return
	}
	u, ok := stream.(Updater)
	if !ok {
		return
	}
	s.guard("update", u.Update)
}

// Release closes the stream.
func (s *Service) Release(stream Stream) {
	if stream == nil {
		return
	}
	s.guard("release", stream.Close)
}

// PCMReady reports whether a push stream wants more data.
func (s *Service) PCMReady(stream PCMStream) bool {
	if !s.Ready() || stream == nil {
		return false
	}
	var ready bool
	s.guard("pcm ready", func() error {
		ready = stream.Ready()
		return nil
	})
	return ready
}

func (s *Service) PushPCM(stream PCMStream, interleaved []float32) {
	if !s.Ready() || stream == nil || len(interleaved) == 0 {
		return
	}
	s.guard("pcm push", func() error {
		stream.Push(interleaved)
		return nil
	})
}

func (s *Service) PlayPCM(stream PCMStream) {
	if !s.Ready() || stream == nil {
		return
	}
	s.guard("pcm play", func() error {
		stream.Play()
		return nil
	})
}

func (s *Service) PausePCM(stream PCMStream) {
	if !s.Ready() || stream == nil {
		return
	}
	s.guard("pcm pause", func() error {
		stream.Pause()
		return nil
	})
}

// StopPCM pauses the stream and discards anything not yet played.
func (s *Service) StopPCM(stream PCMStream) {
	if !s.Ready() || stream == nil {
		return
	}
	s.guard("pcm stop", func() error {
		stream.Pause()
		stream.Flush()
		return nil
	})
}

func (s *Service) SetPCMVolume(stream PCMStream, volume float64) {
	if !s.Ready() || stream == nil {
		return
	}
	volume = max(0, min(volume, 1))
	s.guard("pcm volume", func() error {
		stream.SetVolume(volume)
		return nil
	})
}

func (s *Service) ReleasePCM(stream PCMStream) {
	if stream == nil {
		return
	}
	s.guard("pcm release", stream.Close)
}
