// Package decode provides the FFmpeg-backed media.Backend used in
// production. Each Open call gets its own demuxer so the player's video and
// audio decoders never share packet state.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/automoto/curtaincall/media"
	"github.com/erparts/reisen"
	"go.uber.org/zap"
)

// reisen resamples every audio stream to interleaved stereo float64.
const outputChannels = 2

var _ media.Backend = (*Backend)(nil)

// Backend opens files and network URLs through reisen.
type Backend struct {
	log *zap.Logger

	netOnce  sync.Once
	netErr   error
	netReady atomic.Bool
}

func NewBackend(log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{log: log.Named("decode")}
}

func isNetworkPath(path string) bool {
	return strings.Contains(path, "://")
}

func (b *Backend) Open(path string) (media.Source, error) {
	if isNetworkPath(path) {
		b.netOnce.Do(func() {
			b.netErr = reisen.NetworkInitialize()
			b.netReady.Store(b.netErr == nil)
		})
		if b.netErr != nil {
			return nil, fmt.Errorf("network init: %w", b.netErr)
		}
	}

	m, err := reisen.NewMedia(path)
	if err != nil {
		return nil, err
	}

	src := &source{media: m, log: b.log.With(zap.String("path", path))}
	if vs := m.VideoStreams(); len(vs) > 0 {
		src.video = vs[0]
	}
	if as := m.AudioStreams(); len(as) > 0 {
		src.audio = as[0]
	}
	if src.video == nil && src.audio == nil {
		m.Close()
		return nil, errors.New("no audio or video streams")
	}

	if err := src.readInfo(); err != nil {
		m.Close()
		return nil, err
	}
	if err := m.OpenDecode(); err != nil {
		m.Close()
		return nil, fmt.Errorf("open decode: %w", err)
	}
	return src, nil
}

// Shutdown releases network state if any URL was opened.
func (b *Backend) Shutdown() {
	if b.netReady.CompareAndSwap(true, false) {
		reisen.NetworkDeinitialize()
	}
}

// source demuxes one file. Streams are opened lazily on first read, so a
// handle used only for video never pays for audio decoding.
type source struct {
	media *reisen.Media
	video *reisen.VideoStream
	audio *reisen.AudioStream
	info  media.Info
	log   *zap.Logger

	videoOpen bool
	audioOpen bool
	eof       bool

	videoSeek streamSeek
	audioSeek streamSeek

	// Frames stamped before these offsets are dropped after a seek.
	videoFrom time.Duration
	audioFrom time.Duration
	interval  time.Duration
}

func (s *source) readInfo() error {
	if d, err := s.media.Duration(); err == nil {
		s.info.Duration = d
	}
	if s.video != nil {
		num, den := s.video.FrameRate()
		if den == 0 || num == 0 {
			return errors.New("video stream has no frame rate")
		}
		s.info.HasVideo = true
		s.info.Width = s.video.Width()
		s.info.Height = s.video.Height()
		s.info.Stride = s.info.Width * 4
		s.info.FrameRate = float64(num) / float64(den)
		s.interval = s.info.FrameInterval()
		if s.info.Duration == 0 {
			if d, err := s.video.Duration(); err == nil {
				s.info.Duration = d
			}
		}
	}
	if s.audio != nil {
		s.info.HasAudio = true
		s.info.SampleRate = s.audio.SampleRate()
		s.info.Channels = outputChannels
		if s.info.Duration == 0 {
			if d, err := s.audio.Duration(); err == nil {
				s.info.Duration = d
			}
		}
	}
	return nil
}

func (s *source) Info() media.Info {
	return s.info
}

func (s *source) openVideo() error {
	if s.videoOpen {
		return nil
	}
	if err := s.video.Open(); err != nil {
		return fmt.Errorf("open video stream: %w", err)
	}
	s.videoOpen = true
	if err := s.videoSeek.opened(s.video); err != nil {
		s.log.Debug("deferred video rewind failed, skipping frames instead", zap.Error(err))
	}
	return nil
}

func (s *source) openAudio() error {
	if s.audioOpen {
		return nil
	}
	if err := s.audio.Open(); err != nil {
		return fmt.Errorf("open audio stream: %w", err)
	}
	s.audioOpen = true
	if err := s.audioSeek.opened(s.audio); err != nil {
		s.log.Debug("deferred audio rewind failed, trimming samples instead", zap.Error(err))
	}
	return nil
}

// nextPacket reads packets until one belongs to the wanted stream.
func (s *source) nextPacket(kind reisen.StreamType, index int) (bool, error) {
	for !s.eof {
		pkt, ok, err := s.media.ReadPacket()
		if err != nil {
			return false, err
		}
		if !ok {
			s.eof = true
			break
		}
		if pkt.Type() == kind && pkt.StreamIndex() == index {
			return true, nil
		}
	}
	return false, nil
}

func (s *source) ReadVideo(dst []byte) (bool, error) {
	if s.video == nil {
		return false, nil
	}
	if err := s.openVideo(); err != nil {
		return false, err
	}

	for {
		ok, err := s.nextPacket(reisen.StreamVideo, s.video.Index())
		if err != nil || !ok {
			return false, err
		}
		frame, got, err := s.video.ReadVideoFrame()
		if err != nil {
			return false, err
		}
		if !got || frame == nil {
			continue
		}
		if s.videoFrom > 0 {
			if pts, err := frame.PresentationOffset(); err == nil && pts+s.interval/2 < s.videoFrom {
				continue
			}
			s.videoFrom = 0
		}

		data := frame.Data()
		if len(data) != len(dst) {
			return false, fmt.Errorf("%w: decoder produced %d bytes", media.ErrFrameSize, len(data))
		}
		copy(dst, data)
		return true, nil
	}
}

func (s *source) ReadAudio() ([][]float32, bool, error) {
	if s.audio == nil {
		return nil, false, nil
	}
	if err := s.openAudio(); err != nil {
		return nil, false, err
	}

	for {
		ok, err := s.nextPacket(reisen.StreamAudio, s.audio.Index())
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, media.ErrEndOfStream
		}
		frame, got, err := s.audio.ReadAudioFrame()
		if err != nil {
			return nil, false, err
		}
		if !got || frame == nil {
			continue
		}

		samples := planarFromStereo(frame.Data())
		if s.audioFrom > 0 {
			pts, err := frame.PresentationOffset()
			if err == nil {
				samples = trimBefore(samples, pts, s.audioFrom, s.info.SampleRate)
			}
			if len(samples[0]) == 0 {
				continue
			}
			s.audioFrom = 0
		}
		return samples, true, nil
	}
}

// Seek rewinds every opened stream to the keyframe before t; a stream not
// opened yet is rewound when it opens. Frames ahead of t are then skipped
// on read.
func (s *source) Seek(t time.Duration) error {
	s.eof = false
	if s.video != nil {
		if err := s.videoSeek.seek(s.video, s.videoOpen, t); err != nil {
			return fmt.Errorf("rewind video: %w", err)
		}
	}
	if s.audio != nil {
		if err := s.audioSeek.seek(s.audio, s.audioOpen, t); err != nil {
			s.log.Debug("audio rewind failed", zap.Error(err))
			return fmt.Errorf("%w: %v", media.ErrSeekUnsupported, err)
		}
	}
	s.videoFrom = t
	s.audioFrom = t
	return nil
}

type rewinder interface {
	Rewind(t time.Duration) error
}

// streamSeek holds a seek issued before its stream was opened.
type streamSeek struct {
	to     time.Duration
	marked bool
}

// seek rewinds r now when open, otherwise remembers t for opened.
func (ss *streamSeek) seek(r rewinder, open bool, t time.Duration) error {
	if !open {
		ss.to, ss.marked = t, true
		return nil
	}
	ss.marked = false
	return r.Rewind(t)
}

// opened applies the remembered seek, if any, to a freshly opened stream.
func (ss *streamSeek) opened(r rewinder) error {
	if !ss.marked {
		return nil
	}
	ss.marked = false
	return r.Rewind(ss.to)
}

func (s *source) Close() error {
	var errs []error
	if s.videoOpen {
		errs = append(errs, s.video.Close())
		s.videoOpen = false
	}
	if s.audioOpen {
		errs = append(errs, s.audio.Close())
		s.audioOpen = false
	}
	if s.media != nil {
		errs = append(errs, s.media.CloseDecode())
		s.media.Close()
		s.media = nil
	}
	return errors.Join(errs...)
}

// planarFromStereo splits interleaved little-endian float64 stereo into one
// float32 slice per channel.
func planarFromStereo(data []byte) [][]float32 {
	const frameBytes = 8 * outputChannels
	frames := len(data) / frameBytes
	out := make([][]float32, outputChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < outputChannels; ch++ {
			off := i*frameBytes + ch*8
			out[ch][i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(data[off:])))
		}
	}
	return out
}

// trimBefore drops the samples of a chunk starting at pts that fall before
// from.
func trimBefore(samples [][]float32, pts, from time.Duration, sampleRate int) [][]float32 {
	if pts >= from || len(samples) == 0 {
		return samples
	}
	skip := int(math.Round((from - pts).Seconds() * float64(sampleRate)))
	for ch := range samples {
		samples[ch] = samples[ch][min(skip, len(samples[ch])):]
	}
	return samples
}
