package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"time"

	"github.com/automoto/curtaincall/sound"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// State is the playback state of a Player.
type State int

const (
	Stopped State = iota
	Loading
	Buffering
	Playing
	Paused
	Ended
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Loading:
		return "loading"
	case Buffering:
		return "buffering"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// LoadPhase tags the load status of a Player.
type LoadPhase int

const (
	Unloaded LoadPhase = iota
	LoadInProgress
	Ready
	Failed
)

// Status is the load status: Unloaded, LoadInProgress, Ready, or Failed
// with a reason.
type Status struct {
	Phase  LoadPhase
	Path   string
	Reason string
}

// PlayerOptions configures a Player. Zero values fall back to defaults.
type PlayerOptions struct {
	Backend  Backend
	Textures TextureFactory
	Audio    *sound.Service
	Clock    Clock
	Log      *zap.Logger

	FrameQueueSize int
	RingSeconds    float64
	ChunkFrames    int
	IdleSleep      time.Duration
	PrimeFraction  float64
}

func (o *PlayerOptions) setDefaults() {
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.FrameQueueSize <= 0 {
		o.FrameQueueSize = 3
	}
	if o.RingSeconds <= 0 {
		o.RingSeconds = 1.5
	}
	if o.ChunkFrames <= 0 {
		o.ChunkFrames = 4096
	}
	if o.IdleSleep <= 0 {
		o.IdleSleep = time.Millisecond
	}
	if o.PrimeFraction <= 0 || o.PrimeFraction > 1 {
		o.PrimeFraction = 0.5
	}
}

type loadResult struct {
	path  string
	video *Decoder
	audio *Decoder
	info  Info
	seed  []byte
	err   error
}

func (r loadResult) close() {
	if r.video != nil {
		_ = r.video.Close()
	}
	if r.audio != nil {
		_ = r.audio.Close()
	}
}

// task is a cancellable background goroutine that reports once on done.
type task[T any] struct {
	cancel context.CancelFunc
	done   chan T
}

func startTask[T any](fn func(ctx context.Context) T) *task[T] {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task[T]{cancel: cancel, done: make(chan T, 1)}
	go func() {
		t.done <- fn(ctx)
	}()
	return t
}

// poll returns the result if the task has finished, without blocking.
func (t *task[T]) poll() (T, bool) {
	select {
	case v := <-t.done:
		t.cancel()
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// stop cancels the task and blocks until it has returned.
func (t *task[T]) stop() T {
	t.cancel()
	return <-t.done
}

// Player decodes a media file on background goroutines and presents it
// against the wall clock. All exported methods belong to the main (render)
// goroutine and are safe to call in any state.
type Player struct {
	opts PlayerOptions
	log  *zap.Logger

	state   State
	status  Status
	looping bool
	volume  float64

	video *Decoder
	audio *Decoder
	info  Info
	seed  []byte // first frame, queued on the first Play after Load

	pool    *FramePool
	queue   *FrameQueue
	ring    *RingAudioBuffer
	scratch []float32
	// dropped counts ring frames discarded against the clock while no
	// device consumes them.
	dropped int
	feed    *feeder
	texture Texture
	pcm     sound.PCMStream

	clock PlayerClock
	fresh bool // decoders sit right after the seed frame

	loadTask   *task[loadResult]
	primeTask  *task[error]
	decodeTask *task[struct{}]

	playOnLoad bool
	registered bool
	disposed   bool
}

func NewPlayer(opts PlayerOptions) *Player {
	opts.setDefaults()
	p := &Player{
		opts:   opts,
		log:    opts.Log,
		volume: 1,
	}
	if opts.Audio != nil {
		opts.Audio.Register()
		p.registered = true
	}
	return p
}

func (p *Player) State() State {
	return p.state
}

// LoadStatus returns the tagged load status.
func (p *Player) LoadStatus() Status {
	return p.status
}

func (p *Player) Info() Info {
	return p.info
}

// MasterClock returns the playback position derived from the wall clock.
func (p *Player) MasterClock() time.Duration {
	return p.clock.Master()
}

func (p *Player) Looping() bool {
	return p.looping
}

func (p *Player) SetLooping(looping bool) {
	p.looping = looping
}

func (p *Player) Volume() float64 {
	return p.volume
}

func (p *Player) SetVolume(volume float64) {
	p.volume = max(0, min(volume, 1))
	if p.opts.Audio != nil {
		p.opts.Audio.SetPCMVolume(p.pcm, p.volume)
	}
}

// Load opens path in the background. The player is Loading until Update
// (or WaitLoaded) picks up the result.
func (p *Player) Load(path string) {
	if p.disposed {
		return
	}
	p.unload()

	p.state = Loading
	p.status = Status{Phase: LoadInProgress, Path: path}
	backend, log := p.opts.Backend, p.log
	p.loadTask = startTask(func(ctx context.Context) loadResult {
		return openForPlayback(ctx, backend, path, log)
	})
}

func openForPlayback(ctx context.Context, backend Backend, path string, log *zap.Logger) loadResult {
	res := loadResult{path: path}

	video, err := OpenDecoder(backend, path, log)
	if err != nil {
		res.err = err
		return res
	}
	res.video = video
	res.info = video.Info()

	if res.info.HasAudio {
		audio, err := OpenDecoder(backend, path, log)
		if err != nil {
			log.Warn("audio stream unavailable, playing without sound", zap.String("path", path), zap.Error(err))
			res.info.HasAudio = false
		} else {
			res.audio = audio
		}
	}

	if ctx.Err() != nil {
		res.err = ctx.Err()
		return res
	}

	if res.info.HasVideo {
		res.seed = make([]byte, res.info.FrameBytes())
		ok, err := video.NextVideoFrame(res.seed)
		if err != nil || !ok {
			if err == nil {
				err = ErrEndOfStream
			}
			res.err = &OpenError{Path: path, Err: err}
			return res
		}
	}
	return res
}

// WaitLoaded blocks until an in-flight Load completes or ctx is done.
func (p *Player) WaitLoaded(ctx context.Context) error {
	if p.loadTask == nil {
		if p.status.Phase == Failed {
			return errors.New(p.status.Reason)
		}
		return nil
	}
	select {
	case res := <-p.loadTask.done:
		p.loadTask.cancel()
		p.loadTask = nil
		p.applyLoad(res)
		if res.err != nil {
			return res.err
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) applyLoad(res loadResult) {
	if res.err != nil {
		res.close()
		p.state = Stopped
		p.status = Status{Phase: Failed, Path: res.path, Reason: res.err.Error()}
		p.playOnLoad = false
		p.log.Warn("failed to load media", zap.String("path", res.path), zap.Error(res.err))
		return
	}

	p.video, p.audio, p.info = res.video, res.audio, res.info
	p.pool = NewFramePool(p.info.FrameBytes())
	p.queue = NewFrameQueue(p.opts.FrameQueueSize)

	if p.info.HasAudio {
		p.ring = NewRingAudioBuffer(RingFramesFor(p.info.SampleRate, p.opts.RingSeconds), p.info.Channels)
		p.scratch = make([]float32, p.opts.ChunkFrames*p.ring.Channels())
		if p.opts.Audio != nil {
			p.pcm = p.opts.Audio.NewPCM(p.info.SampleRate, p.ring.Channels())
			p.opts.Audio.SetPCMVolume(p.pcm, p.volume)
		}
	}
	p.feed = newFeeder(p.video, p.audio, p.pool, p.queue, p.ring, p.log)

	if p.info.HasVideo && p.opts.Textures != nil {
		p.texture = p.opts.Textures.NewTexture(p.info.Width, p.info.Height)
		p.texture.WritePixels(res.seed)
	}
	p.seed = res.seed
	p.fresh = true

	p.state = Stopped
	p.status = Status{Phase: Ready, Path: res.path}
	p.log.Info("media loaded",
		zap.String("path", res.path),
		zap.Int("width", p.info.Width),
		zap.Int("height", p.info.Height),
		zap.Float64("fps", p.info.FrameRate),
		zap.Duration("duration", p.info.Duration),
		zap.Int("sampleRate", p.info.SampleRate),
		zap.Int("channels", p.info.Channels),
	)

	if p.playOnLoad {
		p.playOnLoad = false
		p.Play()
	}
}

// Play starts from the beginning when Stopped or Ended, or resumes from
// the frozen position when Paused. While Loading it plays once loaded.
func (p *Player) Play() {
	if p.disposed {
		return
	}
	switch p.state {
	case Loading:
		p.playOnLoad = true
	case Stopped, Ended:
		if p.status.Phase != Ready {
			return
		}
		p.startBuffering()
	case Paused:
		p.clock.Resume(p.opts.Clock.Now())
		p.startPlaying()
	}
}

func (p *Player) startBuffering() {
	p.clock.Reset(p.opts.Clock.Now())
	p.queue.Drain(p.pool.Release)
	if p.ring != nil {
		p.ring.Clear()
	}
	p.feed.reset()
	p.dropped = 0
	if p.opts.Audio != nil {
		p.opts.Audio.StopPCM(p.pcm)
	}

	fresh := p.fresh
	p.fresh = false
	if fresh && p.seed != nil {
		p.queue.TryPush(p.seed)
	}
	p.seed = nil

	p.state = Buffering
	feed, target, idle := p.feed, p.primeTarget(), p.opts.IdleSleep
	p.primeTask = startTask(func(ctx context.Context) error {
		if !fresh {
			if err := feed.rewind(); err != nil {
				return err
			}
		}
		return feed.prime(ctx, target, idle)
	})
}

func (p *Player) primeTarget() int {
	if p.ring == nil {
		return 0
	}
	return int(float64(p.ring.Cap()) * p.opts.PrimeFraction)
}

func (p *Player) startPlaying() {
	p.state = Playing
	if p.opts.Audio != nil {
		p.opts.Audio.PlayPCM(p.pcm)
	}
	feed, idle := p.feed, p.opts.IdleSleep
	p.decodeTask = startTask(func(ctx context.Context) struct{} {
		feed.run(ctx, idle)
		return struct{}{}
	})
}

// stopDecoding cancels the decode worker and waits for it.
func (p *Player) stopDecoding() {
	if p.decodeTask != nil {
		p.decodeTask.stop()
		p.decodeTask = nil
	}
}

// stopPriming cancels the buffering task and waits for it.
func (p *Player) stopPriming() {
	if p.primeTask != nil {
		p.primeTask.stop()
		p.primeTask = nil
	}
}

// Pause freezes the clock and stops decoding; Play resumes without
// re-buffering.
func (p *Player) Pause() {
	switch p.state {
	case Playing:
		p.stopDecoding()
	case Buffering:
		p.stopPriming()
	default:
		return
	}
	if p.opts.Audio != nil {
		p.opts.Audio.PausePCM(p.pcm)
	}
	p.state = Paused
}

// Stop halts playback and clears all buffers. An in-flight Load is
// abandoned.
func (p *Player) Stop() {
	if p.state == Loading {
		p.cancelLoad()
		p.state = Stopped
		p.status = Status{Phase: Unloaded}
		return
	}
	p.halt()
	if p.state != Stopped {
		p.state = Stopped
	}
}

// halt stops every task and clears the buffers, leaving decoders open.
func (p *Player) halt() {
	p.stopPriming()
	p.stopDecoding()
	if p.queue != nil {
		p.queue.Drain(p.pool.Release)
	}
	if p.ring != nil {
		p.ring.Clear()
	}
	if p.opts.Audio != nil {
		p.opts.Audio.StopPCM(p.pcm)
	}
	p.clock.Reset(p.opts.Clock.Now())
	p.dropped = 0
	if p.seed == nil {
		p.fresh = false
	}
}

// Seek moves playback to t, clamped into [0, Duration], and shows the frame
// at that position. Playback continues if it was active. Seeking a stopped
// or ended player leaves it Paused at t.
func (p *Player) Seek(t time.Duration) {
	if p.disposed || p.status.Phase != Ready {
		return
	}
	wasActive := p.state == Playing || p.state == Buffering

	p.stopPriming()
	p.stopDecoding()
	t = clampDuration(t, p.info.Duration)

	now := p.opts.Clock.Now()
	p.clock.ResetTo(now, t)
	p.queue.Drain(p.pool.Release)
	if p.ring != nil {
		p.ring.Clear()
	}
	if p.opts.Audio != nil {
		p.opts.Audio.StopPCM(p.pcm)
	}
	p.feed.reset()
	p.dropped = p.framesAt(t)
	p.fresh = false
	p.seed = nil

	if err := p.seekDecoders(t); err != nil {
		p.log.Warn("seek failed", zap.Duration("target", t), zap.Error(err))
		p.clock.Reset(now)
		p.state = Stopped
		return
	}

	if wasActive {
		p.startPlaying()
		return
	}
	p.state = Paused
}

func (p *Player) seekDecoders(t time.Duration) error {
	if p.video != nil && p.info.HasVideo {
		if err := p.video.Seek(t); err != nil {
			return err
		}
		buf := p.pool.Acquire()
		ok, err := p.video.NextVideoFrame(buf)
		if err != nil {
			p.pool.Release(buf)
			return err
		}
		if ok {
			if p.texture != nil {
				p.texture.WritePixels(buf)
			}
			p.clock.StepFrame(p.info.FrameInterval())
		}
		p.pool.Release(buf)
	}
	if p.audio != nil {
		if err := p.audio.Seek(t); err != nil {
			return err
		}
	}
	return nil
}

// Update advances the clock, feeds the audio device and presents at most
// one due video frame. It never blocks.
func (p *Player) Update() {
	if p.disposed {
		return
	}

	if p.loadTask != nil {
		if res, ok := p.loadTask.poll(); ok {
			p.loadTask = nil
			p.applyLoad(res)
		}
	}

	if p.state == Buffering && p.primeTask != nil {
		if err, ok := p.primeTask.poll(); ok {
			p.primeTask = nil
			if err != nil {
				p.log.Warn("buffering failed", zap.Error(err))
				p.halt()
				p.state = Stopped
				return
			}
			p.clock.Resume(p.opts.Clock.Now())
			p.startPlaying()
		}
	}

	if p.state != Playing {
		return
	}

	p.clock.Advance(p.opts.Clock.Now())
	p.feedDevice()

	if p.clock.FrameDue() {
		if frame, ok := p.queue.TryPop(); ok {
			if p.texture != nil {
				p.texture.WritePixels(frame)
			}
			p.pool.Release(frame)
			p.clock.StepFrame(p.info.FrameInterval())
		}
	}

	if p.queue.Len() == 0 && p.feed.ended.Load() {
		if p.info.HasVideo || p.ring == nil || p.ring.Len() == 0 {
			p.complete()
		}
	}
}

// feedDevice pushes one chunk once the device has consumed everything
// pushed before. Underruns are silent. Without a device the ring is
// drained at clock pace so the stream still reaches its end.
func (p *Player) feedDevice() {
	if p.ring == nil {
		return
	}
	if p.opts.Audio == nil || p.pcm == nil || !p.opts.Audio.Ready() {
		p.dropAudio()
		return
	}
	if !p.opts.Audio.PCMReady(p.pcm) {
		return
	}
	n := p.ring.Read(p.opts.ChunkFrames, p.scratch)
	if n == 0 {
		return
	}
	p.opts.Audio.PushPCM(p.pcm, p.scratch[:n*p.ring.Channels()])
}

func (p *Player) dropAudio() {
	due := p.framesAt(p.clock.Master()) - p.dropped
	for due > 0 {
		n := p.ring.Read(min(due, p.opts.ChunkFrames), p.scratch)
		if n == 0 {
			return
		}
		p.dropped += n
		due -= n
	}
}

func (p *Player) framesAt(t time.Duration) int {
	return int(t.Seconds() * float64(p.info.SampleRate))
}

func (p *Player) complete() {
	p.stopDecoding()
	if p.looping {
		p.state = Stopped
		p.Play()
		return
	}
	if p.opts.Audio != nil {
		p.opts.Audio.StopPCM(p.pcm)
	}
	p.state = Ended
}

// Draw renders the current frame into bounds. It does nothing until a
// texture exists.
func (p *Player) Draw(dst *ebiten.Image, bounds image.Rectangle, tint color.Color) {
	if p.texture == nil || dst == nil {
		return
	}
	p.texture.Draw(dst, bounds, tint)
}

func (p *Player) cancelLoad() {
	if p.loadTask == nil {
		return
	}
	res := p.loadTask.stop()
	res.close()
	p.loadTask = nil
	p.playOnLoad = false
}

// unload releases everything tied to the current file.
func (p *Player) unload() {
	p.cancelLoad()
	p.halt()

	if p.video != nil {
		_ = p.video.Close()
		p.video = nil
	}
	if p.audio != nil {
		_ = p.audio.Close()
		p.audio = nil
	}
	if p.texture != nil {
		p.texture.Dispose()
		p.texture = nil
	}
	if p.opts.Audio != nil && p.pcm != nil {
		p.opts.Audio.ReleasePCM(p.pcm)
	}
	p.pcm = nil
	p.ring, p.queue, p.pool, p.feed = nil, nil, nil, nil
	p.seed = nil
	p.fresh = false
	p.info = Info{}
	p.state = Stopped
	p.status = Status{Phase: Unloaded}
}

// Dispose waits for every background task, including an in-flight Load,
// then releases the decoders, texture and audio stream. The player is
// unusable afterwards.
func (p *Player) Dispose() {
	if p.disposed {
		return
	}
	p.unload()
	if p.registered {
		p.opts.Audio.Unregister()
		p.registered = false
	}
	p.disposed = true
}
