package jukebox

import (
	"time"

	"github.com/automoto/curtaincall/sound"
	"go.uber.org/zap"
)

// SchedulerConfig tunes the crossfade and ducking behaviour.
type SchedulerConfig struct {
	Crossfade    time.Duration
	Volume       float64
	DuckFraction float64
}

func (c *SchedulerConfig) setDefaults() {
	if c.Crossfade <= 0 {
		c.Crossfade = 2 * time.Second
	}
	if c.Volume <= 0 {
		c.Volume = 0.75
	}
	if c.DuckFraction <= 0 || c.DuckFraction > 1 {
		c.DuckFraction = 0.35
	}
}

type slot struct {
	item   Item
	stream sound.Stream
	volume float64
}

type savedPosition struct {
	item Item
	pos  time.Duration
}

// Scheduler owns the jukebox's now-playing slot: exactly one current stream
// and at most one fading stream. Requested songs preempt the recurrent
// playlist with a crossfade; when the requests run out the interrupted
// recurrent song fades back in where it left off. Songs within one playlist
// follow each other with hard cuts.
//
// Tick is called once per frame from the main goroutine.
type Scheduler struct {
	audio     *sound.Service
	recurrent *Playlist
	requests  *Playlist
	cfg       SchedulerConfig
	log       *zap.Logger

	current *slot
	fading  *slot

	crossfading bool
	elapsed     time.Duration

	volume float64
	ducked bool

	saved *savedPosition

	// OnChange is called whenever a new song becomes current.
	OnChange func(Item)

	registered bool
	closed     bool
}

func NewScheduler(audio *sound.Service, recurrent, requests *Playlist, cfg SchedulerConfig, log *zap.Logger) *Scheduler {
	cfg.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		audio:     audio,
		recurrent: recurrent,
		requests:  requests,
		cfg:       cfg,
		log:       log,
		volume:    cfg.Volume,
	}
	audio.Register()
	s.registered = true
	return s
}

// NowPlaying returns the current item.
func (s *Scheduler) NowPlaying() (Item, bool) {
	if s.current == nil {
		return Item{}, false
	}
	return s.current.item, true
}

// Fading returns the item being faded out, if a crossfade is running.
func (s *Scheduler) Fading() (Item, bool) {
	if s.fading == nil {
		return Item{}, false
	}
	return s.fading.item, true
}

// Crossfading reports whether a crossfade is in progress.
func (s *Scheduler) Crossfading() bool {
	return s.crossfading
}

// Alpha is the crossfade progress in [0, 1]; 1 when no crossfade runs.
func (s *Scheduler) Alpha() float64 {
	if !s.crossfading {
		return 1
	}
	return min(1, float64(s.elapsed)/float64(s.cfg.Crossfade))
}

// SavedPosition returns where the interrupted recurrent song will resume.
func (s *Scheduler) SavedPosition() (Item, time.Duration, bool) {
	if s.saved == nil {
		return Item{}, 0, false
	}
	return s.saved.item, s.saved.pos, true
}

// Position is the playback position of the current song.
func (s *Scheduler) Position() time.Duration {
	if s.current == nil {
		return 0
	}
	return s.audio.TimePlayed(s.current.stream)
}

// TargetVolume is the volume the current song ramps to, ducked or not.
func (s *Scheduler) TargetVolume() float64 {
	if s.ducked {
		return s.volume * s.cfg.DuckFraction
	}
	return s.volume
}

// SetVolume changes the unducked target volume.
func (s *Scheduler) SetVolume(v float64) {
	s.volume = max(0, min(v, 1))
}

// Duck lowers the target volume to the configured fraction. Both ducking
// and a running crossfade write the same target; the last write in a tick
// wins.
func (s *Scheduler) Duck() {
	s.ducked = true
}

func (s *Scheduler) Unduck() {
	s.ducked = false
}

func (s *Scheduler) Ducked() bool {
	return s.ducked
}

// Tick advances the crossfade by dt and handles preemption and track ends.
func (s *Scheduler) Tick(dt time.Duration) {
	if s.closed || !s.audio.Ready() {
		return
	}
	for _, sl := range []*slot{s.current, s.fading} {
		if sl != nil {
			s.audio.Update(sl.stream)
		}
	}

	s.advanceCrossfade(dt)

	switch {
	case s.current == nil:
		s.startNext()
	case s.current.item.Kind == Recurrent && s.requests.Len() > 0:
		s.preempt()
	case !s.audio.IsPlaying(s.current.stream):
		s.trackEnded()
	}

	s.applyVolumes()
}

func (s *Scheduler) advanceCrossfade(dt time.Duration) {
	if !s.crossfading {
		return
	}
	s.elapsed += dt
	if s.elapsed < s.cfg.Crossfade {
		return
	}
	s.crossfading = false
	s.elapsed = 0
	s.release(s.fading)
	s.fading = nil
}

func (s *Scheduler) applyVolumes() {
	target := s.TargetVolume()
	if !s.crossfading {
		s.setVolume(s.current, target)
		return
	}
	alpha := s.Alpha()
	s.setVolume(s.current, alpha*target)
	s.setVolume(s.fading, (1-alpha)*target)
}

func (s *Scheduler) setVolume(sl *slot, v float64) {
	if sl == nil || sl.volume == v {
		return
	}
	sl.volume = v
	s.audio.SetVolume(sl.stream, v)
}

// startNext starts playback from silence.
func (s *Scheduler) startNext() {
	if item, ok := s.requests.Pop(); ok {
		s.hardCut(item, 0)
		return
	}
	if s.saved != nil {
		saved := *s.saved
		s.saved = nil
		s.hardCut(saved.item, saved.pos)
		return
	}
	if item, ok := s.recurrent.Next(); ok {
		s.hardCut(item, 0)
	}
}

// preempt interrupts the recurrent song for the first request.
func (s *Scheduler) preempt() {
	request, ok := s.requests.Pop()
	if !ok {
		return
	}
	s.saved = &savedPosition{
		item: s.current.item,
		pos:  s.audio.TimePlayed(s.current.stream),
	}
	s.log.Info("request preempts recurrent playlist",
		zap.String("interrupted", s.current.item.Title),
		zap.Duration("at", s.saved.pos),
		zap.String("request", request.Title),
	)
	if !s.crossfadeTo(request, 0) {
		s.saved = nil
	}
}

// trackEnded picks what follows the current song once it stops by itself.
func (s *Scheduler) trackEnded() {
	if s.current.item.Kind == Requested {
		if next, ok := s.requests.Pop(); ok {
			s.hardCut(next, 0)
			return
		}
		if s.saved != nil {
			saved := *s.saved
			s.saved = nil
			s.crossfadeOrDrop(saved.item, saved.pos)
			return
		}
		if next, ok := s.recurrent.Next(); ok {
			s.crossfadeOrDrop(next, 0)
			return
		}
	} else if next, ok := s.recurrent.Next(); ok {
		s.hardCut(next, 0)
		return
	}
	s.release(s.current)
	s.current = nil
}

func (s *Scheduler) crossfadeOrDrop(item Item, pos time.Duration) {
	if s.crossfadeTo(item, pos) {
		return
	}
	s.release(s.current)
	s.current = nil
}

// crossfadeTo makes the current song the fading one and starts item at
// volume 0. A crossfade already in progress loses its fading song at once.
func (s *Scheduler) crossfadeTo(item Item, pos time.Duration) bool {
	stream := s.load(item, pos, 0)
	if stream == nil {
		return false
	}
	s.release(s.fading)
	s.fading = s.current
	s.current = &slot{item: item, stream: stream, volume: 0}
	s.crossfading = true
	s.elapsed = 0
	s.changed(item)
	return true
}

// hardCut stops everything and starts item at full target volume.
func (s *Scheduler) hardCut(item Item, pos time.Duration) {
	s.release(s.fading)
	s.release(s.current)
	s.fading, s.current = nil, nil
	s.crossfading = false
	s.elapsed = 0

	target := s.TargetVolume()
	stream := s.load(item, pos, target)
	if stream == nil {
		return
	}
	s.current = &slot{item: item, stream: stream, volume: target}
	s.changed(item)
}

func (s *Scheduler) load(item Item, pos time.Duration, volume float64) sound.Stream {
	stream := s.audio.Load(item.Path)
	if stream == nil {
		s.log.Warn("could not load song, skipping", zap.String("path", item.Path))
		return nil
	}
	if pos > 0 {
		s.audio.Seek(stream, pos)
	}
	s.audio.SetVolume(stream, volume)
	s.audio.Play(stream)
	return stream
}

func (s *Scheduler) release(sl *slot) {
	if sl == nil {
		return
	}
	s.audio.Stop(sl.stream)
	s.audio.Release(sl.stream)
}

func (s *Scheduler) changed(item Item) {
	s.log.Info("now playing",
		zap.String("title", item.Title),
		zap.Stringer("kind", item.Kind),
		zap.String("requester", item.Requester),
	)
	if s.OnChange != nil {
		s.OnChange(item)
	}
}

// Close stops both streams and releases the audio device.
func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.release(s.fading)
	s.release(s.current)
	s.fading, s.current = nil, nil
	s.crossfading = false
	if s.registered {
		s.audio.Unregister()
		s.registered = false
	}
	s.closed = true
}
