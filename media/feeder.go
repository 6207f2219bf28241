package media

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// feeder moves decoded data from the decoders into the frame queue and the
// ring buffer. It is driven by exactly one goroutine at a time: the priming
// task while Buffering, then the decode worker while Playing. The main
// goroutine only touches it after that goroutine has been waited on.
type feeder struct {
	video *Decoder
	audio *Decoder
	pool  *FramePool
	queue *FrameQueue
	ring  *RingAudioBuffer
	log   *zap.Logger

	channels  int
	pending   []float32 // decoded samples the ring had no room for yet
	pendBuf   []float32
	videoDone bool
	audioDone bool

	// ended is set once the stream that drives completion has run out.
	ended atomic.Bool
}

func newFeeder(video, audio *Decoder, pool *FramePool, queue *FrameQueue, ring *RingAudioBuffer, log *zap.Logger) *feeder {
	f := &feeder{
		video: video,
		audio: audio,
		pool:  pool,
		queue: queue,
		ring:  ring,
		log:   log,
	}
	if ring != nil {
		f.channels = ring.Channels()
	}
	f.reset()
	return f
}

// reset forgets end-of-stream and pending samples, e.g. after a seek.
func (f *feeder) reset() {
	f.pending = f.pending[:0]
	f.videoDone = f.video == nil || !f.video.Info().HasVideo
	f.audioDone = f.audio == nil || f.ring == nil
	f.ended.Store(false)
}

// stepVideo decodes one frame into the queue if there is room. It reports
// whether any work was done.
func (f *feeder) stepVideo() bool {
	if f.videoDone || f.queue.Full() {
		return false
	}

	buf := f.pool.Acquire()
	ok, err := f.video.NextVideoFrame(buf)
	if err != nil {
		f.log.Warn("video decode failed, treating as end of stream", zap.Error(err))
	}
	if err != nil || !ok {
		f.pool.Release(buf)
		f.videoDone = true
		f.updateEnded()
		return true
	}

	// Single producer: the queue cannot have filled since the check above.
	if !f.queue.TryPush(buf) {
		f.pool.Release(buf)
		return false
	}
	return true
}

// stepAudio writes pending samples, or decodes the next chunk when nothing
// is pending. It never writes more than the ring has room for.
func (f *feeder) stepAudio() bool {
	if len(f.pending) > 0 {
		n := f.ring.Write(f.pending)
		f.pending = f.pending[n*f.channels:]
		return n > 0
	}
	if f.audioDone || f.ring.Free() == 0 {
		return false
	}

	chunk, ok, err := f.audio.NextAudioFrame()
	if err != nil {
		f.log.Warn("audio decode failed, treating as end of stream", zap.Error(err))
	}
	if err != nil || !ok {
		f.audioDone = true
		f.updateEnded()
		return true
	}

	f.pendBuf = chunk.InterleaveChannels(f.channels, f.pendBuf[:0])
	f.pending = f.pendBuf
	n := f.ring.Write(f.pending)
	f.pending = f.pending[n*f.channels:]
	return true
}

// audioIdle reports whether the audio side has nothing left to deliver.
func (f *feeder) audioIdle() bool {
	return f.audioDone && len(f.pending) == 0
}

func (f *feeder) updateEnded() {
	hasVideo := f.video != nil && f.video.Info().HasVideo
	if (hasVideo && f.videoDone) || (!hasVideo && f.audioIdle()) {
		f.ended.Store(true)
	}
}

// finished reports whether both sides are exhausted.
func (f *feeder) finished() bool {
	return f.videoDone && f.audioIdle()
}

// rewind seeks both decoders back to the start.
func (f *feeder) rewind() error {
	if f.video != nil {
		if err := f.video.Seek(0); err != nil {
			return err
		}
	}
	if f.audio != nil {
		if err := f.audio.Seek(0); err != nil {
			return err
		}
	}
	return nil
}

// prime fills the frame queue and at least target frames of the ring
// before playback starts.
func (f *feeder) prime(ctx context.Context, target int, idle time.Duration) error {
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		videoReady := f.videoDone || f.queue.Full()
		audioReady := f.audioIdle() || f.ring.Len() >= target
		if videoReady && audioReady {
			return nil
		}

		progressed := false
		if !videoReady {
			progressed = f.stepVideo()
		}
		if !audioReady {
			progressed = f.stepAudio() || progressed
		}
		if !progressed && !sleep(ctx, timer, idle) {
			return ctx.Err()
		}
	}
}

// run keeps the queue and ring topped up until ctx is cancelled or both
// streams are exhausted. When neither side has room it sleeps for idle.
func (f *feeder) run(ctx context.Context, idle time.Duration) {
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for ctx.Err() == nil {
		progressed := f.stepVideo()
		if !f.audioIdle() {
			progressed = f.stepAudio() || progressed
		}
		if f.finished() {
			return
		}
		if !progressed && !sleep(ctx, timer, idle) {
			return
		}
	}
}

// sleep waits for idle or cancellation. It returns false if cancelled.
func sleep(ctx context.Context, timer *time.Timer, idle time.Duration) bool {
	timer.Reset(idle)
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
