package media_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/automoto/curtaincall/media"
	"github.com/automoto/curtaincall/media/mediatest"
	"github.com/automoto/curtaincall/sound"
	"github.com/stretchr/testify/require"
)

const tick = time.Second / 60

type harness struct {
	t        *testing.T
	clip     mediatest.Clip
	clock    *mediatest.ManualClock
	backend  *mediatest.Backend
	textures *mediatest.Textures
	device   *mediatest.Device
	audio    *sound.Service
	p        *media.Player
}

func newHarness(t *testing.T, clip mediatest.Clip) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		clip:     clip,
		clock:    mediatest.NewManualClock(),
		backend:  mediatest.NewBackend(),
		textures: &mediatest.Textures{},
		device:   mediatest.NewDevice(),
	}
	h.backend.Add("clip.mp4", clip)
	h.audio = sound.NewService(h.device, sound.ServiceConfig{SampleRate: 44100}, nil)
	h.p = media.NewPlayer(media.PlayerOptions{
		Backend:  h.backend,
		Textures: h.textures,
		Audio:    h.audio,
		Clock:    h.clock,
	})
	t.Cleanup(h.p.Dispose)
	return h
}

// settle waits for the background goroutines to catch up so that each
// simulated tick sees the same buffered state regardless of scheduling.
func (h *harness) settle() {
	h.t.Helper()
	require.Eventually(h.t, h.p.DecodeSettled, 5*time.Second, 50*time.Microsecond)
}

func (h *harness) tick() {
	h.clock.Advance(tick)
	h.settle()
	h.p.Update()
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.tick()
	}
}

func (h *harness) load() {
	h.t.Helper()
	h.p.Load("clip.mp4")
	require.Equal(h.t, media.Loading, h.p.State())
	require.NoError(h.t, h.p.WaitLoaded(context.Background()))
	require.Equal(h.t, media.Ready, h.p.LoadStatus().Phase)
}

func (h *harness) play() {
	h.t.Helper()
	h.p.Play()
	require.Equal(h.t, media.Buffering, h.p.State())
	h.settle()
	h.p.Update()
	require.Equal(h.t, media.Playing, h.p.State())
}

func TestPlayerLoadSeedsTexture(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()

	tex := h.textures.Last()
	require.NotNil(t, tex)
	require.Equal(t, 16, tex.Width)
	require.Equal(t, 9, tex.Height)
	require.Equal(t, mediatest.FramePixels(h.clip, 0), tex.Pixels)
	require.Equal(t, media.Stopped, h.p.State())

	require.Len(t, h.device.PCM, 1)
	require.Equal(t, 44100, h.device.PCM[0].SampleRate)
	require.Equal(t, 1, h.device.PCM[0].Channels)
}

func TestPlayerPlaysToEnd(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()

	h.ticks(630) // 10.5 s

	require.Equal(t, media.Ended, h.p.State())
	require.Zero(t, h.p.QueueLen())
	require.Equal(t, mediatest.FramePixels(h.clip, 299), h.textures.Last().Pixels)
}

func TestPlayerLoopsAfterEnd(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.p.SetLooping(true)
	h.load()
	h.play()

	h.ticks(630)

	require.Equal(t, media.Playing, h.p.State())
	require.Less(t, h.p.MasterClock(), time.Second)
}

func TestPlayerPresentsFramesInDecodeOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()

	// play presented frame 0 already.
	tex := h.textures.Last()
	want := 1
	for i := 0; i < 120; i++ {
		before := tex.Writes
		h.tick()
		if tex.Writes > before {
			require.Equal(t, mediatest.FramePixels(h.clip, want), tex.Pixels, "frame %d", want)
			want++
		}
	}
	require.Greater(t, want, 55)
}

func TestPlayerClockMonotonicWhilePlaying(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()

	last := h.p.MasterClock()
	for i := 0; i < 200; i++ {
		h.tick()
		now := h.p.MasterClock()
		require.GreaterOrEqual(t, now, last)
		last = now
	}
}

func TestPlayerPauseFreezesClock(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()
	h.ticks(60)

	h.p.Pause()
	require.Equal(t, media.Paused, h.p.State())
	require.False(t, h.p.Decoding())
	frozen := h.p.MasterClock()

	h.clock.Advance(5 * time.Second)
	h.p.Update()
	require.Equal(t, frozen, h.p.MasterClock())

	h.p.Play()
	require.Equal(t, media.Playing, h.p.State(), "resume must not re-buffer")
	h.tick()
	require.InDelta(t, (frozen + tick).Seconds(), h.p.MasterClock().Seconds(), 1e-6)
}

func TestPlayerPauseWhileBufferingResumes(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()

	h.p.Play()
	require.Equal(t, media.Buffering, h.p.State())
	h.p.Pause()
	require.Equal(t, media.Paused, h.p.State())
	require.False(t, h.p.Decoding())

	h.clock.Advance(time.Second)
	h.p.Update()
	require.Zero(t, h.p.MasterClock())

	h.p.Play()
	require.Equal(t, media.Playing, h.p.State())
	require.True(t, h.p.Decoding())
	h.ticks(3)
	require.Equal(t, mediatest.FramePixels(h.clip, 1), h.textures.Last().Pixels)
	require.InDelta(t, (3 * tick).Seconds(), h.p.MasterClock().Seconds(), 1e-6)
}

func TestPlayerSeekWhilePausedStaysPaused(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()
	h.ticks(60)

	h.p.Pause()
	h.p.Seek(5 * time.Second)
	require.Equal(t, media.Paused, h.p.State())
	require.False(t, h.p.Decoding())
	require.Equal(t, 5*time.Second, h.p.MasterClock())
	require.Equal(t, mediatest.FramePixels(h.clip, 150), h.textures.Last().Pixels)

	h.clock.Advance(time.Second)
	h.p.Update()
	require.Equal(t, 5*time.Second, h.p.MasterClock())

	h.p.Play()
	require.Equal(t, media.Playing, h.p.State())
	h.ticks(3)
	require.Equal(t, mediatest.FramePixels(h.clip, 151), h.textures.Last().Pixels)
}

func TestPlayerAudioOnlyEndsWithoutDevice(t *testing.T) {
	t.Parallel()
	clip := mediatest.Clip{Duration: 3 * time.Second, FrameRate: 30, SampleRate: 44100, Channels: 1, NoVideo: true}
	services := map[string]func() *sound.Service{
		"no audio service": func() *sound.Service { return nil },
		"device unavailable": func() *sound.Service {
			dev := mediatest.NewDevice()
			dev.OpenErr = errors.New("busy")
			return sound.NewService(dev, sound.ServiceConfig{SampleRate: 44100}, nil)
		},
	}
	for name, audio := range services {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, clip)
			h.p = media.NewPlayer(media.PlayerOptions{
				Backend: h.backend,
				Audio:   audio(),
				Clock:   h.clock,
			})
			t.Cleanup(h.p.Dispose)
			h.load()
			h.play()

			h.ticks(150)
			require.Equal(t, media.Playing, h.p.State())
			require.NotZero(t, h.p.RingLen())

			h.ticks(90)
			require.Equal(t, media.Ended, h.p.State())
			require.Zero(t, h.p.RingLen())
		})
	}
}

func TestPlayerSeekRoundTrip(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	seed := append([]byte(nil), h.textures.Last().Pixels...)

	h.play()
	h.ticks(90)
	require.NotEqual(t, seed, h.textures.Last().Pixels)

	h.p.Seek(0)
	require.Equal(t, seed, h.textures.Last().Pixels)
	require.Equal(t, media.Playing, h.p.State())
	require.True(t, h.p.Decoding())
	require.Zero(t, h.p.MasterClock())
}

func TestPlayerSeekClamps(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()

	h.p.Seek(time.Hour)
	require.Equal(t, 10*time.Second, h.p.MasterClock())
	require.Equal(t, media.Paused, h.p.State())

	h.p.Seek(-time.Second)
	require.Zero(t, h.p.MasterClock())
	require.Equal(t, mediatest.FramePixels(h.clip, 0), h.textures.Last().Pixels)
}

func TestPlayerSeekThenPlayResumesAtTarget(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()

	h.p.Seek(4 * time.Second)
	require.Equal(t, mediatest.FramePixels(h.clip, 120), h.textures.Last().Pixels)

	h.p.Play()
	require.Equal(t, media.Playing, h.p.State())
	h.ticks(3)
	require.Equal(t, mediatest.FramePixels(h.clip, 121), h.textures.Last().Pixels)
}

func TestPlayerQueueBackpressure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()

	// Nobody presents frames: the worker must stall at capacity.
	for i := 0; i < 50; i++ {
		require.LessOrEqual(t, h.p.QueueLen(), h.p.QueueCap())
		time.Sleep(200 * time.Microsecond)
	}
	h.settle()
	require.Equal(t, h.p.QueueCap(), h.p.QueueLen())
	require.Equal(t, 3, h.p.QueueCap())
}

func TestPlayerFeedsAudioInOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()
	h.ticks(30)

	pushed := h.device.PCM[0].Pushed
	require.NotEmpty(t, pushed)
	for i, v := range pushed {
		require.Equal(t, mediatest.SampleValue(i, 0), v, "sample %d", i)
	}
	require.True(t, h.device.PCM[0].Playing)
}

func TestPlayerPrimesRingBeforePlaying(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()

	h.p.Play()
	h.settle()
	require.GreaterOrEqual(t, h.p.RingLen(), media.RingFramesFor(44100, 1.5)/2)
	require.Equal(t, h.p.QueueCap(), h.p.QueueLen())
}

func TestPlayerLoadFailureLeavesStopped(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())

	h.p.Load("missing.mp4")
	require.Error(t, h.p.WaitLoaded(context.Background()))
	require.Equal(t, media.Stopped, h.p.State())
	require.Equal(t, media.Failed, h.p.LoadStatus().Phase)
	require.NotEmpty(t, h.p.LoadStatus().Reason)

	h.p.Play()
	h.p.Update()
	require.Equal(t, media.Stopped, h.p.State())
}

func TestPlayerTruncatedStreamEndsCleanly(t *testing.T) {
	t.Parallel()
	clip := mediatest.TestClip()
	clip.FailAfter = 90
	h := newHarness(t, clip)
	h.load()
	h.play()

	h.ticks(240)
	require.Equal(t, media.Ended, h.p.State())
}

func TestPlayerPlayWhileLoading(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.backend.OpenDelay = 5 * time.Millisecond

	h.p.Load("clip.mp4")
	h.p.Play()
	require.Equal(t, media.Loading, h.p.State())

	h.settle()
	h.p.Update()
	require.Equal(t, media.Buffering, h.p.State())
	h.settle()
	h.p.Update()
	require.Equal(t, media.Playing, h.p.State())
}

func TestPlayerDisposeDuringLoad(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.backend.OpenDelay = 10 * time.Millisecond
	require.Equal(t, 1, h.audio.Refs())

	h.p.Load("clip.mp4")
	h.p.Dispose()

	require.Zero(t, h.backend.OpenSources())
	require.Zero(t, h.audio.Refs())
	require.False(t, h.device.IsOpen())

	// Every call after Dispose is a no-op.
	h.p.Play()
	h.p.Update()
	h.p.Seek(time.Second)
	h.p.Draw(nil, image.Rect(0, 0, 16, 9), color.White)
}

func TestPlayerStopClearsBuffers(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())
	h.load()
	h.play()
	h.ticks(10)

	h.p.Stop()
	require.Equal(t, media.Stopped, h.p.State())
	require.Zero(t, h.p.QueueLen())
	require.Zero(t, h.p.RingLen())
	require.False(t, h.p.Decoding())

	h.play()
	h.tick()
	require.Equal(t, mediatest.FramePixels(h.clip, 0), h.textures.Last().Pixels)
}

func TestPlayerMethodsSafeBeforeLoad(t *testing.T) {
	t.Parallel()
	h := newHarness(t, mediatest.TestClip())

	h.p.Play()
	h.p.Pause()
	h.p.Seek(time.Second)
	h.p.Stop()
	h.p.Update()
	h.p.Draw(nil, image.Rect(0, 0, 10, 10), color.White)
	require.Equal(t, media.Stopped, h.p.State())
	require.Equal(t, media.Unloaded, h.p.LoadStatus().Phase)
}
