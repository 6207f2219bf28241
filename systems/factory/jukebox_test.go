package factory

import (
	"testing"
	"time"

	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/jukebox"
	"github.com/automoto/curtaincall/media/mediatest"
	"github.com/automoto/curtaincall/sound"
	"github.com/automoto/curtaincall/systems"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

func TestJukeboxCarouselVideoDucksMusic(t *testing.T) {
	prev := cfg.Jukebox.Carousel
	cfg.Jukebox.Carousel = []cfg.CarouselItemConfig{
		{Kind: "video", Path: "clip.mp4", Duration: 100 * time.Millisecond},
		{Kind: "silence", Duration: time.Minute},
	}
	t.Cleanup(func() { cfg.Jukebox.Carousel = prev })

	dev := mediatest.NewDevice()
	backend := mediatest.NewBackend()
	backend.Add("clip.mp4", mediatest.TestClip())
	e := ecs.NewECS(donburi.NewWorld())
	CreateMedia(e, components.MediaData{
		Audio:    sound.NewService(dev, sound.ServiceConfig{SampleRate: 44100}, nil),
		Backend:  backend,
		Textures: &mediatest.Textures{},
	})

	recurrent := jukebox.NewPlaylist(jukebox.NewItem("a.ogg", jukebox.Recurrent))
	entry := CreateJukebox(e, recurrent, jukebox.NewPlaylist(), nil)
	t.Cleanup(func() { DisposeJukebox(e) })
	jb := components.Jukebox.Get(entry)

	full := cfg.Audio.DefaultMusicVol
	ducked := full * cfg.Jukebox.DuckFraction
	require.True(t, jb.Scheduler.Ducked())
	require.InDelta(t, ducked, jb.Scheduler.TargetVolume(), 1e-9)

	systems.UpdateJukebox(e)
	require.InDelta(t, ducked, dev.Streams["a.ogg"].Volume(), 1e-9)

	for i := 0; i < 30 && jb.Scheduler.Ducked(); i++ {
		systems.UpdateJukebox(e)
	}
	require.False(t, jb.Scheduler.Ducked(), "silence after the video restores the music")
	require.InDelta(t, full, jb.Scheduler.TargetVolume(), 1e-9)
	require.InDelta(t, full, dev.Streams["a.ogg"].Volume(), 1e-9)
}
