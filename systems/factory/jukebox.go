package factory

import (
	"github.com/automoto/curtaincall/archetypes"
	"github.com/automoto/curtaincall/carousel"
	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/jukebox"
	"github.com/automoto/curtaincall/systems"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// CreateJukebox spawns the jukebox around the two playlists. The status
// banner flashes on every track change. The background carousel ducks the
// music while a video item plays.
func CreateJukebox(ecs *ecs.ECS, recurrent, requests *jukebox.Playlist, images carousel.Images) *donburi.Entry {
	media := systems.GetMedia(ecs)
	entry := archetypes.Jukebox.Spawn(ecs)

	components.Jukebox.Set(entry, &components.JukeboxData{
		Recurrent: recurrent,
		Requests:  requests,
	})
	jb := components.Jukebox.Get(entry)

	scheduler := jukebox.NewScheduler(media.Audio, recurrent, requests, jukebox.SchedulerConfig{
		Crossfade:    cfg.Jukebox.CrossfadeDuration,
		Volume:       cfg.Audio.DefaultMusicVol,
		DuckFraction: cfg.Jukebox.DuckFraction,
	}, media.Log.Named("scheduler"))
	scheduler.OnChange = func(item jukebox.Item) {
		systems.ShowNowPlaying(components.Jukebox.Get(entry), item)
	}
	jb.Scheduler = scheduler

	jb.Carousel = carousel.New(carouselItems(cfg.Jukebox.Carousel, cfg.Jukebox.DefaultStill), carousel.Options{
		Images:    images,
		NewPlayer: media.NewPlayer,
		Ducker:    scheduler,
		Fade:      cfg.Jukebox.CarouselFade,
		Loop:      cfg.Jukebox.LoopCarousel,
		Log:       media.Log.Named("carousel"),
	})
	jb.Carousel.Start()
	return entry
}

// DisposeJukebox stops playback and gives the device back
func DisposeJukebox(ecs *ecs.ECS) {
	entry, ok := components.Jukebox.First(ecs.World)
	if !ok {
		return
	}
	jb := components.Jukebox.Get(entry)
	if jb.Carousel != nil {
		jb.Carousel.Close()
	}
	if jb.Scheduler != nil {
		jb.Scheduler.Close()
	}
}
