package factory

import (
	"time"

	"github.com/automoto/curtaincall/archetypes"
	"github.com/automoto/curtaincall/carousel"
	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/cues"
	"github.com/automoto/curtaincall/systems"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"go.uber.org/zap"
)

// CreateEnding spawns the ending cinematic: music, cue timeline and
// carousel, all started.
func CreateEnding(ecs *ecs.ECS, images carousel.Images) *donburi.Entry {
	media := systems.GetMedia(ecs)
	ending := archetypes.Ending.Spawn(ecs)

	data := &components.EndingData{
		MusicVolume:  cfg.Ending.MusicVolume,
		DuckFraction: cfg.Ending.DuckFraction,
		Cues:         cues.NewTimeline(endingCues(cfg.Ending.Cues)),
		Overlays:     map[string]carousel.Still{},
	}
	components.Ending.Set(ending, data)
	data = components.Ending.Get(ending)

	for _, c := range cfg.Ending.Cues {
		if c.Overlay == "" || images == nil {
			continue
		}
		if _, ok := data.Overlays[c.Overlay]; ok {
			continue
		}
		still, err := images.Acquire(c.Overlay)
		if err != nil {
			media.Log.Warn("could not load cue overlay", zap.String("path", c.Overlay), zap.Error(err))
			continue
		}
		data.Overlays[c.Overlay] = still
	}

	data.Carousel = carousel.New(carouselItems(cfg.Ending.Carousel, cfg.Ending.DefaultStill), carousel.Options{
		Images:    images,
		NewPlayer: media.NewPlayer,
		Ducker:    systems.NewMusicDucker(ending),
		Fade:      cfg.Ending.CarouselFade,
		Loop:      cfg.Ending.LoopCarousel,
		Log:       media.Log.Named("carousel"),
	})

	systems.PlayMusic(media.Audio, data, cfg.Ending.MusicPath)
	data.Carousel.Start()
	return ending
}

// DisposeEnding stops the music and releases everything the ending holds
func DisposeEnding(ecs *ecs.ECS, images carousel.Images) {
	entry, ok := components.Ending.First(ecs.World)
	if !ok {
		return
	}
	data := components.Ending.Get(entry)
	if data.Carousel != nil {
		data.Carousel.Close()
	}
	if images != nil {
		for path := range data.Overlays {
			images.Release(path)
		}
	}
	data.Overlays = nil
	if media := systems.GetMedia(ecs); media != nil && data.Music != nil {
		media.Audio.Stop(data.Music)
		media.Audio.Release(data.Music)
	}
	data.Music = nil
}

func endingCues(configs []cfg.CueConfig) []cues.Cue {
	out := make([]cues.Cue, len(configs))
	for i, c := range configs {
		out[i] = cues.Cue{
			At:      c.At,
			Hold:    c.Hold,
			FadeIn:  c.FadeIn,
			FadeOut: c.FadeOut,
			Text:    c.Text,
			Overlay: c.Overlay,
		}
	}
	return out
}

func carouselItems(configs []cfg.CarouselItemConfig, still time.Duration) []carousel.Item {
	out := make([]carousel.Item, len(configs))
	for i, c := range configs {
		item := carousel.Item{
			Kind:     carousel.ParseKind(c.Kind),
			Path:     c.Path,
			Duration: c.Duration,
		}
		if item.Duration <= 0 && item.Kind != carousel.Video {
			item.Duration = still
		}
		out[i] = item
	}
	return out
}
