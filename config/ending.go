package config

import "time"

// CueConfig is one timed text or overlay cue, relative to the music start
type CueConfig struct {
	At      time.Duration `mapstructure:"at"`
	Hold    time.Duration `mapstructure:"hold"`
	FadeIn  time.Duration `mapstructure:"fade_in"`
	FadeOut time.Duration `mapstructure:"fade_out"`
	Text    string        `mapstructure:"text"`
	Overlay string        `mapstructure:"overlay"` // optional image path
}

// CarouselItemConfig is one rotating media item
type CarouselItemConfig struct {
	Kind     string        `mapstructure:"kind"` // "image", "video" or "silence"
	Path     string        `mapstructure:"path"`
	Duration time.Duration `mapstructure:"duration"`
}

// EndingConfig contains the stream-ending cinematic configuration
type EndingConfig struct {
	MusicPath    string               `mapstructure:"music_path"`
	MusicVolume  float64              `mapstructure:"music_volume"`
	DuckFraction float64              `mapstructure:"duck_fraction"`
	Cues         []CueConfig          `mapstructure:"cues"`
	Carousel     []CarouselItemConfig `mapstructure:"carousel"`
	CarouselFade time.Duration        `mapstructure:"carousel_fade"`
	LoopCarousel bool                 `mapstructure:"loop_carousel"`
	DefaultStill time.Duration        `mapstructure:"default_still"`
}

var Ending EndingConfig

func init() {
	Ending = EndingConfig{
		MusicPath:    "media/ending.ogg",
		MusicVolume:  0.75,
		DuckFraction: 0.35,
		CarouselFade: 500 * time.Millisecond,
		LoopCarousel: true,
		DefaultStill: 8 * time.Second,
		Cues: []CueConfig{
			{At: 2 * time.Second, Hold: 4 * time.Second, FadeIn: time.Second, FadeOut: time.Second, Text: "Thanks for watching"},
			{At: 9 * time.Second, Hold: 4 * time.Second, FadeIn: time.Second, FadeOut: time.Second, Text: "See you next stream"},
		},
	}
}
