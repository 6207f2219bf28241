package config

import "time"

// JukeboxConfig contains song-request scene configuration
type JukeboxConfig struct {
	RecurrentDir      string        `mapstructure:"recurrent_dir"`
	RequestDir        string        `mapstructure:"request_dir"`
	Extensions        []string      `mapstructure:"extensions"`
	CrossfadeDuration time.Duration `mapstructure:"crossfade_duration"`
	DuckFraction      float64       `mapstructure:"duck_fraction"`
	ProbeWorkers      int           `mapstructure:"probe_workers"`
	ManifestKey       string        `mapstructure:"manifest_key"`
	StatusFade        time.Duration `mapstructure:"status_fade"`
	StatusHold        time.Duration `mapstructure:"status_hold"`
	RequestSettle     time.Duration `mapstructure:"request_settle"`

	// Carousel rotates behind the banner; video items duck the music
	Carousel     []CarouselItemConfig `mapstructure:"carousel"`
	CarouselFade time.Duration        `mapstructure:"carousel_fade"`
	LoopCarousel bool                 `mapstructure:"loop_carousel"`
	DefaultStill time.Duration        `mapstructure:"default_still"`
}

var Jukebox JukeboxConfig

func init() {
	Jukebox = JukeboxConfig{
		RecurrentDir:      "media/recurrent",
		RequestDir:        "media/requests",
		Extensions:        []string{".ogg", ".mp3", ".wav"},
		CrossfadeDuration: 2 * time.Second,
		DuckFraction:      0.35,
		ProbeWorkers:      2,
		ManifestKey:       "durations",
		StatusFade:        750 * time.Millisecond,
		StatusHold:        6 * time.Second,
		RequestSettle:     time.Second,
		CarouselFade:      500 * time.Millisecond,
		LoopCarousel:      true,
		DefaultStill:      8 * time.Second,
	}
}
