package components

import (
	"time"

	"github.com/automoto/curtaincall/carousel"
	"github.com/automoto/curtaincall/cues"
	"github.com/automoto/curtaincall/sound"
	"github.com/yohamta/donburi"
)

// EndingData stores the state of the stream-ending cinematic
type EndingData struct {
	Music        sound.Stream
	MusicVolume  float64
	DuckFraction float64
	Ducked       bool

	// Position is the cue clock. It follows the music while it plays and
	// advances by tick otherwise, so cues still run without audio.
	Position time.Duration

	Cues     *cues.Timeline
	Carousel *carousel.Carousel
	Overlays map[string]carousel.Still
}

var Ending = donburi.NewComponentType[EndingData]()
