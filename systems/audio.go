package systems

import (
	"math"
	"time"

	"github.com/automoto/curtaincall/carousel"
	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/sound"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// tickDuration is the game time covered by one Update
func tickDuration() time.Duration {
	return time.Second / time.Duration(cfg.C.TPS)
}

// GetMedia returns the scene services
func GetMedia(e *ecs.ECS) *components.MediaData {
	entry, ok := components.Media.First(e.World)
	if !ok {
		return nil
	}
	return components.Media.Get(entry)
}

// PlayMusic starts the ending track at its configured volume
func PlayMusic(audio *sound.Service, ending *components.EndingData, path string) {
	if ending.Music != nil {
		audio.Release(ending.Music)
	}
	ending.Music = audio.Load(path)
	if ending.Music == nil {
		return
	}
	audio.SetVolume(ending.Music, ending.MusicVolume)
	audio.Play(ending.Music)
}

// updateMusic services the ending track, restarts it when it runs out and
// ramps its volume toward the ducked or full level.
func updateMusic(audio *sound.Service, ending *components.EndingData) {
	if ending.Music == nil || !audio.Ready() {
		return
	}
	audio.Update(ending.Music)

	if !audio.IsPlaying(ending.Music) {
		audio.Seek(ending.Music, 0)
		audio.Play(ending.Music)
	}

	target := ending.MusicVolume
	if ending.Ducked {
		target *= ending.DuckFraction
	}
	current := audio.Volume(ending.Music)
	if current == target {
		return
	}

	// Ramp across MusicFadeDuration frames
	step := ending.MusicVolume
	if cfg.Audio.MusicFadeDuration > 0 {
		step /= float64(cfg.Audio.MusicFadeDuration)
	}
	if math.Abs(target-current) <= step {
		current = target
	} else if target > current {
		current += step
	} else {
		current -= step
	}
	audio.SetVolume(ending.Music, current)
}

// musicDucker lowers the ending track while a carousel video plays
type musicDucker struct {
	entry *donburi.Entry
}

func (d musicDucker) Duck() {
	components.Ending.Get(d.entry).Ducked = true
}

func (d musicDucker) Unduck() {
	components.Ending.Get(d.entry).Ducked = false
}

// NewMusicDucker returns a ducker for the ending entity
func NewMusicDucker(entry *donburi.Entry) carousel.Ducker {
	return musicDucker{entry: entry}
}
