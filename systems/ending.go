package systems

import (
	"image"
	"image/color"

	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/yohamta/donburi/ecs"
	"golang.org/x/image/font"
)

// UpdateEnding advances the music, the cue timeline and the carousel by one tick
func UpdateEnding(e *ecs.ECS) {
	entry, ok := components.Ending.First(e.World)
	if !ok {
		return
	}
	ending := components.Ending.Get(entry)
	media := GetMedia(e)
	dt := tickDuration()

	if media != nil {
		updateMusic(media.Audio, ending)
	}

	if media != nil && ending.Music != nil && media.Audio.IsPlaying(ending.Music) {
		ending.Position = media.Audio.TimePlayed(ending.Music)
	} else {
		ending.Position += dt
	}

	if ending.Cues != nil {
		ending.Cues.Update(ending.Position, dt)
	}
	if ending.Carousel != nil {
		ending.Carousel.Update(dt)
	}
}

// DrawEnding renders the carousel full screen
func DrawEnding(e *ecs.ECS, screen *ebiten.Image) {
	entry, ok := components.Ending.First(e.World)
	if !ok {
		return
	}
	ending := components.Ending.Get(entry)
	if ending.Carousel != nil {
		ending.Carousel.Draw(screen, screen.Bounds())
	}
}

// DrawCues renders the visible cues over the carousel: overlays full screen,
// text centered in the lower third.
func DrawCues(e *ecs.ECS, screen *ebiten.Image) {
	entry, ok := components.Ending.First(e.World)
	if !ok {
		return
	}
	ending := components.Ending.Get(entry)
	if ending.Cues == nil {
		return
	}

	bounds := screen.Bounds()
	face := fonts.Title.Get()

	for _, active := range ending.Cues.Active() {
		a := uint8(active.Alpha * 0xff)
		if a == 0 {
			continue
		}
		tint := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: a}

		if still, ok := ending.Overlays[active.Cue.Overlay]; ok {
			still.Draw(screen, bounds, tint)
		}
		if active.Cue.Text == "" {
			continue
		}

		x := centerX(bounds, face, active.Cue.Text)
		y := bounds.Min.Y + bounds.Dy()*2/3

		// Drop shadow
		shadow := color.NRGBA{A: a}
		text.Draw(screen, active.Cue.Text, face, x+2, y+2, shadow)
		text.Draw(screen, active.Cue.Text, face, x, y, textColor(cfg.White, active.Alpha))
	}
}

// textColor scales the alpha of c by alpha
func textColor(c color.RGBA, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * alpha)}
}

// centerX returns the x position that centers s within bounds
func centerX(bounds image.Rectangle, face font.Face, s string) int {
	return bounds.Min.X + (bounds.Dx()-text.BoundString(face, s).Dx())/2
}
