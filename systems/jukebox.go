package systems

import (
	"fmt"
	"image/color"

	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/fonts"
	"github.com/automoto/curtaincall/jukebox"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

// UpdateJukebox ticks the carousel, the scheduler and the status banner.
// The carousel goes first so a duck it requests lands in the same tick.
func UpdateJukebox(e *ecs.ECS) {
	entry, ok := components.Jukebox.First(e.World)
	if !ok {
		return
	}
	jb := components.Jukebox.Get(entry)
	dt := tickDuration()

	if jb.Carousel != nil {
		jb.Carousel.Update(dt)
	}
	if jb.Scheduler != nil {
		jb.Scheduler.Tick(dt)
	}
	jb.Status.Update(dt)
}

// ShowNowPlaying flashes the status banner for item
func ShowNowPlaying(jb *components.JukeboxData, item jukebox.Item) {
	jb.StatusText = item.Title
	jb.StatusSub = ""
	if item.Kind == jukebox.Requested && item.Requester != "" {
		jb.StatusSub = "requested by " + item.Requester
	}
	jb.Status.Flash(cfg.Jukebox.StatusFade, cfg.Jukebox.StatusHold, cfg.Jukebox.StatusFade)
}

// DrawJukebox renders the carousel, the now playing banner and the request
// queue length
func DrawJukebox(e *ecs.ECS, screen *ebiten.Image) {
	entry, ok := components.Jukebox.First(e.World)
	if !ok {
		return
	}
	jb := components.Jukebox.Get(entry)

	bounds := screen.Bounds()
	if jb.Carousel != nil {
		jb.Carousel.Draw(screen, bounds)
	}
	width := float32(bounds.Dx())
	height := float32(bounds.Dy())

	if alpha := jb.Status.Alpha(); alpha > 0 && jb.StatusText != "" {
		// Banner background
		bg := cfg.BlackOverlay
		bg.A = uint8(float64(bg.A) * alpha)
		vector.FillRect(screen, 0, height-110, width, 80, bg, false)

		titleFont := fonts.Bold.Get()
		text.Draw(screen, "Now playing", fonts.Small.Get(), 32, int(height)-88, textColor(cfg.Gray, alpha))
		text.Draw(screen, jb.StatusText, titleFont, 32, int(height)-60, textColor(cfg.White, alpha))
		if jb.StatusSub != "" {
			text.Draw(screen, jb.StatusSub, fonts.Body.Get(), 32, int(height)-38, textColor(cfg.LightBlue, alpha))
		}
	}

	if jb.Requests == nil {
		return
	}
	if n := jb.Requests.Len(); n > 0 {
		label := fmt.Sprintf("%d request(s) queued", n)
		statusFont := fonts.Status.Get()
		x := bounds.Max.X - text.BoundString(statusFont, label).Dx() - 24
		text.Draw(screen, label, statusFont, x, 32, color.White)
	}
}
