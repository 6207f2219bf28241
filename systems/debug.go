package systems

import (
	"fmt"
	"strings"
	"time"

	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/yohamta/donburi/ecs"
)

// DrawStats prints playback state in the top-left corner when enabled
func DrawStats(e *ecs.ECS, screen *ebiten.Image) {
	if !cfg.Debug.ShowStats {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TPS %0.1f  FPS %0.1f\n", ebiten.ActualTPS(), ebiten.ActualFPS())

	if media := GetMedia(e); media != nil && media.Audio != nil {
		fmt.Fprintf(&b, "audio ready=%t refs=%d\n", media.Audio.Ready(), media.Audio.Refs())
	}

	if entry, ok := components.Ending.First(e.World); ok {
		ending := components.Ending.Get(entry)
		fmt.Fprintf(&b, "music %s ducked=%t\n", ending.Position.Truncate(10*time.Millisecond), ending.Ducked)
		if ending.Cues != nil {
			fmt.Fprintf(&b, "cues active=%d\n", len(ending.Cues.Active()))
		}
		if ending.Carousel != nil {
			if item, ok := ending.Carousel.Current(); ok {
				fmt.Fprintf(&b, "carousel #%d %s %s alpha=%.2f\n", ending.Carousel.Index(), item.Kind, item.Path, ending.Carousel.Alpha())
			}
		}
	}

	if entry, ok := components.Jukebox.First(e.World); ok {
		jb := components.Jukebox.Get(entry)
		if s := jb.Scheduler; s != nil {
			if item, ok := s.NowPlaying(); ok {
				fmt.Fprintf(&b, "now %s (%s) %s\n", item.Title, item.Kind, s.Position().Truncate(10*time.Millisecond))
			}
			if item, ok := s.Fading(); ok {
				fmt.Fprintf(&b, "fading %s alpha=%.2f\n", item.Title, s.Alpha())
			}
			if item, pos, ok := s.SavedPosition(); ok {
				fmt.Fprintf(&b, "saved %s @ %s\n", item.Title, pos.Truncate(10*time.Millisecond))
			}
			fmt.Fprintf(&b, "volume %.2f ducked=%t\n", s.TargetVolume(), s.Ducked())
		}
	}

	ebitenutil.DebugPrint(screen, b.String())
}
