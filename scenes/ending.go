package scenes

import (
	"image/color"
	"sync"

	"github.com/automoto/curtaincall/assets"
	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/systems"
	"github.com/automoto/curtaincall/systems/factory"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// EndingScene plays the stream-ending cinematic
type EndingScene struct {
	ecs      *ecs.ECS
	services Services
	images   *assets.ImageLoader
	once     sync.Once
	closed   bool
}

// NewEndingScene creates a new ending scene
func NewEndingScene(services Services) *EndingScene {
	return &EndingScene{services: services}
}

func (es *EndingScene) Update() {
	if es.closed {
		return
	}
	es.once.Do(es.configure)
	es.ecs.Update()
}

func (es *EndingScene) Draw(screen *ebiten.Image) {
	// Always clear screen to prevent white flashes from OS window background
	screen.Fill(color.Black)

	if es.ecs == nil || es.closed {
		return
	}
	es.ecs.Draw(screen)
}

func (es *EndingScene) configure() {
	es.ecs = ecs.NewECS(donburi.NewWorld())
	log := es.services.logger().Named("ending")

	// Hold the device for the whole scene so carousel videos coming and
	// going do not reopen it
	es.services.Audio.Register()

	factory.CreateMedia(es.ecs, components.MediaData{
		Audio:    es.services.Audio,
		Backend:  es.services.Backend,
		Textures: assets.Textures{},
		Log:      log,
	})
	es.images = assets.NewImageLoader()
	factory.CreateEnding(es.ecs, es.images)

	es.ecs.AddSystem(systems.UpdateEnding)

	// Renderers (cues and stats draw on top of the carousel)
	es.ecs.AddRenderer(cfg.Default, systems.DrawEnding)
	es.ecs.AddRenderer(cfg.Overlay, systems.DrawCues)
	es.ecs.AddRenderer(cfg.Overlay, systems.DrawStats)

	log.Info("ending started")
}

// Close stops playback and releases the scene's media. It is safe to call
// more than once.
func (es *EndingScene) Close() {
	if es.closed {
		return
	}
	es.closed = true
	if es.ecs == nil {
		return
	}
	factory.DisposeEnding(es.ecs, es.images)
	es.images.Close()
	es.services.Audio.Unregister()
}
