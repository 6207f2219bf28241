package cmd

import (
	"github.com/automoto/curtaincall/assets"
	"github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/decode"
	"github.com/automoto/curtaincall/fonts"
	"github.com/automoto/curtaincall/logger"
	"github.com/automoto/curtaincall/scenes"
	"github.com/automoto/curtaincall/sound"
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is one full-screen mode of the kiosk
type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
	Close()
}

type Game struct {
	scene Scene
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	return config.C.Width, config.C.Height
}

// newServices builds the audio device and decode backend shared by every
// scene. The returned func releases them.
func newServices() (scenes.Services, func()) {
	device := assets.NewAudioDevice(config.Audio.PushBufferSize, logger.Named("device"))
	audio := sound.NewService(device, sound.ServiceConfig{
		SampleRate:   config.Audio.SampleRate,
		OpenAttempts: config.Audio.DeviceOpenAttempts,
		RetryDelay:   config.Audio.DeviceRetryDelay,
	}, logger.Named("sound"))
	backend := decode.NewBackend(logger.Named("decode"))

	services := scenes.Services{
		Audio:   audio,
		Backend: backend,
		Log:     logger.L(),
	}
	return services, backend.Shutdown
}

// runScene opens the window and runs scene until the window is closed.
func runScene(scene Scene) error {
	if err := fonts.LoadDefaults(); err != nil {
		return err
	}

	ebiten.SetWindowSize(config.C.Width, config.C.Height)
	ebiten.SetWindowTitle(config.C.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeOnlyFullscreenEnabled)
	ebiten.SetFullscreen(config.C.Fullscreen)
	ebiten.SetTPS(config.C.TPS)

	err := ebiten.RunGame(&Game{scene: scene})
	scene.Close()
	return err
}
