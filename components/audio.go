package components

import (
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/media"
	"github.com/automoto/curtaincall/sound"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
)

// MediaData holds the services shared by every entity of a scene
// (singleton component)
type MediaData struct {
	Audio    *sound.Service
	Backend  media.Backend
	Textures media.TextureFactory
	Log      *zap.Logger
}

// NewPlayer builds a video player wired to the scene services.
func (m *MediaData) NewPlayer() *media.Player {
	log := m.Log
	if log == nil {
		log = zap.NewNop()
	}
	return media.NewPlayer(media.PlayerOptions{
		Backend:        m.Backend,
		Textures:       m.Textures,
		Audio:          m.Audio,
		Log:            log.Named("player"),
		FrameQueueSize: cfg.Player.FrameQueueSize,
		RingSeconds:    cfg.Player.RingBufferSeconds,
		ChunkFrames:    cfg.Player.ChunkFrames,
		IdleSleep:      cfg.Player.DecodeIdleSleep,
		PrimeFraction:  cfg.Player.PrimeFraction,
	})
}

var Media = donburi.NewComponentType[MediaData]()
