package scenes

import (
	"github.com/automoto/curtaincall/media"
	"github.com/automoto/curtaincall/sound"
	"go.uber.org/zap"
)

// Services are the process-wide dependencies handed to every scene
type Services struct {
	Audio   *sound.Service
	Backend media.Backend
	Log     *zap.Logger
}

func (s Services) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
