package factory

import (
	"github.com/automoto/curtaincall/archetypes"
	"github.com/automoto/curtaincall/components"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"go.uber.org/zap"
)

func CreateMedia(ecs *ecs.ECS, data components.MediaData) *donburi.Entry {
	if data.Log == nil {
		data.Log = zap.NewNop()
	}
	media := archetypes.Media.Spawn(ecs)
	components.Media.Set(media, &data)
	return media
}
