package archetypes

import (
	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	Media = newArchetype(
		components.Media,
	)
	Ending = newArchetype(
		tags.Ending,
		components.Ending,
	)
	Jukebox = newArchetype(
		tags.Jukebox,
		components.Jukebox,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(ecs *ecs.ECS, cs ...donburi.IComponentType) *donburi.Entry {
	e := ecs.World.Entry(ecs.Create(
		cfg.Default,
		append(a.components, cs...)...,
	))
	return e
}
