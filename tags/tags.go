package tags

import "github.com/yohamta/donburi"

var (
	Ending  = donburi.NewTag().SetName("Ending")
	Jukebox = donburi.NewTag().SetName("Jukebox")
)
