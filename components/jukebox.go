package components

import (
	"github.com/automoto/curtaincall/carousel"
	"github.com/automoto/curtaincall/fade"
	"github.com/automoto/curtaincall/jukebox"
	"github.com/yohamta/donburi"
)

// JukeboxData stores the song-request scene state
type JukeboxData struct {
	Scheduler *jukebox.Scheduler
	Recurrent *jukebox.Playlist
	Requests  *jukebox.Playlist
	Carousel  *carousel.Carousel

	// Status is the "now playing" banner, flashed on every track change
	Status     fade.Timer
	StatusText string
	StatusSub  string
}

var Jukebox = donburi.NewComponentType[JukeboxData]()
