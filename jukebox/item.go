// Package jukebox schedules background music for the request scene: a
// looping recurrent playlist, a queue of requested songs that preempts it,
// and the crossfades between the two.
package jukebox

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind says which playlist an item belongs to.
type Kind int

const (
	Recurrent Kind = iota
	Requested
)

func (k Kind) String() string {
	if k == Requested {
		return "requested"
	}
	return "recurrent"
}

// Item is an immutable playlist entry. Duration is zero until probed.
type Item struct {
	ID        string
	Path      string
	Title     string
	Requester string
	Kind      Kind
	Duration  time.Duration
}

// NewItem builds an item for path with a fresh ID and a title taken from the
// file name.
func NewItem(path string, kind Kind) Item {
	return Item{
		ID:    uuid.New().String(),
		Path:  path,
		Title: TitleFromPath(path),
		Kind:  kind,
	}
}

// WithDuration returns a copy of the item with d set.
func (i Item) WithDuration(d time.Duration) Item {
	i.Duration = d
	return i
}

// WithRequester returns a copy of the item attributed to name.
func (i Item) WithRequester(name string) Item {
	i.Requester = name
	return i
}

func (i Item) Probed() bool {
	return i.Duration > 0
}

// TitleFromPath turns "media/requests/alice - Some_Song.ogg" into
// "alice - Some Song".
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}

// requesterFromTitle splits "name - title" request file names.
func requesterFromTitle(title string) (requester, song string) {
	name, rest, ok := strings.Cut(title, " - ")
	if !ok {
		return "", title
	}
	return strings.TrimSpace(name), strings.TrimSpace(rest)
}
