package jukebox

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

// Playlist is an ordered, lockable list of items. The recurrent playlist is
// walked cyclically with Next; the request queue is consumed with Pop.
// Request watchers and probers mutate it from other goroutines.
type Playlist struct {
	mu    sync.Mutex
	items []Item
	next  int
}

func NewPlaylist(items ...Item) *Playlist {
	return &Playlist{items: append([]Item(nil), items...)}
}

func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Items returns a snapshot copy.
func (p *Playlist) Items() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Item(nil), p.items...)
}

// Push appends an item.
func (p *Playlist) Push(item Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, item)
}

// Pop removes and returns the first item.
func (p *Playlist) Pop() (Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return Item{}, false
	}
	item := p.items[0]
	p.items = p.items[1:]
	if p.next > 0 {
		p.next--
	}
	return item, true
}

// Next returns the item after the one last returned, wrapping around.
func (p *Playlist) Next() (Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return Item{}, false
	}
	if p.next >= len(p.items) {
		p.next = 0
	}
	item := p.items[p.next]
	p.next++
	return item, true
}

// Replace substitutes the item with the same ID, keeping its position.
func (p *Playlist) Replace(item Item) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(p.items, func(it Item) bool {
		return it.ID == item.ID
	})
	if !ok {
		return false
	}
	p.items[idx] = item
	return true
}

// Remove drops the item with the given ID.
func (p *Playlist) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(p.items, func(it Item) bool {
		return it.ID == id
	})
	if !ok {
		return false
	}
	p.items = append(p.items[:idx], p.items[idx+1:]...)
	if p.next > idx {
		p.next--
	}
	return true
}

// Contains reports whether an item with path is queued.
func (p *Playlist) Contains(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.ContainsBy(p.items, func(it Item) bool {
		return it.Path == path
	})
}

// Unprobed returns the items whose duration is still unknown.
func (p *Playlist) Unprobed() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.Filter(p.items, func(it Item, _ int) bool {
		return !it.Probed()
	})
}

// TotalDuration sums the probed durations.
func (p *Playlist) TotalDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return lo.SumBy(p.items, func(it Item) time.Duration {
		return it.Duration
	})
}
