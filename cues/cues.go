// Package cues schedules timed text and overlay cues against the music
// position.
package cues

import (
	"slices"
	"time"

	"github.com/automoto/curtaincall/fade"
)

// Cue is shown from At for FadeIn+Hold, then fades out over FadeOut.
type Cue struct {
	At      time.Duration
	Hold    time.Duration
	FadeIn  time.Duration
	FadeOut time.Duration
	Text    string
	Overlay string
}

// window reports whether pos falls in the visible part of the cue, before
// its fade-out.
func (c Cue) window(pos time.Duration) bool {
	return pos >= c.At && pos < c.At+c.FadeIn+c.Hold
}

// End is when the cue has fully faded out.
func (c Cue) End() time.Duration {
	return c.At + c.FadeIn + c.Hold + c.FadeOut
}

// Active is a visible cue and its opacity.
type Active struct {
	Cue   Cue
	Alpha float64
}

// Timeline drives one fade timer per cue from the music position.
type Timeline struct {
	cues   []Cue
	timers []fade.Timer
	last   time.Duration
}

func NewTimeline(cues []Cue) *Timeline {
	sorted := slices.Clone(cues)
	slices.SortStableFunc(sorted, func(a, b Cue) int {
		return int(a.At - b.At)
	})
	return &Timeline{
		cues:   sorted,
		timers: make([]fade.Timer, len(sorted)),
	}
}

func (t *Timeline) Len() int {
	return len(t.cues)
}

// Update syncs the cues to pos. A position earlier than the last one (a
// seek or a music loop) resets every cue.
func (t *Timeline) Update(pos, dt time.Duration) {
	if pos < t.last {
		t.Reset()
	}
	t.last = pos

	for i, cue := range t.cues {
		timer := &t.timers[i]
		in := cue.window(pos)
		switch timer.State() {
		case fade.Idle, fade.Hidden, fade.FadingOut:
			if in {
				timer.FadeIn(cue.FadeIn)
				continue
			}
		case fade.FadingIn, fade.Shown:
			if !in {
				timer.FadeOut(cue.FadeOut)
				continue
			}
		}
		timer.Update(dt)
	}
}

// Reset hides every cue immediately.
func (t *Timeline) Reset() {
	for i := range t.timers {
		t.timers[i].Reset()
	}
	t.last = 0
}

// Active returns the cues with a non-zero alpha in timeline order.
func (t *Timeline) Active() []Active {
	var out []Active
	for i := range t.timers {
		if t.timers[i].Visible() {
			out = append(out, Active{Cue: t.cues[i], Alpha: t.timers[i].Alpha()})
		}
	}
	return out
}

// Finished reports whether pos is past the end of every cue.
func (t *Timeline) Finished(pos time.Duration) bool {
	for _, cue := range t.cues {
		if pos < cue.End() {
			return false
		}
	}
	return true
}
