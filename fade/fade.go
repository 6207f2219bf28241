// Package fade implements the alpha timer behind cue text, status banners
// and carousel transitions.
package fade

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

type State int

const (
	Idle State = iota
	FadingIn
	Shown
	FadingOut
	Hidden
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FadingIn:
		return "fading-in"
	case Shown:
		return "shown"
	case FadingOut:
		return "fading-out"
	case Hidden:
		return "hidden"
	}
	return "unknown"
}

// Timer ramps an alpha value linearly between 0 and 1. It is advanced by
// Update with the tick delta and never reads the wall clock.
type Timer struct {
	state State
	alpha float64
	tween *gween.Tween

	// Flash support: after fading in, stay Shown for hold then fade out.
	hold    time.Duration
	outDur  time.Duration
	flashed bool
}

// FadeIn ramps from the current alpha to 1 over d.
func (t *Timer) FadeIn(d time.Duration) {
	t.flashed = false
	t.start(1, d, FadingIn)
}

// FadeOut ramps from the current alpha to 0 over d.
func (t *Timer) FadeOut(d time.Duration) {
	t.flashed = false
	t.start(0, d, FadingOut)
}

// Flash fades in, holds fully visible, then fades out.
func (t *Timer) Flash(in, hold, out time.Duration) {
	t.start(1, in, FadingIn)
	t.hold = hold
	t.outDur = out
	t.flashed = true
	if t.state == Shown {
		t.flashed = t.hold > 0
		if !t.flashed {
			t.start(0, out, FadingOut)
		}
	}
}

// Show jumps to fully visible.
func (t *Timer) Show() {
	t.flashed = false
	t.settle(1, Shown)
}

// Hide jumps to invisible.
func (t *Timer) Hide() {
	t.flashed = false
	t.settle(0, Hidden)
}

// Reset returns to Idle with alpha 0.
func (t *Timer) Reset() {
	*t = Timer{}
}

func (t *Timer) start(target float64, d time.Duration, state State) {
	if d <= 0 {
		if target > 0 {
			t.settle(1, Shown)
		} else {
			t.settle(0, Hidden)
		}
		return
	}
	t.state = state
	t.tween = gween.New(float32(t.alpha), float32(target), float32(d.Seconds()), ease.Linear)
}

func (t *Timer) settle(alpha float64, state State) {
	t.alpha = alpha
	t.state = state
	t.tween = nil
}

// Update advances the running fade by dt.
func (t *Timer) Update(dt time.Duration) {
	switch t.state {
	case FadingIn, FadingOut:
		cur, done := t.tween.Update(float32(dt.Seconds()))
		t.alpha = clamp01(float64(cur))
		if !done {
			return
		}
		if t.state == FadingIn {
			t.settle(1, Shown)
		} else {
			t.settle(0, Hidden)
		}
	case Shown:
		if !t.flashed {
			return
		}
		t.hold -= dt
		if t.hold <= 0 {
			t.flashed = false
			t.start(0, t.outDur, FadingOut)
		}
	}
}

func (t *Timer) Alpha() float64 {
	return t.alpha
}

func (t *Timer) State() State {
	return t.state
}

// Done reports whether no fade or hold is running.
func (t *Timer) Done() bool {
	switch t.state {
	case FadingIn, FadingOut:
		return false
	case Shown:
		return !t.flashed
	}
	return true
}

// Visible reports whether anything would be drawn.
func (t *Timer) Visible() bool {
	return t.alpha > 0
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
