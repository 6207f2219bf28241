package media

import "time"

// Clock supplies wall-clock time to the player.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now.
var SystemClock Clock = systemClock{}

// PlayerClock tracks playback position against the wall clock. master is
// the time elapsed since start; next is when the next buffered video frame
// is due. master only moves forward through Advance, which the player calls
// while Playing.
type PlayerClock struct {
	start  time.Time
	master time.Duration
	next   time.Duration
}

// Reset zeroes both clocks with now as the reference point.
func (c *PlayerClock) Reset(now time.Time) {
	c.start = now
	c.master = 0
	c.next = 0
}

// ResetTo positions both clocks at pos, e.g. after a seek.
func (c *PlayerClock) ResetTo(now time.Time, pos time.Duration) {
	c.start = now.Add(-pos)
	c.master = pos
	c.next = pos
}

// Resume moves the reference point so master continues from where it was
// frozen.
func (c *PlayerClock) Resume(now time.Time) {
	c.start = now.Add(-c.master)
}

// Advance recomputes master from the wall clock. It never moves backwards.
func (c *PlayerClock) Advance(now time.Time) time.Duration {
	if elapsed := now.Sub(c.start); elapsed > c.master {
		c.master = elapsed
	}
	return c.master
}

// FrameDue reports whether the next video frame should be shown.
func (c *PlayerClock) FrameDue() bool {
	return c.master >= c.next
}

// StepFrame moves the next-frame deadline forward by one frame interval.
func (c *PlayerClock) StepFrame(interval time.Duration) {
	c.next += interval
}

func (c *PlayerClock) Master() time.Duration {
	return c.master
}

func (c *PlayerClock) NextFrameTime() time.Duration {
	return c.next
}
