package fade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFadeInRampsLinearly(t *testing.T) {
	t.Parallel()
	var timer Timer
	require.Equal(t, Idle, timer.State())
	require.True(t, timer.Done())

	timer.FadeIn(time.Second)
	require.Equal(t, FadingIn, timer.State())
	require.False(t, timer.Done())

	timer.Update(500 * time.Millisecond)
	require.InDelta(t, 0.5, timer.Alpha(), 1e-4)

	timer.Update(600 * time.Millisecond)
	require.Equal(t, Shown, timer.State())
	require.Equal(t, 1.0, timer.Alpha())
	require.True(t, timer.Done())
}

func TestFadeAlphaMonotone(t *testing.T) {
	t.Parallel()
	var timer Timer
	timer.FadeIn(750 * time.Millisecond)

	last := timer.Alpha()
	for !timer.Done() {
		timer.Update(time.Second / 60)
		require.GreaterOrEqual(t, timer.Alpha(), last)
		last = timer.Alpha()
	}

	timer.FadeOut(750 * time.Millisecond)
	for !timer.Done() {
		timer.Update(time.Second / 60)
		require.LessOrEqual(t, timer.Alpha(), last)
		last = timer.Alpha()
	}
	require.Equal(t, Hidden, timer.State())
	require.Zero(t, timer.Alpha())
}

func TestFadeOutFromPartialAlpha(t *testing.T) {
	t.Parallel()
	var timer Timer
	timer.FadeIn(time.Second)
	timer.Update(400 * time.Millisecond)

	timer.FadeOut(time.Second)
	timer.Update(500 * time.Millisecond)
	require.InDelta(t, 0.2, timer.Alpha(), 1e-4)
}

func TestZeroDurationJumps(t *testing.T) {
	t.Parallel()
	var timer Timer
	timer.FadeIn(0)
	require.Equal(t, Shown, timer.State())
	require.Equal(t, 1.0, timer.Alpha())

	timer.FadeOut(-time.Second)
	require.Equal(t, Hidden, timer.State())
	require.False(t, timer.Visible())
}

func TestShowHideReset(t *testing.T) {
	t.Parallel()
	var timer Timer
	timer.FadeIn(time.Second)
	timer.Show()
	require.Equal(t, Shown, timer.State())
	require.True(t, timer.Done())

	timer.Hide()
	require.Equal(t, Hidden, timer.State())

	timer.Reset()
	require.Equal(t, Idle, timer.State())
	require.Zero(t, timer.Alpha())
}

func TestFlashHoldsThenFadesOut(t *testing.T) {
	t.Parallel()
	var timer Timer
	timer.Flash(250*time.Millisecond, time.Second, 250*time.Millisecond)

	timer.Update(250 * time.Millisecond)
	require.Equal(t, Shown, timer.State())
	require.False(t, timer.Done())

	timer.Update(500 * time.Millisecond)
	require.Equal(t, Shown, timer.State())

	timer.Update(500 * time.Millisecond)
	require.Equal(t, FadingOut, timer.State())

	timer.Update(250 * time.Millisecond)
	require.Equal(t, Hidden, timer.State())
	require.True(t, timer.Done())
}

func TestUpdateIdleIsNoOp(t *testing.T) {
	t.Parallel()
	var timer Timer
	timer.Update(time.Second)
	require.Equal(t, Idle, timer.State())
	require.Zero(t, timer.Alpha())
}
