package cues

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const step = 100 * time.Millisecond

func cue(at time.Duration, text string) Cue {
	return Cue{
		At:      at,
		FadeIn:  500 * time.Millisecond,
		Hold:    time.Second,
		FadeOut: 500 * time.Millisecond,
		Text:    text,
	}
}

// run advances the timeline from..to in fixed steps and returns the alpha
// of the only cue at every step.
func run(tl *Timeline, from, to time.Duration) map[time.Duration]float64 {
	alphas := make(map[time.Duration]float64)
	for pos := from; pos <= to; pos += step {
		tl.Update(pos, step)
		active := tl.Active()
		if len(active) > 0 {
			alphas[pos] = active[0].Alpha
		} else {
			alphas[pos] = 0
		}
	}
	return alphas
}

func TestTimelineActivationWindow(t *testing.T) {
	t.Parallel()
	tl := NewTimeline([]Cue{cue(2*time.Second, "thanks for watching")})
	alphas := run(tl, 0, 5*time.Second)

	require.Zero(t, alphas[1900*time.Millisecond])
	require.Zero(t, alphas[2*time.Second], "fade starts on the activation tick")
	require.InDelta(t, 0.4, alphas[2200*time.Millisecond], 1e-3)
	require.Equal(t, 1.0, alphas[3*time.Second])
	require.Equal(t, 1.0, alphas[3400*time.Millisecond])
	require.Equal(t, 1.0, alphas[3500*time.Millisecond], "fade-out starts on the deactivation tick")
	require.InDelta(t, 0.6, alphas[3700*time.Millisecond], 1e-3)
	require.Zero(t, alphas[4100*time.Millisecond])
	require.Empty(t, tl.Active())
}

func TestTimelineSortsCues(t *testing.T) {
	t.Parallel()
	tl := NewTimeline([]Cue{cue(5*time.Second, "second"), cue(time.Second, "first")})
	require.Equal(t, 2, tl.Len())

	for pos := time.Duration(0); pos <= 6*time.Second; pos += step {
		tl.Update(pos, step)
	}
	run(tl, 6*time.Second, 6*time.Second)
	active := tl.Active()
	require.Len(t, active, 1)
	require.Equal(t, "second", active[0].Cue.Text)
}

func TestTimelineOverlappingCues(t *testing.T) {
	t.Parallel()
	tl := NewTimeline([]Cue{cue(time.Second, "a"), cue(2*time.Second, "b")})
	for pos := time.Duration(0); pos <= 2200*time.Millisecond; pos += step {
		tl.Update(pos, step)
	}
	active := tl.Active()
	require.Len(t, active, 2)
	require.Equal(t, "a", active[0].Cue.Text)
	require.Equal(t, "b", active[1].Cue.Text)
}

func TestTimelineResetsOnBackwardSeek(t *testing.T) {
	t.Parallel()
	tl := NewTimeline([]Cue{cue(time.Second, "a")})
	run(tl, 0, 2*time.Second)
	require.Len(t, tl.Active(), 1)

	tl.Update(0, step)
	require.Empty(t, tl.Active())

	// The cue plays again on the next pass.
	alphas := run(tl, step, 2*time.Second)
	require.Equal(t, 1.0, alphas[2*time.Second])
}

func TestTimelineFinished(t *testing.T) {
	t.Parallel()
	tl := NewTimeline([]Cue{cue(time.Second, "a")})
	require.False(t, tl.Finished(2*time.Second))
	require.True(t, tl.Finished(3*time.Second))
	require.True(t, NewTimeline(nil).Finished(0))
}
