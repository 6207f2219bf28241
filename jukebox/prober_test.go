package jukebox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/automoto/curtaincall/media/mediatest"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test failure")

type memStore struct {
	mu    sync.Mutex
	items map[string][]byte
	saves int
	err   error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string][]byte)}
}

func (s *memStore) LoadItem(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.items[key], nil
}

func (s *memStore) SaveItem(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.items[key] = data
	return nil
}

func audioClip(d time.Duration) mediatest.Clip {
	return mediatest.Clip{Duration: d, SampleRate: 44100, Channels: 2, NoVideo: true}
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	m := LoadManifest(store, "durations", nil)
	require.Zero(t, m.Len())

	m.Set("a.ogg", 95*time.Second)
	m.Set("bad.ogg", 0)
	require.NoError(t, m.Save())
	require.Equal(t, 1, store.saves)

	// Nothing changed, nothing written.
	require.NoError(t, m.Save())
	require.Equal(t, 1, store.saves)

	reloaded := LoadManifest(store, "durations", nil)
	d, ok := reloaded.Lookup("a.ogg")
	require.True(t, ok)
	require.Equal(t, 95*time.Second, d)
	_, ok = reloaded.Lookup("bad.ogg")
	require.False(t, ok)
}

func TestManifestToleratesBrokenStore(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	store.items["durations"] = []byte("{not json")
	require.Zero(t, LoadManifest(store, "durations", nil).Len())

	store.err = errTest
	m := LoadManifest(store, "durations", nil)
	require.Zero(t, m.Len())
	m.Set("a.ogg", time.Second)
	require.ErrorIs(t, m.Save(), errTest)
}

func TestProberFillsDurations(t *testing.T) {
	t.Parallel()
	backend := mediatest.NewBackend()
	backend.Add("a.ogg", audioClip(95*time.Second))
	backend.Add("b.ogg", audioClip(200*time.Second))

	store := newMemStore()
	prober := NewProber(backend, LoadManifest(store, "durations", nil), 2, nil)

	items := []Item{
		NewItem("a.ogg", Recurrent),
		NewItem("missing.ogg", Recurrent),
		NewItem("b.ogg", Recurrent),
	}
	out, err := prober.Probe(context.Background(), items)
	require.NoError(t, err)
	require.Equal(t, 95*time.Second, out[0].Duration)
	require.Zero(t, out[1].Duration)
	require.Equal(t, 200*time.Second, out[2].Duration)
	require.False(t, items[0].Probed(), "input slice is not modified")
	require.Zero(t, backend.OpenSources())
	require.Equal(t, 1, store.saves)

	// A fresh prober on an empty backend still knows the durations.
	cached := NewProber(mediatest.NewBackend(), LoadManifest(store, "durations", nil), 2, nil)
	out, err = cached.Probe(context.Background(), items)
	require.NoError(t, err)
	require.Equal(t, 95*time.Second, out[0].Duration)
	require.Equal(t, 200*time.Second, out[2].Duration)
}

func TestProberUpdatesPlaylistInPlace(t *testing.T) {
	t.Parallel()
	backend := mediatest.NewBackend()
	backend.Add("a.ogg", audioClip(time.Minute))
	a, b := NewItem("a.ogg", Recurrent), NewItem("b.ogg", Recurrent)
	pl := NewPlaylist(a, b)

	n, err := NewProber(backend, nil, 4, nil).ProbePlaylist(context.Background(), pl)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	items := pl.Items()
	require.Equal(t, a.ID, items[0].ID)
	require.Equal(t, time.Minute, items[0].Duration)
	require.False(t, items[1].Probed())
}

func TestProberStopsOnCancel(t *testing.T) {
	t.Parallel()
	backend := mediatest.NewBackend()
	backend.Add("a.ogg", audioClip(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := NewProber(backend, nil, 1, nil).Probe(ctx, []Item{NewItem("a.ogg", Recurrent)})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, out[0].Probed())
}
