package jukebox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestRequestWatcherScan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bob - Second.ogg"))
	writeFile(t, filepath.Join(dir, "alice - First.MP3"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.ogg"), 0o755))

	queue := NewPlaylist()
	w := NewRequestWatcher(dir, []string{".ogg", ".mp3"}, queue, nil)

	n, err := w.Scan()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	items := queue.Items()
	require.Equal(t, "alice", items[0].Requester)
	require.Equal(t, "First", items[0].Title)
	require.Equal(t, Requested, items[0].Kind)
	require.Equal(t, "bob", items[1].Requester)

	n, err = w.Scan()
	require.NoError(t, err)
	require.Zero(t, n, "files are queued once")
}

func TestRequestWatcherScanMissingDir(t *testing.T) {
	t.Parallel()
	w := NewRequestWatcher(filepath.Join(t.TempDir(), "nope"), []string{".ogg"}, NewPlaylist(), nil)
	n, err := w.Scan()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRequestWatcherRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	queue := NewPlaylist()
	w := NewRequestWatcher(dir, []string{".ogg"}, queue, nil)
	w.Settle = 50 * time.Millisecond
	requested := make(chan Item, 4)
	w.OnRequest = func(item Item) { requested <- item }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	ready := make(chan struct{})
	go func() { done <- w.Run(ctx, ready) }()
	<-ready

	writeFile(t, filepath.Join(dir, "carol - Encore.ogg"))
	writeFile(t, filepath.Join(dir, "ignored.txt"))

	select {
	case item := <-requested:
		require.Equal(t, "Encore", item.Title)
		require.Equal(t, "carol", item.Requester)
	case <-time.After(5 * time.Second):
		t.Fatal("request was not picked up")
	}
	require.Equal(t, 1, queue.Len())

	cancel()
	require.NoError(t, <-done)
}

func TestRequestWatcherWaitsForCopyToFinish(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "dave - Slow Copy.ogg")
	queue := NewPlaylist()
	w := NewRequestWatcher(dir, []string{".ogg"}, queue, nil)
	w.Settle = 150 * time.Millisecond
	sizes := make(chan int64, 4)
	w.OnRequest = func(item Item) {
		info, err := os.Stat(item.Path)
		if err == nil {
			sizes <- info.Size()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	ready := make(chan struct{})
	go func() { done <- w.Run(ctx, ready) }()
	<-ready

	f, err := os.Create(path)
	require.NoError(t, err)
	time.Sleep(400 * time.Millisecond)
	require.Zero(t, queue.Len(), "empty files are not queued")

	chunk := make([]byte, 4096)
	for i := 0; i < 3; i++ {
		_, err := f.Write(chunk)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	select {
	case size := <-sizes:
		require.Equal(t, int64(3*len(chunk)), size)
	case <-time.After(5 * time.Second):
		t.Fatal("request was not picked up")
	}

	time.Sleep(400 * time.Millisecond)
	require.Equal(t, 1, queue.Len())
	require.Empty(t, sizes)

	cancel()
	require.NoError(t, <-done)
}

func TestRequestWatcherRunPicksUpEmptyFileFromScan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "erin - Late.ogg")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	queue := NewPlaylist()
	w := NewRequestWatcher(dir, []string{".ogg"}, queue, nil)
	w.Settle = 50 * time.Millisecond
	n, err := w.Scan()
	require.NoError(t, err)
	require.Zero(t, n)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	ready := make(chan struct{})
	go func() { done <- w.Run(ctx, ready) }()
	<-ready

	require.NoError(t, os.WriteFile(path, []byte("ogg"), 0o644))
	require.Eventually(t, func() bool { return queue.Len() == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
