package jukebox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanDirFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_song.OGG", "a_song.mp3", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.ogg"), 0o755))

	items, err := ScanDir(dir, []string{".ogg", ".mp3"}, Recurrent)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a song", items[0].Title)
	require.Equal(t, "b song", items[1].Title)
	require.Equal(t, Recurrent, items[0].Kind)
	require.NotEqual(t, items[0].ID, items[1].ID)
}

func TestScanDirMissing(t *testing.T) {
	items, err := ScanDir(filepath.Join(t.TempDir(), "nope"), []string{".ogg"}, Recurrent)
	require.NoError(t, err)
	require.Empty(t, items)
}
