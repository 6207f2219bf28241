package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeItemsExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.ogg", "two.mp3", "cover.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	single := filepath.Join(t.TempDir(), "single.wav")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0o644))

	items, err := probeItems([]string{dir, single})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, filepath.Join(dir, "one.ogg"), items[0].Path)
	require.Equal(t, filepath.Join(dir, "two.mp3"), items[1].Path)
	require.Equal(t, single, items[2].Path)
}

func TestProbeItemsMissingPath(t *testing.T) {
	_, err := probeItems([]string{filepath.Join(t.TempDir(), "missing.ogg")})
	require.Error(t, err)
}
