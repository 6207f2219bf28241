package jukebox

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScanDir lists the media files in dir with one of exts as items of kind,
// in name order. A missing directory yields no items.
func ScanDir(dir string, exts []string, kind Kind) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), exts) {
			continue
		}
		items = append(items, NewItem(filepath.Join(dir, e.Name()), kind))
	}
	return items, nil
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}
