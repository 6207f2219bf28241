package jukebox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultRequestSettle is how long a dropped file must stop growing before
// it is queued.
const DefaultRequestSettle = time.Second

// RequestWatcher turns media files dropped into a directory into requested
// items on a queue. Each path is queued at most once per watcher, and only
// once it is non-empty and its size has held for Settle.
type RequestWatcher struct {
	dir   string
	exts  []string
	queue *Playlist
	log   *zap.Logger

	// OnRequest is called from the watcher goroutine for every new item.
	OnRequest func(Item)
	Settle    time.Duration

	mu   sync.Mutex
	seen map[string]bool
}

func NewRequestWatcher(dir string, exts []string, queue *Playlist, log *zap.Logger) *RequestWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	lower := make([]string, len(exts))
	for i, ext := range exts {
		lower[i] = strings.ToLower(ext)
	}
	return &RequestWatcher{
		dir:    dir,
		exts:   lower,
		queue:  queue,
		log:    log,
		Settle: DefaultRequestSettle,
		seen:   make(map[string]bool),
	}
}

func (w *RequestWatcher) accepts(path string) bool {
	return slices.Contains(w.exts, strings.ToLower(filepath.Ext(path)))
}

func (w *RequestWatcher) isSeen(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen[path]
}

// offer queues path if it is a new, non-empty media file.
func (w *RequestWatcher) offer(path string) bool {
	if !w.accepts(path) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}

	w.mu.Lock()
	if w.seen[path] {
		w.mu.Unlock()
		return false
	}
	w.seen[path] = true
	w.mu.Unlock()

	item := NewItem(path, Requested)
	if requester, title := requesterFromTitle(item.Title); requester != "" {
		item = item.WithRequester(requester)
		item.Title = title
	}
	w.queue.Push(item)
	w.log.Info("song requested",
		zap.String("id", item.ID),
		zap.String("title", item.Title),
		zap.String("requester", item.Requester),
	)
	if w.OnRequest != nil {
		w.OnRequest(item)
	}
	return true
}

// Scan queues files already present in the directory, in name order. Empty
// files are left for Run.
func (w *RequestWatcher) Scan() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	added := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if w.offer(filepath.Join(w.dir, e.Name())) {
			added++
		}
	}
	return added, nil
}

// pendingFile is a file seen by the watch whose size has not settled yet.
type pendingFile struct {
	size    int64
	changed time.Time
}

// Run watches the directory until ctx is done. ready, if not nil, is closed
// once the watch is established. Files still being copied in are held until
// their size stops changing.
func (w *RequestWatcher) Run(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	pending := make(map[string]pendingFile)
	track := func(path string) {
		if !w.accepts(path) || w.isSeen(path) {
			return
		}
		size := int64(-1)
		if pf, ok := pending[path]; ok {
			size = pf.size
		}
		pending[path] = pendingFile{size: size, changed: time.Now()}
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			track(filepath.Join(w.dir, e.Name()))
		}
	}

	ticker := time.NewTicker(max(w.Settle/4, 10*time.Millisecond))
	defer ticker.Stop()

	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				track(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("request watcher error", zap.Error(err))
		case now := <-ticker.C:
			w.settle(pending, now)
		}
	}
}

// settle queues every pending file whose size has held for Settle.
func (w *RequestWatcher) settle(pending map[string]pendingFile, now time.Time) {
	for path, pf := range pending {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			delete(pending, path)
			continue
		}
		if info.Size() != pf.size {
			pending[path] = pendingFile{size: info.Size(), changed: now}
			continue
		}
		if info.Size() == 0 || now.Sub(pf.changed) < w.Settle {
			continue
		}
		delete(pending, path)
		w.offer(path)
	}
}
