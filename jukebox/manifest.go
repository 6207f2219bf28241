package jukebox

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/quasilyte/gdata"
	"go.uber.org/zap"
)

// Store persists opaque blobs by key. *gdata.Manager implements it.
type Store interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

var _ Store = (*gdata.Manager)(nil)

// OpenStore opens the per-user data directory for app.
func OpenStore(app string) (*gdata.Manager, error) {
	return gdata.Open(gdata.Config{
		AppName: app,
	})
}

// Manifest caches probed durations by file path so a restart does not have
// to open every song again.
type Manifest struct {
	mu        sync.Mutex
	store     Store
	key       string
	durations map[string]float64 // seconds
	dirty     bool
	log       *zap.Logger
}

type manifestData struct {
	Durations map[string]float64 `json:"durations"`
}

// LoadManifest reads key from store. A missing or unreadable manifest yields
// an empty one; store may be nil for an in-memory manifest.
func LoadManifest(store Store, key string, log *zap.Logger) *Manifest {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manifest{
		store:     store,
		key:       key,
		durations: make(map[string]float64),
		log:       log,
	}
	if store == nil {
		return m
	}

	data, err := store.LoadItem(key)
	if err != nil {
		log.Warn("could not load duration manifest", zap.String("key", key), zap.Error(err))
		return m
	}
	if len(data) == 0 {
		return m
	}

	var parsed manifestData
	if err := json.Unmarshal(data, &parsed); err != nil {
		log.Warn("could not parse duration manifest", zap.String("key", key), zap.Error(err))
		return m
	}
	for path, secs := range parsed.Durations {
		if secs > 0 {
			m.durations[path] = secs
		}
	}
	return m
}

// Lookup returns the cached duration of path.
func (m *Manifest) Lookup(path string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	secs, ok := m.durations[path]
	if !ok {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

func (m *Manifest) Set(path string, d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.durations[path] == d.Seconds() {
		return
	}
	m.durations[path] = d.Seconds()
	m.dirty = true
}

func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.durations)
}

// Save writes the manifest back if it changed.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty || m.store == nil {
		return nil
	}

	data, err := json.Marshal(manifestData{Durations: m.durations})
	if err != nil {
		return err
	}
	if err := m.store.SaveItem(m.key, data); err != nil {
		return err
	}
	m.dirty = false
	return nil
}
