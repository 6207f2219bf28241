package scenes

import (
	"context"
	"image/color"
	"sync"

	"github.com/automoto/curtaincall/assets"
	"github.com/automoto/curtaincall/components"
	cfg "github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/jukebox"
	"github.com/automoto/curtaincall/systems"
	"github.com/automoto/curtaincall/systems/factory"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// JukeboxScene plays the recurrent playlist and any songs dropped into the
// request directory
type JukeboxScene struct {
	ecs      *ecs.ECS
	services Services
	once     sync.Once
	closed   bool

	images *assets.ImageLoader
	cancel context.CancelFunc
	tasks  *errgroup.Group
}

// NewJukeboxScene creates a new jukebox scene
func NewJukeboxScene(services Services) *JukeboxScene {
	return &JukeboxScene{services: services}
}

func (js *JukeboxScene) Update() {
	if js.closed {
		return
	}
	js.once.Do(js.configure)
	js.ecs.Update()
}

func (js *JukeboxScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	if js.ecs == nil || js.closed {
		return
	}
	js.ecs.Draw(screen)
}

func (js *JukeboxScene) configure() {
	js.ecs = ecs.NewECS(donburi.NewWorld())
	log := js.services.logger().Named("jukebox")

	factory.CreateMedia(js.ecs, components.MediaData{
		Audio:    js.services.Audio,
		Backend:  js.services.Backend,
		Textures: assets.Textures{},
		Log:      log,
	})

	songs, err := jukebox.ScanDir(cfg.Jukebox.RecurrentDir, cfg.Jukebox.Extensions, jukebox.Recurrent)
	if err != nil {
		log.Warn("could not read recurrent playlist", zap.String("dir", cfg.Jukebox.RecurrentDir), zap.Error(err))
	}
	recurrent := jukebox.NewPlaylist(songs...)
	requests := jukebox.NewPlaylist()
	log.Info("recurrent playlist loaded", zap.Int("songs", recurrent.Len()))

	watcher := jukebox.NewRequestWatcher(cfg.Jukebox.RequestDir, cfg.Jukebox.Extensions, requests, log.Named("requests"))
	watcher.Settle = cfg.Jukebox.RequestSettle
	if n, err := watcher.Scan(); err != nil {
		log.Warn("could not scan request directory", zap.Error(err))
	} else if n > 0 {
		log.Info("pending requests queued", zap.Int("count", n))
	}

	prober := newProber(js.services, log)

	ctx, cancel := context.WithCancel(context.Background())
	js.cancel = cancel
	js.tasks, ctx = errgroup.WithContext(ctx)

	watcher.OnRequest = func(item jukebox.Item) {
		if _, err := prober.ProbePlaylist(ctx, requests); err != nil && ctx.Err() == nil {
			log.Warn("could not probe request", zap.String("path", item.Path), zap.Error(err))
		}
	}
	js.tasks.Go(func() error {
		return watcher.Run(ctx, nil)
	})
	js.tasks.Go(func() error {
		n, err := prober.ProbePlaylist(ctx, recurrent)
		if err == nil {
			_, err = prober.ProbePlaylist(ctx, requests)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Info("playlist durations probed", zap.Int("updated", n), zap.Duration("total", recurrent.TotalDuration()))
		return nil
	})

	js.images = assets.NewImageLoader()
	factory.CreateJukebox(js.ecs, recurrent, requests, js.images)

	js.ecs.AddSystem(systems.UpdateJukebox)

	js.ecs.AddRenderer(cfg.Default, systems.DrawJukebox)
	js.ecs.AddRenderer(cfg.Overlay, systems.DrawStats)
}

func newProber(services Services, log *zap.Logger) *jukebox.Prober {
	var manifest *jukebox.Manifest
	if store, err := jukebox.OpenStore(cfg.C.Title); err != nil {
		log.Warn("could not open data store, durations will not be cached", zap.Error(err))
		manifest = jukebox.LoadManifest(nil, cfg.Jukebox.ManifestKey, log)
	} else {
		manifest = jukebox.LoadManifest(store, cfg.Jukebox.ManifestKey, log)
	}
	return jukebox.NewProber(services.Backend, manifest, cfg.Jukebox.ProbeWorkers, log.Named("prober"))
}

// Close stops the background tasks and playback. It is safe to call more
// than once.
func (js *JukeboxScene) Close() {
	if js.closed {
		return
	}
	js.closed = true
	if js.ecs == nil {
		return
	}
	js.cancel()
	if err := js.tasks.Wait(); err != nil {
		js.services.logger().Warn("jukebox task failed", zap.Error(err))
	}
	factory.DisposeJukebox(js.ecs)
	js.images.Close()
}
