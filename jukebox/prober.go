package jukebox

import (
	"context"

	"github.com/automoto/curtaincall/media"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Prober fills in item durations, from the manifest when known and by
// opening the file otherwise.
type Prober struct {
	backend  media.Backend
	manifest *Manifest
	workers  int
	log      *zap.Logger
}

func NewProber(backend media.Backend, manifest *Manifest, workers int, log *zap.Logger) *Prober {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	if manifest == nil {
		manifest = LoadManifest(nil, "", log)
	}
	return &Prober{backend: backend, manifest: manifest, workers: workers, log: log}
}

// Probe returns items with durations filled in where they could be
// determined. Files that fail to open keep a zero duration.
func (p *Prober) Probe(ctx context.Context, items []Item) ([]Item, error) {
	out := make([]Item, len(items))
	copy(out, items)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range out {
		if out[i].Probed() {
			continue
		}
		if d, ok := p.manifest.Lookup(out[i].Path); ok {
			out[i] = out[i].WithDuration(d)
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := media.Probe(p.backend, out[i].Path)
			if err != nil {
				p.log.Warn("could not probe duration", zap.String("path", out[i].Path), zap.Error(err))
				return nil
			}
			out[i] = out[i].WithDuration(d)
			p.manifest.Set(out[i].Path, d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	if err := p.manifest.Save(); err != nil {
		p.log.Warn("could not save duration manifest", zap.Error(err))
	}
	return out, nil
}

// ProbePlaylist probes the unprobed items of pl and substitutes the results
// in place. It returns how many items gained a duration.
func (p *Prober) ProbePlaylist(ctx context.Context, pl *Playlist) (int, error) {
	probed, err := p.Probe(ctx, pl.Unprobed())
	updated := 0
	for _, item := range probed {
		if item.Probed() && pl.Replace(item) {
			updated++
		}
	}
	return updated, err
}
