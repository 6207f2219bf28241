package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/decode"
	"github.com/automoto/curtaincall/jukebox"
	"github.com/automoto/curtaincall/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var noCache bool

var probeCmd = &cobra.Command{
	Use:   "probe <path>...",
	Short: "Print media durations and update the duration manifest",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := probeItems(args)
		if err != nil {
			return err
		}

		var store jukebox.Store
		if !noCache {
			s, err := jukebox.OpenStore(config.C.Title)
			if err != nil {
				logger.Warn("could not open data store", zap.Error(err))
			} else {
				store = s
			}
		}
		manifest := jukebox.LoadManifest(store, config.Jukebox.ManifestKey, logger.Named("manifest"))

		backend := decode.NewBackend(logger.Named("decode"))
		defer backend.Shutdown()

		prober := jukebox.NewProber(backend, manifest, config.Jukebox.ProbeWorkers, logger.Named("prober"))
		probed, err := prober.Probe(cmd.Context(), items)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, item := range probed {
			duration := "unknown"
			if item.Probed() {
				duration = item.Duration.Round(10 * time.Millisecond).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", item.Path, duration, item.Title)
		}
		return w.Flush()
	},
}

// probeItems expands directories into their media files
func probeItems(paths []string) ([]jukebox.Item, error) {
	var items []jukebox.Item
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			items = append(items, jukebox.NewItem(path, jukebox.Recurrent))
			continue
		}
		found, err := jukebox.ScanDir(path, config.Jukebox.Extensions, jukebox.Recurrent)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		items = append(items, found...)
	}
	return items, nil
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore and do not update the duration manifest")
}
