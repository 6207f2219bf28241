package cmd

import (
	"github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/scenes"
	"github.com/spf13/cobra"
)

var (
	recurrentDir string
	requestDir   string
)

var jukeboxCmd = &cobra.Command{
	Use:   "jukebox",
	Short: "Run the song-request jukebox",
	Long: `Loops the recurrent playlist and crossfades to songs dropped into the request
directory, resuming the interrupted song once the requests run out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if recurrentDir != "" {
			config.Jukebox.RecurrentDir = recurrentDir
		}
		if requestDir != "" {
			config.Jukebox.RequestDir = requestDir
		}
		services, shutdown := newServices()
		defer shutdown()
		return runScene(scenes.NewJukeboxScene(services))
	},
}

func init() {
	rootCmd.AddCommand(jukeboxCmd)

	jukeboxCmd.Flags().StringVar(&recurrentDir, "recurrent", "", "directory of the recurrent playlist")
	jukeboxCmd.Flags().StringVar(&requestDir, "requests", "", "directory watched for requested songs")
	jukeboxCmd.Example = `  # Use the configured directories
  curtaincall jukebox

  # Point at other folders
  curtaincall jukebox --recurrent ~/music/bgm --requests ~/music/requests`
}
