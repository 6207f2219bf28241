package cmd

import (
	"github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/scenes"
	"github.com/spf13/cobra"
)

var endingCmd = &cobra.Command{
	Use:   "ending",
	Short: "Play the stream-ending cinematic",
	Long:  `Plays the ending music with its timed text cues over the rotating image and video carousel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if music, _ := cmd.Flags().GetString("music"); music != "" {
			config.Ending.MusicPath = music
		}
		services, shutdown := newServices()
		defer shutdown()
		return runScene(scenes.NewEndingScene(services))
	},
}

func init() {
	rootCmd.AddCommand(endingCmd)

	endingCmd.Flags().String("music", "", "override the ending music file")
}
