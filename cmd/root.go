package cmd

import (
	"fmt"
	"os"

	"github.com/automoto/curtaincall/config"
	"github.com/automoto/curtaincall/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	showStats  bool
)

var rootCmd = &cobra.Command{
	Use:   "curtaincall",
	Short: "curtaincall is a kiosk player for stream endings and song requests.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(configPath); err != nil {
			return err
		}
		if cmd.Flags().Changed("stats") {
			config.Debug.ShowStats = showStats
		}
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(config.Log.Level),
			OutputPath: config.Log.Path,
			MaxSize:    config.Log.MaxSizeMB,
			MaxBackups: config.Log.MaxBackups,
			MaxAge:     config.Log.MaxAgeDays,
			Compress:   true,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./curtaincall.yaml)")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "draw playback state over the scene")
}
