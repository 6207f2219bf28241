package config

import "image/color"

// Config holds general kiosk window configuration
type Config struct {
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	TPS        int    `mapstructure:"tps"`
	Title      string `mapstructure:"title"`
	Fullscreen bool   `mapstructure:"fullscreen"`
}

// LogConfig controls the logger package
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DebugConfig contains debug/testing options
type DebugConfig struct {
	ShowStats bool `mapstructure:"show_stats"` // Draw player state and clocks over the scene
}

// Global configuration instances
var C *Config
var Log LogConfig
var Debug DebugConfig

// Shared RGBA color constants
var (
	White        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Gray         = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	Red          = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	BlackOverlay = color.RGBA{R: 0, G: 0, B: 0, A: 180}
	LightBlue    = color.RGBA{R: 100, G: 180, B: 255, A: 255}
)

func init() {
	C = &Config{
		Width:  1280,
		Height: 720,
		TPS:    60,
		Title:  "curtaincall",
	}

	Log = LogConfig{
		Level:      "info",
		Path:       "logs/curtaincall.log",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}
