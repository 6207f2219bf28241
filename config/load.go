package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load overlays an optional config file and CURTAINCALL_* environment
// variables on top of the defaults set in init. An empty path searches
// for curtaincall.{yaml,toml} in the working directory; a missing file is
// not an error.
func Load(path string) error {
	v := viper.New()
	v.SetEnvPrefix("curtaincall")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("curtaincall")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	sections := []struct {
		key    string
		target any
	}{
		{"window", C},
		{"log", &Log},
		{"debug", &Debug},
		{"audio", &Audio},
		{"player", &Player},
		{"jukebox", &Jukebox},
		{"ending", &Ending},
	}
	for _, s := range sections {
		if !v.IsSet(s.key) {
			continue
		}
		if err := v.UnmarshalKey(s.key, s.target); err != nil {
			return fmt.Errorf("failed to unmarshal %s config: %w", s.key, err)
		}
	}

	return validate()
}

func validate() error {
	if Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be greater than 0")
	}
	if Player.FrameQueueSize <= 0 {
		return fmt.Errorf("player.frame_queue_size must be greater than 0")
	}
	if Player.RingBufferSeconds <= 0 {
		return fmt.Errorf("player.ring_buffer_seconds must be greater than 0")
	}
	if Player.ChunkFrames <= 0 {
		return fmt.Errorf("player.chunk_frames must be greater than 0")
	}
	if Jukebox.DuckFraction < 0 || Jukebox.DuckFraction > 1 {
		return fmt.Errorf("jukebox.duck_fraction must be within [0, 1]")
	}
	if C.TPS <= 0 {
		return fmt.Errorf("window.tps must be greater than 0")
	}
	return nil
}
