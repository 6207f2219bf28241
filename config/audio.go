package config

import "time"

// AudioConfig contains audio device configuration values
type AudioConfig struct {
	SampleRate         int           `mapstructure:"sample_rate"`
	DefaultMusicVol    float64       `mapstructure:"default_music_volume"`
	MusicFadeDuration  int           `mapstructure:"music_fade_frames"` // frames for music fade out (60 = 1 second at 60fps)
	DeviceOpenAttempts uint          `mapstructure:"device_open_attempts"`
	DeviceRetryDelay   time.Duration `mapstructure:"device_retry_delay"`
	PushBufferSize     time.Duration `mapstructure:"push_buffer_size"` // device-side buffer for the video PCM stream
}

// PlayerConfig contains the video player buffering parameters
type PlayerConfig struct {
	FrameQueueSize    int           `mapstructure:"frame_queue_size"`
	RingBufferSeconds float64       `mapstructure:"ring_buffer_seconds"`
	ChunkFrames       int           `mapstructure:"chunk_frames"`
	DecodeIdleSleep   time.Duration `mapstructure:"decode_idle_sleep"`
	PrimeFraction     float64       `mapstructure:"prime_fraction"` // ring fill required before Playing
}

var Audio AudioConfig
var Player PlayerConfig

func init() {
	Audio = AudioConfig{
		SampleRate:         44100,
		DefaultMusicVol:    0.75,
		MusicFadeDuration:  60,
		DeviceOpenAttempts: 3,
		DeviceRetryDelay:   200 * time.Millisecond,
		PushBufferSize:     50 * time.Millisecond,
	}

	Player = PlayerConfig{
		FrameQueueSize:    3,
		RingBufferSeconds: 1.5,
		ChunkFrames:       4096,
		DecodeIdleSleep:   time.Millisecond,
		PrimeFraction:     0.5,
	}
}
