// Package config provides configuration management for the lipsync renderer
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Render RenderConfig `mapstructure:"render"`
	Blink  BlinkConfig  `mapstructure:"blink"`
	Tools  ToolsConfig  `mapstructure:"tools"`
	Log    LogConfig    `mapstructure:"log"`
}

// RenderConfig holds the frame generation defaults
type RenderConfig struct {
	FrameRate int `mapstructure:"frame_rate"`
	Workers   int `mapstructure:"workers"` // frame workers; 0 means GOMAXPROCS
}

// BlinkConfig tunes the synthetic blink schedule
type BlinkConfig struct {
	MinWait  float64 `mapstructure:"min_wait"`  // seconds between blinks, lower bound
	MaxWait  float64 `mapstructure:"max_wait"`  // seconds between blinks, upper bound
	PhaseDur float64 `mapstructure:"phase_dur"` // seconds per eyelid sub-phase
	Seed     int64   `mapstructure:"seed"`
}

// ToolsConfig locates the external binaries
type ToolsConfig struct {
	Rhubarb string `mapstructure:"rhubarb"`
	FFmpeg  string `mapstructure:"ffmpeg"`
	FFprobe string `mapstructure:"ffprobe"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			FrameRate: 24,
			Workers:   0,
		},
		Blink: BlinkConfig{
			MinWait:  2.0,
			MaxWait:  4.0,
			PhaseDur: 1.0 / 24.0,
			Seed:     1,
		},
		Tools: ToolsConfig{
			Rhubarb: "rhubarb",
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		Log: LogConfig{
			Level: "info",
			File:  false,
		},
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir, ".lipsync"))
	v.AddConfigPath(".")

	// Environment variable overrides
	v.SetEnvPrefix("LIPSYNC")
	v.AutomaticEnv()

	// Read config file if it exists; missing files fall back to defaults
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to ~/.lipsync/config.yaml
func Save(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(homeDir, ".lipsync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("render", cfg.Render)
	v.Set("blink", cfg.Blink)
	v.Set("tools", cfg.Tools)
	v.Set("log", cfg.Log)

	return v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}
