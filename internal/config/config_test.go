package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 24, cfg.Render.FrameRate)
	assert.Equal(t, 0, cfg.Render.Workers)

	assert.Equal(t, 2.0, cfg.Blink.MinWait)
	assert.Equal(t, 4.0, cfg.Blink.MaxWait)
	assert.InDelta(t, 1.0/24.0, cfg.Blink.PhaseDur, 1e-9)
	assert.Equal(t, int64(1), cfg.Blink.Seed)

	assert.Equal(t, "rhubarb", cfg.Tools.Rhubarb)
	assert.Equal(t, "ffmpeg", cfg.Tools.FFmpeg)
	assert.Equal(t, "ffprobe", cfg.Tools.FFprobe)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.File)
}
