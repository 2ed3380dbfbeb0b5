// Package media wraps the ffmpeg/ffprobe invocations the renderer depends
// on: probing audio duration and transcoding audio to wav for the
// recognizer. All process I/O is confined here.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Tools invokes external media binaries.
type Tools struct {
	logger zerolog.Logger
	config *Config
}

// Config locates the external binaries.
type Config struct {
	FFmpegPath  string `json:"ffmpeg_path"`
	FFprobePath string `json:"ffprobe_path"`
}

// DefaultConfig expects ffmpeg and ffprobe on PATH.
func DefaultConfig() *Config {
	return &Config{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}
}

// NewTools creates a Tools wrapper.
func NewTools(logger zerolog.Logger, config *Config) *Tools {
	if config == nil {
		config = DefaultConfig()
	}
	return &Tools{
		logger: logger.With().Str("component", "media").Logger(),
		config: config,
	}
}

// FFmpegPath returns the configured ffmpeg binary path.
func (t *Tools) FFmpegPath() string { return t.config.FFmpegPath }

// ProbeDuration returns the duration of an audio file in seconds.
func (t *Tools) ProbeDuration(ctx context.Context, path string) (float64, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.config.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("ffprobe failed")
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	raw := strings.TrimSpace(stdout.String())
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe reported unparseable duration %q", raw)
	}
	return duration, nil
}

// TranscodeToWAV converts an audio file to a temporary wav and returns its
// path plus a cleanup func. The cleanup must run on every exit path so
// failed renders leave no artifacts behind.
func (t *Tools) TranscodeToWAV(ctx context.Context, path string) (string, func(), error) {
	out := filepath.Join(os.TempDir(), fmt.Sprintf("lipsync-%s.wav", uuid.NewString()))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.config.FFmpegPath, "-y", "-i", path, out)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		t.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("ffmpeg transcode failed")
		return "", nil, fmt.Errorf("ffmpeg transcode: %w", err)
	}

	t.logger.Debug().Str("in", path).Str("out", out).Msg("transcoded to wav")
	return out, func() { os.Remove(out) }, nil
}
