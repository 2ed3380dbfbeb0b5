// Package rhubarb invokes the Rhubarb Lip Sync CLI to recognize mouth-shape
// cues from a speech track. Rhubarb's invocation and wire format are an
// external contract: one tab-separated record per line on stdout, a start
// time in seconds followed by a single-letter shape label.
// https://github.com/DanielSWolf/rhubarb-lip-sync
package rhubarb

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/lipsync/internal/media"
	"github.com/normanking/lipsync/internal/timeline"
)

// Recognizer runs the rhubarb binary against audio files.
type Recognizer struct {
	logger zerolog.Logger
	config *Config
	tools  *media.Tools
}

// Config holds recognizer configuration.
type Config struct {
	BinaryPath string `json:"binary_path"` // rhubarb binary, looked up on PATH when bare
}

// DefaultConfig expects rhubarb on PATH.
func DefaultConfig() *Config {
	return &Config{BinaryPath: "rhubarb"}
}

// New creates a Recognizer. tools handles the wav transcode for formats
// rhubarb does not accept.
func New(logger zerolog.Logger, config *Config, tools *media.Tools) *Recognizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Recognizer{
		logger: logger.With().Str("component", "rhubarb").Logger(),
		config: config,
		tools:  tools,
	}
}

// Recognize runs rhubarb over the audio file and returns the normalized
// mouth-shape timeline. Rhubarb only reads .wav and .ogg; anything else is
// transcoded to a temporary wav first. The total duration comes from
// probing the original audio, so the timeline covers trailing silence that
// rhubarb emits no cue for.
func (r *Recognizer) Recognize(ctx context.Context, audioPath string) (*timeline.Timeline, error) {
	duration, err := r.tools.ProbeDuration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", audioPath, err)
	}

	input := audioPath
	if !acceptsFormat(audioPath) {
		wav, cleanup, err := r.tools.TranscodeToWAV(ctx, audioPath)
		if err != nil {
			return nil, fmt.Errorf("transcode %s: %w", audioPath, err)
		}
		defer cleanup()
		input = wav
	}

	start := time.Now()
	r.logger.Debug().Str("audio", input).Msg("running rhubarb")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.config.BinaryPath, "-q", input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		r.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("rhubarb failed")
		return nil, fmt.Errorf("rhubarb: %w", err)
	}

	cues, err := ParseCues(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	tl, err := timeline.Normalize(cues, duration)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Int("cues", len(cues)).
		Int("events", len(tl.Events)).
		Float64("duration", tl.Duration).
		Dur("took", time.Since(start)).
		Msg("recognition complete")

	return tl, nil
}

// ParseCues decodes rhubarb's tab-separated stdout into raw cues.
func ParseCues(output []byte) ([]timeline.Event, error) {
	var cues []timeline.Event
	sc := bufio.NewScanner(bytes.NewReader(output))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("rhubarb output line %d: expected 2 fields, got %d", line, len(fields))
		}
		start, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("rhubarb output line %d: bad timestamp %q", line, fields[0])
		}
		cues = append(cues, timeline.Event{Start: start, Label: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cues, nil
}

func acceptsFormat(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".ogg")
}
