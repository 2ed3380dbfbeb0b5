// Package encode muxes composited frames with the source audio by piping
// raw RGBA video into ffmpeg. Container and codec details stay behind this
// boundary; the compositor's obligation ends at an ordered frame sequence.
package encode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/lipsync/internal/compose"
)

// Spec describes one encode job.
type Spec struct {
	AudioPath  string
	OutputPath string
	Width      int
	Height     int
	FrameRate  int
}

// Encoder drives an ffmpeg process as the render sink.
type Encoder struct {
	logger     zerolog.Logger
	ffmpegPath string
}

// New creates an Encoder using the given ffmpeg binary.
func New(logger zerolog.Logger, ffmpegPath string) *Encoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Encoder{
		logger:     logger.With().Str("component", "encode").Logger(),
		ffmpegPath: ffmpegPath,
	}
}

// Encode starts ffmpeg, then calls render with a sink that streams each
// frame's pixels to the encoder in index order. qtrle with argb preserves
// the alpha channel, matching the mkv output this tool has always produced.
// A failed render removes the partial output file: the caller never receives
// a truncated video.
func (e *Encoder) Encode(ctx context.Context, spec Spec, render func(compose.Sink) error) error {
	args := encodeArgs(spec)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	start := time.Now()
	e.logger.Debug().Str("output", spec.OutputPath).Strs("args", args).Msg("encoder started")

	written := 0
	renderErr := render(func(f compose.Frame) error {
		if _, err := stdin.Write(f.Image.Pix); err != nil {
			return fmt.Errorf("write frame %d to encoder: %w", f.Index, err)
		}
		written++
		return nil
	})
	stdin.Close()
	waitErr := cmd.Wait()

	if renderErr != nil {
		os.Remove(spec.OutputPath)
		return renderErr
	}
	if waitErr != nil {
		os.Remove(spec.OutputPath)
		e.logger.Error().Err(waitErr).Str("stderr", stderr.String()).Msg("ffmpeg failed")
		return fmt.Errorf("ffmpeg: %w", waitErr)
	}

	e.logger.Info().
		Int("frames", written).
		Str("output", spec.OutputPath).
		Dur("took", time.Since(start)).
		Msg("encode complete")
	return nil
}

// encodeArgs builds the ffmpeg invocation: raw RGBA frames on stdin, the
// original audio as a second input, qtrle video with an argb pixel format.
func encodeArgs(spec Spec) []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", fmt.Sprintf("%d", spec.FrameRate),
		"-i", "pipe:0",
		"-i", spec.AudioPath,
		"-c:v", "qtrle",
		"-pix_fmt", "argb",
		"-shortest",
		spec.OutputPath,
	}
}
