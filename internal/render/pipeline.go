// Package render wires the full pipeline: mapping tables, phoneme
// recognition, blink scheduling, frame composition, and the encoder sink.
package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/normanking/lipsync/internal/blink"
	"github.com/normanking/lipsync/internal/bus"
	"github.com/normanking/lipsync/internal/compose"
	"github.com/normanking/lipsync/internal/config"
	"github.com/normanking/lipsync/internal/encode"
	"github.com/normanking/lipsync/internal/mapping"
	"github.com/normanking/lipsync/internal/media"
	"github.com/normanking/lipsync/internal/rhubarb"
)

// Options names the inputs of one render job. Paths mirror the CLI flags.
type Options struct {
	LipsPath       string
	BlinkPath      string // optional; empty skips the blink layer
	AudioPath      string
	BackgroundPath string // optional
	OutputPath     string
	FrameRate      int
	Workers        int // 0 means GOMAXPROCS
	Blink          blink.Config
}

// Validate checks the required inputs before any work starts.
func (o *Options) Validate() error {
	if o.LipsPath == "" {
		return fmt.Errorf("lip mapping path is required")
	}
	if o.AudioPath == "" {
		return fmt.Errorf("audio path is required")
	}
	if o.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if o.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", o.FrameRate)
	}
	return nil
}

// Pipeline runs render jobs.
type Pipeline struct {
	logger     zerolog.Logger
	events     *bus.EventBus
	tools      *media.Tools
	recognizer *rhubarb.Recognizer
	encoder    *encode.Encoder
}

// NewPipeline assembles a pipeline from configuration.
func NewPipeline(logger zerolog.Logger, cfg *config.Config, events *bus.EventBus) *Pipeline {
	tools := media.NewTools(logger, &media.Config{
		FFmpegPath:  cfg.Tools.FFmpeg,
		FFprobePath: cfg.Tools.FFprobe,
	})
	return &Pipeline{
		logger:     logger.With().Str("component", "pipeline").Logger(),
		events:     events,
		tools:      tools,
		recognizer: rhubarb.New(logger, &rhubarb.Config{BinaryPath: cfg.Tools.Rhubarb}, tools),
		encoder:    encode.New(logger, cfg.Tools.FFmpeg),
	}
}

// Run executes one render job end to end. All validation — mapping
// completeness and canvas dimensions included — finishes before the first
// frame is composited, so a doomed render fails with zero frames produced
// and no partial output file.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := p.run(ctx, opts); err != nil {
		p.events.Publish(bus.Failed(err))
		return err
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, opts Options) error {
	lips, err := mapping.Load(opts.LipsPath)
	if err != nil {
		return err
	}

	var blinkTable *mapping.Table
	if opts.BlinkPath != "" {
		if blinkTable, err = mapping.Load(opts.BlinkPath); err != nil {
			return err
		}
	}

	var background image.Image
	if opts.BackgroundPath != "" {
		if background, err = loadBackground(opts.BackgroundPath); err != nil {
			return err
		}
	}

	p.events.Publish(bus.Event{
		Type: bus.EventTypeRecognitionStarted,
		Data: map[string]any{"audio": opts.AudioPath},
	})
	lipTL, err := p.recognizer.Recognize(ctx, opts.AudioPath)
	if err != nil {
		return err
	}
	p.events.Publish(bus.Event{
		Type: bus.EventTypeRecognitionFinished,
		Data: map[string]any{"events": len(lipTL.Events), "duration": lipTL.Duration},
	})

	cfg := compose.RenderConfig{
		FrameRate:  opts.FrameRate,
		Duration:   lipTL.Duration,
		Background: background,
		Lips:       compose.Layer{Timeline: lipTL, Table: lips},
	}
	if blinkTable != nil {
		cfg.Blink = &compose.Layer{
			Timeline: blink.Schedule(lipTL.Duration, opts.Blink),
			Table:    blinkTable,
		}
	}

	comp, err := compose.New(cfg)
	if err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	total := comp.FrameCount()
	bounds := comp.Bounds()

	p.events.Publish(bus.Event{
		Type: bus.EventTypeRenderStarted,
		Data: map[string]any{"frames": total, "output": opts.OutputPath},
	})
	p.logger.Info().
		Int("frames", total).
		Int("workers", workers).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Msg("render starting")

	spec := encode.Spec{
		AudioPath:  opts.AudioPath,
		OutputPath: opts.OutputPath,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		FrameRate:  opts.FrameRate,
	}
	err = p.encoder.Encode(ctx, spec, func(sink compose.Sink) error {
		return comp.Render(ctx, workers, func(f compose.Frame) error {
			if err := sink(f); err != nil {
				return err
			}
			// One progress event per second of video.
			if (f.Index+1)%opts.FrameRate == 0 || f.Index+1 == total {
				p.events.Publish(bus.Progress(f.Index+1, total))
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	p.events.Publish(bus.Event{
		Type: bus.EventTypeRenderCompleted,
		Data: map[string]any{"frames": total, "output": opts.OutputPath},
	})
	return nil
}

// loadBackground decodes the background PNG.
func loadBackground(path string) (image.Image, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	defer fd.Close()
	img, err := png.Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("decode background %s: %w", path, err)
	}
	return img, nil
}
