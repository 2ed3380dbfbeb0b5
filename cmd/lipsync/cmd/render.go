package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/normanking/lipsync/internal/blink"
	"github.com/normanking/lipsync/internal/bus"
	"github.com/normanking/lipsync/internal/config"
	"github.com/normanking/lipsync/internal/render"
)

var renderFlags struct {
	lipsync    string
	blink      string
	audio      string
	background string
	output     string
	fps        int
	seed       int64
	jobs       int
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one lip-synced video",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx, stop := signal.NotifyContext(context.Background(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		events := bus.NewEventBus()
		subscribeProgress(events, logger.Component("render"))

		pipeline := render.NewPipeline(logger.Zerolog(), cfg, events)
		return pipeline.Run(ctx, renderOptions(cfg))
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderFlags.lipsync, "lipsync", "", "path to the phoneme mapping CSV (required)")
	f.StringVar(&renderFlags.blink, "blink", "", "path to the blink mapping CSV")
	f.StringVar(&renderFlags.audio, "audio", "", "path to the speech audio file (required)")
	f.StringVar(&renderFlags.background, "background", "", "path to the background image")
	f.StringVar(&renderFlags.output, "output", "", "path of the output video (required)")
	f.IntVar(&renderFlags.fps, "fps", 0, "output frame rate (default from config)")
	f.Int64Var(&renderFlags.seed, "seed", 0, "blink schedule seed (default from config)")
	f.IntVar(&renderFlags.jobs, "jobs", 0, "parallel frame workers (default: all CPUs)")

	renderCmd.MarkFlagRequired("lipsync")
	renderCmd.MarkFlagRequired("audio")
	renderCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(renderCmd)
}

// renderOptions merges flags over config defaults.
func renderOptions(cfg *config.Config) render.Options {
	fps := renderFlags.fps
	if fps <= 0 {
		fps = cfg.Render.FrameRate
	}
	jobs := renderFlags.jobs
	if jobs <= 0 {
		jobs = cfg.Render.Workers
	}
	seed := renderFlags.seed
	if seed == 0 {
		seed = cfg.Blink.Seed
	}

	return render.Options{
		LipsPath:       renderFlags.lipsync,
		BlinkPath:      renderFlags.blink,
		AudioPath:      renderFlags.audio,
		BackgroundPath: renderFlags.background,
		OutputPath:     renderFlags.output,
		FrameRate:      fps,
		Workers:        jobs,
		Blink: blink.Config{
			MinWait:  cfg.Blink.MinWait,
			MaxWait:  cfg.Blink.MaxWait,
			PhaseDur: cfg.Blink.PhaseDur,
			Seed:     seed,
		},
	}
}

// subscribeProgress logs pipeline lifecycle events.
func subscribeProgress(events *bus.EventBus, logger zerolog.Logger) {
	events.Subscribe(bus.EventTypeRecognitionStarted, func(ev bus.Event) {
		logger.Info().Interface("audio", ev.Data["audio"]).Msg("recognizing phonemes")
	})
	events.Subscribe(bus.EventTypeRenderStarted, func(ev bus.Event) {
		logger.Info().
			Interface("frames", ev.Data["frames"]).
			Interface("output", ev.Data["output"]).
			Msg("compositing frames")
	})
	events.Subscribe(bus.EventTypeRenderProgress, func(ev bus.Event) {
		logger.Debug().
			Interface("done", ev.Data["done"]).
			Interface("total", ev.Data["total"]).
			Msg("progress")
	})
	events.Subscribe(bus.EventTypeRenderCompleted, func(ev bus.Event) {
		logger.Info().Interface("output", ev.Data["output"]).Msg("render complete")
	})
	events.Subscribe(bus.EventTypeRenderFailed, func(ev bus.Event) {
		logger.Error().Interface("error", ev.Data["error"]).Msg("render failed")
	})
}
