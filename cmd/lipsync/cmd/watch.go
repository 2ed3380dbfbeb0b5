package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/normanking/lipsync/internal/bus"
	"github.com/normanking/lipsync/internal/render"
	"github.com/normanking/lipsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render, then re-render whenever a mapping or image changes",
	Long: `watch runs an initial render and keeps watching the mapping CSVs,
their image directories, and the background image. Saving any of them
triggers another render with the same options. Intended for the authoring
loop while drawing mouth shapes.`,
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
		log := logger.Component("watch")
		subscribeProgress(events, log)

		pipeline := render.NewPipeline(logger.Zerolog(), cfg, events)
		opts := renderOptions(cfg)

		watcher, err := watch.New(logger.Zerolog(), events)
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(opts.LipsPath, opts.BlinkPath, opts.BackgroundPath); err != nil {
			return err
		}

		// Re-render requests funnel through a buffered channel so a burst
		// of asset events collapses into one pending render.
		trigger := make(chan struct{}, 1)
		events.Subscribe(bus.EventTypeAssetChanged, func(bus.Event) {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})

		// Authoring mistakes are expected here: a bad render logs and
		// waits for the next save instead of exiting.
		if err := pipeline.Run(ctx, opts); err != nil && ctx.Err() != nil {
			return err
		}

		log.Info().Msg("watching for asset changes, ctrl-c to stop")
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-trigger:
				if err := pipeline.Run(ctx, opts); err != nil && ctx.Err() != nil {
					return err
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().AddFlagSet(renderCmd.Flags())
	rootCmd.AddCommand(watchCmd)
}
