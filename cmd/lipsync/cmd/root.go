// Package cmd implements the lipsync command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/normanking/lipsync/internal/config"
	"github.com/normanking/lipsync/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lipsync",
	Short: "Render a lip-synced video from a speech track",
	Long: `lipsync maps recognized mouth shapes to still images and composites
them into a video synchronized with the source audio.

Requires the rhubarb, ffmpeg, and ffprobe binaries.

Commands:
  render   - run one render
  watch    - re-render whenever a mapping or image changes`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree, printing the failure to stderr so exit
// codes stay meaningful for scripts.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.Log.Level)
	logCfg.File = cfg.Log.File
	if verbose {
		logCfg.Level = logging.LevelDebug
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}

	return cfg, logger, nil
}
