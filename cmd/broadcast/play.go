package main

import (
	"os"

	"github.com/myrjola/lastbroadcast/internal/config"
	"github.com/myrjola/lastbroadcast/internal/engine"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/pprofserver"
	"github.com/myrjola/lastbroadcast/internal/tui"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the frequency and take calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load config")
		}

		// Log to a file so slog output does not tear the alternate screen.
		logFile, err := os.OpenFile("lastbroadcast.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		defer func() { _ = logFile.Close() }()
		logger := newLogger(cfg, logFile)

		if cfg.PprofPort != "" {
			pprofserver.Launch(cfg.PprofPort, logger)
		}

		listener := tui.NewChannelListener()
		eng := newEngine(cfg, logger, listener, engine.DefaultDelays())

		return tui.Run(eng, listener.Events())
	},
}
