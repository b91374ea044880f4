package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/myrjola/lastbroadcast/internal/ai"
	"github.com/myrjola/lastbroadcast/internal/atmosphere"
	"github.com/myrjola/lastbroadcast/internal/config"
	"github.com/myrjola/lastbroadcast/internal/director"
	"github.com/myrjola/lastbroadcast/internal/engine"
	"github.com/myrjola/lastbroadcast/internal/generator"
	"github.com/myrjola/lastbroadcast/internal/logging"
	"github.com/myrjola/lastbroadcast/internal/session"
	"github.com/myrjola/lastbroadcast/internal/world"
	"github.com/spf13/cobra"
)

func init() {
	// A missing .env is fine; configuration falls back to defaults and the
	// offline backend.
	_ = godotenv.Load()
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
}

var rootCmd = &cobra.Command{
	Use:  "lastbroadcast",
	Long: `The Last Broadcast — you are the host of the only radio station left on the air.`,
}

func newLogger(cfg *config.Config, sink *os.File) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	handler := logging.NewContextHandler(slog.NewTextHandler(sink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}

// newEngine wires a full game from configuration. The listener may be nil.
func newEngine(cfg *config.Config, logger *slog.Logger, listener engine.Listener, delays engine.Delays) *engine.Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	client := ai.NewClient(ai.Options{
		APIKey:  cfg.MistralAPIKey,
		BaseURL: cfg.MistralBaseURL,
		Model:   cfg.MistralModel,
	}, logger)
	gen := generator.New(client, rng, logger)
	atmos := atmosphere.NewLogAtmosphere(logger)

	return engine.New(engine.Options{
		World:     world.New(),
		Session:   session.New(),
		Generator: gen,
		Director:  director.New(gen, atmos, rng, logger),
		Atmos:     atmos,
		Audio:     atmosphere.NewLogAudio(logger),
		Rand:      rng,
		Logger:    logger,
		Delays:    delays,
		Listener:  listener,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
