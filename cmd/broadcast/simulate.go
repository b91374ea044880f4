package main

import (
	"fmt"
	"os"
	"time"

	"github.com/myrjola/lastbroadcast/internal/config"
	"github.com/myrjola/lastbroadcast/internal/engine"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/session"
	"github.com/myrjola/lastbroadcast/internal/tui"
	"github.com/myrjola/lastbroadcast/internal/world"
	"github.com/spf13/cobra"
)

// simulateCmd plays a full scripted session against the offline backend and
// prints the transcript. Useful for eyeballing pacing and fallback content
// without a terminal UI or an API key.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted playthrough and print the transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		// Force offline mode; the simulation must not spend tokens.
		cfg.MistralAPIKey = ""
		logger := newLogger(cfg, os.Stderr)

		listener := tui.NewChannelListener()
		delays := engine.Delays{
			FirstRound:  10 * time.Millisecond,
			Ring:        10 * time.Millisecond,
			Connecting:  10 * time.Millisecond,
			Intro:       10 * time.Millisecond,
			ThinkingMin: 10 * time.Millisecond,
			Outcome:     10 * time.Millisecond,
			Cooldown:    10 * time.Millisecond,
		}
		eng := newEngine(cfg, logger, listener, delays)

		choices := []world.Choice{
			world.ChoiceBroadcast, world.ChoiceHelp, world.ChoiceIgnore,
			world.ChoiceExpose, world.ChoiceBroadcast, world.ChoiceHelp,
			world.ChoiceBroadcast,
		}

		if err = eng.Start("Echo7"); err != nil {
			return errors.Wrap(err, "start game")
		}

		var (
			round      int
			callerMsgs int
		)
		timeout := time.After(time.Minute)
		for {
			select {
			case <-timeout:
				return errors.New("simulation timed out")
			case ev := <-listener.Events():
				if ev.Ticker != "" {
					fmt.Printf("  [NEWS] %s\n", ev.Ticker)
				}
				if ev.Phase != nil && *ev.Phase == session.PhaseCallerConnected {
					round++
					callerMsgs = 0
					fmt.Printf("\n--- Round %d ---\n", round)
				}
				if ev.Message != nil {
					fmt.Printf("  [%s] %s\n", ev.Message.Speaker, ev.Message.Text)
					if ev.Message.Speaker == session.SpeakerCaller {
						callerMsgs++
						switch callerMsgs {
						case 2:
							// The intro finished; pick up and probe.
							if err = eng.AnswerCall(); err != nil {
								return errors.Wrap(err, "answer call")
							}
							if err = eng.SendPlayerMessage("This is Echo7. Where are you calling from?"); err != nil {
								return errors.Wrap(err, "send message")
							}
						case 3:
							if err = eng.ChooseOutcome(choices[(round-1)%len(choices)]); err != nil {
								return errors.Wrap(err, "choose outcome")
							}
						}
					}
				}
				if ev.Stats != nil {
					s := ev.Stats
					fmt.Printf("\n=== SIGN-OFF ===\n")
					fmt.Printf("Callers: %d, survival %.0f%%, score %d, ending %s\n",
						s.TotalCallers, s.SurvivalRate, s.PerformanceScore, s.EndingType)
					return nil
				}
			}
		}
	},
}
