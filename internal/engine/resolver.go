package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/myrjola/lastbroadcast/internal/atmosphere"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/generator"
	"github.com/myrjola/lastbroadcast/internal/session"
	"github.com/myrjola/lastbroadcast/internal/world"
)

// choiceResultMessages describe the outcome on the transcript, keyed by
// choice and parameterized by survival.
func choiceResultMessage(choice world.Choice, survived bool) string {
	switch choice {
	case world.ChoiceBroadcast:
		if survived {
			return "*Going live on air* Your broadcast may help others."
		}
		return "*Going live on air* The truth spreads through the darkness."
	case world.ChoiceHelp:
		if survived {
			return "*Private channel* You gave them hope."
		}
		return "*Private channel* You did what you could."
	case world.ChoiceIgnore:
		return "*Call terminated* The line goes dead."
	case world.ChoiceExpose:
		if survived {
			return "*Live broadcast* The truth comes out."
		}
		return "*Live broadcast* Your words echo in the silence."
	}
	return "*Transmission ended*"
}

func newsImpact(choice world.Choice) world.Impact {
	switch choice {
	case world.ChoiceBroadcast:
		return world.ImpactPositive
	case world.ChoiceIgnore:
		return world.ImpactNegative
	}
	return world.ImpactNeutral
}

// ChooseOutcome resolves the player's terminal decision for the current
// caller. The deterministic effects (outcome record, broadcast claim,
// transcript message) always apply; the numeric world deltas come from the
// backend with a no-op fallback, so resolution never fails.
func (e *Engine) ChooseOutcome(choice world.Choice) error {
	e.mu.Lock()

	if e.session.Phase != session.PhasePlayerTurn {
		e.mu.Unlock()
		return errors.Wrap(ErrWrongPhase, "choose outcome", slog.String("phase", string(e.session.Phase)))
	}
	if e.session.Processing {
		e.mu.Unlock()
		return ErrBusy
	}
	c := e.session.CurrentCaller
	if c == nil {
		e.mu.Unlock()
		return errors.Wrap(ErrWrongPhase, "choose outcome without caller")
	}

	e.session.SetProcessing(true)
	snapshot := e.world.Snapshot()
	gen := e.timerGen
	e.mu.Unlock()

	effects := e.gen.ResolveChoice(context.Background(), choice, c, snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.timerGen || e.session.Phase != session.PhasePlayerTurn {
		e.session.SetProcessing(false)
		return nil
	}

	e.applyEffects(choice, effects)

	survived := choice.Survives()
	e.world.AddCallerOutcome(world.CallerOutcome{
		CallerID: c.ID,
		Choice:   choice,
		Survived: survived,
		Impact:   effects.ConsequenceDescription,
	})

	if choice == world.ChoiceBroadcast && c.Backstory != "" {
		e.world.AddBroadcastedClaim(fmt.Sprintf("%s: %s", c.Name, c.Backstory))
	}

	e.addMessage(session.NewMessage(session.SpeakerPlayer, choiceResultMessage(choice, survived)))
	e.listener.TickerUpdated(effects.NewsTickerLine)
	e.audio.PlayCue(atmosphere.CueDisconnect)
	e.logger.Info("choice resolved",
		slog.String("choice", string(choice)), slog.Bool("survived", survived))

	e.schedule(e.delays.Outcome, func() {
		e.setPhase(session.PhaseStaticBreak)
		e.audio.PlayCue(atmosphere.CueStatic)
		e.addMessage(session.NewMessage(session.SpeakerPlayer, pickLine(e.rng, staticBreakLines)))

		// Static breaks carry ambient city news between calls.
		ambient := world.RandomEvent(e.rng, "survivors", "military", "unknown")
		e.world.AddEvent(ambient)
		e.listener.TickerUpdated(ambient.Description)

		e.session.SetProcessing(false)

		e.schedule(e.delays.Cooldown, func() {
			e.setPhase(session.PhaseBroadcasting)
			e.session.SetRound(e.session.CurrentRound + 1)
			e.beginRound()
		})
	})
	return nil
}

// applyEffects merges the backend's world deltas. A failed resolution
// arrives as zero values and applies nothing.
func (e *Engine) applyEffects(choice world.Choice, effects generator.ChoiceEffects) {
	if cond := effects.WorldUpdates.CityCondition; cond != "" {
		e.world.SetCityCondition(cond)
	}
	if effects.WorldUpdates.Factions != nil {
		e.world.UpdateFactions(*effects.WorldUpdates.Factions)
	}
	if effects.WorldUpdates.PlayerReputation != nil {
		e.world.UpdateReputation(*effects.WorldUpdates.PlayerReputation)
	}

	e.world.AddEvent(world.NewEvent("event", effects.NewsTickerLine, newsImpact(choice), "survivors"))
}
