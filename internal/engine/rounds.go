package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/lastbroadcast/internal/atmosphere"
	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/myrjola/lastbroadcast/internal/director"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/session"
)

// callerIntros is the fixed pool of opening lines, keyed by caller name.
var callerIntros = []string{
	"Hello? Is anyone there? This is %s.",
	"*static* Can you hear me? My name is %s.",
	"%s here... I've been trying to reach someone for days.",
	"*crackle* Thank god! Someone's still broadcasting. This is %s.",
}

// beginRound starts the next caller cycle, or ends the game once the round
// counter passes the final round. Runs with the engine lock held.
func (e *Engine) beginRound() {
	round := e.session.CurrentRound
	if round > director.MaxRounds {
		e.endGame()
		return
	}

	e.session.ClearConversation()
	e.session.SetCaller(nil)

	if beat := e.director.TriggerBeat(round, e.world); beat != nil {
		e.listener.TickerUpdated(beat.Description)
	}

	snapshot := e.world.Snapshot()

	var c *caller.Caller
	if round == director.MaxRounds {
		c = e.director.BuildFinalCaller(snapshot)
	} else {
		c = e.gen.GenerateCaller(context.Background(), snapshot, round)
		e.director.AdjustCaller(c, round)
		// Guarantee completeness even if the upstream result was partial.
		c.ApplyDefaults()
	}

	e.session.SetCaller(c)
	e.setPhase(session.PhaseCallerConnected)
	e.atmos.SetCondition(e.world.CityCondition, e.director.AtmosphericIntensity(round))
	e.logger.Info("caller on the line",
		slog.Int("round", round), slog.String("archetype", string(c.Archetype)))

	e.schedule(e.delays.Ring, e.simulateIncomingCall)
}

// simulateIncomingCall stages the ring and the two intro messages.
func (e *Engine) simulateIncomingCall() {
	c := e.session.CurrentCaller
	if c == nil {
		return
	}

	e.audio.PlayCue(atmosphere.CuePhoneRing)

	e.schedule(e.delays.Connecting, func() {
		e.addMessage(session.NewMessage(session.SpeakerCaller, fmt.Sprintf("*%s connecting...*", c.Name)))

		e.schedule(e.delays.Intro, func() {
			intro := fmt.Sprintf(callerIntros[e.rng.Intn(len(callerIntros))], c.Name)
			e.addMessage(session.NewMessage(session.SpeakerCaller, intro))
			e.audio.PlayCue(atmosphere.CueConnect)
			e.audio.Speak(intro, c.VoiceID)
		})
	})
}

// SendPlayerMessage appends the host's line and requests the caller's
// reply. Rejected while a previous action is still processing.
func (e *Engine) SendPlayerMessage(text string) error {
	e.mu.Lock()

	if e.session.Phase != session.PhasePlayerTurn {
		e.mu.Unlock()
		return errors.Wrap(ErrWrongPhase, "send message", slog.String("phase", string(e.session.Phase)))
	}
	if e.session.Processing {
		e.mu.Unlock()
		return ErrBusy
	}
	c := e.session.CurrentCaller
	if c == nil {
		e.mu.Unlock()
		return errors.Wrap(ErrWrongPhase, "send message without caller")
	}

	e.addMessage(session.NewMessage(session.SpeakerPlayer, text))
	e.session.SetProcessing(true)
	snapshot := e.world.Snapshot()
	gen := e.timerGen
	e.mu.Unlock()

	// The backend call runs outside the lock so concurrent sends fail fast
	// with ErrBusy instead of blocking on the mutex.
	reply := e.gen.GenerateResponse(context.Background(), c, text, snapshot)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.timerGen || e.session.Phase != session.PhasePlayerTurn {
		// The round moved on while we were waiting; drop the reply.
		e.session.SetProcessing(false)
		return nil
	}

	e.schedule(e.thinkingDelay(), func() {
		message := session.NewMessage(session.SpeakerCaller, reply.Speech)
		message.EmotionalState = reply.EmotionalShift
		e.addMessage(message)
		e.audio.Speak(reply.Speech, c.VoiceID)
		e.session.SetProcessing(false)
	})
	return nil
}

func (e *Engine) thinkingDelay() time.Duration {
	d := e.delays.ThinkingMin
	if e.delays.ThinkingJitter > 0 {
		d += time.Duration(e.rng.Int63n(int64(e.delays.ThinkingJitter)))
	}
	return d
}

// endGame composes the final summary, appends it as the last transcript
// message, and signs off. Terminal.
func (e *Engine) endGame() {
	snapshot := e.world.Snapshot()
	summary := e.director.EndGameSummary(context.Background(), snapshot, e.session.PlayerCallsign)

	e.addMessage(session.NewMessage(session.SpeakerPlayer, summary))
	e.addMessage(session.NewMessage(session.SpeakerPlayer,
		fmt.Sprintf(pickLine(e.rng, signOffLines), e.session.PlayerCallsign)))
	e.audio.PlayCue(atmosphere.CueBroadcastEnd)
	e.setPhase(session.PhaseSignOff)

	stats := director.ComputeFinalStats(snapshot)
	e.listener.GameEnded(stats)
	e.logger.Info("broadcast ended",
		slog.Int("performance_score", stats.PerformanceScore),
		slog.String("ending", string(stats.EndingType)))
}
