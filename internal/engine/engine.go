// Package engine drives the broadcast state machine: sign-on, seven
// caller rounds of intro, conversation, and terminal choice, then sign-off.
// All orchestration runs under one mutex with time-delayed continuations;
// exactly one caller is live at a time.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/myrjola/lastbroadcast/internal/atmosphere"
	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/myrjola/lastbroadcast/internal/director"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/generator"
	"github.com/myrjola/lastbroadcast/internal/session"
	"github.com/myrjola/lastbroadcast/internal/world"
)

var (
	// ErrBusy means a previous action is still being processed. The engine
	// rejects rather than queues re-entrant calls.
	ErrBusy = errors.NewSentinel("engine is processing a previous action")
	// ErrWrongPhase means the action is not legal in the current phase.
	ErrWrongPhase = errors.NewSentinel("action not allowed in current phase")
	// ErrNoCallsign means Start was called without a callsign.
	ErrNoCallsign = errors.NewSentinel("callsign must not be empty")
)

// Delays pace the narrative beats. They are presentation pacing, not
// concurrency control; tests shrink them to a millisecond.
type Delays struct {
	FirstRound     time.Duration
	Ring           time.Duration
	Connecting     time.Duration
	Intro          time.Duration
	ThinkingMin    time.Duration
	ThinkingJitter time.Duration
	Outcome        time.Duration
	Cooldown       time.Duration
}

// DefaultDelays match the original broadcast pacing.
func DefaultDelays() Delays {
	return Delays{
		FirstRound:     2 * time.Second,
		Ring:           1 * time.Second,
		Connecting:     500 * time.Millisecond,
		Intro:          1500 * time.Millisecond,
		ThinkingMin:    1 * time.Second,
		ThinkingJitter: 2 * time.Second,
		Outcome:        2 * time.Second,
		Cooldown:       3 * time.Second,
	}
}

// Listener receives engine events so a UI can refresh. Methods are called
// with the engine lock held and must not call back into the engine.
type Listener interface {
	PhaseChanged(phase session.Phase)
	MessageAdded(message session.Message)
	TickerUpdated(line string)
	GameEnded(stats director.FinalStats)
}

// NopListener ignores all events.
type NopListener struct{}

func (NopListener) PhaseChanged(session.Phase)    {}
func (NopListener) MessageAdded(session.Message)  {}
func (NopListener) TickerUpdated(string)          {}
func (NopListener) GameEnded(director.FinalStats) {}

// Engine owns the session and world for one playthrough.
type Engine struct {
	mu sync.Mutex

	world    *world.State
	session  *session.State
	gen      *generator.Generator
	director *director.Director
	atmos    atmosphere.Atmosphere
	audio    atmosphere.Audio
	rng      *rand.Rand
	logger   *slog.Logger
	delays   Delays
	listener Listener

	// timerGen invalidates outstanding timers: every phase transition bumps
	// it and stops the tracked timers, so a stale continuation that already
	// fired becomes a no-op instead of writing duplicate transcript lines.
	timerGen uint64
	timers   []*time.Timer
}

// Options wire an engine's collaborators.
type Options struct {
	World     *world.State
	Session   *session.State
	Generator *generator.Generator
	Director  *director.Director
	Atmos     atmosphere.Atmosphere
	Audio     atmosphere.Audio
	Rand      *rand.Rand
	Logger    *slog.Logger
	Delays    Delays
	Listener  Listener
}

// New constructs an engine. World and session are injected so tests can
// build isolated instances per scenario.
func New(opts Options) *Engine {
	listener := opts.Listener
	if listener == nil {
		listener = NopListener{}
	}
	return &Engine{
		world:    opts.World,
		session:  opts.Session,
		gen:      opts.Generator,
		director: opts.Director,
		atmos:    opts.Atmos,
		audio:    opts.Audio,
		rng:      opts.Rand,
		logger:   opts.Logger.With("source", "Engine"),
		delays:   opts.Delays,
		listener: listener,
	}
}

// Snapshot returns the current session phase, round, and caller under the
// engine lock.
func (e *Engine) Snapshot() (session.Phase, int, *caller.Caller) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Phase, e.session.CurrentRound, e.session.CurrentCaller
}

// WorldSnapshot returns a deep copy of the world under the engine lock.
func (e *Engine) WorldSnapshot() world.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Snapshot()
}

// Transcript returns a copy of the conversation under the engine lock.
func (e *Engine) Transcript() []session.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]session.Message(nil), e.session.Conversation...)
}

// Processing reports whether a previous action is still being resolved.
func (e *Engine) Processing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Processing
}

// Start commits the callsign and opens the broadcast. Legal only in the
// sign-on phase.
func (e *Engine) Start(callsign string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Phase != session.PhaseSignOn {
		return errors.Wrap(ErrWrongPhase, "start", slog.String("phase", string(e.session.Phase)))
	}
	if callsign == "" {
		return ErrNoCallsign
	}

	e.session.SetCallsign(callsign)
	e.world.IncrementBroadcastNumber()
	e.setPhase(session.PhaseBroadcasting)
	e.audio.PlayCue(atmosphere.CueBroadcastStart)
	e.addMessage(session.NewMessage(session.SpeakerPlayer,
		fmt.Sprintf(pickLine(e.rng, signOnLines), callsign)))
	e.logger.Info("broadcast started", slog.String("callsign", callsign))

	e.schedule(e.delays.FirstRound, e.beginRound)
	return nil
}

// AnswerCall puts the connected caller on air.
func (e *Engine) AnswerCall() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Phase != session.PhaseCallerConnected {
		return errors.Wrap(ErrWrongPhase, "answer call", slog.String("phase", string(e.session.Phase)))
	}

	e.audio.PlayCue(atmosphere.CueButtonClick)
	e.setPhase(session.PhasePlayerTurn)
	return nil
}

// Reset aborts the current playthrough and restores both models to their
// initial values. Idempotent.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTimers()
	e.world.Reset()
	e.session.Reset()
}

// setPhase transitions the state machine. Outstanding timers from the prior
// phase are always cancelled first.
func (e *Engine) setPhase(phase session.Phase) {
	e.cancelTimers()
	e.session.SetPhase(phase)
	e.listener.PhaseChanged(phase)
}

// schedule runs f after d under the engine lock, unless the phase has
// transitioned in between.
func (e *Engine) schedule(d time.Duration, f func()) {
	gen := e.timerGen
	timer := time.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.timerGen {
			return
		}
		f()
	})
	e.timers = append(e.timers, timer)
}

func (e *Engine) cancelTimers() {
	e.timerGen++
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
}

// addMessage appends to the transcript and notifies the listener.
func (e *Engine) addMessage(message session.Message) {
	e.session.AddMessage(message)
	e.listener.MessageAdded(message)
}
