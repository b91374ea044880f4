// Package atmosphere defines the presentation-side collaborators the engine
// signals: atmospheric lighting and audio cues. Implementations are
// fire-and-forget and must never propagate errors back into the engine.
package atmosphere

import (
	"log/slog"

	"github.com/myrjola/lastbroadcast/internal/world"
)

// Cue is a named sound effect.
type Cue string

const (
	CuePhoneRing      Cue = "phone-ring"
	CueConnect        Cue = "connect"
	CueDisconnect     Cue = "disconnect"
	CueBroadcastStart Cue = "broadcast-start"
	CueBroadcastEnd   Cue = "broadcast-end"
	CueButtonClick    Cue = "button-click"
	CueStatic         Cue = "static"
)

// Atmosphere receives the discrete city condition plus a continuous
// intensity scalar. Purely presentational; the engine consumes no return
// value.
type Atmosphere interface {
	SetCondition(condition world.CityCondition, intensity float64)
}

// Audio receives named cues and text to synthesize. Implementations swallow
// their own failures.
type Audio interface {
	PlayCue(cue Cue)
	Speak(text, voiceID string)
}

// LogAtmosphere is the default implementation: it records signals to the
// logger and does nothing else. Useful headless and in tests.
type LogAtmosphere struct {
	logger *slog.Logger
}

func NewLogAtmosphere(logger *slog.Logger) *LogAtmosphere {
	return &LogAtmosphere{logger: logger.With("source", "Atmosphere")}
}

func (a *LogAtmosphere) SetCondition(condition world.CityCondition, intensity float64) {
	a.logger.Debug("atmosphere",
		slog.String("condition", string(condition)), slog.Float64("intensity", intensity))
}

// LogAudio logs cues instead of playing them.
type LogAudio struct {
	logger *slog.Logger
}

func NewLogAudio(logger *slog.Logger) *LogAudio {
	return &LogAudio{logger: logger.With("source", "Audio")}
}

func (a *LogAudio) PlayCue(cue Cue) {
	a.logger.Debug("audio cue", slog.String("cue", string(cue)))
}

func (a *LogAudio) Speak(text, voiceID string) {
	a.logger.Debug("speak", slog.String("voice_id", voiceID), slog.Int("len", len(text)))
}
