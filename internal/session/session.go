// Package session holds the per-playthrough broadcast session: the phase
// machine's current state, the round counter, the live caller, and the
// conversation transcript. It is intentionally a dumb container; all
// transition policy lives in the engine.
package session

import (
	"fmt"
	"time"

	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/myrjola/lastbroadcast/internal/random"
)

// Phase is a state of the broadcast state machine.
type Phase string

const (
	PhaseSignOn          Phase = "sign-on"
	PhaseBroadcasting    Phase = "broadcasting"
	PhaseCallerConnected Phase = "caller-connected"
	PhasePlayerTurn      Phase = "player-turn"
	PhaseStaticBreak     Phase = "static-break"
	PhaseSignOff         Phase = "sign-off"
)

// Speaker identifies who said a transcript line.
type Speaker string

const (
	SpeakerCaller Speaker = "caller"
	SpeakerPlayer Speaker = "player"
)

// Message is one transcript line. The transcript is append-only within a
// round and discarded when the round advances.
type Message struct {
	ID             string    `json:"id"`
	Speaker        Speaker   `json:"speaker"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
	EmotionalState string    `json:"emotionalState,omitempty"`
}

// NewMessage builds a transcript message with a fresh ID.
func NewMessage(speaker Speaker, text string) Message {
	suffix, err := random.Letters(6)
	if err != nil {
		suffix = "zzzzzz"
	}
	return Message{
		ID:        fmt.Sprintf("%s_%d_%s", speaker, time.Now().UnixMilli(), suffix),
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// State is the session model. Phase writes are unconditional; the engine
// decides legality.
type State struct {
	Phase          Phase
	CurrentRound   int
	CurrentCaller  *caller.Caller
	PlayerCallsign string
	Conversation   []Message
	Processing     bool
}

func initialState() State {
	return State{
		Phase:          PhaseSignOn,
		CurrentRound:   1,
		CurrentCaller:  nil,
		PlayerCallsign: "",
		Conversation:   nil,
		Processing:     false,
	}
}

// New returns a session at its documented initial values.
func New() *State {
	s := initialState()
	return &s
}

// Reset restores all fields to initial values. Idempotent.
func (s *State) Reset() {
	*s = initialState()
}

func (s *State) SetPhase(phase Phase)          { s.Phase = phase }
func (s *State) SetRound(round int)            { s.CurrentRound = round }
func (s *State) SetCaller(c *caller.Caller)    { s.CurrentCaller = c }
func (s *State) SetCallsign(callsign string)   { s.PlayerCallsign = callsign }
func (s *State) SetProcessing(processing bool) { s.Processing = processing }

// AddMessage appends to the transcript.
func (s *State) AddMessage(message Message) {
	s.Conversation = append(s.Conversation, message)
}

// ClearConversation empties the transcript at the start of a round.
func (s *State) ClearConversation() {
	s.Conversation = nil
}
