// Package caller defines the caller persona model and the fixed archetype
// template pools that synthetic callers are drawn from.
package caller

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/myrjola/lastbroadcast/internal/random"
)

// Archetype is the closed set of caller persona categories.
type Archetype string

const (
	DesperateParent Archetype = "desperate_parent"
	WoundedSoldier  Archetype = "wounded_soldier"
	ScaredKid       Archetype = "scared_kid"
	CunningLiar     Archetype = "cunning_liar"
	TrueBeliever    Archetype = "true_believer"
	GovernmentAgent Archetype = "government_agent"
	TheWatcher      Archetype = "the_watcher"
)

// Archetypes lists every archetype the generator may produce. TheWatcher is
// reserved for the final round and is never generated.
var Archetypes = []Archetype{
	DesperateParent, WoundedSoldier, ScaredKid,
	CunningLiar, TrueBeliever, GovernmentAgent, TheWatcher,
}

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	for _, known := range Archetypes {
		if a == known {
			return true
		}
	}
	return false
}

// Caller is one persona instance, created once per round and immutable once
// the conversation starts. Emotional drift during the call is recorded on
// transcript messages, not here.
type Caller struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	Archetype        Archetype `json:"archetype"`
	Backstory        string    `json:"backstory"`
	Motivation       string    `json:"motivation"`
	Secret           string    `json:"secret"`
	Trustworthiness  float64   `json:"trustworthiness"`
	EmotionalState   string    `json:"emotionalState"`
	VoiceID          string    `json:"voiceId"`
	Portrait         string    `json:"portrait"`
	ReferencesToPast []string  `json:"referencesToPast"`
	IsLying          bool      `json:"isLying"`
	LieDetails       string    `json:"lieDetails,omitempty"`
}

// Defaults used when the generator returns a partial persona.
const (
	defaultVoiceID  = "EXAVITQu4vr4xnSDxMaL"
	defaultPortrait = "silhouette"
)

// NewID mints a caller identifier.
func NewID(prefix string) string {
	suffix, err := random.Letters(6)
	if err != nil {
		suffix = "zzzzzz"
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// ApplyDefaults fills every missing field so that a partial upstream result
// still yields a structurally complete caller.
func (c *Caller) ApplyDefaults() {
	if c.ID == "" {
		c.ID = NewID("caller")
	}
	if c.Name == "" {
		c.Name = "Unknown"
	}
	if c.Age == 0 {
		c.Age = 30
	}
	if !c.Archetype.Valid() {
		c.Archetype = ScaredKid
	}
	if c.Backstory == "" {
		c.Backstory = "No backstory available."
	}
	if c.Motivation == "" {
		c.Motivation = "Unknown motivation."
	}
	if c.Secret == "" {
		c.Secret = "No secret."
	}
	if c.Trustworthiness == 0 {
		c.Trustworthiness = 0.5
	}
	if c.EmotionalState == "" {
		c.EmotionalState = "neutral"
	}
	if c.VoiceID == "" {
		c.VoiceID = defaultVoiceID
	}
	if c.Portrait == "" {
		c.Portrait = defaultPortrait
	}
	if c.ReferencesToPast == nil {
		c.ReferencesToPast = []string{}
	}
}

// fallbackCycle is the short archetype list the fallback caller cycles
// through, keyed by round modulo its length.
var fallbackCycle = []Archetype{ScaredKid, DesperateParent, WoundedSoldier}

// Fallback builds the deterministic synthetic caller substituted when the
// text backend is unavailable or returns garbage. It never fails and every
// field is populated.
func Fallback(round int, rng *rand.Rand) *Caller {
	c := &Caller{
		ID:        NewID("fallback"),
		Name:      "Unknown Survivor",
		Age:       25 + rng.Intn(30),
		Archetype: fallbackCycle[round%len(fallbackCycle)],
		Backstory: fmt.Sprintf(
			"Broadcast %d is the first one I've managed to reach. I survived the initial chaos but now I am alone and trying to make sense of everything.",
			round),
		Motivation:       "I need to find other survivors and figure out what happened.",
		Secret:           "I know something about what caused this but I am afraid to say it.",
		Trustworthiness:  0.6,
		EmotionalState:   "scared",
		VoiceID:          defaultVoiceID,
		Portrait:         defaultPortrait,
		ReferencesToPast: []string{},
		IsLying:          false,
	}
	return c
}
