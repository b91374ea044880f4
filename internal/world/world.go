// Package world holds the mutable world model for one playthrough: faction
// standings, player reputation, the append-only event log, and the audit
// trail of caller outcomes and broadcasted claims that later callers are
// generated against.
package world

import (
	"fmt"
	"time"

	"github.com/myrjola/lastbroadcast/internal/random"
)

// CityCondition is the discrete atmospheric state of the city.
type CityCondition string

const (
	CityBurning CityCondition = "burning"
	CityFoggy   CityCondition = "foggy"
	CityOverrun CityCondition = "overrun"
	CityCalm    CityCondition = "calm"
	CityDark    CityCondition = "dark"
)

// Impact classifies how an event lands on the city.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Choice is the player's terminal decision for a caller.
type Choice string

const (
	ChoiceBroadcast Choice = "broadcast"
	ChoiceHelp      Choice = "help"
	ChoiceIgnore    Choice = "ignore"
	ChoiceExpose    Choice = "expose"
)

// Survives reports whether a caller lives through this choice. The rule is
// deterministic and is never overridden by generated content.
func (c Choice) Survives() bool {
	return c != ChoiceIgnore && c != ChoiceExpose
}

// Event is one entry in the append-only world event log. Never mutated after
// creation.
type Event struct {
	ID               string    `json:"id"`
	Description      string    `json:"description"`
	Impact           Impact    `json:"impact"`
	Timestamp        time.Time `json:"timestamp"`
	AffectedFactions []string  `json:"affectedFactions"`
}

// CallerOutcome records the resolution of one round. Created exactly once
// per round, never mutated.
type CallerOutcome struct {
	CallerID string `json:"callerId"`
	Choice   Choice `json:"choice"`
	Survived bool   `json:"survived"`
	Impact   string `json:"impact"`
}

// Survivors is the civilian faction.
type Survivors struct {
	Trust      int `json:"trust"`
	Population int `json:"population"`
	Morale     int `json:"morale"`
}

// Military is the remnant military faction.
type Military struct {
	Trust     int `json:"trust"`
	Control   int `json:"control"`
	Hostility int `json:"hostility"`
}

// Unknown is whatever else is out there.
type Unknown struct {
	Presence  int `json:"presence"`
	Awareness int `json:"awareness"`
}

// Factions groups the three fixed factions.
type Factions struct {
	Survivors Survivors `json:"survivors"`
	Military  Military  `json:"military"`
	Unknown   Unknown   `json:"unknown"`
}

// Reputation tracks how the host comes across on air. Scores are clamped to
// [0, 100] on every merge.
type Reputation struct {
	Honesty    int `json:"honesty"`
	Compassion int `json:"compassion"`
	Boldness   int `json:"boldness"`
}

// Patch types carry partial updates. Nil fields leave the current value
// untouched.
type (
	SurvivorsPatch struct {
		Trust      *int `json:"trust"`
		Population *int `json:"population"`
		Morale     *int `json:"morale"`
	}
	MilitaryPatch struct {
		Trust     *int `json:"trust"`
		Control   *int `json:"control"`
		Hostility *int `json:"hostility"`
	}
	UnknownPatch struct {
		Presence  *int `json:"presence"`
		Awareness *int `json:"awareness"`
	}
	FactionsPatch struct {
		Survivors *SurvivorsPatch `json:"survivors"`
		Military  *MilitaryPatch  `json:"military"`
		Unknown   *UnknownPatch   `json:"unknown"`
	}
	ReputationPatch struct {
		Honesty    *int `json:"honesty"`
		Compassion *int `json:"compassion"`
		Boldness   *int `json:"boldness"`
	}
)

// State is the world model for a single playthrough. It is owned by the
// engine and mutated only through its methods. Inputs are trusted internal
// data, so no operation fails.
type State struct {
	BroadcastNumber   int             `json:"broadcastNumber"`
	CityCondition     CityCondition   `json:"cityCondition"`
	Factions          Factions        `json:"factions"`
	Events            []Event         `json:"events"`
	PlayerReputation  Reputation      `json:"playerReputation"`
	CallerHistory     []CallerOutcome `json:"callerHistory"`
	BroadcastedClaims []string        `json:"broadcastedClaims"`
}

func initialState() State {
	return State{
		BroadcastNumber: 0,
		CityCondition:   CityFoggy,
		Factions: Factions{
			Survivors: Survivors{Trust: 50, Population: 1000, Morale: 50},
			Military:  Military{Trust: 30, Control: 70, Hostility: 40},
			Unknown:   Unknown{Presence: 10, Awareness: 5},
		},
		Events:            nil,
		PlayerReputation:  Reputation{Honesty: 50, Compassion: 50, Boldness: 50},
		CallerHistory:     nil,
		BroadcastedClaims: nil,
	}
}

// New returns a world at its documented initial values.
func New() *State {
	s := initialState()
	return &s
}

// Reset reinitializes the world to defaults. Idempotent.
func (s *State) Reset() {
	*s = initialState()
}

// SetCityCondition replaces the city's atmospheric state.
func (s *State) SetCityCondition(condition CityCondition) {
	s.CityCondition = condition
}

// UpdateSurvivors merges a partial survivor-faction update.
func (s *State) UpdateSurvivors(patch SurvivorsPatch) {
	applyInt(&s.Factions.Survivors.Trust, patch.Trust)
	applyInt(&s.Factions.Survivors.Population, patch.Population)
	applyInt(&s.Factions.Survivors.Morale, patch.Morale)
}

// UpdateMilitary merges a partial military-faction update.
func (s *State) UpdateMilitary(patch MilitaryPatch) {
	applyInt(&s.Factions.Military.Trust, patch.Trust)
	applyInt(&s.Factions.Military.Control, patch.Control)
	applyInt(&s.Factions.Military.Hostility, patch.Hostility)
}

// UpdateUnknown merges a partial unknown-faction update.
func (s *State) UpdateUnknown(patch UnknownPatch) {
	applyInt(&s.Factions.Unknown.Presence, patch.Presence)
	applyInt(&s.Factions.Unknown.Awareness, patch.Awareness)
}

// UpdateFactions merges a combined faction patch.
func (s *State) UpdateFactions(patch FactionsPatch) {
	if patch.Survivors != nil {
		s.UpdateSurvivors(*patch.Survivors)
	}
	if patch.Military != nil {
		s.UpdateMilitary(*patch.Military)
	}
	if patch.Unknown != nil {
		s.UpdateUnknown(*patch.Unknown)
	}
}

// UpdateReputation merges a partial reputation update, clamping every score
// to [0, 100].
func (s *State) UpdateReputation(patch ReputationPatch) {
	applyClamped(&s.PlayerReputation.Honesty, patch.Honesty)
	applyClamped(&s.PlayerReputation.Compassion, patch.Compassion)
	applyClamped(&s.PlayerReputation.Boldness, patch.Boldness)
}

// AddEvent appends to the event log. The log is append-only and
// order-preserving for the whole session.
func (s *State) AddEvent(event Event) {
	s.Events = append(s.Events, event)
}

// AddCallerOutcome appends to the caller history.
func (s *State) AddCallerOutcome(outcome CallerOutcome) {
	s.CallerHistory = append(s.CallerHistory, outcome)
}

// AddBroadcastedClaim appends a claim the host put on air.
func (s *State) AddBroadcastedClaim(claim string) {
	s.BroadcastedClaims = append(s.BroadcastedClaims, claim)
}

// IncrementBroadcastNumber bumps the monotonic broadcast counter.
func (s *State) IncrementBroadcastNumber() {
	s.BroadcastNumber++
}

// Survived counts callers who made it through their round.
func (s *State) Survived() int {
	n := 0
	for _, outcome := range s.CallerHistory {
		if outcome.Survived {
			n++
		}
	}
	return n
}

// Lost counts callers who did not.
func (s *State) Lost() int {
	return len(s.CallerHistory) - s.Survived()
}

// Snapshot returns a deep copy safe to hand to prompt builders while the
// engine keeps mutating the original.
func (s *State) Snapshot() State {
	snapshot := *s
	snapshot.Events = append([]Event(nil), s.Events...)
	snapshot.CallerHistory = append([]CallerOutcome(nil), s.CallerHistory...)
	snapshot.BroadcastedClaims = append([]string(nil), s.BroadcastedClaims...)
	return snapshot
}

// NewEventID mints an identifier for a world event.
func NewEventID(prefix string) string {
	suffix, err := random.Letters(6)
	if err != nil {
		// crypto/rand failing is not worth aborting a round over.
		suffix = "zzzzzz"
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(prefix, description string, impact Impact, affected ...string) Event {
	return Event{
		ID:               NewEventID(prefix),
		Description:      description,
		Impact:           impact,
		Timestamp:        time.Now(),
		AffectedFactions: affected,
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func applyClamped(dst *int, src *int) {
	if src == nil {
		return
	}
	v := *src
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	*dst = v
}
