// Package director owns the narrative pacing of a playthrough: the fixed
// per-round tension curve, the scripted story beats, tension-banded caller
// adjustment, the terminal caller, and the end-of-game summary and scoring.
package director

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"

	"github.com/myrjola/lastbroadcast/internal/atmosphere"
	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/generator"
	"github.com/myrjola/lastbroadcast/internal/world"
)

// MaxRounds is the fixed length of a session. Round 7 is always the
// watcher.
const MaxRounds = 7

// Pacing labels how fast a round should feel.
type Pacing string

const (
	PacingSlow      Pacing = "slow"
	PacingMedium    Pacing = "medium"
	PacingFast      Pacing = "fast"
	PacingClimactic Pacing = "climactic"
)

// BeatType classifies a scripted narrative beat.
type BeatType string

const (
	BeatTension    BeatType = "tension"
	BeatRelief     BeatType = "relief"
	BeatRevelation BeatType = "revelation"
	BeatDanger     BeatType = "danger"
)

// Beat is a one-time scripted event bound to a trigger round.
type Beat struct {
	Type         BeatType
	Intensity    float64
	Description  string
	TriggerRound int
}

type curvePoint struct {
	tension float64
	pacing  Pacing
}

// tensionCurve is the 7-round arc: introduction, rising tension, climax at
// round 6, controlled resolution dip at round 7.
var tensionCurve = map[int]curvePoint{
	1: {0.3, PacingSlow},
	2: {0.4, PacingMedium},
	3: {0.5, PacingMedium},
	4: {0.6, PacingFast},
	5: {0.8, PacingFast},
	6: {0.9, PacingClimactic},
	7: {0.7, PacingMedium},
}

var scriptedBeats = []Beat{
	{BeatRevelation, 0.4, "First signs of the true nature of the apocalypse", 2},
	{BeatDanger, 0.6, "Military presence detected in the city", 3},
	{BeatTension, 0.7, "Survivors becoming more desperate", 4},
	{BeatRevelation, 0.8, "Truth about the broadcast signal revealed", 5},
	{BeatDanger, 0.9, "Something is hunting the survivors", 6},
}

var (
	highTensionEmotions   = []string{"desperate", "paranoid", "hysterical", "traumatized", "urgent"}
	mediumTensionEmotions = []string{"worried", "cautious", "hopeful", "determined", "conflicted"}
	lowTensionEmotions    = []string{"calm", "curious", "friendly", "optimistic", "neutral"}

	crypticSuffixes = []string{
		"but there's something they're not telling you...",
		"though their story doesn't quite add up",
		"but you can hear fear in their voice",
		"as if they're being watched",
		"but their words feel rehearsed",
	}
)

// Director steers pacing and scripted beats for one session.
type Director struct {
	gen    *generator.Generator
	atmos  atmosphere.Atmosphere
	rng    *rand.Rand
	logger *slog.Logger
}

func New(gen *generator.Generator, atmos atmosphere.Atmosphere, rng *rand.Rand, logger *slog.Logger) *Director {
	return &Director{
		gen:    gen,
		atmos:  atmos,
		rng:    rng,
		logger: logger.With("source", "Director"),
	}
}

// TensionAt returns the round's tension, defaulting to a neutral mid-value
// outside the table.
func (d *Director) TensionAt(round int) float64 {
	if p, ok := tensionCurve[round]; ok {
		return p.tension
	}
	return 0.5
}

// PacingAt returns the round's pacing label.
func (d *Director) PacingAt(round int) Pacing {
	if p, ok := tensionCurve[round]; ok {
		return p.pacing
	}
	return PacingMedium
}

// AtmosphericIntensity maps the round's tension into the 0.1..0.8
// lighting/static intensity band.
func (d *Director) AtmosphericIntensity(round int) float64 {
	return 0.1 + d.TensionAt(round)*0.7
}

// AdjustCaller applies tension-banded overrides to a freshly generated
// caller. Lying is a weighted draw except where the archetype already
// forces it.
func (d *Director) AdjustCaller(c *caller.Caller, round int) {
	tension := d.TensionAt(round)

	switch {
	case tension > 0.7:
		c.EmotionalState = pick(d.rng, highTensionEmotions)
		c.Backstory = c.Backstory + " " + pick(d.rng, crypticSuffixes)
		c.IsLying = d.rng.Float64() < 0.4+tension*0.3
	case tension > 0.5:
		c.EmotionalState = pick(d.rng, mediumTensionEmotions)
		c.IsLying = d.rng.Float64() < 0.3+tension*0.2
	default:
		c.EmotionalState = pick(d.rng, lowTensionEmotions)
		c.IsLying = d.rng.Float64() < 0.2
	}

	if c.Archetype == caller.CunningLiar {
		c.IsLying = true
	}
}

// TriggerBeat fires the round's scripted beat, if any: it appends the
// derived world event and signals the atmosphere collaborator. Returns the
// beat for callers that want to surface it.
func (d *Director) TriggerBeat(round int, w *world.State) *Beat {
	for i := range scriptedBeats {
		beat := &scriptedBeats[i]
		if beat.TriggerRound != round {
			continue
		}

		impact := world.ImpactPositive
		if beat.Intensity > 0.7 {
			impact = world.ImpactNegative
		} else if beat.Intensity > 0.3 {
			impact = world.ImpactNeutral
		}
		w.AddEvent(world.NewEvent("narrative", beat.Description, impact, "survivors"))

		d.atmos.SetCondition(w.CityCondition, beatIntensity(beat.Type))
		d.logger.Debug("narrative beat",
			slog.Int("round", round), slog.String("type", string(beat.Type)))
		return beat
	}
	return nil
}

// beatIntensity maps a beat type to an atmosphere effect level.
func beatIntensity(t BeatType) float64 {
	switch t {
	case BeatDanger:
		return 0.9
	case BeatTension:
		return 0.8
	case BeatRevelation:
		return 0.6
	case BeatRelief:
		return 0.5
	}
	return 0.5
}

// BuildFinalCaller constructs the watcher from the audit trail. Its
// identity fields never come from the backend; trustworthiness is fixed at
// zero and it is always lying.
func (d *Director) BuildFinalCaller(snapshot world.State) *caller.Caller {
	references := watcherReferences(snapshot)

	return &caller.Caller{
		ID:               "the_watcher",
		Name:             "The Watcher",
		Age:              0,
		Archetype:        caller.TheWatcher,
		Backstory: fmt.Sprintf(
			"I've been listening since the beginning. %s. I know what you've done, what you've said, and what you've hidden. I am the last voice that will judge your broadcast.",
			strings.Join(references, ". ")),
		Motivation:       "to judge the player's choices",
		Secret:           "has been listening to every broadcast",
		LieDetails:       "claims to be a survivor but is something else entirely",
		Trustworthiness:  0,
		EmotionalState:   "omniscient",
		VoiceID:          "ErXwobaYiN019PkySvjV",
		Portrait:         "silhouette",
		ReferencesToPast: references,
		IsLying:          true,
	}
}

func watcherReferences(snapshot world.State) []string {
	var references []string

	if len(snapshot.BroadcastedClaims) > 0 {
		references = append(references,
			fmt.Sprintf("I heard what you broadcast about %q", snapshot.BroadcastedClaims[0]))
	}

	if snapshot.PlayerReputation.Honesty > 70 {
		references = append(references, "You've been honest, mostly")
	} else if snapshot.PlayerReputation.Honesty < 30 {
		references = append(references, "You've told so many lies, I've lost count")
	}

	if snapshot.Survived() > 3 {
		references = append(references, "You've saved so many people")
	} else if snapshot.Lost() > 3 {
		references = append(references, "So many have died because of your choices")
	}

	return references
}

// EndGameSummary produces the final transmission text. It asks the
// generator first and falls back to a deterministic templated paragraph, so
// it never fails.
func (d *Director) EndGameSummary(ctx context.Context, snapshot world.State, callsign string) string {
	summary, err := d.gen.GenerateEndSummary(ctx, snapshot, callsign)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "end summary failed, using fallback", errors.SlogError(err))
		return fallbackSummary(snapshot, callsign)
	}
	return summary
}

func fallbackSummary(snapshot world.State, callsign string) string {
	return fmt.Sprintf(
		"This is %s, signing off for the last time. The static grows louder now, swallowing the city. "+
			"%d voices you saved echo in the darkness, while %d others fade into silence. "+
			"Your broadcast continues, a single frequency in the endless night. The world remembers your voice, "+
			"even as the signal weakens. In the end, you were the last one speaking, the last one listening, "+
			"the last broadcast from a world that no longer answers. The air goes quiet. The transmission ends. "+
			"But somewhere, in the static, your voice remains.",
		callsign, snapshot.Survived(), snapshot.Lost())
}

// EndingType is the banded classification of a playthrough.
type EndingType string

const (
	EndingHero       EndingType = "hero"
	EndingSurvivor   EndingType = "survivor"
	EndingMartyr     EndingType = "martyr"
	EndingTragic     EndingType = "tragic"
	EndingMysterious EndingType = "mysterious"
)

// FinalStats summarizes a finished playthrough.
type FinalStats struct {
	PerformanceScore int
	SurvivalRate     float64
	HonestyScore     int
	CompassionScore  int
	BoldnessScore    int
	EndingType       EndingType
	TotalCallers     int
	BroadcastsMade   int
}

// ComputeFinalStats is a pure computation over the world's audit trail.
// Performance weights: survival 40%, each reputation score 20%. Ending
// bands use fixed strict thresholds.
func ComputeFinalStats(snapshot world.State) FinalStats {
	totalCallers := len(snapshot.CallerHistory)
	survivalRate := 0.0
	if totalCallers > 0 {
		survivalRate = float64(snapshot.Survived()) / float64(totalCallers) * 100
	}

	honesty := snapshot.PlayerReputation.Honesty
	compassion := snapshot.PlayerReputation.Compassion
	boldness := snapshot.PlayerReputation.Boldness

	score := int(math.Round(
		survivalRate*0.4 + float64(honesty)*0.2 + float64(compassion)*0.2 + float64(boldness)*0.2))

	var ending EndingType
	switch {
	case score > 80 && honesty > 70:
		ending = EndingHero
	case score > 60 && survivalRate > 50:
		ending = EndingSurvivor
	case compassion > 80 && survivalRate < 30:
		ending = EndingMartyr
	case score < 30:
		ending = EndingTragic
	default:
		ending = EndingMysterious
	}

	return FinalStats{
		PerformanceScore: score,
		SurvivalRate:     survivalRate,
		HonestyScore:     honesty,
		CompassionScore:  compassion,
		BoldnessScore:    boldness,
		EndingType:       ending,
		TotalCallers:     totalCallers,
		BroadcastsMade:   len(snapshot.BroadcastedClaims),
	}
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}
