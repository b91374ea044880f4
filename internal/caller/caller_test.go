package caller_test

import (
	"math/rand"
	"testing"

	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaultsFillsEveryField(t *testing.T) {
	var c caller.Caller
	c.ApplyDefaults()

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Unknown", c.Name)
	assert.Equal(t, 30, c.Age)
	assert.Equal(t, caller.ScaredKid, c.Archetype)
	assert.NotEmpty(t, c.Backstory)
	assert.NotEmpty(t, c.Motivation)
	assert.NotEmpty(t, c.Secret)
	assert.InDelta(t, 0.5, c.Trustworthiness, 0.001)
	assert.Equal(t, "neutral", c.EmotionalState)
	assert.NotEmpty(t, c.VoiceID)
	assert.Equal(t, "silhouette", c.Portrait)
	assert.NotNil(t, c.ReferencesToPast)
}

func TestApplyDefaultsKeepsExistingValues(t *testing.T) {
	c := caller.Caller{
		Name:            "Maria",
		Age:             41,
		Archetype:       caller.GovernmentAgent,
		Trustworthiness: 0.9,
		EmotionalState:  "evasive",
	}
	c.ApplyDefaults()

	assert.Equal(t, "Maria", c.Name)
	assert.Equal(t, 41, c.Age)
	assert.Equal(t, caller.GovernmentAgent, c.Archetype)
	assert.InDelta(t, 0.9, c.Trustworthiness, 0.001)
	assert.Equal(t, "evasive", c.EmotionalState)
}

func TestApplyDefaultsRejectsUnknownArchetype(t *testing.T) {
	c := caller.Caller{Archetype: "radio_ghost"}
	c.ApplyDefaults()
	assert.Equal(t, caller.ScaredKid, c.Archetype)
}

func TestFallbackCyclesArchetypes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	want := map[int]caller.Archetype{
		1: caller.DesperateParent,
		2: caller.WoundedSoldier,
		3: caller.ScaredKid,
		4: caller.DesperateParent,
		5: caller.WoundedSoldier,
		6: caller.ScaredKid,
	}
	for round, archetype := range want {
		c := caller.Fallback(round, rng)
		assert.Equal(t, archetype, c.Archetype, "round %d", round)
		assert.True(t, c.Archetype.Valid())
		assert.NotEmpty(t, c.Backstory)
		assert.False(t, c.IsLying)
		assert.GreaterOrEqual(t, c.Age, 25)
	}
}

func TestTemplatesLoaded(t *testing.T) {
	for _, archetype := range caller.Archetypes {
		tmpl, ok := caller.TemplateFor(archetype)
		require.True(t, ok, "missing template for %s", archetype)
		assert.NotEmpty(t, tmpl.VoiceID)
		assert.NotEmpty(t, tmpl.EmotionalStates)
		assert.NotEmpty(t, tmpl.Motivations)
		assert.NotEmpty(t, tmpl.Secrets)
	}
}

func TestEnrich(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	c := caller.Caller{Archetype: caller.CunningLiar}
	c.Enrich(rng)

	assert.InDelta(t, 0.2, c.Trustworthiness, 0.001)
	tmpl, _ := caller.TemplateFor(caller.CunningLiar)
	assert.Contains(t, tmpl.EmotionalStates, c.EmotionalState)
	assert.Contains(t, tmpl.Motivations, c.Motivation)
	assert.Contains(t, tmpl.Secrets, c.Secret)
	assert.Equal(t, tmpl.VoiceID, c.VoiceID)
}

func TestEnrichKeepsBackendValues(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	c := caller.Caller{
		Archetype:       caller.ScaredKid,
		EmotionalState:  "brave",
		Trustworthiness: 0.4,
		VoiceID:         "custom",
	}
	c.Enrich(rng)

	assert.Equal(t, "brave", c.EmotionalState)
	assert.InDelta(t, 0.4, c.Trustworthiness, 0.001)
	assert.Equal(t, "custom", c.VoiceID)

	tmpl, _ := caller.TemplateFor(caller.ScaredKid)
	assert.Contains(t, tmpl.Motivations, c.Motivation)
	assert.Contains(t, tmpl.Secrets, c.Secret)
}
