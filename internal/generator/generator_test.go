package generator_test

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/myrjola/lastbroadcast/internal/ai"
	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/generator"
	"github.com/myrjola/lastbroadcast/internal/testhelpers"
	"github.com/myrjola/lastbroadcast/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticClient returns a fixed payload, counting calls to assert on
// network-free behavior.
type staticClient struct {
	response string
	err      error
	calls    int
}

func (c *staticClient) Complete(context.Context, string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func newGenerator(client ai.Client) *generator.Generator {
	return generator.New(client, rand.New(rand.NewSource(1)), testhelpers.NewLogger(io.Discard))
}

func requireComplete(t *testing.T, c *caller.Caller) {
	t.Helper()
	require.NotNil(t, c)
	assert.NotEmpty(t, c.ID)
	assert.NotEmpty(t, c.Name)
	assert.NotZero(t, c.Age)
	assert.True(t, c.Archetype.Valid())
	assert.NotEmpty(t, c.Backstory)
	assert.NotEmpty(t, c.Motivation)
	assert.NotEmpty(t, c.Secret)
	assert.NotEmpty(t, c.EmotionalState)
	assert.NotEmpty(t, c.VoiceID)
	assert.NotEmpty(t, c.Portrait)
	assert.NotNil(t, c.ReferencesToPast)
}

func TestGenerateCallerOfflineEveryRound(t *testing.T) {
	g := newGenerator(ai.NewOfflineClient())

	for round := 1; round <= 7; round++ {
		c := g.GenerateCaller(context.Background(), *world.New(), round)
		requireComplete(t, c)
		assert.NotEqual(t, caller.TheWatcher, c.Archetype)
	}
}

func TestGenerateCallerParsesBackendPayload(t *testing.T) {
	g := newGenerator(&staticClient{response: "```json\n" + `{
		"id": "caller_7", "name": "Dmitri", "age": 52,
		"archetype": "government_agent",
		"backstory": "I work at the relay station north of the river.",
		"motivation": "contain information", "secret": "the quarantine failed",
		"trustworthiness": 0.3, "emotionalState": "official",
		"voiceId": "v1", "portrait": "uniform",
		"referencesToPast": ["the hospital fire"], "isLying": true
	}` + "\n```"})

	c := g.GenerateCaller(context.Background(), *world.New(), 4)
	requireComplete(t, c)
	assert.Equal(t, "Dmitri", c.Name)
	assert.Equal(t, caller.GovernmentAgent, c.Archetype)
	assert.True(t, c.IsLying)
	assert.Equal(t, []string{"the hospital fire"}, c.ReferencesToPast)
}

func TestGenerateCallerFallsBackOnError(t *testing.T) {
	g := newGenerator(&staticClient{err: errors.NewSentinel("backend down")})

	c := g.GenerateCaller(context.Background(), *world.New(), 2)
	requireComplete(t, c)
	assert.Equal(t, "Unknown Survivor", c.Name)
	assert.Equal(t, caller.WoundedSoldier, c.Archetype, "round 2 of the fallback cycle")
}

func TestGenerateCallerFallsBackOnMalformedJSON(t *testing.T) {
	g := newGenerator(&staticClient{response: "I am sorry, I cannot produce JSON today."})

	c := g.GenerateCaller(context.Background(), *world.New(), 3)
	requireComplete(t, c)
	assert.Equal(t, "Unknown Survivor", c.Name)
}

func TestGenerateCallerDemotesWatcher(t *testing.T) {
	g := newGenerator(&staticClient{response: `{"name": "???", "archetype": "the_watcher"}`})

	c := g.GenerateCaller(context.Background(), *world.New(), 3)
	assert.Equal(t, caller.CunningLiar, c.Archetype)
}

func TestGenerateResponse(t *testing.T) {
	c := caller.Fallback(1, rand.New(rand.NewSource(1)))

	t.Run("parses reply", func(t *testing.T) {
		g := newGenerator(&staticClient{response: `{"speech": "I told you, the bridge is gone.", "emotionalShift": "angry"}`})
		reply := g.GenerateResponse(context.Background(), c, "Where are you?", *world.New())
		assert.Equal(t, "I told you, the bridge is gone.", reply.Speech)
		assert.Equal(t, "angry", reply.EmotionalShift)
	})

	t.Run("falls back on error", func(t *testing.T) {
		g := newGenerator(&staticClient{err: errors.NewSentinel("backend down")})
		reply := g.GenerateResponse(context.Background(), c, "Where are you?", *world.New())
		assert.Equal(t, "The connection is bad... I... can you hear me?", reply.Speech)
		assert.Equal(t, "neutral", reply.EmotionalShift)
	})

	t.Run("falls back on empty speech", func(t *testing.T) {
		g := newGenerator(&staticClient{response: `{"emotionalShift": "angry"}`})
		reply := g.GenerateResponse(context.Background(), c, "Where are you?", *world.New())
		assert.Equal(t, "The connection is bad... I... can you hear me?", reply.Speech)
	})
}

func TestResolveChoice(t *testing.T) {
	c := caller.Fallback(1, rand.New(rand.NewSource(1)))

	t.Run("parses effects", func(t *testing.T) {
		g := newGenerator(&staticClient{response: `{
			"worldUpdates": {
				"cityCondition": "burning",
				"playerReputation": {"honesty": 62},
				"factions": {"survivors": {"morale": 55}}
			},
			"newsTickerLine": "Fires spread through the old town",
			"consequenceDescription": "The broadcast drew them out."
		}`})
		effects := g.ResolveChoice(context.Background(), world.ChoiceBroadcast, c, *world.New())
		assert.Equal(t, world.CityBurning, effects.WorldUpdates.CityCondition)
		require.NotNil(t, effects.WorldUpdates.PlayerReputation)
		require.NotNil(t, effects.WorldUpdates.PlayerReputation.Honesty)
		assert.Equal(t, 62, *effects.WorldUpdates.PlayerReputation.Honesty)
		require.NotNil(t, effects.WorldUpdates.Factions)
		require.NotNil(t, effects.WorldUpdates.Factions.Survivors)
		assert.Equal(t, "Fires spread through the old town", effects.NewsTickerLine)
	})

	t.Run("no-op deltas on error", func(t *testing.T) {
		g := newGenerator(&staticClient{err: errors.NewSentinel("backend down")})
		effects := g.ResolveChoice(context.Background(), world.ChoiceHelp, c, *world.New())
		assert.Empty(t, effects.WorldUpdates.CityCondition)
		assert.Nil(t, effects.WorldUpdates.Factions)
		assert.Nil(t, effects.WorldUpdates.PlayerReputation)
		assert.Equal(t, "Unknown consequences...", effects.NewsTickerLine)
		assert.Equal(t, "The effects of your decision remain unclear.", effects.ConsequenceDescription)
	})

	t.Run("missing lines get defaults", func(t *testing.T) {
		g := newGenerator(&staticClient{response: `{"worldUpdates": {}}`})
		effects := g.ResolveChoice(context.Background(), world.ChoiceExpose, c, *world.New())
		assert.Equal(t, "Breaking news from the city...", effects.NewsTickerLine)
		assert.Equal(t, "The consequences of your choice ripple through the city.", effects.ConsequenceDescription)
	})
}

func TestGenerateEndSummary(t *testing.T) {
	t.Run("returns summary", func(t *testing.T) {
		g := newGenerator(&staticClient{response: `{"summary": "The city listened.", "casualties": 3, "rating": "B"}`})
		summary, err := g.GenerateEndSummary(context.Background(), *world.New(), "Echo7")
		require.NoError(t, err)
		assert.Equal(t, "The city listened.", summary)
	})

	t.Run("errors surface to the director", func(t *testing.T) {
		g := newGenerator(&staticClient{err: errors.NewSentinel("backend down")})
		_, err := g.GenerateEndSummary(context.Background(), *world.New(), "Echo7")
		require.Error(t, err)
	})

	t.Run("empty summary is an error", func(t *testing.T) {
		g := newGenerator(&staticClient{response: `{"casualties": 0}`})
		_, err := g.GenerateEndSummary(context.Background(), *world.New(), "Echo7")
		require.Error(t, err)
	})
}
