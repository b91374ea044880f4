// Package generator turns world state into caller personas, conversation
// replies, choice consequences, and the end-of-game summary by prompting
// the text backend with a JSON-schema contract. Every operation has a total
// fallback: a generation failure never surfaces to the player.
package generator

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"math/rand"
	"text/template"

	"github.com/myrjola/lastbroadcast/internal/ai"
	"github.com/myrjola/lastbroadcast/internal/caller"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/world"
)

//go:embed prompts/generate_caller.txt
var generateCallerPrompt string

//go:embed prompts/caller_response.txt
var callerResponsePrompt string

//go:embed prompts/resolve_choice.txt
var resolveChoicePrompt string

//go:embed prompts/end_summary.txt
var endSummaryPrompt string

// Reply is a caller's in-conversation response.
type Reply struct {
	Speech            string `json:"speech"`
	EmotionalShift    string `json:"emotionalShift"`
	NewSecretRevealed string `json:"newSecretRevealed,omitempty"`
}

// WorldUpdates are the numeric deltas a resolved choice applies to the
// world. Nil members are no-ops.
type WorldUpdates struct {
	CityCondition    world.CityCondition    `json:"cityCondition,omitempty"`
	Factions         *world.FactionsPatch   `json:"factions,omitempty"`
	PlayerReputation *world.ReputationPatch `json:"playerReputation,omitempty"`
}

// ChoiceEffects is the resolved consequence of a terminal choice.
type ChoiceEffects struct {
	WorldUpdates           WorldUpdates `json:"worldUpdates"`
	NewsTickerLine         string       `json:"newsTickerLine"`
	ConsequenceDescription string       `json:"consequenceDescription"`
}

// EndSummary is the backend's end-of-broadcast report.
type EndSummary struct {
	Summary      string `json:"summary"`
	Casualties   int    `json:"casualties"`
	Rating       string `json:"rating"`
	FinalMessage string `json:"finalMessage"`
}

// Generator produces narrative content with scripted fallbacks.
type Generator struct {
	client    ai.Client
	rng       *rand.Rand
	logger    *slog.Logger
	templates struct {
		generateCaller *template.Template
		callerResponse *template.Template
		resolveChoice  *template.Template
		endSummary     *template.Template
	}
}

// New wires a generator to a backend client. The rng drives fallback
// variation and must not be shared across goroutines.
func New(client ai.Client, rng *rand.Rand, logger *slog.Logger) *Generator {
	g := &Generator{
		client: client,
		rng:    rng,
		logger: logger.With("source", "Generator"),
	}
	g.templates.generateCaller = template.Must(template.New("generate_caller").Parse(generateCallerPrompt))
	g.templates.callerResponse = template.Must(template.New("caller_response").Parse(callerResponsePrompt))
	g.templates.resolveChoice = template.Must(template.New("resolve_choice").Parse(resolveChoicePrompt))
	g.templates.endSummary = template.Must(template.New("end_summary").Parse(endSummaryPrompt))
	return g
}

// GenerateCaller produces a structurally complete caller for the round.
// Backend or parse failures substitute the deterministic fallback persona.
func (g *Generator) GenerateCaller(ctx context.Context, snapshot world.State, round int) *caller.Caller {
	prompt, err := g.render(g.templates.generateCaller, struct {
		Round     int
		WorldJSON string
	}{Round: round, WorldJSON: marshalIndent(snapshot)})
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, "render caller prompt", errors.SlogError(err))
		return caller.Fallback(round, g.rng)
	}

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "caller generation failed, using fallback",
			slog.Int("round", round), errors.SlogError(err))
		return caller.Fallback(round, g.rng)
	}

	var c caller.Caller
	if err = json.Unmarshal([]byte(ai.CleanJSON(raw)), &c); err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "caller payload unparseable, using fallback",
			slog.Int("round", round), errors.SlogError(err))
		return caller.Fallback(round, g.rng)
	}

	// The watcher is reserved for the final round and is never taken from
	// the backend.
	if c.Archetype == caller.TheWatcher {
		c.Archetype = caller.CunningLiar
	}
	c.Enrich(g.rng)
	c.ApplyDefaults()
	return &c
}

// GenerateResponse produces the caller's reply to a player message.
func (g *Generator) GenerateResponse(ctx context.Context, c *caller.Caller, playerMessage string, _ world.State) Reply {
	fallback := Reply{
		Speech:         "The connection is bad... I... can you hear me?",
		EmotionalShift: "neutral",
	}

	prompt, err := g.render(g.templates.callerResponse, struct {
		*caller.Caller
		PlayerMessage string
	}{Caller: c, PlayerMessage: playerMessage})
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, "render response prompt", errors.SlogError(err))
		return fallback
	}

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "caller response failed, using fallback", errors.SlogError(err))
		return fallback
	}

	var reply Reply
	if err = json.Unmarshal([]byte(ai.CleanJSON(raw)), &reply); err != nil || reply.Speech == "" {
		return fallback
	}
	if reply.EmotionalShift == "" {
		reply.EmotionalShift = "neutral"
	}
	return reply
}

// ResolveChoice asks the backend for the world deltas and news line a
// terminal choice produces. On failure the deltas are a no-op and fixed
// lines are substituted; resolution never blocks the round.
func (g *Generator) ResolveChoice(ctx context.Context, choice world.Choice, c *caller.Caller, snapshot world.State) ChoiceEffects {
	fallback := ChoiceEffects{
		NewsTickerLine:         "Unknown consequences...",
		ConsequenceDescription: "The effects of your decision remain unclear.",
	}

	prompt, err := g.render(g.templates.resolveChoice, struct {
		WorldJSON  string
		CallerJSON string
		Choice     world.Choice
	}{WorldJSON: marshalIndent(snapshot), CallerJSON: marshal(c), Choice: choice})
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, "render choice prompt", errors.SlogError(err))
		return fallback
	}

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "choice resolution failed, using fallback",
			slog.String("choice", string(choice)), errors.SlogError(err))
		return fallback
	}

	var effects ChoiceEffects
	if err = json.Unmarshal([]byte(ai.CleanJSON(raw)), &effects); err != nil {
		return fallback
	}
	if effects.NewsTickerLine == "" {
		effects.NewsTickerLine = "Breaking news from the city..."
	}
	if effects.ConsequenceDescription == "" {
		effects.ConsequenceDescription = "The consequences of your choice ripple through the city."
	}
	return effects
}

// GenerateEndSummary requests the end-of-broadcast summary. Unlike the
// other operations it may fail; the narrative director owns the final
// scripted fallback.
func (g *Generator) GenerateEndSummary(ctx context.Context, snapshot world.State, callsign string) (string, error) {
	prompt, err := g.render(g.templates.endSummary, struct {
		WorldJSON string
		Callsign  string
	}{WorldJSON: marshalIndent(snapshot), Callsign: callsign})
	if err != nil {
		return "", errors.Wrap(err, "render end summary prompt")
	}

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return "", errors.Wrap(err, "generate end summary")
	}

	var summary EndSummary
	if err = json.Unmarshal([]byte(ai.CleanJSON(raw)), &summary); err != nil {
		return "", errors.Wrap(err, "parse end summary")
	}
	if summary.Summary == "" {
		return "", errors.New("empty end summary")
	}
	return summary.Summary, nil
}

func (g *Generator) render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "execute prompt template")
	}
	return buf.String(), nil
}

func marshal(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(out)
}

func marshalIndent(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
