package caller

import (
	_ "embed"
	"math/rand"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template holds the fixed pools a synthetic caller of one archetype is
// assembled from.
type Template struct {
	VoiceID         string   `yaml:"voice_id"`
	EmotionalStates []string `yaml:"emotional_states"`
	Motivations     []string `yaml:"motivations"`
	Secrets         []string `yaml:"secrets"`
}

var templates map[Archetype]Template

func init() {
	if err := yaml.Unmarshal(templatesYAML, &templates); err != nil {
		panic(err)
	}
}

// TemplateFor returns the archetype's template pools.
func TemplateFor(a Archetype) (Template, bool) {
	t, ok := templates[a]
	return t, ok
}

// Enrich fills empty pool-backed fields from the archetype's template, so a
// partial backend persona still sounds like its archetype instead of getting
// flat placeholder values.
func (c *Caller) Enrich(rng *rand.Rand) {
	t, ok := templates[c.Archetype]
	if !ok {
		return
	}

	if c.EmotionalState == "" {
		c.EmotionalState = pick(rng, t.EmotionalStates)
	}
	if c.Motivation == "" {
		c.Motivation = pick(rng, t.Motivations)
	}
	if c.Secret == "" {
		c.Secret = pick(rng, t.Secrets)
	}
	if c.VoiceID == "" {
		c.VoiceID = t.VoiceID
	}
	if c.Trustworthiness == 0 {
		c.Trustworthiness = 0.7
		if c.Archetype == CunningLiar {
			c.Trustworthiness = 0.2
		}
	}
}

func pick(rng *rand.Rand, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}
