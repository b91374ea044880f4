package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// OfflineClient stands in for the backend when no credentials are
// configured. It performs no I/O and always succeeds with a payload that
// parses as a structurally complete caller; the other schemas degrade
// through their callers' fallbacks, matching a degraded real backend.
type OfflineClient struct{}

func NewOfflineClient() *OfflineClient {
	return &OfflineClient{}
}

func (c *OfflineClient) Complete(_ context.Context, _ string) (string, error) {
	payload := map[string]any{
		"id":               fmt.Sprintf("mock_%d", time.Now().UnixMilli()),
		"name":             "Sarah",
		"age":              28,
		"archetype":        "scared_kid",
		"backstory":        "I was at the library when everything happened. Now I am alone and trying to find my way.",
		"motivation":       "I need to find my family. I heard they might be at the old hospital.",
		"secret":           "I saw something terrible happen at the hospital but I am too scared to say what.",
		"trustworthiness":  0.7,
		"emotionalState":   "scared",
		"voiceId":          "EXAVITQu4vr4xnSDxMaL",
		"portrait":         "silhouette",
		"referencesToPast": []string{},
		"isLying":          false,
	}
	out, err := json.Marshal(payload)
	if err != nil {
		// Marshalling a static map cannot fail; keep the contract total anyway.
		return "{}", nil
	}
	return string(out), nil
}
