// Package config holds the application configuration, populated from the
// environment.
package config

import (
	"os"

	"github.com/myrjola/lastbroadcast/internal/envstruct"
	"github.com/myrjola/lastbroadcast/internal/errors"
)

// Config is filled from environment variables. An empty MISTRAL_API_KEY
// selects offline mode, which plays a fully scripted session without any
// network calls.
type Config struct {
	MistralAPIKey  string `env:"MISTRAL_API_KEY" envDefault:""`
	MistralBaseURL string `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai/v1"`
	MistralModel   string `env:"MISTRAL_MODEL" envDefault:"mistral-large-latest"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	// PprofPort enables the loopback pprof server when set, e.g. ":6060".
	PprofPort string `env:"PPROF_PORT" envDefault:""`
}

// Load populates the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return nil, errors.Wrap(err, "populate config")
	}
	return &cfg, nil
}
