package cmd

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds defaults taken from the environment. Explicit flags and
// run spec values take precedence.
type EnvConfig struct {
	LogLevel     string `env:"SCINT_SIM_LOG_LEVEL"     envDefault:"warn"`
	Seed         int64  `env:"SCINT_SIM_SEED"          envDefault:"42"`
	OTelEndpoint string `env:"SCINT_SIM_OTEL_ENDPOINT"`
}

// loadEnv parses EnvConfig from the process environment.
func loadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
