// Package config loads runtime configuration from the environment,
// with optional .env support.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Defaults for the hosted model endpoint.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-3.1-8b-instruct:free"
)

// Config holds all environment-derived settings.
type Config struct {
	StravaClientID     string
	StravaClientSecret string
	StravaRedirectURI  string
	OpenRouterAPIKey   string
	AIBaseURL          string
	AIModel            string
	DBPath             string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load() // ignore error if no .env

	return &Config{
		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaRedirectURI:  envOr("STRAVA_REDIRECT_URI", "http://localhost:8080/callback"),
		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		AIBaseURL:          envOr("OPENROUTER_BASE_URL", DefaultBaseURL),
		AIModel:            envOr("OPENROUTER_MODEL", DefaultModel),
		DBPath:             envOr("RUNCOACH_DB", "runcoach.db"),
	}
}

// HasStravaCredentials reports whether both Strava client credentials are set.
func (c *Config) HasStravaCredentials() bool {
	return c.StravaClientID != "" && c.StravaClientSecret != ""
}

// AIConfigured reports whether an OpenRouter API key is available.
func (c *Config) AIConfigured() bool {
	return c.OpenRouterAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
