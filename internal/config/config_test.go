package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "")
	t.Setenv("STRAVA_CLIENT_SECRET", "")
	t.Setenv("STRAVA_REDIRECT_URI", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_BASE_URL", "")
	t.Setenv("OPENROUTER_MODEL", "")
	t.Setenv("RUNCOACH_DB", "")

	cfg := Load()

	if cfg.StravaRedirectURI != "http://localhost:8080/callback" {
		t.Errorf("unexpected default redirect URI: %q", cfg.StravaRedirectURI)
	}
	if cfg.AIBaseURL != DefaultBaseURL {
		t.Errorf("unexpected default base URL: %q", cfg.AIBaseURL)
	}
	if cfg.AIModel != DefaultModel {
		t.Errorf("unexpected default model: %q", cfg.AIModel)
	}
	if cfg.DBPath != "runcoach.db" {
		t.Errorf("unexpected default db path: %q", cfg.DBPath)
	}
	if cfg.HasStravaCredentials() {
		t.Error("expected no credentials with empty env")
	}
	if cfg.AIConfigured() {
		t.Error("expected AI unconfigured with empty env")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "12345")
	t.Setenv("STRAVA_CLIENT_SECRET", "topsecret")
	t.Setenv("STRAVA_REDIRECT_URI", "http://localhost:9999/cb")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("OPENROUTER_MODEL", "some/other-model")
	t.Setenv("RUNCOACH_DB", "/tmp/coach.db")

	cfg := Load()

	if !cfg.HasStravaCredentials() {
		t.Error("expected credentials to be detected")
	}
	if !cfg.AIConfigured() {
		t.Error("expected AI to be configured")
	}
	if cfg.StravaRedirectURI != "http://localhost:9999/cb" {
		t.Errorf("unexpected redirect URI: %q", cfg.StravaRedirectURI)
	}
	if cfg.AIModel != "some/other-model" {
		t.Errorf("unexpected model: %q", cfg.AIModel)
	}
	if cfg.DBPath != "/tmp/coach.db" {
		t.Errorf("unexpected db path: %q", cfg.DBPath)
	}
}
