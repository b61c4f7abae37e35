package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "APP_PORT", "MAX_SESSIONS", "AUDIO_ENABLED", "STAGES_FILE", "MIGRATE_ON_START"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Environment != "development" || cfg.IsProduction() {
		t.Errorf("expected development, got %q", cfg.Environment)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.MaxSessions != 500 {
		t.Errorf("expected 500 max sessions, got %d", cfg.MaxSessions)
	}
	if !cfg.AudioEnabled || !cfg.MigrateOnStart {
		t.Error("expected audio and migrations on by default")
	}
	if cfg.StagesFile != "" {
		t.Errorf("expected built-in stages by default, got %q", cfg.StagesFile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("MAX_SESSIONS", "12")
	t.Setenv("IDLE_TIMEOUT_SECONDS", "90")
	t.Setenv("AUDIO_ENABLED", "false")
	t.Setenv("STAGES_FILE", "/etc/notedrop/stages.yaml")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
	if cfg.MaxSessions != 12 || cfg.IdleTimeoutSeconds != 90 {
		t.Errorf("unexpected limits %d/%d", cfg.MaxSessions, cfg.IdleTimeoutSeconds)
	}
	if cfg.AudioEnabled {
		t.Error("expected audio disabled")
	}
	if cfg.StagesFile != "/etc/notedrop/stages.yaml" {
		t.Errorf("unexpected stages file %q", cfg.StagesFile)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "lots")
	t.Setenv("AUDIO_ENABLED", "maybe")

	cfg := Load()
	if cfg.MaxSessions != 500 {
		t.Errorf("expected default for malformed int, got %d", cfg.MaxSessions)
	}
	if !cfg.AudioEnabled {
		t.Error("expected default for malformed bool")
	}
}
