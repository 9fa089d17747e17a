package config

import (
	"os"
	"testing"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "MIGRATION_WS_URL", "MIN_SCORE_THRESHOLD", "MAX_DEV_HOLDINGS",
		"MIN_HOLDERS", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
		"PAIR_INDEX_BASE_URL", "PAIR_INDEX_API_KEY", "PAIR_INDEX_API_KEY_2",
	}
	for _, k := range keys {
		os.Unsetenv(k)
	}
}

func TestLoadAppliesDefaultsWithNoFileOrEnv(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("HTTP.Port = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.Scoring.MinScore != 60 {
		t.Errorf("Scoring.MinScore = %d, want 60", cfg.Scoring.MinScore)
	}
	if cfg.Providers.PairIndex.BaseURL != "" {
		t.Errorf("PairIndex.BaseURL = %q, want empty", cfg.Providers.PairIndex.BaseURL)
	}
}

func TestLoadEnvOverridesWinOverDefaults(t *testing.T) {
	clearProviderEnv(t)
	os.Setenv("PORT", "9090")
	os.Setenv("MIN_SCORE_THRESHOLD", "75")
	os.Setenv("PAIR_INDEX_BASE_URL", "https://pairs.example")
	os.Setenv("PAIR_INDEX_API_KEY", "primary")
	os.Setenv("PAIR_INDEX_API_KEY_2", "fallback")
	defer clearProviderEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Port != "9090" {
		t.Errorf("HTTP.Port = %q, want 9090", cfg.HTTP.Port)
	}
	if cfg.Scoring.MinScore != 75 {
		t.Errorf("Scoring.MinScore = %d, want 75", cfg.Scoring.MinScore)
	}
	if cfg.Providers.PairIndex.BaseURL != "https://pairs.example" {
		t.Errorf("PairIndex.BaseURL = %q, want https://pairs.example", cfg.Providers.PairIndex.BaseURL)
	}
	if got, want := cfg.Providers.PairIndex.Keys, []string{"primary", "fallback"}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("PairIndex.Keys = %v, want %v", got, want)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	clearProviderEnv(t)
	if _, err := Load("/nonexistent/path/config.yaml"); err != nil {
		t.Fatalf("Load() with missing file error = %v, want nil", err)
	}
}

func TestLoadEnvFileDoesNotOverrideExistingEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/.env"
	if err := os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	os.Setenv("LOG_LEVEL", "warn")
	defer os.Unsetenv("LOG_LEVEL")

	LoadEnvFile(path)

	if got := os.Getenv("LOG_LEVEL"); got != "warn" {
		t.Errorf("LOG_LEVEL = %q, want warn (pre-existing value preserved)", got)
	}
}
