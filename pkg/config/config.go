// Package config loads process configuration: an optional YAML file with
// nested per-concern sections, overlaid with environment variables
// (environment wins).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration tree for the server.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	Migration MigrationConfig `yaml:"migration"`
	Providers ProvidersConfig `yaml:"providers"`
	Scoring   ScoringConfig   `yaml:"scoring"`
}

// LoggingConfig controls pkg/logger construction.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|console
	Output string `yaml:"output"` // stdout|stderr|file path
}

// HTTPConfig controls the JSON API / SSE gateway listener.
type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // drain window for in-flight enrichments
}

// MigrationConfig controls the upstream Migration Source WebSocket client.
type MigrationConfig struct {
	WSURL string `yaml:"ws_url"`
}

// CredentialSet is a provider's base URL plus an ordered primary+fallback
// credential list. Rotation advances through Keys on 401/429.
type CredentialSet struct {
	BaseURL string   `yaml:"base_url"`
	Keys    []string `yaml:"keys"`
}

// ProvidersConfig groups per-provider credentials.
type ProvidersConfig struct {
	GraduatedTokenIndex CredentialSet `yaml:"graduated_token_index"`
	PairIndex           CredentialSet `yaml:"pair_index"`
	HolderRegistry      CredentialSet `yaml:"holder_registry"`
	Swaps               CredentialSet `yaml:"swaps"`
	ChainRPC            CredentialSet `yaml:"chain_rpc"`
}

// ScoringConfig mirrors internal/scoring.Config's shape for the purpose of
// loading it from YAML/env before constructing the immutable scoring.Config
// value.
type ScoringConfig struct {
	MinScore           int     `yaml:"min_score"`
	MaxDevHoldings     float64 `yaml:"max_dev_holdings"`
	MinHolders         int     `yaml:"min_holders"`
	MaxTop10           float64 `yaml:"max_top10"`
	MinUniqueRatio     float64 `yaml:"min_unique_ratio"`
	MinTokenAgeHours   float64 `yaml:"min_token_age_hours"`
	MinLiquidityRatio  float64 `yaml:"min_liquidity_ratio"`
	MaxPriceVolatility float64 `yaml:"max_price_volatility"`
}

// Defaults returns the baseline configuration used when no file and no
// environment overrides are present.
func Defaults() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console", Output: "stdout"},
		HTTP: HTTPConfig{
			Port:            "8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Migration: MigrationConfig{
			WSURL: "wss://pumpportal.fun/api/data",
		},
		Scoring: ScoringConfig{
			MinScore:           60,
			MaxDevHoldings:     0.15,
			MinHolders:         50,
			MaxTop10:           0.30,
			MinUniqueRatio:     0.60,
			MinTokenAgeHours:   1,
			MinLiquidityRatio:  0.05,
			MaxPriceVolatility: 50,
		},
	}
}

// Load reads path as YAML over the defaults, then applies environment
// overrides. A missing file is not an error; the defaults plus env are used.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadEnvFile best-effort loads KEY=VALUE pairs from a .env file into the
// process environment, never overriding a variable already set.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Port = v
	}
	if v := os.Getenv("MIGRATION_WS_URL"); v != "" {
		cfg.Migration.WSURL = v
	}
	if v := os.Getenv("MIN_SCORE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.MinScore = n
		}
	}
	if v := os.Getenv("MAX_DEV_HOLDINGS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.MaxDevHoldings = f
		}
	}
	if v := os.Getenv("MIN_HOLDERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.MinHolders = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}

	cfg.Providers.GraduatedTokenIndex = providerFromEnv("GRADUATED_INDEX")
	cfg.Providers.PairIndex = providerFromEnv("PAIR_INDEX")
	cfg.Providers.HolderRegistry = providerFromEnv("HOLDER_REGISTRY")
	cfg.Providers.Swaps = providerFromEnv("SWAPS")
	cfg.Providers.ChainRPC = providerFromEnv("CHAIN_RPC")
}

// providerFromEnv reads <prefix>_BASE_URL (or, for chain_rpc, the
// historically separate CHAIN_RPC_ENDPOINT name) and its credential
// rotation into a CredentialSet. An empty BaseURL means the provider was
// never configured; callers treat that as "don't build this client".
func providerFromEnv(prefix string) CredentialSet {
	baseURL := os.Getenv(prefix + "_BASE_URL")
	if prefix == "CHAIN_RPC" && baseURL == "" {
		baseURL = os.Getenv("CHAIN_RPC_ENDPOINT")
	}
	return CredentialSet{
		BaseURL: baseURL,
		Keys:    credentialsFromEnv(prefix + "_API_KEY"),
	}
}

// credentialsFromEnv collects base, base_2, base_3 into an ordered
// key-rotation list, skipping unset ones.
func credentialsFromEnv(base string) []string {
	var keys []string
	if v := os.Getenv(base); v != "" {
		keys = append(keys, v)
	}
	if v := os.Getenv(base + "_2"); v != "" {
		keys = append(keys, v)
	}
	if v := os.Getenv(base + "_3"); v != "" {
		keys = append(keys, v)
	}
	return keys
}
