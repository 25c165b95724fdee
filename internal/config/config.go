// Package config loads the sheetsearch API configuration from YAML files with
// environment variable expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the sheetsearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Rerank    RerankConfig    `yaml:"rerank"`
	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds sheet store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout settings for the sheet store.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	IndexName string `yaml:"index_name"`
	AliasKey  string `yaml:"alias_key"`
}

// EmbeddingConfig holds embedding provider settings. An empty api_key
// disables the semantic adapter.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Provider    string `yaml:"provider"`
	QueryPrefix string `yaml:"query_prefix"`
	CacheTTLHr  int    `yaml:"cache_ttl_hr"`
}

// RerankStageConfig holds one rerank endpoint. An empty api_key makes the
// stage unavailable, which the cascade skips.
type RerankStageConfig struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// RerankConfig holds the reranker cascade settings.
type RerankConfig struct {
	Stages     []RerankStageConfig `yaml:"stages"`
	TopN       int                 `yaml:"top_n"`
	TimeoutSec int                 `yaml:"timeout_sec"`
}

// LLMConfig holds the optional clarification reply generator. An empty
// api_key disables it; canned templates are used instead.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// SearchConfig holds pipeline tuning knobs.
type SearchConfig struct {
	AdapterLimit        int     `yaml:"adapter_limit"`
	PoolLimit           int     `yaml:"pool_limit"`
	FuzzyMinSimilarity  float64 `yaml:"fuzzy_min_similarity"`
	VectorMinSimilarity float64 `yaml:"vector_min_similarity"`
	AdapterTimeoutSec   int     `yaml:"adapter_timeout_sec"`
	DisplayCount        int     `yaml:"display_count"`
	CacheTTLSec         int     `yaml:"cache_ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "sheetsearch:"
	}
	if c.Storage.IndexName == "" {
		c.Storage.IndexName = "idx:sheets"
	}
	if c.Storage.AliasKey == "" {
		c.Storage.AliasKey = c.Storage.KeyPrefix + "aliases"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.CacheTTLHr <= 0 {
		c.Embedding.CacheTTLHr = 24 * 7
	}
	if c.Rerank.TopN <= 0 {
		c.Rerank.TopN = 20
	}
	if c.Rerank.TimeoutSec <= 0 {
		c.Rerank.TimeoutSec = 10
	}
	if c.Search.AdapterLimit <= 0 {
		c.Search.AdapterLimit = 20
	}
	if c.Search.PoolLimit <= 0 {
		c.Search.PoolLimit = 500
	}
	if c.Search.FuzzyMinSimilarity <= 0 {
		c.Search.FuzzyMinSimilarity = 0.6
	}
	if c.Search.VectorMinSimilarity <= 0 {
		c.Search.VectorMinSimilarity = 0.75
	}
	if c.Search.AdapterTimeoutSec <= 0 {
		c.Search.AdapterTimeoutSec = 3
	}
	if c.Search.DisplayCount <= 0 {
		c.Search.DisplayCount = 5
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.FuzzyMinSimilarity < 0 || c.Search.FuzzyMinSimilarity > 1 {
		return fmt.Errorf("search.fuzzy_min_similarity must be in [0,1], got %v", c.Search.FuzzyMinSimilarity)
	}
	if c.Search.VectorMinSimilarity < 0 || c.Search.VectorMinSimilarity > 1 {
		return fmt.Errorf("search.vector_min_similarity must be in [0,1], got %v", c.Search.VectorMinSimilarity)
	}
	for i, stage := range c.Rerank.Stages {
		if stage.Name == "" {
			return fmt.Errorf("rerank.stages[%d].name is required", i)
		}
		if stage.APIKey != "" && stage.Endpoint == "" {
			return fmt.Errorf("rerank.stages[%d].endpoint is required when api_key is set", i)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
