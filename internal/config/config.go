// Package config loads the clusterops YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/clusterops/internal/domain"
	"github.com/kailas-cloud/clusterops/internal/model"
)

// Config holds the clusterops configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Emulator  EmulatorConfig  `yaml:"emulator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig holds the hosted service connection settings.
type APIConfig struct {
	Project string `yaml:"project"`
	APIKey  string `yaml:"api_key"`
	Region  string `yaml:"region"`
	// BaseURL overrides the region URL, e.g. for the emulator.
	BaseURL      string  `yaml:"base_url"`
	DashboardURL string  `yaml:"dashboard_url"`
	Retries      int     `yaml:"retries"`
	RetryWaitSec float64 `yaml:"retry_wait_sec"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	PageSize     int     `yaml:"page_size"`
	BatchSize    int     `yaml:"batch_size"`
}

// RetryWait returns the wait between retries.
func (c APIConfig) RetryWait() time.Duration {
	return time.Duration(c.RetryWaitSec * float64(time.Second))
}

// Timeout returns the per-request timeout.
func (c APIConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

// ClusterConfig holds clustering defaults.
type ClusterConfig struct {
	Model        string         `yaml:"model"`
	Alias        string         `yaml:"alias"`
	OutlierValue *int           `yaml:"outlier_value"`
	OutlierLabel string         `yaml:"outlier_label"`
	Params       map[string]any `yaml:"params"`
}

// EmbeddingConfig holds the vectorize embedding provider.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Instruction string `yaml:"instruction"`
	MaxBatch    int    `yaml:"max_batch"`
}

// CacheConfig holds the Redis embedding cache.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TTL returns the cache entry expiry.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// EmulatorConfig holds the local emulator server settings.
type EmulatorConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// APIKeys are accepted "<project>:<api_key>" credentials; empty disables auth.
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads config/<env>.yaml.
func Load(env string) (Config, error) {
	return LoadFile(filepath.Join("config", env+".yaml"))
}

// LoadFile reads, expands, strictly decodes, defaults and validates a config file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data. Unknown keys are rejected with
// domain.ErrUnknownOption.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return Config{}, fmt.Errorf("%w: %v", domain.ErrUnknownOption, err)
		}
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
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
	if c.API.Region == "" {
		c.API.Region = "us-east-1"
	}
	if c.API.Retries <= 0 {
		c.API.Retries = 3
	}
	if c.API.RetryWaitSec <= 0 {
		c.API.RetryWaitSec = 2
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 30
	}
	if c.API.PageSize <= 0 {
		c.API.PageSize = 100
	}
	if c.API.BatchSize <= 0 {
		c.API.BatchSize = 100
	}
	if c.Cluster.Model == "" {
		c.Cluster.Model = model.KMeansName
	}
	if c.Cluster.OutlierLabel == "" {
		c.Cluster.OutlierLabel = "outlier"
	}
	if c.Cluster.OutlierValue == nil {
		v := -1
		c.Cluster.OutlierValue = &v
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.MaxBatch <= 0 {
		c.Embedding.MaxBatch = 256
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Emulator.Port <= 0 {
		c.Emulator.Port = 8777
	}
	if c.Emulator.ReadTimeoutSec <= 0 {
		c.Emulator.ReadTimeoutSec = 10
	}
	if c.Emulator.WriteTimeoutSec <= 0 {
		c.Emulator.WriteTimeoutSec = 30
	}
	if c.Emulator.ShutdownSec <= 0 {
		c.Emulator.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness. Credentials are checked
// when a client is built, so an emulator-only config is valid without them.
func (c *Config) Validate() error {
	if c.API.PageSize > 10000 {
		return fmt.Errorf("api.page_size must be at most 10000, got %d", c.API.PageSize)
	}
	if c.Emulator.Port > 65535 {
		return fmt.Errorf("emulator.port must be between 1 and 65535, got %d", c.Emulator.Port)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return errors.New("cache.addrs is required when cache is enabled")
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}
	for _, cred := range c.Emulator.APIKeys {
		if project, key, ok := strings.Cut(cred, ":"); !ok || project == "" || key == "" {
			return fmt.Errorf("emulator.api_keys entries must be \"<project>:<api_key>\", got %q", cred)
		}
	}
	if _, err := model.ParseParams(c.Cluster.Params); err != nil {
		return fmt.Errorf("cluster.params: %w", err)
	}
	return nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
