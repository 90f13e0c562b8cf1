package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/clusterops/internal/domain"
)

const sampleYAML = `
api:
  project: ${TEST_CLUSTEROPS_PROJECT}
  api_key: ${TEST_CLUSTEROPS_KEY:-fallback-key}
  base_url: http://localhost:8777
  retry_wait_sec: 0.5
cluster:
  model: kmeans
  alias: products
  outlier_value: -2
  params:
    n_clusters: 4
embedding:
  model: text-embedding-3-small
  dimensions: 256
cache:
  enabled: true
  addrs: ["localhost:6379"]
  ttl_sec: 3600
emulator:
  api_keys: ["proj:secret"]
logging:
  level: debug
`

func TestParse_Full(t *testing.T) {
	t.Setenv("TEST_CLUSTEROPS_PROJECT", "proj")
	t.Setenv("TEST_CLUSTEROPS_KEY", "")

	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Project != "proj" || cfg.API.APIKey != "fallback-key" {
		t.Errorf("env expansion: project=%q key=%q", cfg.API.Project, cfg.API.APIKey)
	}
	if cfg.API.RetryWait() != 500*time.Millisecond {
		t.Errorf("retry wait = %v", cfg.API.RetryWait())
	}
	if *cfg.Cluster.OutlierValue != -2 || cfg.Cluster.OutlierLabel != "outlier" {
		t.Errorf("outlier = %d %q", *cfg.Cluster.OutlierValue, cfg.Cluster.OutlierLabel)
	}
	if cfg.Cluster.Params["n_clusters"] != 4 {
		t.Errorf("params = %v", cfg.Cluster.Params)
	}
	if cfg.Cache.TTL() != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestParse_UnknownKey(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"top level", "clustering:\n  model: kmeans\n"},
		{"nested", "api:\n  projekt: p\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if !errors.Is(err, domain.ErrUnknownOption) {
				t.Fatalf("expected ErrUnknownOption, got %v", err)
			}
		})
	}
}

func TestParse_UnknownModelParam(t *testing.T) {
	_, err := Parse([]byte("cluster:\n  params:\n    n_init: 3\n"))
	if !errors.Is(err, domain.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Retries != 3 || cfg.Cluster.Model != "kmeans" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"cache without addrs", func(c *Config) { c.Cache.Enabled = true }, "cache.addrs"},
		{"negative ttl", func(c *Config) { c.Cache.TTLSec = -1 }, "ttl_sec"},
		{"port out of range", func(c *Config) { c.Emulator.Port = 70000 }, "emulator.port"},
		{"bad credential", func(c *Config) { c.Emulator.APIKeys = []string{"nokey"} }, "api_keys"},
		{"page size", func(c *Config) { c.API.PageSize = 20000 }, "page_size"},
		{"bad n_clusters", func(c *Config) { c.Cluster.Params = map[string]any{"n_clusters": 0} }, "n_clusters"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.API.Region != "us-east-1" {
		t.Errorf("expected region us-east-1, got %q", cfg.API.Region)
	}
	if cfg.API.PageSize != 100 || cfg.API.BatchSize != 100 {
		t.Errorf("expected page/batch 100, got %d/%d", cfg.API.PageSize, cfg.API.BatchSize)
	}
	if cfg.API.Timeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.API.Timeout())
	}
	if *cfg.Cluster.OutlierValue != -1 {
		t.Errorf("expected outlier -1, got %d", *cfg.Cluster.OutlierValue)
	}
	if cfg.Emulator.Port != 8777 {
		t.Errorf("expected emulator port 8777, got %d", cfg.Emulator.Port)
	}
	if cfg.Embedding.MaxBatch != 256 {
		t.Errorf("expected max batch 256, got %d", cfg.Embedding.MaxBatch)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0
	cfg := Config{
		API:     APIConfig{Retries: 7, PageSize: 10},
		Cluster: ClusterConfig{Model: "custom", OutlierValue: &zero},
	}
	cfg.ApplyDefaults()

	if cfg.API.Retries != 7 || cfg.API.PageSize != 10 {
		t.Errorf("api overridden: %+v", cfg.API)
	}
	if cfg.Cluster.Model != "custom" || *cfg.Cluster.OutlierValue != 0 {
		t.Errorf("cluster overridden: %+v", cfg.Cluster)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	if err := os.WriteFile(path, []byte("api:\n  project: p\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Project != "p" {
		t.Errorf("project = %q", cfg.API.Project)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
