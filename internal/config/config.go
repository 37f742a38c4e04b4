// Package config loads the harvester's YAML configuration, following a
// nested-struct-plus-embedded-example pattern.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// Config is the root harvester configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	HashStore HashStoreConfig `yaml:"hash_store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Query     QueryConfig     `yaml:"query"`
	Parsers   ParsersConfig   `yaml:"parsers"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
}

// StoreConfig configures the relational + vector store (C8).
type StoreConfig struct {
	Path   string       `yaml:"path"`
	Vector VectorConfig `yaml:"vector"`
}

type VectorConfig struct {
	Enabled       *bool  `yaml:"enabled"`
	ExtensionPath string `yaml:"extension_path"`
}

// HashStoreConfig configures the process-wide hash-dedup store (C11).
type HashStoreConfig struct {
	Dir string `yaml:"dir"`
}

// EmbeddingConfig configures the external embedding collaborator.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

// QueryConfig configures the C10 search engine, including hybrid weights
// and the conversation chunking window.
type QueryConfig struct {
	DefaultLimit int           `yaml:"default_limit"`
	Hybrid       HybridConfig  `yaml:"hybrid"`
	ChunkWindow  time.Duration `yaml:"chunk_window"`
}

type HybridConfig struct {
	VectorWeight    float64 `yaml:"vector_weight"`
	TextWeight      float64 `yaml:"text_weight"`
	VectorOverfetch int     `yaml:"vector_overfetch"`
}

// ParsersConfig toggles each per-app parser independently.
type ParsersConfig struct {
	Slack     *bool `yaml:"slack"`
	WhatsApp  *bool `yaml:"whatsapp"`
	Messenger *bool `yaml:"messenger"`
	Messages  *bool `yaml:"messages"`
	Mail      *bool `yaml:"mail"`
	Discord   *bool `yaml:"discord"`
	Teams     *bool `yaml:"teams"`
	Outlook   *bool `yaml:"outlook"`
	Notion    *bool `yaml:"notion"`
	Obsidian  *bool `yaml:"obsidian"`
	Calendar  *bool `yaml:"calendar"`
	Chrome    *bool `yaml:"chrome"`
	Zoom      *bool `yaml:"zoom"`
}

// Enabled reports whether a *bool toggle is on, defaulting to true when
// unset so every parser runs out of the box.
func Enabled(toggle *bool) bool {
	return toggle == nil || *toggle
}

// ScheduleConfig configures periodic re-traversal via robfig/cron.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// WithDefaults fills in zero-valued fields with the harvester's defaults.
func (c *Config) WithDefaults() *Config {
	if c.Query.DefaultLimit <= 0 {
		c.Query.DefaultLimit = 50
	}
	if c.Query.Hybrid.VectorWeight == 0 && c.Query.Hybrid.TextWeight == 0 {
		c.Query.Hybrid.VectorWeight = 0.5
		c.Query.Hybrid.TextWeight = 0.5
	}
	if c.Query.Hybrid.VectorOverfetch <= 0 {
		c.Query.Hybrid.VectorOverfetch = 2
	}
	if c.Query.ChunkWindow <= 0 {
		c.Query.ChunkWindow = 600 * time.Second
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	return c
}
