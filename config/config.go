// Package config provides configuration loading and management for semprov.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete semprov configuration
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Dealer   DealerConfig   `yaml:"dealer"`
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	State    StateConfig    `yaml:"state"`
	PostSale PostSaleConfig `yaml:"post_sale"`
	Rewrite  RewriteConfig  `yaml:"rewrite"`
	NATS     NATSConfig     `yaml:"nats"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// ProjectConfig names the project and the base of every minted URI
type ProjectConfig struct {
	// Name scopes project URIs (e.g., "knoedler")
	Name string `yaml:"name"`
	// URIBase prefixes every URI (default: tag:getty.edu,2019:digital:pipeline:)
	URIBase string `yaml:"uri_base"`
}

// DealerConfig identifies the dealer whose stock books are processed
type DealerConfig struct {
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
	ULAN      string `yaml:"ulan"`
}

// InputConfig locates the normalized records and the identity files
type InputConfig struct {
	// Root is the directory patterns are resolved against
	Root string `yaml:"root"`
	// Patterns are doublestar globs selecting record files
	Patterns []string `yaml:"patterns"`
	// ObjectsSame lists groups of identifiers naming the same object
	ObjectsSame string `yaml:"objects_same"`
	// ObjectsDifferent lists identifiers that must stay distinct
	ObjectsDifferent string `yaml:"objects_different"`
	// Problematic lists records flagged by the data editors
	Problematic string `yaml:"problematic"`
	// Limit caps records read per file (0 = no limit)
	Limit int `yaml:"limit"`
}

// OutputConfig selects where exported documents go
type OutputConfig struct {
	// Backend is "fs" or "s3"
	Backend string `yaml:"backend"`
	// Dir is the output directory for the fs backend
	Dir string `yaml:"dir"`
	// Format is "jsonld" (one file per document) or "jsonl"
	Format string `yaml:"format"`
	// Workers is the number of concurrent writes
	Workers int      `yaml:"workers"`
	S3      S3Config `yaml:"s3"`
}

// S3Config configures the s3 output backend
type S3Config struct {
	// Endpoint is an S3-compatible endpoint (empty = AWS)
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// StateConfig locates the state carried between runs
type StateConfig struct {
	// Graph is the post-sale graph state (.json, .json.zst or .db)
	Graph string `yaml:"graph"`
	// Map is the rewrite map file for the file map backend
	Map string `yaml:"map"`
	// MapBackend is "file" or "kv"
	MapBackend string `yaml:"map_backend"`
	// KVBucket is the JetStream bucket for the kv map backend
	KVBucket string `yaml:"kv_bucket"`
}

// PostSaleConfig configures post-sale graph resolution
type PostSaleConfig struct {
	// UnknownLot is "skip" or "error"
	UnknownLot string `yaml:"unknown_lot"`
	// DOT is where the component dump is written (empty = none)
	DOT string `yaml:"dot"`
	// DOTMinSize is the smallest component included in the dump
	DOTMinSize int `yaml:"dot_min_size"`
	// DOTLimit caps the number of components in the dump
	DOTLimit int `yaml:"dot_limit"`
}

// RewriteConfig configures the URI rewrite pass
type RewriteConfig struct {
	Workers int `yaml:"workers"`
	// MinPrefix is how long the keys' common prefix must be to skip documents
	MinPrefix int `yaml:"min_prefix"`
	// Patterns select the documents to rewrite
	Patterns []string `yaml:"patterns"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
	// StoreDir holds embedded JetStream data
	StoreDir string `yaml:"store_dir"`
}

// MetricsConfig configures the run counters export
type MetricsConfig struct {
	// Textfile is a Prometheus textfile written at exit (empty = none)
	Textfile string `yaml:"textfile"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level"`
	// Format is "text" or "json"
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:    "knoedler",
			URIBase: "tag:getty.edu,2019:digital:pipeline:",
		},
		Dealer: DealerConfig{
			Name:      "M. Knoedler & Co.",
			ShortName: "Knoedler",
			ULAN:      "500304270",
		},
		Input: InputConfig{
			Root:     "data",
			Patterns: []string{"**/*.jsonl", "**/*.jsonl.zst"},
		},
		Output: OutputConfig{
			Backend: "fs",
			Dir:     "output",
			Format:  "jsonld",
			Workers: 8,
		},
		State: StateConfig{
			Graph:      "state/postsale.json.zst",
			Map:        "state/rewrite-map.json",
			MapBackend: "file",
			KVBucket:   "SEMPROV_REWRITE_MAP",
		},
		PostSale: PostSaleConfig{
			UnknownLot: "skip",
			DOTMinSize: 3,
			DOTLimit:   50,
		},
		Rewrite: RewriteConfig{
			Workers:   8,
			MinPrefix: 20,
			Patterns:  []string{"**/*.json", "**/*.jsonl"},
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", field, allowed, value)
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("project.name is required")
	}
	if len(c.Input.Patterns) == 0 {
		return fmt.Errorf("input.patterns is required")
	}
	if c.Input.Limit < 0 {
		return fmt.Errorf("input.limit must not be negative")
	}
	if err := oneOf("output.backend", c.Output.Backend, "fs", "s3"); err != nil {
		return err
	}
	if c.Output.Backend == "fs" && c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required for the fs backend")
	}
	if c.Output.Backend == "s3" && c.Output.S3.Bucket == "" {
		return fmt.Errorf("output.s3.bucket is required for the s3 backend")
	}
	if err := oneOf("output.format", c.Output.Format, "jsonld", "jsonl"); err != nil {
		return err
	}
	if err := oneOf("state.map_backend", c.State.MapBackend, "file", "kv"); err != nil {
		return err
	}
	if err := oneOf("post_sale.unknown_lot", c.PostSale.UnknownLot, "skip", "error"); err != nil {
		return err
	}
	if c.Output.Workers < 0 || c.Rewrite.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return oneOf("log.format", c.Log.Format, "text", "json")
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	mergeString(&c.Project.Name, other.Project.Name)
	mergeString(&c.Project.URIBase, other.Project.URIBase)

	mergeString(&c.Dealer.Name, other.Dealer.Name)
	mergeString(&c.Dealer.ShortName, other.Dealer.ShortName)
	mergeString(&c.Dealer.ULAN, other.Dealer.ULAN)

	// Input
	mergeString(&c.Input.Root, other.Input.Root)
	if len(other.Input.Patterns) > 0 {
		c.Input.Patterns = other.Input.Patterns
	}
	mergeString(&c.Input.ObjectsSame, other.Input.ObjectsSame)
	mergeString(&c.Input.ObjectsDifferent, other.Input.ObjectsDifferent)
	mergeString(&c.Input.Problematic, other.Input.Problematic)
	mergeInt(&c.Input.Limit, other.Input.Limit)

	// Output
	mergeString(&c.Output.Backend, other.Output.Backend)
	mergeString(&c.Output.Dir, other.Output.Dir)
	mergeString(&c.Output.Format, other.Output.Format)
	mergeInt(&c.Output.Workers, other.Output.Workers)
	mergeString(&c.Output.S3.Endpoint, other.Output.S3.Endpoint)
	mergeString(&c.Output.S3.Region, other.Output.S3.Region)
	mergeString(&c.Output.S3.Bucket, other.Output.S3.Bucket)
	mergeString(&c.Output.S3.Prefix, other.Output.S3.Prefix)
	mergeString(&c.Output.S3.AccessKey, other.Output.S3.AccessKey)
	mergeString(&c.Output.S3.SecretKey, other.Output.S3.SecretKey)

	// State
	mergeString(&c.State.Graph, other.State.Graph)
	mergeString(&c.State.Map, other.State.Map)
	mergeString(&c.State.MapBackend, other.State.MapBackend)
	mergeString(&c.State.KVBucket, other.State.KVBucket)

	// Post-sale
	mergeString(&c.PostSale.UnknownLot, other.PostSale.UnknownLot)
	mergeString(&c.PostSale.DOT, other.PostSale.DOT)
	mergeInt(&c.PostSale.DOTMinSize, other.PostSale.DOTMinSize)
	mergeInt(&c.PostSale.DOTLimit, other.PostSale.DOTLimit)

	// Rewrite
	mergeInt(&c.Rewrite.Workers, other.Rewrite.Workers)
	mergeInt(&c.Rewrite.MinPrefix, other.Rewrite.MinPrefix)
	if len(other.Rewrite.Patterns) > 0 {
		c.Rewrite.Patterns = other.Rewrite.Patterns
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
	mergeString(&c.NATS.StoreDir, other.NATS.StoreDir)

	mergeString(&c.Metrics.Textfile, other.Metrics.Textfile)
	mergeString(&c.Log.Level, other.Log.Level)
	mergeString(&c.Log.Format, other.Log.Format)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
