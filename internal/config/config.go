package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document (version 1.x).
type Config struct {
	Version string        `yaml:"version"`
	Site    SiteConfig    `yaml:"site"`
	Enhance EnhanceConfig `yaml:"enhance,omitempty"`
	Render  RenderConfig  `yaml:"render,omitempty"`
	State   StateConfig   `yaml:"state,omitempty"`
	Report  ReportConfig  `yaml:"report,omitempty"`
	Daemon  *DaemonConfig `yaml:"daemon,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// SiteConfig locates the rendered site and controls page discovery.
type SiteConfig struct {
	Root      string   `yaml:"root"`
	Exclude   []string `yaml:"exclude,omitempty"`
	BaseURL   string   `yaml:"base_url,omitempty"`
	AssetBase string   `yaml:"asset_base,omitempty"`
}

// RenderConfig controls single-document markdown rendering.
type RenderConfig struct {
	Sanitize bool  `yaml:"sanitize"`
	Unsafe   *bool `yaml:"unsafe,omitempty"` // raw HTML passthrough, default true for own content
}

// UnsafeEnabled reports whether raw HTML in documents passes through the
// renderer. Documentation sources are trusted by default.
func (r RenderConfig) UnsafeEnabled() bool {
	return r.Unsafe == nil || *r.Unsafe
}

// StateConfig locates the incremental state store.
type StateConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ReportConfig controls run report persistence.
type ReportConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// EventsConfig controls NATS event publishing. An empty URL disables it.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load reads, expands, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	// Load .env files if present so ${VAR} expansion sees them.
	if err := loadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML: environment expansion, defaults,
// then validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, warning := range normalizeLogging(&config) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	if err := applyDefaults(&config); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// loadEnvFiles loads the first .env file found. Values already present in
// the environment win, matching godotenv semantics. Having no .env file at
// all is the normal case and not an error.
func loadEnvFiles() error {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// Init writes a commented example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	// #nosec G306 -- example config is not sensitive
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const exampleConfig = `version: "1.0"

site:
  # Root of the rendered site to enhance.
  root: ./public
  # Glob patterns (relative to root) excluded from enhancement.
  exclude: []
  # Site-absolute path the shipped assets are served from.
  asset_base: /assets/docenhance

enhance:
  math:
    enabled: true
    inline: [["\\(", "\\)"]]
    display: [["\\[", "\\]"]]
    ignore_class: ".*"
    process_class: arithmatex
  copy_button:
    enabled: true
    revert_after: 2s
  smooth_scroll:
    enabled: true
  tables:
    enabled: true
    wrapper_class: table-wrapper
  assets:
    inject: true

state:
  path: ./.docenhance/state.db

daemon:
  watch: true
  debounce: 500ms
  sweep_interval: 1h
  http:
    addr: ":8135"
  metrics:
    enabled: true

events:
  # Empty URL disables event publishing.
  nats_url: ""
  subject: docs.enhance.events

logging:
  level: info
  format: text
`
