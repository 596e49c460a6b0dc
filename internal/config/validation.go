package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate runs the domain validators in dependency order.
func (cv *configurationValidator) validate() error {
	if err := cv.validateVersion(); err != nil {
		return err
	}
	if err := cv.validateSite(); err != nil {
		return err
	}
	if err := cv.validateMath(); err != nil {
		return err
	}
	if err := cv.validateCopyButton(); err != nil {
		return err
	}
	if err := cv.validateTables(); err != nil {
		return err
	}
	if err := cv.validateDaemon(); err != nil {
		return err
	}
	if err := cv.validateEvents(); err != nil {
		return err
	}
	return nil
}

func (cv *configurationValidator) validateVersion() error {
	if cv.config.Version != "1.0" {
		return fmt.Errorf("unsupported config version: %s (expected 1.0)", cv.config.Version)
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	site := cv.config.Site

	if site.Root == "" {
		return errors.New("site.root cannot be empty")
	}

	for _, pattern := range site.Exclude {
		if pattern == "" {
			return errors.New("site.exclude entries cannot be empty")
		}
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid site.exclude pattern %q: %w", pattern, err)
		}
	}

	if site.AssetBase != "" && !strings.HasPrefix(site.AssetBase, "/") {
		return fmt.Errorf("site.asset_base must be a site-absolute path, got %q", site.AssetBase)
	}

	return nil
}

func (cv *configurationValidator) validateMath() error {
	math := cv.config.Enhance.Math
	if !cv.config.Enhance.MathEnabled() {
		return nil
	}

	if err := validateDelimiterPairs("enhance.math.inline", math.Inline); err != nil {
		return err
	}
	return validateDelimiterPairs("enhance.math.display", math.Display)
}

// validateDelimiterPairs requires each entry to be an open/close pair with
// both markers present. MathJax silently drops malformed pairs, so we
// reject them up front.
func validateDelimiterPairs(field string, pairs [][]string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("%s must define at least one delimiter pair", field)
	}
	for i, pair := range pairs {
		if len(pair) != 2 {
			return fmt.Errorf("%s[%d] must be an [open, close] pair, got %d element(s)", field, i, len(pair))
		}
		if pair[0] == "" || pair[1] == "" {
			return fmt.Errorf("%s[%d] delimiters cannot be empty", field, i)
		}
	}
	return nil
}

func (cv *configurationValidator) validateCopyButton() error {
	button := cv.config.Enhance.CopyButton
	if !cv.config.Enhance.CopyButtonEnabled() {
		return nil
	}

	d, err := time.ParseDuration(button.RevertAfter)
	if err != nil {
		return fmt.Errorf("invalid enhance.copy_button.revert_after %q: %w", button.RevertAfter, err)
	}
	if d <= 0 {
		return fmt.Errorf("enhance.copy_button.revert_after must be positive, got %s", button.RevertAfter)
	}

	return nil
}

func (cv *configurationValidator) validateTables() error {
	tables := cv.config.Enhance.Tables
	if !cv.config.Enhance.TablesEnabled() {
		return nil
	}

	if tables.WrapperClass == "" {
		return errors.New("enhance.tables.wrapper_class cannot be empty")
	}
	if strings.ContainsAny(tables.WrapperClass, " \t\n") {
		return fmt.Errorf("enhance.tables.wrapper_class must be a single class token, got %q", tables.WrapperClass)
	}

	return nil
}

func (cv *configurationValidator) validateDaemon() error {
	daemon := cv.config.Daemon
	if daemon == nil {
		return nil
	}

	if err := validatePositiveDuration("daemon.debounce", daemon.Debounce); err != nil {
		return err
	}
	if err := validatePositiveDuration("daemon.sweep_interval", daemon.SweepInterval); err != nil {
		return err
	}

	if daemon.HTTP.Addr == "" {
		return errors.New("daemon.http.addr cannot be empty")
	}

	if daemon.MetricsEnabled() && strings.ContainsAny(daemon.Metrics.Namespace, " -") {
		return fmt.Errorf("daemon.metrics.namespace must be a valid metric namespace, got %q", daemon.Metrics.Namespace)
	}

	return nil
}

func validatePositiveDuration(field, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", field, raw)
	}
	return nil
}

func (cv *configurationValidator) validateEvents() error {
	events := cv.config.Events
	if events.NATSURL == "" {
		return nil
	}

	if events.Subject == "" {
		return errors.New("events.subject cannot be empty when events.nats_url is set")
	}
	if strings.ContainsAny(events.Subject, " \t") {
		return fmt.Errorf("events.subject must not contain whitespace, got %q", events.Subject)
	}

	return nil
}
