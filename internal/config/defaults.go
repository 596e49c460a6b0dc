package config

import (
	"fmt"
	"path/filepath"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// applyDefaults runs every domain applier in order. Order matters only
// for the site applier, which later domains read the root from.
func applyDefaults(cfg *Config) error {
	appliers := []DefaultApplier{
		&CoreDefaultApplier{},
		&SiteDefaultApplier{},
		&EnhanceDefaultApplier{},
		&StateDefaultApplier{},
		&ReportDefaultApplier{},
		&DaemonDefaultApplier{},
		&EventsDefaultApplier{},
		&LoggingDefaultApplier{},
	}

	for _, applier := range appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying %s defaults: %w", applier.Domain(), err)
		}
	}

	return nil
}

// CoreDefaultApplier handles document-level defaults.
type CoreDefaultApplier struct{}

func (c *CoreDefaultApplier) Domain() string { return "core" }

func (c *CoreDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	return nil
}

// SiteDefaultApplier handles site location defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Root == "" {
		cfg.Site.Root = "./public"
	}
	if cfg.Site.AssetBase == "" {
		cfg.Site.AssetBase = "/assets/docenhance"
	}
	return nil
}

// EnhanceDefaultApplier handles enhancement pass defaults.
type EnhanceDefaultApplier struct{}

func (e *EnhanceDefaultApplier) Domain() string { return "enhance" }

func (e *EnhanceDefaultApplier) ApplyDefaults(cfg *Config) error {
	math := &cfg.Enhance.Math
	if len(math.Inline) == 0 {
		math.Inline = [][]string{{`\(`, `\)`}}
	}
	if len(math.Display) == 0 {
		math.Display = [][]string{{`\[`, `\]`}}
	}
	if math.IgnoreClass == "" {
		math.IgnoreClass = ".*"
	}
	if math.ProcessClass == "" {
		math.ProcessClass = "arithmatex"
	}

	button := &cfg.Enhance.CopyButton
	if button.IdleGlyph == "" {
		button.IdleGlyph = "📋"
	}
	if button.SuccessGlyph == "" {
		button.SuccessGlyph = "✅"
	}
	if button.RevertAfter == "" {
		button.RevertAfter = "2s"
	}

	if cfg.Enhance.Tables.WrapperClass == "" {
		cfg.Enhance.Tables.WrapperClass = "table-wrapper"
	}

	return nil
}

// StateDefaultApplier handles state store defaults.
type StateDefaultApplier struct{}

func (s *StateDefaultApplier) Domain() string { return "state" }

func (s *StateDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.State.Path == "" {
		cfg.State.Path = filepath.Join(".docenhance", "state.db")
	}
	return nil
}

// ReportDefaultApplier handles run report defaults.
type ReportDefaultApplier struct{}

func (r *ReportDefaultApplier) Domain() string { return "report" }

func (r *ReportDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Report.Directory == "" {
		cfg.Report.Directory = cfg.Site.Root
	}
	return nil
}

// DaemonDefaultApplier handles daemon defaults. A nil daemon section is
// left nil so the daemon command can tell "unconfigured" from "default".
type DaemonDefaultApplier struct{}

func (d *DaemonDefaultApplier) Domain() string { return "daemon" }

func (d *DaemonDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Daemon == nil {
		return nil
	}

	if cfg.Daemon.Debounce == "" {
		cfg.Daemon.Debounce = "500ms"
	}
	if cfg.Daemon.SweepInterval == "" {
		cfg.Daemon.SweepInterval = "1h"
	}
	if cfg.Daemon.HTTP.Addr == "" {
		cfg.Daemon.HTTP.Addr = ":8135"
	}
	if cfg.Daemon.Metrics.Namespace == "" {
		cfg.Daemon.Metrics.Namespace = "docenhance"
	}

	return nil
}

// EventsDefaultApplier handles event publishing defaults.
type EventsDefaultApplier struct{}

func (e *EventsDefaultApplier) Domain() string { return "events" }

func (e *EventsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = "docs.enhance.events"
	}
	return nil
}

// LoggingDefaultApplier handles logging defaults.
type LoggingDefaultApplier struct{}

func (l *LoggingDefaultApplier) Domain() string { return "logging" }

func (l *LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	return nil
}
