package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docenhance/internal/config"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Enhance EnhanceCmd `cmd:"" help:"Enhance every page of a rendered documentation site"`
	Render  RenderCmd  `cmd:"" help:"Render one Markdown document to an enhanced HTML page"`
	Preview PreviewCmd `cmd:"" help:"Serve a site locally, re-enhancing pages as they change"`
	Daemon  DaemonCmd  `cmd:"" help:"Run continuously: watch, scheduled sweeps, metrics and events"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// applyLogging replaces the bootstrap logger with the configured one.
// --verbose always wins over the configured level.
func applyLogging(cfg *config.Config, verbose bool) {
	level := cfg.Logging.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfigOrDefaults loads the config file when it exists and falls back
// to built-in defaults when it does not, so render and preview work in a
// directory without a config file.
func loadConfigOrDefaults(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Parse([]byte("version: \"1.0\"\n"))
	}
	return config.Load(path)
}
