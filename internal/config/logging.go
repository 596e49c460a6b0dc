package config

import (
	"log/slog"

	"git.home.luguber.info/inful/docenhance/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug": LogLevelDebug,
	"info":  LogLevelInfo,
	"warn":  LogLevelWarn,
	"error": LogLevelError,
}, LogLevelInfo).WithAliases(map[string]LogLevel{
	"warning": LogLevelWarn,
	"verbose": LogLevelDebug,
})

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel maps the configured level onto the slog scale.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// normalizeLogging folds free-form logging values onto their canonical
// enum members, collecting a warning for every value it had to replace.
func normalizeLogging(cfg *Config) []string {
	var warnings []string

	if cfg.Logging.Level != "" {
		if _, err := logLevelNormalizer.NormalizeWithError(string(cfg.Logging.Level)); err != nil {
			warnings = append(warnings, "logging.level: "+err.Error())
		}
		cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	}

	if cfg.Logging.Format != "" {
		if _, err := logFormatNormalizer.NormalizeWithError(string(cfg.Logging.Format)); err != nil {
			warnings = append(warnings, "logging.format: "+err.Error())
		}
		cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	}

	return warnings
}
