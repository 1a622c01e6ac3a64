// Package logging builds the *slog.Logger the CLI hands to
// hoedown.WithLogger, translating a level/format pair of strings into
// a concrete handler.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// Format selects the slog handler's output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	// ErrUnknownLevel indicates an unrecognized log level string.
	ErrUnknownLevel = errors.New("logging: unknown level")
	// ErrUnknownFormat indicates an unrecognized log format string.
	ErrUnknownFormat = errors.New("logging: unknown format")
)

// GetLevel parses a level string ("debug", "info", "warn", "error").
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}

// GetFormat parses a format string ("text", "json").
func GetFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// AllLevelStrings lists the accepted --log-level values, for flag help
// text and shell completion.
func AllLevelStrings() []string { return []string{"debug", "info", "warn", "error"} }

// AllFormatStrings lists the accepted --log-format values.
func AllFormatStrings() []string { return []string{"text", "json"} }

// NewHandler builds a slog.Handler writing to w at the given level and
// format.
func NewHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Config holds the CLI-facing --log-level/--log-format flag values.
type Config struct {
	Level  string
	Format string
}

// NewConfig returns a Config defaulting to info level, text format.
func NewConfig() *Config {
	return &Config{Level: "info", Format: "text"}
}

// RegisterFlags adds --log-level and --log-format to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, "log-level", c.Level,
		fmt.Sprintf("log level, one of: %s", AllLevelStrings()))
	flags.StringVar(&c.Format, "log-format", c.Format,
		fmt.Sprintf("log format, one of: %s", AllFormatStrings()))
}

// NewLogger parses c and builds a *slog.Logger writing to w.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := GetLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := GetFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return slog.New(NewHandler(w, level, format)), nil
}
