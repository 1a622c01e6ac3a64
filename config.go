package hoedown

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// extensionNames maps the YAML/CLI-facing extension names to their
// Extensions bit, grounded on the string-keyed option tables in
// MacroPower-x's magicschema annotators.
var extensionNames = map[string]Extensions{
	"tables":                 Tables,
	"fenced-code":            FencedCode,
	"footnotes":              Footnotes,
	"autolink":               Autolink,
	"strikethrough":          Strikethrough,
	"highlight":              Highlight,
	"underline":              Underline,
	"quote":                  Quote,
	"superscript":            Superscript,
	"space-headers":          SpaceHeaders,
	"no-intra-emphasis":      NoIntraEmphasis,
	"lax-spacing":            LaxSpacing,
	"disable-indented-code":  DisableIndentedCode,
}

// ParseExtensionNames converts a slice of extension names (as used in
// Config.Extensions or repeated --extension CLI flags) into an
// Extensions bitmask. An unrecognized name returns
// ErrInvalidExtensionName wrapping the offending name.
func ParseExtensionNames(names []string) (Extensions, error) {
	var ext Extensions
	for _, name := range names {
		bit, ok := extensionNames[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidExtensionName, name)
		}
		ext |= bit
	}
	return ext, nil
}

// ExtensionNames returns the sorted-by-declaration names of the
// extensions set in ext, the inverse of ParseExtensionNames.
func ExtensionNames(ext Extensions) []string {
	order := []string{
		"no-intra-emphasis", "tables", "fenced-code", "autolink",
		"strikethrough", "highlight", "underline", "quote",
		"superscript", "space-headers", "lax-spacing",
		"disable-indented-code", "footnotes",
	}
	names := make([]string, 0, len(order))
	for _, name := range order {
		if ext&extensionNames[name] != 0 {
			names = append(names, name)
		}
	}
	return names
}

// Config is the YAML-facing configuration for a render, grounded on
// MacroPower-x/magicschema's plain-struct + yaml.Unmarshal pattern.
// The zero Config renders with no extensions and the default
// maximum nesting depth (16).
type Config struct {
	Extensions []string `yaml:"extensions"`
	MaxNesting int      `yaml:"max-nesting"`
}

// LoadConfig reads and unmarshals a YAML config file from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("hoedown: reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("hoedown: parsing config: %w", err)
	}
	return &cfg, nil
}

// Options converts cfg into Extensions plus the Option values that
// RenderWithDiagnostics expects.
func (cfg *Config) Options() (Extensions, []Option, error) {
	ext, err := ParseExtensionNames(cfg.Extensions)
	if err != nil {
		return 0, nil, err
	}

	var opts []Option
	if cfg.MaxNesting > 0 {
		opts = append(opts, WithMaxNesting(cfg.MaxNesting))
	}
	return ext, opts, nil
}
