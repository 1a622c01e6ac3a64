package hoedown

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtensionNames(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		names       []string
		expected    Extensions
		expectError bool
	}{
		"empty":               {names: nil, expected: 0},
		"single extension":    {names: []string{"tables"}, expected: Tables},
		"multiple extensions": {names: []string{"tables", "fenced-code"}, expected: Tables | FencedCode},
		"unknown name":        {names: []string{"bogus"}, expectError: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ext, err := ParseExtensionNames(tc.names)
			if tc.expectError {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrInvalidExtensionName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ext)
		})
	}
}

func TestExtensionNamesRoundTrip(t *testing.T) {
	t.Parallel()

	ext := Tables | FencedCode | Footnotes
	names := ExtensionNames(ext)

	got, err := ParseExtensionNames(names)
	require.NoError(t, err)
	assert.Equal(t, ext, got)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "extensions:\n  - tables\n  - footnotes\nmax-nesting: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"tables", "footnotes"}, cfg.Extensions)
	assert.Equal(t, 8, cfg.MaxNesting)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{Extensions: []string{"tables"}, MaxNesting: 4}
	ext, opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, Tables, ext)
	assert.Len(t, opts, 1)
}

func TestConfigOptionsInvalidExtension(t *testing.T) {
	t.Parallel()

	cfg := &Config{Extensions: []string{"nope"}}
	_, _, err := cfg.Options()
	require.ErrorIs(t, err, ErrInvalidExtensionName)
}
