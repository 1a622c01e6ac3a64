package plaintext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoedown/Text-Markdown-Hoedown"
	"github.com/hoedown/Text-Markdown-Hoedown/plaintext"
)

func TestParagraphPassesThroughText(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("hello world\n"), plaintext.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n\n", string(out))
}

func TestHeaderPrefixesHashes(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("## Title\n"), plaintext.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, "## Title\n\n", string(out))
}

func TestInlineEmphasisFallsBackToVerbatim(t *testing.T) {
	t.Parallel()

	// No Emphasis/DoubleEmphasis callback is wired: the inline scanner
	// falls back to copying the asterisks verbatim.
	out, err := hoedown.Markdown([]byte("a *b* c\n"), plaintext.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, "a *b* c\n\n", string(out))
}

func TestBlockQuoteIsDroppedWithoutACallback(t *testing.T) {
	t.Parallel()

	// BlockQuote is nil in this renderer: block-level callbacks being
	// absent means the construct produces no output at all.
	out, err := hoedown.Markdown([]byte("> quoted\n"), plaintext.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, "", string(out))
}

func TestCodeBlockTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("    code line\n"), plaintext.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, "code line\n\n", string(out))
}
