package htmlrender_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoedown/Text-Markdown-Hoedown"
	"github.com/hoedown/Text-Markdown-Hoedown/htmlrender"
)

func TestRenderParagraphAndEmphasis(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("hello *world*\n"), htmlrender.New(0), 0)
	require.NoError(t, err)
	assert.Equal(t, "<p>hello <em>world</em></p>\n", string(out))
}

func TestRenderEscapesText(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("5 < 10 & 6 > 2\n"), htmlrender.New(0), 0)
	require.NoError(t, err)
	assert.Contains(t, string(out), "5 &lt; 10 &amp; 6 &gt; 2")
}

func TestRenderSkipHTML(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("<div>raw</div>\n"), htmlrender.New(htmlrender.SkipHTML), 0)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<div>")
}

func TestRenderSafeLinksRejectsJavascriptScheme(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("[click](javascript:alert(1))\n"), htmlrender.New(htmlrender.SafeLinks), 0)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<a href")
	assert.Contains(t, string(out), "[click]")
}

func TestRenderHeaderLevels(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("# One\n## Two\n"), htmlrender.New(0), 0)
	require.NoError(t, err)
	assert.Equal(t, "<h1>One</h1>\n<h2>Two</h2>\n", string(out))
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	t.Parallel()

	out, err := hoedown.Markdown([]byte("```go\nx := 1\n```\n"), htmlrender.New(0), hoedown.FencedCode)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<pre><code class="language-go">`)
}

func TestRenderTableAlignment(t *testing.T) {
	t.Parallel()

	input := "| a | b |\n|:--|--:|\n| 1 | 2 |\n"
	out, err := hoedown.Markdown([]byte(input), htmlrender.New(0), hoedown.Tables)
	require.NoError(t, err)
	assert.Contains(t, string(out), `style="text-align:left"`)
	assert.Contains(t, string(out), `style="text-align:right"`)
}
