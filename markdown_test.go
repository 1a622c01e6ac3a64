package hoedown

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagRenderer wraps every construct in a "<name>...</name>"-style tag
// naming the callback that fired, so tests can assert on parse
// structure without depending on any particular output format.
func tagRenderer() *Renderer {
	wrap := func(tag string) func(*bytes.Buffer, []byte) {
		return func(out *bytes.Buffer, content []byte) {
			fmt.Fprintf(out, "<%s>", tag)
			out.Write(content)
			fmt.Fprintf(out, "</%s>", tag)
		}
	}
	wrapBool := func(tag string) func(*bytes.Buffer, []byte) bool {
		w := wrap(tag)
		return func(out *bytes.Buffer, content []byte) bool {
			w(out, content)
			return true
		}
	}

	return &Renderer{
		BlockCode:  func(out *bytes.Buffer, content []byte, info string) { fmt.Fprintf(out, "<code info=%q>%s</code>", info, content) },
		BlockQuote: wrap("quote"),
		BlockHTML:  func(out *bytes.Buffer, content []byte) { out.Write(content) },
		Header:     func(out *bytes.Buffer, content []byte, level int) { fmt.Fprintf(out, "<h%d>", level); out.Write(content); fmt.Fprintf(out, "</h%d>", level) },
		HRule:      func(out *bytes.Buffer) { out.WriteString("<hr>") },
		List: func(out *bytes.Buffer, content []byte, flags ListFlags) {
			tag := "ul"
			if flags&ListOrdered != 0 {
				tag = "ol"
			}
			fmt.Fprintf(out, "<%s>%s</%s>", tag, content, tag)
		},
		ListItem: func(out *bytes.Buffer, content []byte, flags ListFlags) {
			fmt.Fprintf(out, "<li>%s</li>", content)
		},
		Paragraph: wrap("p"),
		Table: func(out *bytes.Buffer, header, body []byte) {
			fmt.Fprintf(out, "<table><thead>%s</thead><tbody>%s</tbody></table>", header, body)
		},
		TableRow: wrap("tr"),
		TableCell: func(out *bytes.Buffer, content []byte, flags CellFlags) {
			tag := "td"
			if flags&TableHeader != 0 {
				tag = "th"
			}
			fmt.Fprintf(out, "<%s>%s</%s>", tag, content, tag)
		},
		Footnotes:   wrap("footnotes"),
		FootnoteDef: func(out *bytes.Buffer, content []byte, num int) { fmt.Fprintf(out, "<fn id=%d>%s</fn>", num, content) },

		AutoLink: func(out *bytes.Buffer, link []byte, kind AutolinkType) bool {
			fmt.Fprintf(out, "<auto kind=%d>%s</auto>", kind, link)
			return true
		},
		CodeSpan:       wrapBool("code"),
		DoubleEmphasis: wrapBool("strong"),
		Emphasis:       wrapBool("em"),
		Underline:      wrapBool("u"),
		Highlight:      wrapBool("mark"),
		Quote:          wrapBool("q"),
		Image: func(out *bytes.Buffer, link, title, alt []byte) bool {
			fmt.Fprintf(out, "<img src=%q title=%q alt=%q>", link, title, alt)
			return true
		},
		LineBreak: func(out *bytes.Buffer) bool { out.WriteString("<br>"); return true },
		Link: func(out *bytes.Buffer, link, title, content []byte) bool {
			fmt.Fprintf(out, "<a href=%q title=%q>%s</a>", link, title, content)
			return true
		},
		TripleEmphasis: wrapBool("strongem"),
		Strikethrough:  wrapBool("del"),
		Superscript:    wrapBool("sup"),
		FootnoteRef: func(out *bytes.Buffer, num int) bool {
			fmt.Fprintf(out, "<fnref id=%d>", num)
			return true
		},
		RawHTMLTag: func(out *bytes.Buffer, tag []byte) bool { out.Write(tag); return true },

		Entity:     func(out *bytes.Buffer, token []byte) { out.Write(token) },
		NormalText: func(out *bytes.Buffer, text []byte) { out.Write(text) },
	}
}

func TestMarkdownRequiresRenderer(t *testing.T) {
	t.Parallel()

	_, err := Markdown([]byte("hi"), nil, 0)
	require.ErrorIs(t, err, ErrRendererRequired)
}

func TestMarkdownParagraph(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("hello world\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<p>hello world</p>", string(out))
}

func TestMarkdownATXHeader(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("## Title\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<h2>Title</h2>", string(out))
}

func TestMarkdownSetextHeader(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("Title\n=====\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Title</h1>", string(out))
}

func TestMarkdownEmphasis(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("a *b* c **d** e\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<p>a <em>b</em> c <strong>d</strong> e</p>", string(out))
}

func TestMarkdownTripleEmphasisFallback(t *testing.T) {
	t.Parallel()

	r := tagRenderer()
	r.TripleEmphasis = nil // force the strong+em fallback

	out, err := Markdown([]byte("***both***\n"), r, 0)
	require.NoError(t, err)
	assert.Equal(t, "<p><strong><em>both</em></strong></p>", string(out))
}

func TestMarkdownBlockquote(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("> quoted text\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<quote><p>quoted text</p></quote>", string(out))
}

func TestMarkdownUnorderedList(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("- one\n- two\n- three\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>one</li><li>two</li><li>three</li></ul>", string(out))
}

func TestMarkdownOrderedList(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("1. one\n2. two\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<ol><li>one</li><li>two</li></ol>", string(out))
}

func TestMarkdownFencedCode(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("```go\nfmt.Println(1)\n```\n"), tagRenderer(), FencedCode)
	require.NoError(t, err)
	assert.Equal(t, `<code info="go">fmt.Println(1)
</code>`, string(out))
}

func TestMarkdownIndentedCode(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("    indented code\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, `<code info="">indented code
</code>`, string(out))
}

func TestMarkdownHRule(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("---\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<hr>", string(out))
}

func TestMarkdownLinkAndImage(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("[text](http://example.com \"title\")\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, `<p><a href="http://example.com" title="title">text</a></p>`, string(out))

	out, err = Markdown([]byte("![alt](http://example.com/x.png)\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, `<p><img src="http://example.com/x.png" title="" alt="alt"></p>`, string(out))
}

func TestMarkdownReferenceLink(t *testing.T) {
	t.Parallel()

	input := "[text][ref]\n\n[ref]: http://example.com \"title\"\n"
	out, err := Markdown([]byte(input), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, `<p><a href="http://example.com" title="title">text</a></p>`, string(out))
}

func TestMarkdownFootnotes(t *testing.T) {
	t.Parallel()

	input := "text with a note[^1]\n\n[^1]: detail\n"
	out, err := Markdown([]byte(input), tagRenderer(), Footnotes)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<fnref id=1>")
	assert.Contains(t, string(out), "<fn id=1><p>detail</p></fn>")
}

func TestMarkdownTable(t *testing.T) {
	t.Parallel()

	input := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	out, err := Markdown([]byte(input), tagRenderer(), Tables)
	require.NoError(t, err)
	assert.Equal(t, "<table><thead><tr><th>a</th><th>b</th></tr></thead>"+
		"<tbody><tr><td>1</td><td>2</td></tr></tbody></table>", string(out))
}

func TestMarkdownStrikethroughExtension(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("~~gone~~\n"), tagRenderer(), Strikethrough)
	require.NoError(t, err)
	assert.Equal(t, "<p><del>gone</del></p>", string(out))
}

func TestMarkdownCodeSpan(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("run `go test` now\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<p>run <code>go test</code> now</p>", string(out))
}

func TestMarkdownBackslashEscape(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte(`a \*literal\* star` + "\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<p>a *literal* star</p>", string(out))
}

func TestMarkdownLineBreak(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("line one  \nline two\n"), tagRenderer(), 0)
	require.NoError(t, err)
	assert.Equal(t, "<p>line one<br>line two</p>", string(out))
}

func TestMarkdownAutolink(t *testing.T) {
	t.Parallel()

	out, err := Markdown([]byte("see http://example.com for more\n"), tagRenderer(), Autolink)
	require.NoError(t, err)
	assert.Equal(t, `<p>see <auto kind=1>http://example.com</auto> for more</p>`, string(out))
}

func TestMarkdownDocumentHeaderFooter(t *testing.T) {
	t.Parallel()

	r := tagRenderer()
	r.DocumentHeader = func(out *bytes.Buffer) { out.WriteString("<doc>") }
	r.DocumentFooter = func(out *bytes.Buffer) { out.WriteString("</doc>") }

	out, err := Markdown([]byte("body\n"), r, 0)
	require.NoError(t, err)
	assert.Equal(t, "<doc><p>body</p></doc>", string(out))
}

func TestMarkdownEmptyDocumentStillFiresDocumentCallbacks(t *testing.T) {
	t.Parallel()

	r := tagRenderer()
	r.DocumentHeader = func(out *bytes.Buffer) { out.WriteString("<doc>") }
	r.DocumentFooter = func(out *bytes.Buffer) { out.WriteString("</doc>") }

	out, err := Markdown([]byte(""), r, 0)
	require.NoError(t, err)
	assert.Equal(t, "<doc></doc>", string(out))
}

func TestMarkdownFallsBackToVerbatimWithoutCallback(t *testing.T) {
	t.Parallel()

	r := &Renderer{Paragraph: func(out *bytes.Buffer, content []byte) { out.Write(content) }}
	out, err := Markdown([]byte("a *b* c\n"), r, 0)
	require.NoError(t, err)
	assert.Equal(t, "a *b* c", string(out))
}

func TestMarkdownBlockCallbackAbsenceSkipsBlock(t *testing.T) {
	t.Parallel()

	// No Paragraph callback at all: the paragraph produces no output.
	r := &Renderer{BlockQuote: func(out *bytes.Buffer, content []byte) { out.Write(content) }}
	out, err := Markdown([]byte("just a paragraph\n"), r, 0)
	require.NoError(t, err)
	assert.Equal(t, "", string(out))
}

// TestMarkdownHTMLBlockClose documents the two-pass close-tag search a
// raw HTML block uses: an unindented close ends the block at the
// following blank line; a close with no blank line after it doesn't
// count, so the block keeps absorbing lines (including an indented
// close, on the ins/del exception) until one genuinely is.
func TestMarkdownHTMLBlockClose(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		expected string
	}{
		"unindented close followed by blank line ends the block": {
			input:    "<div>\ncontent\n</div>\n\nmore text\n",
			expected: "<div>\ncontent\n</div><p>more text</p>",
		},
		"close with no following blank line is absorbed into the block": {
			input:    "<div>\ncontent\n</div>\nmore text\n",
			expected: "<div>\ncontent\n</div>\nmore text",
		},
		"indented close falls back to any-close on a second pass": {
			input:    "<div>\n  </div>\n\nafter\n",
			expected: "<div>\n  </div><p>after</p>",
		},
		"ins has no any-close fallback: an indented close is not accepted": {
			input:    "<ins>\n  </ins>\n\nafter\n",
			expected: "<ins>\n  </ins>\n\nafter",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := Markdown([]byte(tc.input), tagRenderer(), 0)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(out))
		})
	}
}

func TestRenderWithDiagnosticsNestingOverflow(t *testing.T) {
	t.Parallel()

	deep := bytes.Repeat([]byte("> "), 64)
	deep = append(deep, []byte("bottom\n")...)

	out, diags, err := RenderWithDiagnostics(deep, tagRenderer(), 0, WithMaxNesting(4))
	require.NoError(t, err)
	assert.NotNil(t, diags)
	assert.NotEmpty(t, out)
}

func TestMarkdownFullEnablesEveryExtension(t *testing.T) {
	t.Parallel()

	out, err := MarkdownFull([]byte("~~strike~~ and ==mark==\n"), tagRenderer())
	require.NoError(t, err)
	assert.Equal(t, "<p><del>strike</del> and <mark>mark</mark></p>", string(out))
}

func TestMarkdownCommonExtensions(t *testing.T) {
	t.Parallel()

	out, err := MarkdownCommon([]byte("~~strike~~\n"), tagRenderer())
	require.NoError(t, err)
	assert.Equal(t, "<p><del>strike</del></p>", string(out))
}

func TestMarkdownBasicHasNoExtensions(t *testing.T) {
	t.Parallel()

	out, err := MarkdownBasic([]byte("~~not struck~~\n"), tagRenderer())
	require.NoError(t, err)
	assert.Equal(t, "<p>~~not struck~~</p>", string(out))
}
