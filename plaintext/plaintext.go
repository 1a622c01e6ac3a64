// Package plaintext implements a deliberately minimal hoedown.Renderer:
// only the three callbacks that need to add structure (BlockCode,
// Paragraph, Header) are wired. Every other callback is left nil, so
// the core parser's documented renderer-absence fallback — emit the
// span's content verbatim, skip the block entirely — does the rest of
// the work.
package plaintext

import (
	"bytes"
	"strings"

	"github.com/hoedown/Text-Markdown-Hoedown"
)

// New builds a *hoedown.Renderer that reduces a document to its
// running text, one blank line between blocks.
func New() *hoedown.Renderer {
	return &hoedown.Renderer{
		BlockCode: blockCode,
		Header:    header,
		Paragraph: paragraph,
	}
}

func blockCode(out *bytes.Buffer, content []byte, info string) {
	out.Write(bytes.TrimRight(content, "\n"))
	out.WriteString("\n\n")
}

func header(out *bytes.Buffer, content []byte, level int) {
	out.WriteString(strings.Repeat("#", level))
	out.WriteByte(' ')
	out.Write(content)
	out.WriteString("\n\n")
}

func paragraph(out *bytes.Buffer, content []byte) {
	out.Write(content)
	out.WriteString("\n\n")
}
