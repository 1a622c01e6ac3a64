// Package htmlrender implements a hoedown.Renderer that emits HTML,
// kept outside the hoedown core package so the renderer/core boundary
// stays real: hoedown itself never imports an output format.
package htmlrender

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/hoedown/Text-Markdown-Hoedown"
)

// Flags configures optional output behavior.
type Flags int

const (
	// SkipHTML drops raw HTML blocks and inline tags instead of
	// passing them through verbatim.
	SkipHTML Flags = 1 << iota
	// SafeLinks rejects javascript:, vbscript:, data:, and file:
	// schemes in link and image destinations.
	SafeLinks
)

// New builds a *hoedown.Renderer that writes HTML, honoring flags.
func New(flags Flags) *hoedown.Renderer {
	h := &htmlRenderer{flags: flags}
	return &hoedown.Renderer{
		BlockCode:   h.blockCode,
		BlockQuote:  h.blockQuote,
		BlockHTML:   h.blockHTML,
		Header:      h.header,
		HRule:       h.hrule,
		List:        h.list,
		ListItem:    h.listItem,
		Paragraph:   h.paragraph,
		Table:       h.table,
		TableRow:    h.tableRow,
		TableCell:   h.tableCell,
		Footnotes:   h.footnotes,
		FootnoteDef: h.footnoteDef,

		AutoLink:       h.autoLink,
		CodeSpan:       h.codeSpan,
		DoubleEmphasis: h.doubleEmphasis,
		Emphasis:       h.emphasis,
		Underline:      h.underline,
		Highlight:      h.highlight,
		Quote:          h.quote,
		Image:          h.image,
		LineBreak:      h.lineBreak,
		Link:           h.link,
		TripleEmphasis: h.tripleEmphasis,
		Strikethrough:  h.strikethrough,
		Superscript:    h.superscript,
		FootnoteRef:    h.footnoteRef,
		RawHTMLTag:     h.rawHTMLTag,

		Entity:     h.entity,
		NormalText: h.normalText,

		DocumentHeader: h.documentHeader,
		DocumentFooter: h.documentFooter,
	}
}

type htmlRenderer struct {
	flags Flags
}

func (h *htmlRenderer) escapeHTML(out *bytes.Buffer, text []byte) {
	out.WriteString(html.EscapeString(string(text)))
}

func (h *htmlRenderer) blockCode(out *bytes.Buffer, content []byte, info string) {
	out.WriteString("<pre><code")
	if lang := firstWord(info); lang != "" {
		fmt.Fprintf(out, " class=\"language-%s\"", html.EscapeString(lang))
	}
	out.WriteString(">")
	h.escapeHTML(out, content)
	out.WriteString("</code></pre>\n")
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

func (h *htmlRenderer) blockQuote(out *bytes.Buffer, content []byte) {
	out.WriteString("<blockquote>\n")
	out.Write(content)
	out.WriteString("</blockquote>\n")
}

func (h *htmlRenderer) blockHTML(out *bytes.Buffer, content []byte) {
	if h.flags&SkipHTML != 0 {
		return
	}
	out.Write(content)
	out.WriteByte('\n')
}

func (h *htmlRenderer) header(out *bytes.Buffer, content []byte, level int) {
	fmt.Fprintf(out, "<h%d>", level)
	out.Write(content)
	fmt.Fprintf(out, "</h%d>\n", level)
}

func (h *htmlRenderer) hrule(out *bytes.Buffer) {
	out.WriteString("<hr/>\n")
}

func (h *htmlRenderer) list(out *bytes.Buffer, content []byte, flags hoedown.ListFlags) {
	tag := "ul"
	if flags&hoedown.ListOrdered != 0 {
		tag = "ol"
	}
	fmt.Fprintf(out, "<%s>\n", tag)
	out.Write(content)
	fmt.Fprintf(out, "</%s>\n", tag)
}

func (h *htmlRenderer) listItem(out *bytes.Buffer, content []byte, flags hoedown.ListFlags) {
	out.WriteString("<li>")
	out.Write(bytes.TrimRight(content, "\n"))
	out.WriteString("</li>\n")
}

func (h *htmlRenderer) paragraph(out *bytes.Buffer, content []byte) {
	out.WriteString("<p>")
	out.Write(content)
	out.WriteString("</p>\n")
}

func (h *htmlRenderer) table(out *bytes.Buffer, header, body []byte) {
	out.WriteString("<table>\n<thead>\n")
	out.Write(header)
	out.WriteString("</thead>\n<tbody>\n")
	out.Write(body)
	out.WriteString("</tbody>\n</table>\n")
}

func (h *htmlRenderer) tableRow(out *bytes.Buffer, content []byte) {
	out.WriteString("<tr>\n")
	out.Write(content)
	out.WriteString("</tr>\n")
}

func (h *htmlRenderer) tableCell(out *bytes.Buffer, content []byte, flags hoedown.CellFlags) {
	tag := "td"
	if flags&hoedown.TableHeader != 0 {
		tag = "th"
	}
	var style string
	switch {
	case flags&hoedown.TableAlignCenter == hoedown.TableAlignCenter:
		style = " style=\"text-align:center\""
	case flags&hoedown.TableAlignLeft != 0:
		style = " style=\"text-align:left\""
	case flags&hoedown.TableAlignRight != 0:
		style = " style=\"text-align:right\""
	}
	fmt.Fprintf(out, "<%s%s>", tag, style)
	out.Write(content)
	fmt.Fprintf(out, "</%s>\n", tag)
}

func (h *htmlRenderer) footnotes(out *bytes.Buffer, content []byte) {
	out.WriteString("<div class=\"footnotes\">\n<hr/>\n<ol>\n")
	out.Write(content)
	out.WriteString("</ol>\n</div>\n")
}

func (h *htmlRenderer) footnoteDef(out *bytes.Buffer, content []byte, num int) {
	fmt.Fprintf(out, "<li id=\"fn%d\">", num)
	out.Write(bytes.TrimRight(content, "\n"))
	fmt.Fprintf(out, " <a href=\"#fnref%d\">&#8617;</a></li>\n", num)
}

func isUnsafeScheme(link []byte) bool {
	lower := strings.ToLower(string(link))
	for _, scheme := range []string{"javascript:", "vbscript:", "data:", "file:"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

func (h *htmlRenderer) autoLink(out *bytes.Buffer, link []byte, kind hoedown.AutolinkType) bool {
	if h.flags&SafeLinks != 0 && isUnsafeScheme(link) {
		return false
	}
	href := link
	if kind == hoedown.AutolinkEmail {
		href = append([]byte("mailto:"), link...)
	}
	out.WriteString("<a href=\"")
	h.escapeHTML(out, href)
	out.WriteString("\">")
	h.escapeHTML(out, link)
	out.WriteString("</a>")
	return true
}

func (h *htmlRenderer) codeSpan(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<code>")
	h.escapeHTML(out, content)
	out.WriteString("</code>")
	return true
}

func (h *htmlRenderer) doubleEmphasis(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<strong>")
	out.Write(content)
	out.WriteString("</strong>")
	return true
}

func (h *htmlRenderer) emphasis(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<em>")
	out.Write(content)
	out.WriteString("</em>")
	return true
}

func (h *htmlRenderer) underline(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<u>")
	out.Write(content)
	out.WriteString("</u>")
	return true
}

func (h *htmlRenderer) highlight(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<mark>")
	out.Write(content)
	out.WriteString("</mark>")
	return true
}

func (h *htmlRenderer) quote(out *bytes.Buffer, content []byte) bool {
	out.WriteString("&ldquo;")
	out.Write(content)
	out.WriteString("&rdquo;")
	return true
}

func (h *htmlRenderer) image(out *bytes.Buffer, link, title, alt []byte) bool {
	if h.flags&SafeLinks != 0 && isUnsafeScheme(link) {
		return false
	}
	out.WriteString("<img src=\"")
	h.escapeHTML(out, link)
	out.WriteString("\" alt=\"")
	h.escapeHTML(out, alt)
	out.WriteString("\"")
	if len(title) > 0 {
		out.WriteString(" title=\"")
		h.escapeHTML(out, title)
		out.WriteString("\"")
	}
	out.WriteString("/>")
	return true
}

func (h *htmlRenderer) lineBreak(out *bytes.Buffer) bool {
	out.WriteString("<br/>\n")
	return true
}

func (h *htmlRenderer) link(out *bytes.Buffer, link, title, content []byte) bool {
	if h.flags&SafeLinks != 0 && isUnsafeScheme(link) {
		return false
	}
	out.WriteString("<a href=\"")
	h.escapeHTML(out, link)
	out.WriteString("\"")
	if len(title) > 0 {
		out.WriteString(" title=\"")
		h.escapeHTML(out, title)
		out.WriteString("\"")
	}
	out.WriteString(">")
	out.Write(content)
	out.WriteString("</a>")
	return true
}

func (h *htmlRenderer) tripleEmphasis(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<strong><em>")
	out.Write(content)
	out.WriteString("</em></strong>")
	return true
}

func (h *htmlRenderer) strikethrough(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<del>")
	out.Write(content)
	out.WriteString("</del>")
	return true
}

func (h *htmlRenderer) superscript(out *bytes.Buffer, content []byte) bool {
	out.WriteString("<sup>")
	out.Write(content)
	out.WriteString("</sup>")
	return true
}

func (h *htmlRenderer) footnoteRef(out *bytes.Buffer, num int) bool {
	fmt.Fprintf(out, "<sup id=\"fnref%d\"><a href=\"#fn%d\">%d</a></sup>", num, num, num)
	return true
}

func (h *htmlRenderer) rawHTMLTag(out *bytes.Buffer, tag []byte) bool {
	if h.flags&SkipHTML != 0 {
		return false
	}
	out.Write(tag)
	return true
}

func (h *htmlRenderer) entity(out *bytes.Buffer, token []byte) {
	out.Write(token)
}

func (h *htmlRenderer) normalText(out *bytes.Buffer, text []byte) {
	h.escapeHTML(out, text)
}

// documentHeader and documentFooter are no-ops: this renderer produces
// an HTML fragment, not a standalone document with <html>/<head>/<body>.
func (h *htmlRenderer) documentHeader(out *bytes.Buffer) {}
func (h *htmlRenderer) documentFooter(out *bytes.Buffer) {}
