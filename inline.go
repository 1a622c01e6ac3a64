package hoedown

import (
	"bytes"
	"log/slog"
)

// escapableBytes is the set of bytes a backslash can escape:
// `\`*_{}[]()#+-.!:|&<>^~`.
var escapableBytes = [256]bool{}

func init() {
	for _, c := range []byte("\\`*_{}[]()#+-.!:|&<>^~") {
		escapableBytes[c] = true
	}
}

// registerInlineHandlers builds the 256-entry active-character table
// from the renderer's non-nil callbacks and the enabled extensions:
// the table is parameterized by the renderer's callback set at
// parser-construction time.
func (p *markdownParser) registerInlineHandlers() {
	r := p.renderer

	if r.Emphasis != nil || r.DoubleEmphasis != nil || r.TripleEmphasis != nil || r.Underline != nil {
		p.inline['*'] = inlineEmphasis
		p.inline['_'] = inlineEmphasis
	}
	if p.extensions&Strikethrough != 0 && r.Strikethrough != nil {
		p.inline['~'] = inlineEmphasis
	}
	if p.extensions&Highlight != 0 && r.Highlight != nil {
		p.inline['='] = inlineEmphasis
	}
	if r.CodeSpan != nil {
		p.inline['`'] = inlineCodeSpan
	}
	if p.extensions&Quote != 0 && r.Quote != nil {
		p.inline['"'] = inlineQuote
	}
	if r.LineBreak != nil {
		p.inline['\n'] = inlineLineBreak
	}
	if r.Link != nil || r.Image != nil || (p.extensions&Footnotes != 0 && r.FootnoteRef != nil) {
		p.inline['['] = inlineLink
	}
	p.inline['<'] = inlineAngle
	p.inline['\\'] = inlineEscape
	p.inline['&'] = inlineEntity

	if p.extensions&Autolink != 0 && r.AutoLink != nil {
		p.inline[':'] = inlineAutolinkColon
		p.inline['w'] = inlineAutolinkWWW
		p.inline['@'] = inlineAutolinkEmail
	}
	if p.extensions&Superscript != 0 && r.Superscript != nil {
		p.inline['^'] = inlineSuperscript
	}
}

// parseInline scans data left to right, routing runs of inactive
// bytes to NormalText and dispatching active bytes to their
// registered handler.
func (p *markdownParser) parseInline(out *bytes.Buffer, data []byte) {
	i := 0
	for i < len(data) {
		end := i
		for end < len(data) && p.inline[data[end]] == nil {
			end++
		}
		if end > i {
			p.emitNormalText(out, data[i:end])
		}
		if end >= len(data) {
			return
		}

		handler := p.inline[data[end]]
		consumed := handler(p, out, data, end)
		if consumed == 0 {
			p.emitNormalText(out, data[end:end+1])
			i = end + 1
		} else {
			i = end + consumed
		}
	}
}

// inlineCodeSpan handles a code span: an opening run of n backticks
// closes at the next run of exactly n backticks; one leading and
// trailing space are stripped if both are present.
func inlineCodeSpan(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	i := offset
	n := 0
	for i < len(data) && data[i] == '`' {
		i++
		n++
	}
	contentStart := i

	for i < len(data) {
		if data[i] != '`' {
			i++
			continue
		}
		j := i
		m := 0
		for j < len(data) && data[j] == '`' {
			j++
			m++
		}
		if m != n {
			i = j
			continue
		}
		content := data[contentStart:i]
		if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' {
			content = content[1 : len(content)-1]
		}
		if p.renderer.CodeSpan == nil || !p.renderer.CodeSpan(out, content) {
			return 0
		}
		return j - offset
	}
	return 0
}

// inlineQuote handles a quoted span: symmetric to a code span but
// delimited by '"', with backslash-escape support.
func inlineQuote(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	i := offset + 1
	for i < len(data) && data[i] != '"' {
		if data[i] == '\\' && i+1 < len(data) {
			i += 2
			continue
		}
		i++
	}
	if i >= len(data) {
		return 0
	}
	content := data[offset+1 : i]
	if p.renderer.Quote == nil || !p.renderer.Quote(out, content) {
		return 0
	}
	return i + 1 - offset
}

// inlineLineBreak handles a hard line break: two or more trailing
// spaces before a newline become a hard break; otherwise the newline
// is ordinary whitespace.
func inlineLineBreak(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	b := out.Bytes()
	n := 0
	for n < len(b) && b[len(b)-1-n] == ' ' {
		n++
	}
	if n < 2 || p.renderer.LineBreak == nil {
		return 0
	}
	out.Truncate(len(b) - n)
	if !p.renderer.LineBreak(out) {
		out.Write(bytes.Repeat([]byte{' '}, n))
		return 0
	}
	return 1
}

// inlineEscape handles a backslash escape of a punctuation byte.
func inlineEscape(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	if offset+1 >= len(data) {
		return 0
	}
	c := data[offset+1]
	if !escapableBytes[c] {
		return 0
	}
	p.emitNormalText(out, data[offset+1:offset+2])
	return 2
}

// inlineEntity handles an HTML entity reference: "&#?[A-Za-z0-9]+;".
func inlineEntity(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	i := offset + 1
	if i < len(data) && data[i] == '#' {
		i++
	}
	start := i
	for i < len(data) && isalnum(data[i]) {
		i++
	}
	if i == start || i >= len(data) || data[i] != ';' {
		return 0
	}
	i++
	token := data[offset:i]
	if p.renderer.Entity != nil {
		p.renderer.Entity(out, token)
	} else {
		out.Write(token)
	}
	return i - offset
}

// inlineAngle handles an angle-bracket tag: detects an e-mail
// autolink or a generic HTML tag inside "<...>".
func inlineAngle(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	if end := scanAngleEmail(data, offset); end > offset {
		addr := data[offset+1 : end-1]
		if p.extensions&Autolink != 0 && p.renderer.AutoLink != nil && p.renderer.AutoLink(out, addr, AutolinkEmail) {
			return end - offset
		}
	}

	if end := scanHTMLTag(data, offset); end > offset {
		tag := data[offset:end]
		if p.renderer.RawHTMLTag != nil && p.renderer.RawHTMLTag(out, tag) {
			return end - offset
		}
	}
	return 0
}

// scanAngleEmail matches "<local@domain>" against the deliberately lax
// grammar "[-._a-zA-Z0-9]+@[-._a-zA-Z0-9]+>", which accepts addresses
// a stricter parser would reject, e.g. consecutive dots. This is a
// dialect choice, not a bug.
func scanAngleEmail(data []byte, offset int) int {
	i := offset + 1
	start := i
	for i < len(data) && isEmailByte(data[i]) && data[i] != '+' {
		i++
	}
	if i == start || i >= len(data) || data[i] != '@' {
		return -1
	}
	i++
	domainStart := i
	for i < len(data) && isEmailByte(data[i]) && data[i] != '+' {
		i++
	}
	if i == domainStart || i >= len(data) || data[i] != '>' {
		return -1
	}
	return i + 1
}

// scanHTMLTag matches a generic "<tag ...>" or "</tag>" span, treating
// quoted attribute values as opaque to an embedded '>'.
func scanHTMLTag(data []byte, offset int) int {
	i := offset + 1
	if i < len(data) && data[i] == '/' {
		i++
	}
	if i < len(data) && data[i] == '!' {
		// comment or declaration: consume to the next '>'
		for i < len(data) && data[i] != '>' {
			i++
		}
		if i >= len(data) {
			return -1
		}
		return i + 1
	}
	if i >= len(data) || !isAlpha(data[i]) {
		return -1
	}
	for i < len(data) && data[i] != '>' {
		if data[i] == '"' || data[i] == '\'' {
			q := data[i]
			i++
			for i < len(data) && data[i] != q {
				i++
			}
		}
		i++
	}
	if i >= len(data) {
		return -1
	}
	return i + 1
}

func (p *markdownParser) dispatchAutolink(out *bytes.Buffer, data []byte, offset int, scan AutolinkScanner, kind AutolinkType) int {
	if p.inLinkBody || scan == nil || p.renderer.AutoLink == nil {
		return 0
	}
	consumed, rewind, link := scan(data, offset)
	if consumed == 0 {
		return 0
	}
	var rewound []byte
	if rewind > 0 {
		if rewind > out.Len() {
			rewind = out.Len()
		}
		rewound = append(rewound, out.Bytes()[out.Len()-rewind:]...)
		out.Truncate(out.Len() - rewind)
	}
	if !p.renderer.AutoLink(out, link, kind) {
		out.Write(rewound)
		return 0
	}
	return consumed
}

func inlineAutolinkColon(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	return p.dispatchAutolink(out, data, offset, p.urlScan, AutolinkNormal)
}

func inlineAutolinkWWW(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	return p.dispatchAutolink(out, data, offset, p.wwwScan, AutolinkNormal)
}

func inlineAutolinkEmail(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	return p.dispatchAutolink(out, data, offset, p.emailScan, AutolinkEmail)
}

// inlineSuperscript handles a superscript span: "^(...)" balanced
// with backslash-escape support, or "^token" ending at whitespace.
func inlineSuperscript(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	if p.renderer.Superscript == nil {
		return 0
	}
	i := offset + 1
	if i >= len(data) {
		return 0
	}

	var content []byte
	var end int
	if data[i] == '(' {
		depth := 1
		j := i + 1
		start := j
		for j < len(data) && depth > 0 {
			switch data[j] {
			case '\\':
				j++
			case '(':
				depth++
			case ')':
				depth--
			}
			j++
		}
		if depth != 0 {
			return 0
		}
		content = data[start : j-1]
		end = j
	} else {
		start := i
		for i < len(data) && !isspace(data[i]) {
			i++
		}
		if i == start {
			return 0
		}
		content = data[start:i]
		end = i
	}

	buf, ok := p.acquireRecurse(ClassSpan)
	if !ok {
		p.noteDiagnostic(slog.LevelWarn, "nesting overflow: superscript elided")
		return 0
	}
	p.parseInline(buf, content)
	rendered := p.renderer.Superscript(out, buf.Bytes())
	p.pool.release(ClassSpan)
	if !rendered {
		return 0
	}
	return end - offset
}

// findBracketClose returns the index of the ']' matching the '[' at
// data[offset], tracking backslash escapes and nested brackets, or -1
// if unterminated.
func findBracketClose(data []byte, offset int) int {
	depth := 0
	i := offset
	for i < len(data) {
		switch data[i] {
		case '\\':
			i += 2
			continue
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// skipCodeSpanLookahead skips over a code span starting at data[i]=='`'
// while scanning for an emphasis close, so a stray '*' inside a code
// span can never end emphasis early. Returns i unchanged if the span
// never closes.
func skipCodeSpanLookahead(data []byte, i int) int {
	n := 0
	j := i
	for j < len(data) && data[j] == '`' {
		j++
		n++
	}
	for j < len(data) {
		if data[j] != '`' {
			j++
			continue
		}
		k, m := j, 0
		for k < len(data) && data[k] == '`' {
			k++
			m++
		}
		if m == n {
			return k
		}
		j = k
	}
	return i
}

// skipBracketLookahead skips over a "[...]"  possibly followed by
// "(...)" or "[...]", so bracketed link-like constructs don't host a
// false emphasis close.
func skipBracketLookahead(data []byte, i int) int {
	depth := 0
	j := i
	for j < len(data) {
		switch data[j] {
		case '\\':
			j += 2
			continue
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				j++
				if j < len(data) && data[j] == '(' {
					d2 := 0
					for j < len(data) {
						if data[j] == '(' {
							d2++
						} else if data[j] == ')' {
							d2--
							if d2 == 0 {
								return j + 1
							}
						}
						j++
					}
					return j
				}
				if j < len(data) && data[j] == '[' {
					return skipBracketLookahead(data, j)
				}
				return j
			}
		}
		j++
	}
	return i
}

// findEmphasisClose scans data starting at start for a closing run of
// n (or, for '~'/'=', exactly 2) instances of c that is not preceded
// by whitespace, skipping over code spans and bracketed regions.
// Returns the index of the close and the length of the closing run,
// or (-1, 0) if none is found.
func findEmphasisClose(data []byte, start int, c byte, n int, noIntra bool) (int, int) {
	need := n
	if c == '~' || c == '=' {
		need = 2
	}

	i := start
	for i < len(data) {
		switch data[i] {
		case '`':
			if j := skipCodeSpanLookahead(data, i); j > i {
				i = j
				continue
			}
		case '[':
			if j := skipBracketLookahead(data, i); j > i {
				i = j
				continue
			}
		case c:
			if isspace(data[i-1]) {
				i++
				continue
			}
			run := 0
			for i+run < len(data) && data[i+run] == c {
				run++
			}
			if run >= need {
				if noIntra && (c == '*' || c == '_') && i+need < len(data) && isalnum(data[i+need]) {
					i += run
					continue
				}
				return i, need
			}
			i += run
			continue
		}
		i++
	}
	return -1, 0
}

// inlineEmphasis handles emphasis delimiters: '*', '_', '~'
// (Strikethrough) and '=' (Highlight).
func inlineEmphasis(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	c := data[offset]
	n := 1
	for offset+n < len(data) && data[offset+n] == c {
		n++
	}

	minLen := 1
	if c == '~' || c == '=' {
		minLen = 2
	}
	if n < minLen {
		return 0
	}
	if c == '~' || c == '=' {
		n = 2
	} else if n > 3 {
		n = 3
	}

	if offset+n >= len(data) || isspace(data[offset+n]) {
		return 0
	}
	noIntra := p.extensions&NoIntraEmphasis != 0
	if noIntra && (c == '*' || c == '_') && offset > 0 && isalnum(data[offset-1]) {
		return 0
	}

	contentStart := offset + n
	closeAt, closeLen := findEmphasisClose(data, contentStart, c, n, noIntra)
	if closeAt < 0 {
		return 0
	}

	content := data[contentStart:closeAt]
	consumed := closeAt + closeLen - offset

	buf, ok := p.acquireRecurse(ClassSpan)
	if !ok {
		p.noteDiagnostic(slog.LevelWarn, "nesting overflow: emphasis elided")
		return 0
	}
	p.parseInline(buf, content)
	rendered := p.renderEmphasis(out, buf.Bytes(), c, n)
	p.pool.release(ClassSpan)

	if !rendered {
		return 0
	}
	return consumed
}

// renderEmphasis dispatches the recursively-parsed content to the
// callback matching delimiter c and run length n, applying the
// Underline substitution and the triple-emphasis fallback: triple
// (***) delegates to TripleEmphasis if provided, else to
// DoubleEmphasis wrapped around Emphasis.
func (p *markdownParser) renderEmphasis(out *bytes.Buffer, content []byte, c byte, n int) bool {
	r := p.renderer
	switch c {
	case '~':
		return r.Strikethrough != nil && r.Strikethrough(out, content)
	case '=':
		return r.Highlight != nil && r.Highlight(out, content)
	case '_':
		if n == 1 && p.extensions&Underline != 0 {
			return r.Underline != nil && r.Underline(out, content)
		}
	}

	switch n {
	case 1:
		return r.Emphasis != nil && r.Emphasis(out, content)
	case 2:
		return r.DoubleEmphasis != nil && r.DoubleEmphasis(out, content)
	case 3:
		if r.TripleEmphasis != nil {
			return r.TripleEmphasis(out, content)
		}
		if r.DoubleEmphasis == nil || r.Emphasis == nil {
			return false
		}
		inner := p.pool.acquire(ClassSpan)
		ok := r.Emphasis(inner, content)
		rendered := ok && r.DoubleEmphasis(out, inner.Bytes())
		p.pool.release(ClassSpan)
		return rendered
	}
	return false
}

func parseLinkDest(data []byte, i int) (dest []byte, next int, ok bool) {
	if i < len(data) && data[i] == '<' {
		start := i + 1
		j := start
		for j < len(data) && data[j] != '>' && data[j] != '\n' {
			j++
		}
		if j >= len(data) || data[j] != '>' {
			return nil, i, false
		}
		return data[start:j], j + 1, true
	}

	start := i
	depth := 0
	j := i
	for j < len(data) {
		switch data[j] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return data[start:j], j, true
			}
			depth--
		case ' ', '\t', '\n', '\r':
			if depth == 0 {
				return data[start:j], j, true
			}
		}
		j++
	}
	return data[start:j], j, true
}

func parseLinkTitle(data []byte, i int) (title []byte, next int) {
	j := i
	for j < len(data) && isspace(data[j]) {
		j++
	}
	if j >= len(data) {
		return nil, i
	}
	open := data[j]
	var closeCh byte
	switch open {
	case '"':
		closeCh = '"'
	case '\'':
		closeCh = '\''
	case '(':
		closeCh = ')'
	default:
		return nil, i
	}
	j++
	start := j
	for j < len(data) {
		if data[j] == '\\' && j+1 < len(data) {
			j += 2
			continue
		}
		if data[j] == closeCh {
			return data[start:j], j + 1
		}
		j++
	}
	return nil, i
}

func unescapeBackslashes(data []byte) []byte {
	if bytes.IndexByte(data, '\\') < 0 {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+1 < len(data) {
			i++
		}
		out = append(out, data[i])
	}
	return out
}

// inlineLink handles a link or image: parses the bracketed display
// text, then dispatches on the next non-whitespace byte after ']'
// into an inline link, a reference link, or a shortcut reference; a
// leading '!' (already flushed as normal text by the time this
// handler runs) marks an image and is rewound from the output.
func inlineLink(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int {
	isImage := offset > 0 && data[offset-1] == '!'

	textEnd := findBracketClose(data, offset)
	if textEnd < 0 {
		return 0
	}
	linkText := data[offset+1 : textEnd]
	i := textEnd + 1

	if p.extensions&Footnotes != 0 && len(linkText) > 0 && linkText[0] == '^' {
		if p.renderer.FootnoteRef == nil {
			return 0
		}
		def, ordinal := p.footnotes.use(linkText[1:])
		if def == nil {
			return 0
		}
		if !p.renderer.FootnoteRef(out, ordinal) {
			return 0
		}
		return i - offset
	}

	var link, title, id []byte
	consumedEnd := i

	k := i
	for k < len(data) && isspace(data[k]) {
		k++
	}

	switch {
	case k < len(data) && data[k] == '(':
		j := k + 1
		for j < len(data) && isspace(data[j]) {
			j++
		}
		dest, j2, ok := parseLinkDest(data, j)
		if !ok {
			return 0
		}
		j = j2
		t, j3 := parseLinkTitle(data, j)
		tEnd := j3
		for tEnd < len(data) && isspace(data[tEnd]) {
			tEnd++
		}
		if tEnd >= len(data) || data[tEnd] != ')' {
			return 0
		}
		link = unescapeBackslashes(dest)
		title = t
		consumedEnd = tEnd + 1

	case k < len(data) && data[k] == '[':
		j := k + 1
		idEnd := j
		for idEnd < len(data) && data[idEnd] != ']' {
			idEnd++
		}
		if idEnd >= len(data) {
			return 0
		}
		if idEnd == j {
			id = linkText
		} else {
			id = data[j:idEnd]
		}
		consumedEnd = idEnd + 1

	default:
		id = linkText
		consumedEnd = i
	}

	if id != nil {
		ref := p.refs.lookup(id)
		if ref == nil {
			return 0
		}
		link = ref.link
		title = ref.title
	}

	buf, ok := p.acquireRecurse(ClassSpan)
	if !ok {
		p.noteDiagnostic(slog.LevelWarn, "nesting overflow: link text elided")
		return 0
	}
	wasInLink := p.inLinkBody
	p.inLinkBody = true
	p.parseInline(buf, linkText)
	p.inLinkBody = wasInLink
	content := buf.Bytes()

	if isImage {
		out.Truncate(out.Len() - 1)
	}

	var rendered bool
	if isImage {
		rendered = p.renderer.Image != nil && p.renderer.Image(out, link, title, content)
	} else {
		rendered = p.renderer.Link != nil && p.renderer.Link(out, link, title, content)
	}
	p.pool.release(ClassSpan)

	if !rendered {
		if isImage {
			out.WriteByte('!')
		}
		return 0
	}
	return consumedEnd - offset
}
