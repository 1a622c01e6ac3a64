package hoedown

import (
	"bytes"
	"log/slog"
)

// parseBlock repeatedly consumes one block from the front of data and
// appends its rendering to out, testing the leading line against each
// construct in priority order.
func (p *markdownParser) parseBlock(out *bytes.Buffer, data []byte) {
	for len(data) > 0 {
		if n := skipBlankLines(data); n > 0 {
			data = data[n:]
			continue
		}

		switch {
		case isATXHeader(data, p.extensions):
			data = p.parseATXHeader(out, data)
		case p.isHTMLBlockStart(data):
			data = p.parseHTMLBlock(out, data)
		case isHRule(data):
			data = parseHRule(out, data, p.renderer)
		case p.extensions&FencedCode != 0 && isFenceLine(data) >= 0:
			data = p.parseFencedCode(out, data)
		case p.extensions&Tables != 0 && isTableHeader(data):
			data = p.parseTable(out, data)
		case isBlockquoteStart(data):
			data = p.parseBlockquote(out, data)
		case p.extensions&DisableIndentedCode == 0 && isIndentedCodeLine(data):
			data = p.parseIndentedCode(out, data)
		case isUnorderedListStart(data):
			data = p.parseList(out, data, false)
		case isOrderedListStart(data):
			data = p.parseList(out, data, true)
		default:
			data = p.parseParagraph(out, data)
		}
	}
}

// nextLine returns the end of the current line (exclusive of its
// terminating '\n', which is always present in normalized text unless
// data is the final, unterminated remainder) and the start of the
// next line.
func nextLine(data []byte) (lineEnd, next int) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return len(data), len(data)
	}
	return i, i + 1
}

func isBlankLine(line []byte) bool {
	return len(bytes.TrimRight(line, " \t\r")) == 0
}

func skipBlankLines(data []byte) int {
	i := 0
	for i < len(data) {
		end, next := nextLine(data[i:])
		if !isBlankLine(data[i : i+end]) {
			break
		}
		i += next
	}
	return i
}

// --- ATX headers ---

func isATXHeader(data []byte, ext Extensions) bool {
	i := 0
	for i < 6 && i < len(data) && data[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return false
	}
	if ext&SpaceHeaders != 0 {
		if i >= len(data) || (data[i] != ' ' && data[i] != '\n') {
			return false
		}
	}
	return true
}

func (p *markdownParser) parseATXHeader(out *bytes.Buffer, data []byte) []byte {
	lineEnd, next := nextLine(data)
	line := data[:lineEnd]

	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	content := bytes.TrimSpace(line[level:])
	content = bytes.TrimRight(content, "#")
	content = bytes.TrimRight(content, " \t")

	p.emitHeader(out, content, level)
	return data[next:]
}

// isSetextUnderline reports whether line is a run of all '=' or all
// '-' (at least one, trailing spaces allowed) and returns the header
// level it implies (1 for '=', 2 for '-').
func isSetextUnderline(line []byte) (level int, ok bool) {
	trimmed := bytes.TrimRight(line, " \t\r")
	if len(trimmed) == 0 {
		return 0, false
	}
	c := trimmed[0]
	if c != '=' && c != '-' {
		return 0, false
	}
	for _, b := range trimmed {
		if b != c {
			return 0, false
		}
	}
	if c == '=' {
		return 1, true
	}
	return 2, true
}

// --- Horizontal rule ---

func isHRule(data []byte) bool {
	lineEnd, _ := nextLine(data)
	line := bytes.TrimRight(data[:lineEnd], "\r")

	var mark byte
	count := 0
	for _, c := range line {
		switch c {
		case ' ', '\t':
			continue
		case '*', '-', '_':
			if mark == 0 {
				mark = c
			} else if c != mark {
				return false
			}
			count++
		default:
			return false
		}
	}
	return count >= 3
}

func parseHRule(out *bytes.Buffer, data []byte, r *Renderer) []byte {
	_, next := nextLine(data)
	if r.HRule != nil {
		r.HRule(out)
	}
	return data[next:]
}

// --- Fenced code ---

// isFenceLine reports the fence length if line (after up to 3 leading
// spaces) begins with a run of 3+ identical '`' or '~', else -1.
func isFenceLine(data []byte) int {
	lineEnd, _ := nextLine(data)
	line := data[:lineEnd]

	i := 0
	for i < 3 && i < len(line) && line[i] == ' ' {
		i++
	}
	if i >= len(line) {
		return -1
	}
	c := line[i]
	if c != '`' && c != '~' {
		return -1
	}
	n := 0
	for i < len(line) && line[i] == c {
		i++
		n++
	}
	if n < 3 {
		return -1
	}
	return n
}

func (p *markdownParser) parseFencedCode(out *bytes.Buffer, data []byte) []byte {
	lineEnd, next := nextLine(data)
	line := data[:lineEnd]

	indent := leadingSpaceCount(line)
	if indent > 3 {
		indent = 3
	}
	i := indent
	fenceChar := line[i]
	fenceLen := 0
	for i < len(line) && line[i] == fenceChar {
		i++
		fenceLen++
	}
	info := string(bytes.TrimSpace(line[i:]))

	var content bytes.Buffer
	pos := next
	for pos < len(data) {
		end, following := nextLine(data[pos:])
		bodyLine := data[pos : pos+end]
		if n := isFenceLine(bodyLine); n >= fenceLen {
			trimmed := bytes.TrimLeft(bodyLine, " ")
			allFence := true
			for _, c := range trimmed {
				if c != fenceChar {
					allFence = false
					break
				}
			}
			if allFence {
				pos += following
				break
			}
		}
		content.Write(bodyLine)
		content.WriteByte('\n')
		pos += following
	}

	if p.renderer.BlockCode != nil {
		p.renderer.BlockCode(out, content.Bytes(), info)
	}
	return data[pos:]
}

// --- Indented code ---

func isIndentedCodeLine(data []byte) bool {
	lineEnd, _ := nextLine(data)
	line := data[:lineEnd]
	return leadingSpaceCount(line) >= tabStop && !isBlankLine(line)
}

func (p *markdownParser) parseIndentedCode(out *bytes.Buffer, data []byte) []byte {
	var content bytes.Buffer
	pos := 0
	pendingBlanks := 0
	for pos < len(data) {
		end, next := nextLine(data[pos:])
		line := data[pos : pos+end]

		if isBlankLine(line) {
			pendingBlanks++
			pos += next
			continue
		}
		if leadingSpaceCount(line) < tabStop {
			break
		}
		for k := 0; k < pendingBlanks; k++ {
			content.WriteByte('\n')
		}
		pendingBlanks = 0
		content.Write(line[tabStop:])
		content.WriteByte('\n')
		pos += next
	}

	if p.renderer.BlockCode != nil {
		p.renderer.BlockCode(out, content.Bytes(), "")
	}
	return data[pos:]
}

// --- Blockquote ---

func isBlockquoteStart(data []byte) bool {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	return i < len(data) && data[i] == '>'
}

func (p *markdownParser) parseBlockquote(out *bytes.Buffer, data []byte) []byte {
	var content bytes.Buffer
	pos := 0
	for pos < len(data) {
		end, next := nextLine(data[pos:])
		line := data[pos : pos+end]

		if isBlockquoteStart(line) {
			i := 0
			for i < 3 && i < len(line) && line[i] == ' ' {
				i++
			}
			i++ // the '>'
			if i < len(line) && line[i] == ' ' {
				i++
			}
			content.Write(line[i:])
			content.WriteByte('\n')
			pos += next
			continue
		}
		if isBlankLine(line) {
			// a blank line ends the blockquote unless another
			// quote-prefixed line immediately follows
			if pos+next < len(data) && isBlockquoteStart(data[pos+next:]) {
				content.WriteByte('\n')
				pos += next
				continue
			}
			break
		}
		// lazy continuation: a plain text line directly continues the
		// quote's current paragraph
		content.Write(line)
		content.WriteByte('\n')
		pos += next
	}

	buf, ok := p.acquireRecurse(ClassBlock)
	if !ok {
		p.noteDiagnostic(slog.LevelWarn, "nesting overflow: blockquote content elided")
		return data[pos:]
	}
	p.parseBlock(buf, content.Bytes())
	if p.renderer.BlockQuote != nil {
		p.renderer.BlockQuote(out, buf.Bytes())
	}
	p.pool.release(ClassBlock)
	return data[pos:]
}

// --- Raw HTML block ---

func (p *markdownParser) isHTMLBlockStart(data []byte) bool {
	if len(data) == 0 || data[0] != '<' {
		return false
	}
	if bytes.HasPrefix(data, []byte("<!--")) {
		return true
	}
	if bytes.HasPrefix(data, []byte("<hr")) {
		return true
	}
	_, ok := p.blockTag(data[1:])
	return ok
}

// parseHTMLBlock consumes a raw HTML block: an unindented closing tag
// followed by a blank line, or (for tags other than ins/del) any
// closing tag followed by a blank line if no unindented close exists.
func (p *markdownParser) parseHTMLBlock(out *bytes.Buffer, data []byte) []byte {
	if bytes.HasPrefix(data, []byte("<!--")) {
		return p.parseHTMLComment(out, data)
	}

	name, _ := p.blockTag(data[1:])
	if name == "" {
		// <hr...> or an unrecognized construct: treat the remainder of
		// the current line as a self-contained block.
		lineEnd, next := nextLine(data)
		if p.renderer.BlockHTML != nil {
			p.renderer.BlockHTML(out, data[:lineEnd])
		}
		return data[next:]
	}

	blockEnd := findHTMLBlockClose(data, name)

	if p.renderer.BlockHTML != nil {
		p.renderer.BlockHTML(out, bytes.TrimRight(data[:blockEnd], "\n"))
	}
	return data[blockEnd:]
}

// findHTMLBlockClose locates the end of a raw HTML block for the given
// tag name: an unindented closing tag followed by a blank line (or end
// of data). If no unindented close exists and name is not "ins" or
// "del", a second pass accepts any closing tag (indented or not) as
// long as it too is followed by a blank line or end of data. If
// neither pass finds a match, the whole remainder becomes the block.
func findHTMLBlockClose(data []byte, name string) int {
	closeTag := []byte("</" + name + ">")

	if end, ok := scanHTMLBlockClose(data, closeTag, true); ok {
		return end
	}
	if name != "ins" && name != "del" {
		if end, ok := scanHTMLBlockClose(data, closeTag, false); ok {
			return end
		}
	}
	return len(data)
}

// scanHTMLBlockClose walks data line by line looking for a line
// containing closeTag. When requireUnindented is set, a line whose
// first byte is a space or tab is skipped rather than matched. A
// candidate close only counts if it is followed by a blank line or
// the end of data; scanHTMLBlockClose returns the offset just past
// the closing line.
func scanHTMLBlockClose(data []byte, closeTag []byte, requireUnindented bool) (int, bool) {
	pos := 0
	for pos < len(data) {
		lineEnd, next := nextLine(data[pos:])
		line := data[pos : pos+lineEnd]

		if requireUnindented && len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			pos += next
			continue
		}

		if bytes.Contains(line, closeTag) {
			closeEnd := pos + next
			if closeEnd >= len(data) {
				return closeEnd, true
			}
			blankEnd, _ := nextLine(data[closeEnd:])
			if isBlankLine(data[closeEnd : closeEnd+blankEnd]) {
				return closeEnd, true
			}
		}

		pos += next
	}
	return 0, false
}

func (p *markdownParser) parseHTMLComment(out *bytes.Buffer, data []byte) []byte {
	end := bytes.Index(data, []byte("-->"))
	var blockEnd int
	if end < 0 {
		blockEnd = len(data)
	} else {
		_, next := nextLine(data[end:])
		blockEnd = end + next
	}
	if p.renderer.BlockHTML != nil {
		p.renderer.BlockHTML(out, bytes.TrimRight(data[:blockEnd], "\n"))
	}
	return data[blockEnd:]
}

// --- Paragraph ---

// paragraphInterrupts reports whether line (the next line after at
// least one paragraph line has been consumed) ends the paragraph
// without being consumed as part of it.
func (p *markdownParser) paragraphInterrupts(line []byte) bool {
	switch {
	case isBlankLine(line):
		return true
	case isATXHeader(line, p.extensions):
		return true
	case isHRule(line):
		return true
	case isBlockquoteStart(line):
		return true
	case p.extensions&FencedCode != 0 && isFenceLine(line) >= 0:
		return true
	case p.isHTMLBlockStart(line):
		return true
	}
	if p.extensions&LaxSpacing != 0 {
		trimmed := bytes.TrimLeft(line, " ")
		if (isUnorderedListStart(line) || isOrderedListStart(line)) &&
			(len(trimmed) == 0 || !isalnum(trimmed[0])) {
			return true
		}
	}
	return false
}

func (p *markdownParser) parseParagraph(out *bytes.Buffer, data []byte) []byte {
	lineEnd, next := nextLine(data)

	end := lineEnd
	consumed := next
	for consumed < len(data) {
		nEnd, nNext := nextLine(data[consumed:])
		line := data[consumed : consumed+nEnd]
		if level, ok := isSetextUnderline(line); ok {
			content := bytes.TrimRight(data[:end], " \t")
			p.emitHeader(out, content, level)
			return data[consumed+nNext:]
		}

		if p.paragraphInterrupts(line) {
			break
		}
		end = consumed + nEnd
		consumed += nNext
	}

	content := bytes.TrimRight(data[:end], " \t")
	if len(bytes.TrimSpace(content)) == 0 {
		return data[consumed:]
	}
	if p.renderer.Paragraph != nil {
		buf, ok := p.acquireRecurse(ClassSpan)
		if !ok {
			p.noteDiagnostic(slog.LevelWarn, "nesting overflow: paragraph content elided")
			return data[consumed:]
		}
		p.parseInline(buf, content)
		p.renderer.Paragraph(out, buf.Bytes())
		p.pool.release(ClassSpan)
	}
	return data[consumed:]
}

func (p *markdownParser) emitHeader(out *bytes.Buffer, content []byte, level int) {
	if p.renderer.Header == nil {
		return
	}
	buf, ok := p.acquireRecurse(ClassSpan)
	if !ok {
		p.noteDiagnostic(slog.LevelWarn, "nesting overflow: header content elided")
		return
	}
	p.parseInline(buf, content)
	p.renderer.Header(out, buf.Bytes(), level)
	p.pool.release(ClassSpan)
}

// --- Tables ---

func isTableHeader(data []byte) bool {
	lineEnd, next := nextLine(data)
	if !bytes.ContainsRune(data[:lineEnd], '|') {
		return false
	}
	if next >= len(data) {
		return false
	}
	_, delimEnd := nextLine(data[next:])
	return isTableDelimiterLine(data[next : next+delimEnd])
}

func isTableDelimiterLine(line []byte) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return false
	}
	line = bytes.Trim(line, "|")
	cells := bytes.Split(line, []byte("|"))
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		cell = bytes.TrimSpace(cell)
		if len(cell) == 0 {
			return false
		}
		i := 0
		if cell[i] == ':' {
			i++
		}
		dashes := 0
		for i < len(cell) && cell[i] == '-' {
			i++
			dashes++
		}
		if dashes == 0 {
			return false
		}
		if i < len(cell) && cell[i] == ':' {
			i++
		}
		if i != len(cell) {
			return false
		}
	}
	return true
}

func splitTableRow(line []byte) [][]byte {
	line = bytes.TrimSpace(line)
	line = bytes.TrimPrefix(line, []byte("|"))
	line = bytes.TrimSuffix(line, []byte("|"))

	var cells [][]byte
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) {
			i++
			continue
		}
		if line[i] == '|' {
			cells = append(cells, bytes.TrimSpace(line[start:i]))
			start = i + 1
		}
	}
	cells = append(cells, bytes.TrimSpace(line[start:]))
	return cells
}

func tableCellAlignment(delim []byte) CellFlags {
	delim = bytes.TrimSpace(delim)
	left := len(delim) > 0 && delim[0] == ':'
	right := len(delim) > 0 && delim[len(delim)-1] == ':'
	switch {
	case left && right:
		return TableAlignCenter
	case left:
		return TableAlignLeft
	case right:
		return TableAlignRight
	}
	return 0
}

func (p *markdownParser) parseTable(out *bytes.Buffer, data []byte) []byte {
	headerEnd, pos := nextLine(data)
	headerCells := splitTableRow(data[:headerEnd])

	delimEnd, bodyStart := nextLine(data[pos:])
	delimCells := splitTableRow(data[pos : pos+delimEnd])
	pos = bodyStart

	aligns := make([]CellFlags, len(headerCells))
	for i := range aligns {
		if i < len(delimCells) {
			aligns[i] = tableCellAlignment(delimCells[i])
		}
	}

	header := p.pool.acquire(ClassBlock)
	p.renderTableRow(header, headerCells, aligns, true)

	body := p.pool.acquire(ClassBlock)
	for pos < len(data) {
		end, next := nextLine(data[pos:])
		line := data[pos : pos+end]
		if isBlankLine(line) || !bytes.ContainsRune(line, '|') {
			break
		}
		cells := splitTableRow(line)
		p.renderTableRow(body, cells, aligns, false)
		pos += next
	}

	if p.renderer.Table != nil {
		p.renderer.Table(out, header.Bytes(), body.Bytes())
	}
	p.pool.release(ClassBlock)
	p.pool.release(ClassBlock)
	return data[pos:]
}

func (p *markdownParser) renderTableRow(out *bytes.Buffer, cells [][]byte, aligns []CellFlags, header bool) {
	row := p.pool.acquire(ClassSpan)
	for i, cell := range cells {
		var flags CellFlags
		if i < len(aligns) {
			flags = aligns[i]
		}
		if header {
			flags |= TableHeader
		}
		if p.renderer.TableCell != nil {
			content, ok := p.acquireRecurse(ClassSpan)
			if !ok {
				p.noteDiagnostic(slog.LevelWarn, "nesting overflow: table cell content elided")
				continue
			}
			p.parseInline(content, cell)
			p.renderer.TableCell(row, content.Bytes(), flags)
			p.pool.release(ClassSpan)
		}
	}
	if p.renderer.TableRow != nil {
		p.renderer.TableRow(out, row.Bytes())
	}
	p.pool.release(ClassSpan)
}

// --- Lists ---

func isUnorderedListStart(data []byte) bool {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	if i >= len(data) {
		return false
	}
	c := data[i]
	if c != '*' && c != '+' && c != '-' {
		return false
	}
	i++
	return i < len(data) && (data[i] == ' ' || data[i] == '\n')
}

func isOrderedListStart(data []byte) bool {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	start := i
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		i++
	}
	if i == start || i >= len(data) || data[i] != '.' {
		return false
	}
	i++
	return i < len(data) && (data[i] == ' ' || data[i] == '\n')
}

// listMarkerWidth returns the number of bytes the marker plus its
// following run of spaces occupies on line (used as the item's
// content indent width).
func listMarkerWidth(line []byte, ordered bool) int {
	i := 0
	for i < 3 && i < len(line) && line[i] == ' ' {
		i++
	}
	if ordered {
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		i++ // '.'
	} else {
		i++ // bullet
	}
	width := i
	for width < len(line) && line[width] == ' ' {
		width++
	}
	if width == i {
		width = i + 1
	}
	return width
}

// parseList consumes a maximal run of same-kind list items starting
// at data and renders them as a single List.
func (p *markdownParser) parseList(out *bytes.Buffer, data []byte, ordered bool) []byte {
	type itemSpan struct {
		item  []byte
		loose bool
	}
	var items []itemSpan
	pos := 0

	for pos < len(data) {
		matchesKind := ordered && isOrderedListStart(data[pos:]) || !ordered && isUnorderedListStart(data[pos:])
		if !matchesKind {
			end, next := nextLine(data[pos:])
			if !isBlankLine(data[pos : pos+end]) {
				break
			}
			// a single blank line may separate items; it only
			// continues the list if another item or an indented
			// continuation line immediately follows
			rest := data[pos+next:]
			if len(rest) == 0 {
				pos += next
				break
			}
			stillItem := ordered && isOrderedListStart(rest) || !ordered && isUnorderedListStart(rest)
			indented := leadingSpaceCount(rest) > 0 && !isBlankLine(rest)
			if stillItem || indented {
				pos += next
				continue
			}
			break
		}

		itemEnd, loose := p.consumeListItem(data[pos:], ordered)
		items = append(items, itemSpan{item: data[pos : pos+itemEnd], loose: loose})
		pos += itemEnd
	}

	var body bytes.Buffer
	for i, it := range items {
		p.renderListItem(&body, it.item, ordered, it.loose, i == len(items)-1)
	}

	var flags ListFlags
	if ordered {
		flags |= ListOrdered
	}
	if p.renderer.List != nil {
		p.renderer.List(out, body.Bytes(), flags)
	}
	return data[pos:]
}

// consumeListItem returns the byte length of one list item (marker
// line plus continuation lines) and whether a blank line inside it
// upgrades it to block-level rendering.
func (p *markdownParser) consumeListItem(data []byte, ordered bool) (length int, loose bool) {
	lineEnd, next := nextLine(data)
	pos := next
	pendingBlank := false
	inFence := isFenceLine(data[:lineEnd]) >= 0

	for pos < len(data) {
		end, nxt := nextLine(data[pos:])
		line := data[pos : pos+end]

		if inFence {
			pos += nxt
			if isFenceLine(line) >= 0 {
				inFence = false
			}
			continue
		}
		if p.extensions&FencedCode != 0 && isFenceLine(line) >= 0 {
			inFence = true
			pos += nxt
			continue
		}

		if isBlankLine(line) {
			pendingBlank = true
			pos += nxt
			continue
		}

		indent := leadingSpaceCount(line)
		matchesKind := ordered && isOrderedListStart(line) || !ordered && isUnorderedListStart(line)
		if indent == 0 && matchesKind {
			break
		}
		if indent == 0 && !pendingBlank {
			// lazily-continued paragraph text directly under the item
			pos += nxt
			continue
		}
		if indent == 0 {
			break
		}
		if pendingBlank {
			loose = true
		}
		pendingBlank = false
		pos += nxt
	}
	return pos, loose
}

func (p *markdownParser) renderListItem(out *bytes.Buffer, item []byte, ordered bool, loose bool, isLast bool) {
	lineEnd, next := nextLine(item)
	width := listMarkerWidth(item[:lineEnd], ordered)
	if width > lineEnd {
		width = lineEnd
	}

	var content bytes.Buffer
	content.Write(item[width:lineEnd])
	content.WriteByte('\n')

	pos := next
	for pos < len(item) {
		end, nxt := nextLine(item[pos:])
		line := item[pos : pos+end]
		if isBlankLine(line) {
			content.WriteByte('\n')
		} else {
			strip := leadingSpaceCount(line)
			if strip > width {
				strip = width
			}
			content.Write(line[strip:])
			content.WriteByte('\n')
		}
		pos += nxt
	}

	var flags ListFlags
	if ordered {
		flags |= ListOrdered
	}
	if loose {
		flags |= ListItemContainsBlock
	}
	if isLast {
		flags |= ListItemEndOfList
	}

	buf, ok := p.acquireRecurse(ClassBlock)
	if !ok {
		p.noteDiagnostic(slog.LevelWarn, "nesting overflow: list item content elided")
		return
	}
	if loose {
		p.parseBlock(buf, content.Bytes())
	} else {
		inline, ok2 := p.acquireRecurse(ClassSpan)
		if ok2 {
			p.parseInline(inline, bytes.TrimRight(content.Bytes(), "\n"))
			buf.Write(inline.Bytes())
			p.pool.release(ClassSpan)
		}
	}
	if p.renderer.ListItem != nil {
		p.renderer.ListItem(out, buf.Bytes(), flags)
	}
	p.pool.release(ClassBlock)
}
