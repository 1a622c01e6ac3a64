package hoedown

// Default implementations of the AutolinkScanner type. A caller who
// needs different scheme recognition or e-mail rules can swap these
// out via WithAutolinkScanners; the core parser only depends on the
// (consumed, rewind, link) contract.

// scanURLAutolink matches a bare "scheme://..." autolink. offset is
// the index of the ':' that triggered the scan; the scheme name
// itself was already flushed to the renderer as normal text, so a
// match rewinds those bytes out of the output.
func scanURLAutolink(data []byte, offset int) (consumed, rewind int, link []byte) {
	if offset+2 >= len(data) || data[offset+1] != '/' || data[offset+2] != '/' {
		return 0, 0, nil
	}

	start := offset
	for start > 0 && isSchemeByte(data[start-1]) {
		start--
	}
	if start == offset || !isAlpha(data[start]) {
		return 0, 0, nil
	}
	if start > 0 && (isalnum(data[start-1]) || data[start-1] == '/') {
		// preceded by a word character or a slash: not a scheme boundary
		return 0, 0, nil
	}

	end := offset
	for end < len(data) && !isspace(data[end]) && data[end] != '<' && data[end] != '>' && data[end] != '"' {
		end++
	}
	end = trimTrailingURLPunct(data, offset, end)
	if end <= offset+3 {
		return 0, 0, nil
	}

	return end - offset, offset - start, data[start:end]
}

// scanWWWAutolink matches a bare "www.host/path" autolink with no
// scheme. offset is the index of the leading 'w'.
func scanWWWAutolink(data []byte, offset int) (consumed, rewind int, link []byte) {
	if offset > 0 && (isalnum(data[offset-1]) || data[offset-1] == '/') {
		return 0, 0, nil
	}
	if offset+4 > len(data) || !hasPrefixFold(data[offset:], "www.") {
		return 0, 0, nil
	}

	end := offset
	for end < len(data) && !isspace(data[end]) && data[end] != '<' && data[end] != '>' && data[end] != '"' {
		end++
	}
	end = trimTrailingURLPunct(data, offset, end)
	if end <= offset+4 {
		return 0, 0, nil
	}

	return end - offset, 0, data[offset:end]
}

// scanEmailAutolink matches a bare "local@domain" autolink. offset is
// the index of '@'; the local part to its left was already flushed
// as normal text and must be rewound.
func scanEmailAutolink(data []byte, offset int) (consumed, rewind int, link []byte) {
	start := offset
	for start > 0 && isEmailByte(data[start-1]) {
		start--
	}
	if start == offset {
		return 0, 0, nil
	}

	end := offset + 1
	lastDot := -1
	for end < len(data) && (isEmailByte(data[end]) || data[end] == '.') {
		if data[end] == '.' {
			lastDot = end
		}
		end++
	}
	if lastDot < 0 || end-offset < 3 {
		return 0, 0, nil
	}
	// trailing '.' is punctuation, not part of the domain
	for end > offset && data[end-1] == '.' {
		end--
	}

	return end - offset, offset - start, data[start:end]
}

func isSchemeByte(c byte) bool {
	return isalnum(c) || c == '+' || c == '.' || c == '-'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isEmailByte(c byte) bool {
	return isalnum(c) || c == '-' || c == '_' || c == '.' || c == '+'
}

func hasPrefixFold(data []byte, prefix string) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if asciiLower(data[i]) != prefix[i] {
			return false
		}
	}
	return true
}

// trimTrailingURLPunct trims trailing punctuation ('.', ',', ';',
// ':', '!', '?', '\'', '*', '_', '~') commonly not intended as part
// of the link, and balances a trailing ')' against unmatched '(' in
// the scanned span so "(see http://e.com/a_(b))" keeps the inner
// parenthesis.
func trimTrailingURLPunct(data []byte, start, end int) int {
	for end > start {
		c := data[end-1]
		switch c {
		case '.', ',', ';', ':', '!', '?', '\'', '*', '_', '~':
			end--
			continue
		case ')':
			depth := 0
			for i := start; i < end; i++ {
				switch data[i] {
				case '(':
					depth++
				case ')':
					depth--
				}
			}
			if depth < 0 {
				end--
				continue
			}
		}
		break
	}
	return end
}
