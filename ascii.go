package hoedown

// isalnum reports whether c is an ASCII letter or digit.
func isalnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isspace reports whether c is a byte this dialect treats as
// whitespace: space, tab, newline, carriage return, form feed, or
// vertical tab.
func isspace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
