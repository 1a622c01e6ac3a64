package hoedown

import "bytes"

// blockTagNames is the bundled set of HTML tag names recognized as
// block-level. Lookup is case-insensitive.
var blockTagNames = map[string]bool{
	"p":          true,
	"dl":         true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"ol":         true,
	"ul":         true,
	"del":        true,
	"div":        true,
	"ins":        true,
	"pre":        true,
	"form":       true,
	"math":       true,
	"table":      true,
	"iframe":     true,
	"script":     true,
	"fieldset":   true,
	"noscript":   true,
	"blockquote": true,
}

// defaultBlockTagName is the bundled BlockTagRecognizer: given a byte
// slice, it returns a known block tag name or none. It is the default
// implementation, injectable via WithBlockTagRecognizer.
func defaultBlockTagName(tag []byte) (string, bool) {
	end := 0
	for end < len(tag) && isTagNameByte(tag[end]) {
		end++
	}
	if end == 0 {
		return "", false
	}
	name := string(bytes.ToLower(tag[:end]))
	if blockTagNames[name] {
		return name, true
	}
	return "", false
}

func isTagNameByte(c byte) bool {
	return isalnum(c) || c == '-'
}
