package hoedown

import "bytes"

// footnoteDef is a single `[^id]: ...` definition. contents holds the
// raw (unparsed) body bytes, newline-terminated, indent already
// stripped by one level per line, as accumulated by the pre-scanner.
type footnoteDef struct {
	hash     uint32
	contents bytes.Buffer
	used     bool
	ordinal  int

	next     *footnoteDef // insertion-ordered list
	usedNext *footnoteDef // first-use-ordered list, threaded through the same nodes
}

// footnoteList is the insertion-ordered list of parsed footnote
// definitions plus the "used" subset, in first-use order, that the
// driver renders into the document's trailing footnotes section.
type footnoteList struct {
	head, tail *footnoteDef
	count      int

	usedHead, usedTail *footnoteDef
	usedCount          int
}

func newFootnoteList() *footnoteList {
	return &footnoteList{}
}

// define appends a new footnote definition, or returns the existing
// one if its hash already collides with one on the list (first
// definition wins, same dialect as refTable.insert).
func (l *footnoteList) define(id []byte) *footnoteDef {
	h := refHash(id)
	if d := l.find(h); d != nil {
		return d
	}
	d := &footnoteDef{hash: h}
	if l.head == nil {
		l.head = d
		l.tail = d
	} else {
		l.tail.next = d
		l.tail = d
	}
	l.count++
	return d
}

func (l *footnoteList) find(h uint32) *footnoteDef {
	for d := l.head; d != nil; d = d.next {
		if d.hash == h {
			return d
		}
	}
	return nil
}

// use marks the footnote identified by id as referenced, assigning it
// the next ordinal (starting at 1) the first time it is used. Returns
// the definition and its ordinal, or (nil, 0) if no such footnote was
// defined.
func (l *footnoteList) use(id []byte) (*footnoteDef, int) {
	h := refHash(id)
	d := l.find(h)
	if d == nil {
		return nil, 0
	}
	if !d.used {
		d.used = true
		l.usedCount++
		d.ordinal = l.usedCount
		// usedHead/usedTail form a second singly-linked chain through
		// the same nodes, threaded in first-use order.
		if l.usedHead == nil {
			l.usedHead = d
			l.usedTail = d
		} else {
			l.usedTail.usedNext = d
			l.usedTail = d
		}
	}
	return d, d.ordinal
}

// reset clears the list, releasing all definitions.
func (l *footnoteList) reset() {
	*l = footnoteList{}
}
