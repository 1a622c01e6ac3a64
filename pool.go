package hoedown

import "bytes"

// BufferClass selects one of the two size classes the buffer pool
// maintains. Block-level recursion (list items, blockquotes, table
// header and body) acquires ClassBlock buffers; inline recursion
// (emphasis content, link display text, superscript, table cells)
// acquires ClassSpan.
type BufferClass int

const (
	// ClassBlock buffers start with a 256-byte backing store.
	ClassBlock BufferClass = iota
	// ClassSpan buffers start with a 64-byte backing store.
	ClassSpan

	numBufferClasses = 2
)

const (
	initialBlockCapacity = 256
	initialSpanCapacity  = 64
)

// pool is a per-size-class stack of reusable *bytes.Buffer values.
// Acquiring advances the class's top; releasing decrements it. A
// buffer handed out by acquire is always empty (len 0) but retains
// its backing array from any prior use, so the pool amortizes
// allocation across a document's full recursion tree.
//
// pool is not safe for concurrent use; it is owned exclusively by one
// parser instance (markdownParser).
type pool struct {
	slots [numBufferClasses][]*bytes.Buffer
	tops  [numBufferClasses]int
}

func newPool() *pool {
	return &pool{}
}

// acquire returns the next free buffer of class, growing the backing
// slice on first use of a given depth. The caller must pair every
// acquire with exactly one release of the same class, on every return
// path, innermost first (LIFO).
func (p *pool) acquire(class BufferClass) *bytes.Buffer {
	top := p.tops[class]
	if top == len(p.slots[class]) {
		capHint := initialSpanCapacity
		if class == ClassBlock {
			capHint = initialBlockCapacity
		}
		p.slots[class] = append(p.slots[class], bytes.NewBuffer(make([]byte, 0, capHint)))
	}
	buf := p.slots[class][top]
	buf.Reset()
	p.tops[class] = top + 1
	return buf
}

// release returns the most recently acquired buffer of class to the
// pool. Calling release without a matching acquire is a programmer
// error and panics.
func (p *pool) release(class BufferClass) {
	if p.tops[class] == 0 {
		panic("hoedown: pool release without matching acquire")
	}
	p.tops[class]--
}

// depth reports the combined number of outstanding buffers across
// both classes. Recursive parsers compare this against maxNesting
// before recursing; when it would be exceeded the recursive call is
// skipped and the subtree is elided rather than recursing unbounded.
func (p *pool) depth() int {
	return p.tops[ClassBlock] + p.tops[ClassSpan]
}

// idle reports whether both pool tops are at 0, the invariant the
// driver asserts at the end of render.
func (p *pool) idle() bool {
	return p.tops[ClassBlock] == 0 && p.tops[ClassSpan] == 0
}

// reset discards every buffer, spare or outstanding, freeing their
// backing stores. Called during driver teardown.
func (p *pool) reset() {
	p.slots[ClassBlock] = nil
	p.slots[ClassSpan] = nil
	p.tops[ClassBlock] = 0
	p.tops[ClassSpan] = 0
}
