package hoedown

// refHashBuckets is the fixed bucket count for the link-reference
// table: a small, fixed number of buckets with separate chaining.
const refHashBuckets = 8

// refHash implements the case-folded 32-bit rolling hash used for
// reference and footnote identifiers:
//
//	h = tolower(c) + (h<<6) + (h<<16) - h
//
// Two distinct identifiers whose hashes collide are treated as the
// same identifier. This is a deliberate dialect choice, not a bug:
// it matches the upskirt/hoedown lineage's lookup behavior exactly.
func refHash(id []byte) uint32 {
	var h uint32
	for _, c := range id {
		h = uint32(asciiLower(c)) + (h << 6) + (h << 16) - h
	}
	return h
}

func asciiLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// linkReference is a single parsed `[id]: link "title"` definition.
type linkReference struct {
	hash  uint32
	link  []byte
	title []byte
	next  *linkReference
}

// refTable is the hash-bucketed link-reference table populated during
// pass 1 and consulted during pass 2. Lookup compares only the
// 32-bit hash; the first bucket entry with a matching hash wins.
type refTable struct {
	buckets [refHashBuckets]*linkReference
}

func newRefTable() *refTable {
	return &refTable{}
}

// insert adds a reference unless an entry with the same hash already
// exists, in which case it leaves that entry unchanged — a definition
// later in the document never overrides an earlier one with the same
// hash, matching the classic "first one wins" dialect choice.
func (t *refTable) insert(id, link, title []byte) {
	h := refHash(id)
	b := h % refHashBuckets
	for r := t.buckets[b]; r != nil; r = r.next {
		if r.hash == h {
			return
		}
	}
	t.buckets[b] = &linkReference{hash: h, link: link, title: title, next: t.buckets[b]}
}

// lookup returns the reference whose hash matches id's, or nil.
func (t *refTable) lookup(id []byte) *linkReference {
	h := refHash(id)
	b := h % refHashBuckets
	for r := t.buckets[b]; r != nil; r = r.next {
		if r.hash == h {
			return r
		}
	}
	return nil
}

// reset clears every bucket, releasing the table for reuse or
// teardown.
func (t *refTable) reset() {
	for i := range t.buckets {
		t.buckets[i] = nil
	}
}
