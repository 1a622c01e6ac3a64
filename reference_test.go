package hoedown

import "testing"

func TestRefHashCaseInsensitive(t *testing.T) {
	t.Parallel()

	if refHash([]byte("Foo")) != refHash([]byte("foo")) {
		t.Fatal("refHash must fold case")
	}
	if refHash([]byte("FOO")) != refHash([]byte("foo")) {
		t.Fatal("refHash must fold case")
	}
}

func TestRefTableInsertLookup(t *testing.T) {
	t.Parallel()

	tbl := newRefTable()
	tbl.insert([]byte("example"), []byte("https://example.com"), []byte("Example"))

	ref := tbl.lookup([]byte("example"))
	if ref == nil {
		t.Fatal("expected to find inserted reference")
	}
	if string(ref.link) != "https://example.com" {
		t.Fatalf("link = %q, want https://example.com", ref.link)
	}
	if string(ref.title) != "Example" {
		t.Fatalf("title = %q, want Example", ref.title)
	}
}

func TestRefTableLookupMiss(t *testing.T) {
	t.Parallel()

	tbl := newRefTable()
	if tbl.lookup([]byte("missing")) != nil {
		t.Fatal("lookup on an empty table must return nil")
	}
}

func TestRefTableFirstDefinitionWins(t *testing.T) {
	t.Parallel()

	tbl := newRefTable()
	tbl.insert([]byte("dup"), []byte("https://first.example"), nil)
	tbl.insert([]byte("dup"), []byte("https://second.example"), nil)

	ref := tbl.lookup([]byte("dup"))
	if ref == nil || string(ref.link) != "https://first.example" {
		t.Fatalf("expected the first definition to win, got %+v", ref)
	}
}

// TestRefTableHashCollisionAliasing documents the dialect choice: two
// distinct identifiers whose 32-bit hashes collide are treated as the
// same reference. This is intentionally not "fixed" — it matches the
// upskirt/hoedown lineage's lookup behavior.
func TestRefTableHashCollisionAliasing(t *testing.T) {
	t.Parallel()

	// "axjgjz" and "ziieqj" are distinct identifiers with the same
	// refHash value.
	if refHash([]byte("axjgjz")) != refHash([]byte("ziieqj")) {
		t.Fatal("test identifiers must collide")
	}

	tbl := newRefTable()
	tbl.insert([]byte("axjgjz"), []byte("https://a.example"), nil)
	tbl.insert([]byte("ziieqj"), []byte("https://z.example"), nil)

	// Looking up the second identifier finds the first-inserted entry.
	ref := tbl.lookup([]byte("ziieqj"))
	if ref == nil || string(ref.link) != "https://a.example" {
		t.Fatalf("expected the colliding lookup to resolve to the first entry, got %+v", ref)
	}
}

func TestRefTableReset(t *testing.T) {
	t.Parallel()

	tbl := newRefTable()
	tbl.insert([]byte("x"), []byte("https://x.example"), nil)
	tbl.reset()

	if tbl.lookup([]byte("x")) != nil {
		t.Fatal("reset must clear every bucket")
	}
}
