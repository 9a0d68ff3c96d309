package includecache

import (
	"testing"

	"github.com/latexdoc/reader/token"
)

func TestCache(t *testing.T) {
	c, err := NewCache("test")
	if err != nil {
		t.Fatal(err)
	}

	toks := token.List{
		{Kind: token.Word, Name: "hello", Raw: "hello"},
		{Kind: token.Spaces, Raw: " "},
		{Kind: token.Word, Name: "world", Raw: "world"},
	}

	c.Put("A", toks)

	if !c.Has("A") {
		t.Error("key A not found")
	}
	if c.Has("B") {
		t.Error("non-existent key B found")
	}

	got, ok := c.Get("A")
	if !ok {
		t.Fatal("key A not retrievable")
	}
	if len(got) != len(toks) {
		t.Fatalf("got %d tokens, want %d", len(got), len(toks))
	}
	for i := range toks {
		if got[i].Name != toks[i].Name || got[i].Kind != toks[i].Kind {
			t.Errorf("token %d = %+v, want %+v", i, got[i], toks[i])
		}
	}

	if _, ok := c.Get("B"); ok {
		t.Error("requesting non-existent key B succeeded")
	}

	if err := c.Close(-1); err != nil {
		t.Fatal(err)
	}
}
