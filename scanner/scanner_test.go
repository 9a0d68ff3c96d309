package scanner

import "testing"

func TestScannerSimple(t *testing.T) {
	scan := New()
	target := "testing"
	scan.Prepend([]byte(target[4:]), "end")
	scan.Prepend([]byte(target[:4]), "beginning")

	for len(target) > 0 {
		if !scan.Next() {
			t.Fatal("unexpected end of data")
		}
		buf := scan.Peek()
		if string(buf) != target {
			t.Fatalf("expected %q, got %q", target, string(buf))
		}
		scan.Skip(1)
		target = target[1:]
	}

	if scan.Next() {
		t.Fatal("unexpected data")
	}
}

func TestScannerPosition(t *testing.T) {
	scan := New()
	scan.Prepend([]byte("ab\ncd"), "test")

	scan.Next()
	pos := scan.Pos()
	if pos.Line != 1 || pos.Column != 1 {
		t.Fatalf("wrong start position %+v", pos)
	}

	scan.Skip(3) // consume "ab\n"
	scan.Next()
	pos = scan.Pos()
	if pos.Line != 2 || pos.Column != 1 {
		t.Fatalf("wrong position after newline %+v", pos)
	}
}

func TestScannerDepth(t *testing.T) {
	scan := New()
	scan.Prepend([]byte("outer"), "outer")
	scan.Next()
	if scan.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", scan.Depth())
	}

	scan.Prepend([]byte("inner"), "inner")
	scan.Next()
	if scan.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", scan.Depth())
	}
	if scan.SourceName() != "inner" {
		t.Fatalf("expected innermost source name, got %q", scan.SourceName())
	}

	scan.Skip(len("inner"))
	scan.Next()
	if scan.SourceName() != "outer" {
		t.Fatalf("expected to fall back to outer source, got %q", scan.SourceName())
	}
}
