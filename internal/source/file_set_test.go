package source

import (
	"testing"
)

func TestAddVirtualAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.kd", []byte("alias F = Kind<Type>;\ntype T;\n"))

	f := fs.Get(id)
	if f == nil {
		t.Fatalf("expected file for id %d", id)
	}
	if f.Flags&FileVirtual == 0 {
		t.Fatalf("expected virtual flag")
	}

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 5})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Fatalf("unexpected start %+v", start)
	}
	if end != (LineCol{Line: 1, Col: 6}) {
		t.Fatalf("unexpected end %+v", end)
	}
}

func TestResolveSecondLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.kd", []byte("a\nbc\nd"))

	pos := fs.Position(id, 2) // 'b'
	if pos != (LineCol{Line: 2, Col: 1}) {
		t.Fatalf("expected 2:1, got %+v", pos)
	}
	pos = fs.Position(id, 5) // 'd'
	if pos != (LineCol{Line: 3, Col: 1}) {
		t.Fatalf("expected 3:1, got %+v", pos)
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	fs := NewFileSet()
	content := []byte("alias F = Kind<Type>;\ntype Box<F: F>;\n")
	id := fs.AddVirtual("test.kd", content)
	f := fs.Get(id)

	for off := uint32(0); off < uint32(len(content)); off++ {
		pos := fs.Position(id, off)
		if got := f.Offset(pos); got != off {
			t.Fatalf("offset %d round-tripped to %d via %+v", off, got, pos)
		}
	}
}

func TestNormalizeCRLFOnAdd(t *testing.T) {
	fs := NewFileSet()
	content, changed := normalizeCRLF([]byte("type A;\r\ntype B;\r\n"))
	if !changed {
		t.Fatalf("expected CRLF normalization")
	}
	id := fs.Add("crlf.kd", content, FileNormalizedCRLF)
	f := fs.Get(id)
	if string(f.Content) != "type A;\ntype B;\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.kd", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	cases := []struct {
		line uint32
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
		{0, ""},
	}
	for _, tc := range cases {
		if got := f.GetLine(tc.line); got != tc.want {
			t.Fatalf("line %d: expected %q, got %q", tc.line, tc.want, got)
		}
	}
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{File: 0, Start: 2, End: 6}
	cases := []struct {
		b    Span
		want bool
	}{
		{Span{File: 0, Start: 4, End: 8}, true},
		{Span{File: 0, Start: 6, End: 8}, false},
		{Span{File: 0, Start: 3, End: 3}, true},
		{Span{File: 0, Start: 6, End: 6}, false},
		{Span{File: 1, Start: 3, End: 4}, false},
	}
	for i, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}
