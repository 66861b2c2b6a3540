package diagfmt

import (
	"strings"
	"testing"

	"kindcheck/internal/diag"
	"kindcheck/internal/source"
)

func oneDiagnosticBag(fs *source.FileSet) (*diag.Bag, source.FileID) {
	id := fs.AddVirtual("demo.kd", []byte("type Use { pair: Wrap<Either>; }\n"))
	bag := diag.NewBag(8)
	span := source.Span{File: id, Start: 22, End: 28} // Either
	d := diag.NewError(diag.KndArityMismatch, span, "expected a unary constructor, found arity 2").
		WithNote(span, "constraint declared here").
		WithFix(diag.Fix{
			Title:       "change 'Either' to 'Functor'",
			IsPreferred: true,
			Edits: []diag.TextEdit{{
				Span:    span,
				NewText: "Functor",
				OldText: "Either",
			}},
		})
	bag.Add(d)
	return bag, id
}

func TestPrettyHeaderAndUnderline(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := oneDiagnosticBag(fs)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	out := sb.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("output too short:\n%s", out)
	}

	head := lines[0]
	if !strings.HasPrefix(head, "demo.kd:1:23: ERROR KND3001:") {
		t.Fatalf("header = %q", head)
	}
	if !strings.Contains(head, "expected a unary constructor") {
		t.Fatalf("header lacks message: %q", head)
	}

	if got, want := lines[1], "  type Use { pair: Wrap<Either>; }"; got != want {
		t.Fatalf("source line = %q, want %q", got, want)
	}
	// Caret under 'Either': 22 spaces of padding, one caret, five tildes.
	if got, want := lines[2], "  "+strings.Repeat(" ", 22)+"^~~~~~"; got != want {
		t.Fatalf("underline = %q, want %q", got, want)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := oneDiagnosticBag(fs)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{
		PathMode:  PathModeBasename,
		ShowNotes: true,
		ShowFixes: true,
	})

	out := sb.String()
	if !strings.Contains(out, "note: demo.kd:1:23: constraint declared here") {
		t.Fatalf("note missing:\n%s", out)
	}
	if !strings.Contains(out, "fix*: change 'Either' to 'Functor'") {
		t.Fatalf("preferred fix marker missing:\n%s", out)
	}
}

func TestPrettyWidthTruncation(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := oneDiagnosticBag(fs)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{PathMode: PathModeBasename, Width: 20})

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		if len([]rune(line)) > 23 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestPrettyNilInputs(t *testing.T) {
	var sb strings.Builder
	Pretty(&sb, nil, source.NewFileSet(), PrettyOpts{})
	Pretty(&sb, diag.NewBag(1), nil, PrettyOpts{})
	if sb.Len() != 0 {
		t.Fatalf("nil inputs produced output: %q", sb.String())
	}
}
