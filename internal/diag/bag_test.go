package diag

import (
	"testing"

	"kindcheck/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestAddIfNotDuplicateIdempotent(t *testing.T) {
	bag := NewBag(16)
	d := NewError(KndArityMismatch, span(0, 10, 14), "expected 1 type argument, got 2")

	if !bag.AddIfNotDuplicate(d) {
		t.Fatalf("first insert should succeed")
	}
	if bag.AddIfNotDuplicate(d) {
		t.Fatalf("second insert should be suppressed")
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
}

func TestDedupKeyIgnoresMessageText(t *testing.T) {
	bag := NewBag(16)
	first := NewError(KndArityMismatch, span(0, 10, 14), "expected 1 type argument, got 2")
	reworded := NewError(KndArityMismatch, span(0, 10, 14), "arity mismatch discovered via parent call site")

	bag.AddIfNotDuplicate(first)
	if bag.AddIfNotDuplicate(reworded) {
		t.Fatalf("reworded duplicate should be suppressed")
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	// First occurrence wins and keeps its message.
	if got := bag.Items()[0].Message; got != first.Message {
		t.Fatalf("expected first message to survive, got %q", got)
	}
}

func TestDedupKeyDistinguishesCodeAndSpan(t *testing.T) {
	bag := NewBag(16)
	added := bag.AddManyWithDedup(
		NewError(KndArityMismatch, span(0, 10, 14), "a"),
		NewError(KndParamKindMismatch, span(0, 10, 14), "b"), // different code
		NewError(KndArityMismatch, span(0, 20, 24), "c"),     // different start
		NewError(KndArityMismatch, span(1, 10, 14), "d"),     // different file
		NewError(KndArityMismatch, span(0, 10, 15), "e"),     // different length
	)
	if added != 5 {
		t.Fatalf("expected 5 added, got %d", added)
	}
}

func TestAddManyWithDedupCountsOnlyInserted(t *testing.T) {
	bag := NewBag(16)
	d := NewError(KndVarianceMismatch, span(0, 3, 8), "variance")
	added := bag.AddManyWithDedup(d, d, d)
	if added != 1 {
		t.Fatalf("expected 1 added, got %d", added)
	}
}

func TestValidateReportsDuplicateStats(t *testing.T) {
	items := []Diagnostic{
		NewError(KndArityMismatch, span(0, 10, 14), "a"),
		NewError(KndArityMismatch, span(0, 10, 14), "a again"),
		NewError(KndUnresolvedAlias, span(0, 30, 36), "b"),
	}
	stats := Validate(items)
	if stats.Total != 3 || stats.Duplicates != 1 || stats.Unique != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	dups := FindDuplicates(items)
	if len(dups) != 1 || dups[0].Message != "a again" {
		t.Fatalf("unexpected duplicates %+v", dups)
	}
}

func TestValidateOrderIndependent(t *testing.T) {
	a := NewError(KndArityMismatch, span(0, 10, 14), "a")
	b := NewError(KndArityMismatch, span(0, 10, 14), "b")
	c := NewError(KndUnresolvedAlias, span(0, 30, 36), "c")

	s1 := Validate([]Diagnostic{a, b, c})
	s2 := Validate([]Diagnostic{c, b, a})
	if s1.Duplicates != s2.Duplicates || s1.Unique != s2.Unique {
		t.Fatalf("stats differ across orderings: %+v vs %+v", s1, s2)
	}
}

func TestBagCapDropsOverflow(t *testing.T) {
	bag := NewBag(2)
	bag.Add(NewError(KndArityMismatch, span(0, 0, 1), "a"))
	bag.Add(NewError(KndArityMismatch, span(0, 2, 3), "b"))
	if bag.Add(NewError(KndArityMismatch, span(0, 4, 5), "c")) {
		t.Fatalf("expected add past cap to fail")
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
}

func TestBagSortStable(t *testing.T) {
	bag := NewBag(8)
	bag.Add(NewError(KndParamKindMismatch, span(0, 20, 24), "late"))
	bag.Add(NewError(KndArityMismatch, span(0, 5, 9), "early"))
	bag.Add(New(SevWarning, KndInfo, span(0, 5, 9), "warn at same start"))
	bag.Sort()

	items := bag.Items()
	if items[0].Message != "early" {
		t.Fatalf("expected error first, got %q", items[0].Message)
	}
	if items[1].Message != "warn at same start" {
		t.Fatalf("expected warning second, got %q", items[1].Message)
	}
	if items[2].Message != "late" {
		t.Fatalf("expected later span last, got %q", items[2].Message)
	}
}

func TestBagCapAboveUint16(t *testing.T) {
	// Caps come straight from --max-diagnostics and must not wrap at
	// 65536.
	bag := NewBag(70000)
	if bag.Cap() != 70000 {
		t.Fatalf("cap = %d, want 70000", bag.Cap())
	}
	// 70000 % 65536 = 4464; crossing it proves the cap did not truncate.
	for i := 0; i < 5000; i++ {
		if !bag.Add(NewError(KndArityMismatch, span(0, uint32(i), uint32(i+1)), "x")) {
			t.Fatalf("add %d rejected below the cap", i)
		}
	}
	if bag.Len() != 5000 {
		t.Fatalf("len = %d, want 5000", bag.Len())
	}
}
