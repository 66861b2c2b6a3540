package diag

import (
	"testing"

	"kindcheck/internal/source"
)

func TestDedupReporterSuppressesRepeatedPropagation(t *testing.T) {
	bag := NewBag(8)
	rep := NewDedupReporter(BagReporter{Bag: bag})

	site := source.Span{File: 0, Start: 42, End: 50}
	// Same violation discovered directly and again via the parent call site.
	rep.Report(KndArityMismatch, SevError, site, "expected arity 1, got 2", nil, nil)
	rep.Report(KndArityMismatch, SevError, site, "expected arity 1, got 2 (via Outer<...>)", nil, nil)

	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	if got := bag.Items()[0].Message; got != "expected arity 1, got 2" {
		t.Fatalf("first occurrence should win, got %q", got)
	}
	if rep.Seen() != 1 {
		t.Fatalf("expected 1 distinct key, got %d", rep.Seen())
	}
}

func TestDedupReporterForwardsDistinctKeys(t *testing.T) {
	bag := NewBag(8)
	rep := NewDedupReporter(BagReporter{Bag: bag})

	rep.Report(KndArityMismatch, SevError, source.Span{File: 0, Start: 1, End: 4}, "a", nil, nil)
	rep.Report(KndParamKindMismatch, SevError, source.Span{File: 0, Start: 1, End: 4}, "b", nil, nil)
	rep.Report(KndArityMismatch, SevError, source.Span{File: 0, Start: 9, End: 12}, "c", nil, nil)

	if bag.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", bag.Len())
	}
}

func TestNilDedupReporterIsSafe(t *testing.T) {
	var rep *DedupReporter
	rep.Report(KndArityMismatch, SevError, source.Span{}, "ignored", nil, nil)
	if rep.Seen() != 0 {
		t.Fatalf("nil reporter should report zero keys")
	}
}
